// cmd/lambda runs the API inside AWS Lambda behind an API Gateway
// proxy integration. The router is built once per cold start.
package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	chiadapter "github.com/awslabs/aws-lambda-go-api-proxy/chi"

	"eventapi/internal/database"
	"eventapi/internal/handler"
	"eventapi/internal/repository"
	"eventapi/internal/service"
)

var adapter *chiadapter.ChiLambda

func init() {
	client, cfg, err := database.New(context.Background())
	if err != nil {
		log.Fatalf("database: %v", err)
	}

	eventRepo := repository.NewEventRepository(client, cfg.TableName)
	eventSvc := service.NewEventService(eventRepo)
	eventHandler := handler.NewEventHandler(eventSvc)

	adapter = chiadapter.New(handler.NewRouter(eventHandler))
}

func handleRequest(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	return adapter.ProxyWithContext(ctx, req)
}

func main() {
	lambda.Start(handleRequest)
}
