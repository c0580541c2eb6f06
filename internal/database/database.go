// Package database provides DynamoDB client construction using the AWS SDK.
package database

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// Config holds DynamoDB settings read from environment variables.
type Config struct {
	TableName string
	Endpoint  string // optional override, for DynamoDB Local
}

// configFromEnv reads store config from well-known environment variables,
// falling back to sensible defaults. Region and credentials come from the
// standard AWS environment/config chain.
func configFromEnv() Config {
	return Config{
		TableName: getEnv("EVENTS_TABLE_NAME", "EventsTable"),
		Endpoint:  os.Getenv("DYNAMODB_ENDPOINT"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// New creates a DynamoDB client from the default AWS config chain and
// returns it together with the resolved settings.
func New(ctx context.Context) (*dynamodb.Client, Config, error) {
	cfg := configFromEnv()

	awsCfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, Config{}, fmt.Errorf("load aws config: %w", err)
	}

	client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	return client, cfg, nil
}
