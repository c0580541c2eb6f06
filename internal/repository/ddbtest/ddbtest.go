// Package ddbtest provides an in-memory stand-in for the DynamoDB
// operations the repository issues. It understands only the
// expressions this service emits (attribute_exists /
// attribute_not_exists conditions, SET updates, equality filters),
// which is enough to exercise every code path without AWS.
package ddbtest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Server is an in-memory single-table store keyed by eventId.
// When Err is set, every call fails with it; tests use that to drive
// the 500 paths.
type Server struct {
	mu    sync.Mutex
	items map[string]map[string]types.AttributeValue

	Err error
}

// New returns an empty Server.
func New() *Server {
	return &Server{items: map[string]map[string]types.AttributeValue{}}
}

// Item returns a copy of the raw stored attributes for id, or nil.
// Tests use it to assert on internal attribute names.
func (s *Server) Item(id string) map[string]types.AttributeValue {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyItem(s.items[id])
}

// Len returns the number of stored items.
func (s *Server) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *Server) GetItem(ctx context.Context, in *dynamodb.GetItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	id, err := keyOf(in.Key)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return &dynamodb.GetItemOutput{Item: copyItem(s.items[id])}, nil
}

func (s *Server) PutItem(ctx context.Context, in *dynamodb.PutItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	id, err := keyOf(in.Item)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if conditionRequiresAbsent(in.ConditionExpression) {
		if _, ok := s.items[id]; ok {
			return nil, conditionalCheckFailed()
		}
	}
	s.items[id] = copyItem(in.Item)
	return &dynamodb.PutItemOutput{}, nil
}

func (s *Server) UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	id, err := keyOf(in.Key)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[id]
	if !ok {
		if conditionRequiresPresent(in.ConditionExpression) {
			return nil, conditionalCheckFailed()
		}
		item = map[string]types.AttributeValue{}
		for k, v := range in.Key {
			item[k] = v
		}
		s.items[id] = item
	}

	expr := aws.ToString(in.UpdateExpression)
	if !strings.HasPrefix(expr, "SET ") {
		return nil, fmt.Errorf("ddbtest: unsupported update expression %q", expr)
	}
	for _, part := range strings.Split(strings.TrimPrefix(expr, "SET "), ", ") {
		nameRef, valueRef, found := strings.Cut(part, " = ")
		if !found {
			return nil, fmt.Errorf("ddbtest: unsupported assignment %q", part)
		}
		attr := nameRef
		if strings.HasPrefix(nameRef, "#") {
			resolved, ok := in.ExpressionAttributeNames[nameRef]
			if !ok {
				return nil, fmt.Errorf("ddbtest: unresolved name %q", nameRef)
			}
			attr = resolved
		}
		value, ok := in.ExpressionAttributeValues[valueRef]
		if !ok {
			return nil, fmt.Errorf("ddbtest: unresolved value %q", valueRef)
		}
		item[attr] = value
	}

	return &dynamodb.UpdateItemOutput{Attributes: copyItem(item)}, nil
}

func (s *Server) DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	id, err := keyOf(in.Key)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok && conditionRequiresPresent(in.ConditionExpression) {
		return nil, conditionalCheckFailed()
	}
	delete(s.items, id)
	return &dynamodb.DeleteItemOutput{}, nil
}

func (s *Server) Scan(ctx context.Context, in *dynamodb.ScanInput, opts ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	if s.Err != nil {
		return nil, s.Err
	}

	var wantStatus string
	if filter := aws.ToString(in.FilterExpression); filter != "" {
		if filter != "eventStatus = :status" {
			return nil, fmt.Errorf("ddbtest: unsupported filter expression %q", filter)
		}
		v, ok := in.ExpressionAttributeValues[":status"].(*types.AttributeValueMemberS)
		if !ok {
			return nil, fmt.Errorf("ddbtest: missing :status value")
		}
		wantStatus = v.Value
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	out := &dynamodb.ScanOutput{}
	for _, item := range s.items {
		if wantStatus != "" {
			v, ok := item["eventStatus"].(*types.AttributeValueMemberS)
			if !ok || v.Value != wantStatus {
				continue
			}
		}
		out.Items = append(out.Items, copyItem(item))
	}
	out.Count = int32(len(out.Items))
	return out, nil
}

func keyOf(attrs map[string]types.AttributeValue) (string, error) {
	v, ok := attrs["eventId"].(*types.AttributeValueMemberS)
	if !ok {
		return "", fmt.Errorf("ddbtest: missing eventId key")
	}
	return v.Value, nil
}

func conditionRequiresAbsent(expr *string) bool {
	return strings.Contains(aws.ToString(expr), "attribute_not_exists")
}

func conditionRequiresPresent(expr *string) bool {
	s := aws.ToString(expr)
	return strings.Contains(s, "attribute_exists") && !strings.Contains(s, "attribute_not_exists")
}

func conditionalCheckFailed() error {
	return &types.ConditionalCheckFailedException{
		Message: aws.String("The conditional request failed"),
	}
}

func copyItem(item map[string]types.AttributeValue) map[string]types.AttributeValue {
	if item == nil {
		return nil
	}
	out := make(map[string]types.AttributeValue, len(item))
	for k, v := range item {
		out[k] = v
	}
	return out
}
