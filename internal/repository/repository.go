// Package repository implements all DynamoDB access for the event
// management API. It talks to the SDK directly (no ORM) and issues
// exactly one store call per operation, relying on conditional
// expressions instead of read-then-write sequences.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"eventapi/internal/model"
)

// ErrNotFound is returned when a requested event does not exist.
var ErrNotFound = errors.New("event not found")

// ErrAlreadyExists is returned when creating an event whose id is taken.
var ErrAlreadyExists = errors.New("event already exists")

// DynamoDB is the slice of the DynamoDB API the repository uses.
// Narrowing it keeps the repository testable with a substitute store.
type DynamoDB interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Scan(ctx context.Context, in *dynamodb.ScanInput, opts ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// internalName maps public field names to stored attribute names where
// they differ. date, capacity and status collide with DynamoDB
// expression keywords, so they are renamed in the table.
var internalName = map[string]string{
	"date":     "eventDate",
	"capacity": "eventCapacity",
	"status":   "eventStatus",
}

// attributeName translates a public field name to its stored attribute
// name; unmapped names pass through unchanged.
func attributeName(field string) string {
	if n, ok := internalName[field]; ok {
		return n
	}
	return field
}

// eventItem is the persisted shape of an event. The dynamodbav tags
// carry the public-to-internal attribute renaming; the reverse
// translation happens for free on unmarshal.
type eventItem struct {
	EventID     string `dynamodbav:"eventId"`
	Title       string `dynamodbav:"title"`
	Description string `dynamodbav:"description"`
	Date        string `dynamodbav:"eventDate"`
	Location    string `dynamodbav:"location"`
	Capacity    int    `dynamodbav:"eventCapacity"`
	Organizer   string `dynamodbav:"organizer"`
	Status      string `dynamodbav:"eventStatus"`
	CreatedAt   string `dynamodbav:"createdAt"`
	UpdatedAt   string `dynamodbav:"updatedAt,omitempty"`
}

func itemFromEvent(e model.Event) eventItem {
	return eventItem{
		EventID:     e.EventID,
		Title:       e.Title,
		Description: e.Description,
		Date:        e.Date,
		Location:    e.Location,
		Capacity:    e.Capacity,
		Organizer:   e.Organizer,
		Status:      e.Status,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func (it eventItem) toEvent() model.Event {
	return model.Event{
		EventID:     it.EventID,
		Title:       it.Title,
		Description: it.Description,
		Date:        it.Date,
		Location:    it.Location,
		Capacity:    it.Capacity,
		Organizer:   it.Organizer,
		Status:      it.Status,
		CreatedAt:   it.CreatedAt,
		UpdatedAt:   it.UpdatedAt,
	}
}

// EventRepository handles persistence for events against a single table
// keyed by eventId.
type EventRepository struct {
	db    DynamoDB
	table string
}

// NewEventRepository constructs an EventRepository.
func NewEventRepository(db DynamoDB, table string) *EventRepository {
	return &EventRepository{db: db, table: table}
}

func key(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"eventId": &types.AttributeValueMemberS{Value: id},
	}
}

// Create writes a new event. The put is conditional on the key not
// existing yet, so a duplicate id fails with ErrAlreadyExists without
// a prior read.
func (r *EventRepository) Create(ctx context.Context, event model.Event) error {
	item, err := attributevalue.MarshalMap(itemFromEvent(event))
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	_, err = r.db.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(eventId)"),
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("put event: %w", err)
	}
	return nil
}

// GetByID returns a single event or ErrNotFound.
func (r *EventRepository) GetByID(ctx context.Context, id string) (*model.Event, error) {
	out, err := r.db.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table),
		Key:       key(id),
	})
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	if out.Item == nil {
		return nil, ErrNotFound
	}

	var it eventItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return nil, fmt.Errorf("unmarshal event: %w", err)
	}
	event := it.toEvent()
	return &event, nil
}

// List returns all events, optionally filtered by status. It follows
// LastEvaluatedKey until the scan is exhausted.
func (r *EventRepository) List(ctx context.Context, status string) ([]model.Event, error) {
	in := &dynamodb.ScanInput{TableName: aws.String(r.table)}
	if status != "" {
		in.FilterExpression = aws.String("eventStatus = :status")
		in.ExpressionAttributeValues = map[string]types.AttributeValue{
			":status": &types.AttributeValueMemberS{Value: status},
		}
	}

	var events []model.Event
	for {
		out, err := r.db.Scan(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("scan events: %w", err)
		}
		for _, raw := range out.Items {
			var it eventItem
			if err := attributevalue.UnmarshalMap(raw, &it); err != nil {
				return nil, fmt.Errorf("unmarshal event: %w", err)
			}
			events = append(events, it.toEvent())
		}
		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		in.ExclusiveStartKey = out.LastEvaluatedKey
	}
	return events, nil
}

// Update applies a partial patch and returns the full post-patch
// record. The update is conditional on the key existing, and only the
// named attributes (plus updatedAt) are touched; eventId and createdAt
// are never part of the expression.
func (r *EventRepository) Update(ctx context.Context, id string, patch model.UpdateEventRequest) (*model.Event, error) {
	names := map[string]string{}
	values := map[string]types.AttributeValue{}
	var parts []string

	set := func(field string, v types.AttributeValue) {
		attr := attributeName(field)
		names["#"+attr] = attr
		values[":"+attr] = v
		parts = append(parts, "#"+attr+" = :"+attr)
	}

	if patch.Title != nil {
		set("title", &types.AttributeValueMemberS{Value: *patch.Title})
	}
	if patch.Description != nil {
		set("description", &types.AttributeValueMemberS{Value: *patch.Description})
	}
	if patch.Date != nil {
		set("date", &types.AttributeValueMemberS{Value: *patch.Date})
	}
	if patch.Location != nil {
		set("location", &types.AttributeValueMemberS{Value: *patch.Location})
	}
	if patch.Capacity != nil {
		set("capacity", &types.AttributeValueMemberN{Value: strconv.Itoa(*patch.Capacity)})
	}
	if patch.Organizer != nil {
		set("organizer", &types.AttributeValueMemberS{Value: *patch.Organizer})
	}
	if patch.Status != nil {
		set("status", &types.AttributeValueMemberS{Value: *patch.Status})
	}
	set("updatedAt", &types.AttributeValueMemberS{Value: now()})

	out, err := r.db.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.table),
		Key:                       key(id),
		UpdateExpression:          aws.String("SET " + strings.Join(parts, ", ")),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
		ConditionExpression:       aws.String("attribute_exists(eventId)"),
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update event: %w", err)
	}

	var it eventItem
	if err := attributevalue.UnmarshalMap(out.Attributes, &it); err != nil {
		return nil, fmt.Errorf("unmarshal event: %w", err)
	}
	event := it.toEvent()
	return &event, nil
}

// Delete removes an event. The delete is conditional on the key
// existing so a missing id surfaces as ErrNotFound.
func (r *EventRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(r.table),
		Key:                 key(id),
		ConditionExpression: aws.String("attribute_exists(eventId)"),
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return ErrNotFound
		}
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

// now returns the current UTC time in the stored timestamp format.
func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func isConditionalCheckFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}
