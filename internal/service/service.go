// Package service implements validation and orchestration between the
// HTTP handlers and the repository layer.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"eventapi/internal/model"
	"eventapi/internal/repository"
)

// ValidationError reports a rejected payload. Fields names the
// offending public field(s); an empty Fields means the patch named
// nothing to update.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "no fields to update"
	}
	return "invalid field(s): " + strings.Join(e.Fields, ", ")
}

// EventService orchestrates event operations.
type EventService struct {
	events *repository.EventRepository
}

// NewEventService constructs an EventService with its dependencies.
func NewEventService(events *repository.EventRepository) *EventService {
	return &EventService{events: events}
}

// CreateEvent validates the payload, stamps createdAt, and writes the
// record. A duplicate id surfaces as repository.ErrAlreadyExists.
func (s *EventService) CreateEvent(ctx context.Context, req model.CreateEventRequest) (*model.Event, error) {
	var bad []string
	if strings.TrimSpace(req.EventID) == "" {
		bad = append(bad, "eventId")
	}
	if strings.TrimSpace(req.Title) == "" {
		bad = append(bad, "title")
	}
	if strings.TrimSpace(req.Description) == "" {
		bad = append(bad, "description")
	}
	if !validDate(req.Date) {
		bad = append(bad, "date")
	}
	if strings.TrimSpace(req.Location) == "" {
		bad = append(bad, "location")
	}
	if req.Capacity == nil || *req.Capacity < 0 {
		bad = append(bad, "capacity")
	}
	if strings.TrimSpace(req.Organizer) == "" {
		bad = append(bad, "organizer")
	}
	if !model.ValidStatus(req.Status) {
		bad = append(bad, "status")
	}
	if len(bad) > 0 {
		return nil, &ValidationError{Fields: bad}
	}

	event := model.Event{
		EventID:     req.EventID,
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
		Location:    req.Location,
		Capacity:    *req.Capacity,
		Organizer:   req.Organizer,
		Status:      req.Status,
		CreatedAt:   time.Now().UTC().Format(time.RFC3339),
	}

	if err := s.events.Create(ctx, event); err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("create event: %w", err)
	}
	return &event, nil
}

// ListEvents returns all events, optionally filtered by status. An
// unknown status value is passed through and simply matches nothing.
func (s *EventService) ListEvents(ctx context.Context, status string) ([]model.Event, error) {
	return s.events.List(ctx, status)
}

// GetEvent returns a single event by id.
func (s *EventService) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

// UpdateEvent validates the patch and applies it, returning the full
// post-patch record. An empty patch is rejected.
func (s *EventService) UpdateEvent(ctx context.Context, id string, patch model.UpdateEventRequest) (*model.Event, error) {
	if patch.IsEmpty() {
		return nil, &ValidationError{}
	}

	var bad []string
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		bad = append(bad, "title")
	}
	if patch.Description != nil && strings.TrimSpace(*patch.Description) == "" {
		bad = append(bad, "description")
	}
	if patch.Date != nil && !validDate(*patch.Date) {
		bad = append(bad, "date")
	}
	if patch.Location != nil && strings.TrimSpace(*patch.Location) == "" {
		bad = append(bad, "location")
	}
	if patch.Capacity != nil && *patch.Capacity < 0 {
		bad = append(bad, "capacity")
	}
	if patch.Organizer != nil && strings.TrimSpace(*patch.Organizer) == "" {
		bad = append(bad, "organizer")
	}
	if patch.Status != nil && !model.ValidStatus(*patch.Status) {
		bad = append(bad, "status")
	}
	if len(bad) > 0 {
		return nil, &ValidationError{Fields: bad}
	}

	event, err := s.events.Update(ctx, id, patch)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update event: %w", err)
	}
	return event, nil
}

// DeleteEvent removes an event by id.
func (s *EventService) DeleteEvent(ctx context.Context, id string) error {
	if err := s.events.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return err
		}
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

// validDate reports whether v is a calendar date in YYYY-MM-DD form.
func validDate(v string) bool {
	_, err := time.Parse("2006-01-02", v)
	return err == nil
}
