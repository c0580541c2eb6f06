// Package model defines the core domain types for the event management API.
package model

// Event status values. The store never holds anything outside this set.
const (
	StatusActive    = "active"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
)

// ValidStatus reports whether s is one of the allowed status values.
func ValidStatus(s string) bool {
	return s == StatusActive || s == StatusCancelled || s == StatusCompleted
}

// Event is the public wire representation of a stored event.
// Attribute renaming for the store (date/capacity/status) happens at
// the repository boundary; these are always the public names.
type Event struct {
	EventID     string `json:"eventId"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Location    string `json:"location"`
	Capacity    int    `json:"capacity"`
	Organizer   string `json:"organizer"`
	Status      string `json:"status"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt,omitempty"`
}

// CreateEventRequest is the payload for creating a new event.
// Capacity is a pointer so a missing field can be told apart from an
// explicit zero.
type CreateEventRequest struct {
	EventID     string `json:"eventId"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Location    string `json:"location"`
	Capacity    *int   `json:"capacity"`
	Organizer   string `json:"organizer"`
	Status      string `json:"status"`
}

// UpdateEventRequest is a partial patch; only non-nil fields are
// applied. eventId and createdAt are not part of the patch vocabulary
// and are rejected by the strict decoder.
type UpdateEventRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Date        *string `json:"date,omitempty"`
	Location    *string `json:"location,omitempty"`
	Capacity    *int    `json:"capacity,omitempty"`
	Organizer   *string `json:"organizer,omitempty"`
	Status      *string `json:"status,omitempty"`
}

// IsEmpty reports whether the patch names no fields at all.
func (r UpdateEventRequest) IsEmpty() bool {
	return r.Title == nil && r.Description == nil && r.Date == nil &&
		r.Location == nil && r.Capacity == nil && r.Organizer == nil &&
		r.Status == nil
}

// ErrorResponse is the standard JSON error envelope.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// CreateEventResponse acknowledges a successful create.
type CreateEventResponse struct {
	EventID string `json:"eventId"`
	Message string `json:"message"`
}

// MessageResponse is a bare confirmation message.
type MessageResponse struct {
	Message string `json:"message"`
}

// ListEventsResponse wraps the event collection.
type ListEventsResponse struct {
	Events []Event `json:"events"`
}
