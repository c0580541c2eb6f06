package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventapi/internal/model"
	"eventapi/internal/repository"
	"eventapi/internal/repository/ddbtest"
)

func newRepo() (*repository.EventRepository, *ddbtest.Server) {
	db := ddbtest.New()
	return repository.NewEventRepository(db, "EventsTable"), db
}

func sampleEvent(id string) model.Event {
	return model.Event{
		EventID:     id,
		Title:       "Tech Conference",
		Description: "Annual tech meetup",
		Date:        "2024-12-15",
		Location:    "Berlin",
		Capacity:    100,
		Organizer:   "ACME",
		Status:      model.StatusActive,
		CreatedAt:   "2024-11-01T10:00:00Z",
	}
}

func strOf(t *testing.T, item map[string]types.AttributeValue, attr string) string {
	t.Helper()
	v, ok := item[attr].(*types.AttributeValueMemberS)
	require.True(t, ok, "attribute %q missing or not a string", attr)
	return v.Value
}

func TestCreateStoresInternalAttributeNames(t *testing.T) {
	repo, db := newRepo()
	id := uuid.New().String()

	require.NoError(t, repo.Create(context.Background(), sampleEvent(id)))

	item := db.Item(id)
	require.NotNil(t, item)

	// Renamed attributes are stored under their internal names only.
	assert.Equal(t, "2024-12-15", strOf(t, item, "eventDate"))
	assert.Equal(t, "active", strOf(t, item, "eventStatus"))
	capAttr, ok := item["eventCapacity"].(*types.AttributeValueMemberN)
	require.True(t, ok)
	assert.Equal(t, "100", capAttr.Value)

	for _, public := range []string{"date", "capacity", "status"} {
		_, leaked := item[public]
		assert.False(t, leaked, "public name %q leaked into the store", public)
	}
}

func TestCreateDuplicateFails(t *testing.T) {
	repo, _ := newRepo()
	id := uuid.New().String()

	require.NoError(t, repo.Create(context.Background(), sampleEvent(id)))

	second := sampleEvent(id)
	second.Title = "Different title"
	err := repo.Create(context.Background(), second)
	require.ErrorIs(t, err, repository.ErrAlreadyExists)

	// The stored record is unchanged by the failed create.
	got, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Tech Conference", got.Title)
}

func TestGetByIDRoundTrip(t *testing.T) {
	repo, _ := newRepo()
	id := uuid.New().String()
	want := sampleEvent(id)

	require.NoError(t, repo.Create(context.Background(), want))

	got, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, want, *got)
}

func TestGetByIDNotFound(t *testing.T) {
	repo, _ := newRepo()

	_, err := repo.GetByID(context.Background(), "missing")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUpdatePatchesOnlyNamedFields(t *testing.T) {
	repo, db := newRepo()
	id := uuid.New().String()
	require.NoError(t, repo.Create(context.Background(), sampleEvent(id)))

	capacity := 20
	got, err := repo.Update(context.Background(), id, model.UpdateEventRequest{Capacity: &capacity})
	require.NoError(t, err)

	assert.Equal(t, 20, got.Capacity)
	assert.Equal(t, "Tech Conference", got.Title)
	assert.Equal(t, "2024-12-15", got.Date)
	assert.Equal(t, "2024-11-01T10:00:00Z", got.CreatedAt)
	assert.NotEmpty(t, got.UpdatedAt)

	// The patch landed under the internal attribute name.
	item := db.Item(id)
	capAttr, ok := item["eventCapacity"].(*types.AttributeValueMemberN)
	require.True(t, ok)
	assert.Equal(t, "20", capAttr.Value)
}

func TestUpdateMissingEvent(t *testing.T) {
	repo, _ := newRepo()

	title := "new"
	_, err := repo.Update(context.Background(), "missing", model.UpdateEventRequest{Title: &title})
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDeleteThenGet(t *testing.T) {
	repo, _ := newRepo()
	id := uuid.New().String()
	require.NoError(t, repo.Create(context.Background(), sampleEvent(id)))

	require.NoError(t, repo.Delete(context.Background(), id))

	_, err := repo.GetByID(context.Background(), id)
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDeleteMissingEvent(t *testing.T) {
	repo, _ := newRepo()

	err := repo.Delete(context.Background(), "missing")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestListFiltersByStatus(t *testing.T) {
	repo, _ := newRepo()

	for _, status := range []string{model.StatusActive, model.StatusActive, model.StatusCancelled} {
		e := sampleEvent(uuid.New().String())
		e.Status = status
		require.NoError(t, repo.Create(context.Background(), e))
	}

	active, err := repo.List(context.Background(), model.StatusActive)
	require.NoError(t, err)
	assert.Len(t, active, 2)
	for _, e := range active {
		assert.Equal(t, model.StatusActive, e.Status)
	}

	all, err := repo.List(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestListEmptyTable(t *testing.T) {
	repo, _ := newRepo()

	events, err := repo.List(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestStoreFailureIsNotASentinel(t *testing.T) {
	repo, db := newRepo()
	db.Err = errors.New("throughput exceeded")

	_, err := repo.GetByID(context.Background(), "e1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, repository.ErrNotFound)

	err = repo.Create(context.Background(), sampleEvent("e1"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, repository.ErrAlreadyExists)
}
