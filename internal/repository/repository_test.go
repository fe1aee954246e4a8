package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/fjod/go_prasad/domain"
	r "github.com/fjod/go_prasad/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *r.Repository {
	repo, err := r.NewRepository(":memory:")
	require.NoError(t, err)
	require.NoError(t, repo.RunMigrations())
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestRunMigrations_Twice(t *testing.T) {
	repo := setupTestDB(t)
	assert.NoError(t, repo.RunMigrations())
}

func TestKV_PutGetDelete(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	_, ok, err := repo.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.Put(ctx, "auth_token", "a"))
	require.NoError(t, repo.Put(ctx, "auth_token", "b"))

	v, ok, err := repo.Get(ctx, "auth_token")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "b", v)

	require.NoError(t, repo.Delete(ctx, "auth_token"))
	_, ok, err = repo.Get(ctx, "auth_token")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPending_RoundTrip(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, repo.SavePending(ctx, "u1", []byte(`{"attempt_id":"x"}`)))

	blob, ok, err := repo.LoadPending(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"attempt_id":"x"}`, string(blob))

	_, ok, err = repo.LoadPending(ctx, "u2")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.DeletePending(ctx, "u1"))
	_, ok, err = repo.LoadPending(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOutbox_PublishFetchMark(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	for _, status := range []domain.CheckoutStatus{domain.CheckoutStatusCompleted, domain.CheckoutStatusFailed} {
		require.NoError(t, repo.Publish(ctx, domain.CheckoutEvent{
			ID:         "ev-" + status.String(),
			AttemptID:  "attempt-" + status.String(),
			Status:     status,
			Amount:     24000,
			Currency:   "INR",
			OccurredAt: time.Now(),
		}))
	}

	events, err := repo.GetUnprocessedEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "CheckoutCompleted", events[0].EventType)
	assert.Equal(t, "attempt-COMPLETED", events[0].AggregateId)
	assert.Equal(t, "CheckoutFailed", events[1].EventType)
	assert.Contains(t, string(events[0].Payload), `"amount":24000`)

	require.NoError(t, repo.MarkEventAsProcessed(ctx, events[0].ID))

	events, err = repo.GetUnprocessedEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "CheckoutFailed", events[0].EventType)
}

func TestOutbox_Limit(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Publish(ctx, domain.CheckoutEvent{AttemptID: "a", Status: domain.CheckoutStatusFailed}))
	}

	events, err := repo.GetUnprocessedEvents(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, events, 3)
}

func TestOutbox_DeleteProcessedEvents(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	for _, id := range []string{"att-1", "att-2"} {
		require.NoError(t, repo.Publish(ctx, domain.CheckoutEvent{AttemptID: id, Status: domain.CheckoutStatusFailed}))
	}
	events, err := repo.GetUnprocessedEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.NoError(t, repo.MarkEventAsProcessed(ctx, events[0].ID))

	n, err := repo.DeleteProcessedEvents(ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	remaining, err := repo.GetUnprocessedEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "att-2", remaining[0].AggregateId)
}
