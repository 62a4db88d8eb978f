package worker

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "lineage/pkg/domain"
	audit "lineage/pkg/platform/audit"
	"lineage/pkg/platform/audit/store/memory"
)

func TestWorkerPersistsUntilInboxCloses(t *testing.T) {
	store := memory.NewInMemoryStore()
	inbox := make(chan audit.Event, 4)
	w := NewWorker(store, inbox, nil)

	ownerID := id.UserID(uuid.New())
	inbox <- audit.Event{OwnerID: ownerID, Action: string(audit.EventPersonCreated), Timestamp: time.Now()}
	inbox <- audit.Event{OwnerID: ownerID, Action: string(audit.EventPersonDeleted), Timestamp: time.Now()}
	close(inbox)

	require.NoError(t, w.Run(context.Background()))

	events, err := store.ListByOwner(context.Background(), ownerID)
	require.NoError(t, err)
	assert.Len(t, events, 2)
}

func TestWorkerStopsOnContextCancel(t *testing.T) {
	store := memory.NewInMemoryStore()
	inbox := make(chan audit.Event)
	w := NewWorker(store, inbox, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop on cancel")
	}
}
