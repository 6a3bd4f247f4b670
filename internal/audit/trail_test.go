package audit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nilgate/internal/events"
	"nilgate/pkg/domain"
)

func TestTrail_RecordsLifecycleEvents(t *testing.T) {
	store := NewInMemoryStore()
	trail := NewTrail(store, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		_ = trail.Run(ctx)
		close(done)
	}()

	dealID := domain.NewDealID()
	otherID := domain.NewDealID()
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for _, e := range []events.Event{
		{Type: events.TypeDealCreated, Timestamp: ts, DealID: dealID, ChainDealID: "nil-1", Status: domain.StatusCreated},
		{Type: events.TypeDealApproved, Timestamp: ts.Add(time.Minute), DealID: dealID, ChainDealID: "nil-1", Status: domain.StatusApproved},
		{Type: events.TypeDealCreated, Timestamp: ts, DealID: otherID, ChainDealID: "nil-2", Status: domain.StatusCreated},
	} {
		require.NoError(t, trail.Emit(ctx, e))
	}

	// Emit is asynchronous; wait for the worker to drain.
	require.Eventually(t, func() bool {
		entries, err := trail.ListByDeal(ctx, dealID)
		return err == nil && len(entries) == 2
	}, 2*time.Second, 10*time.Millisecond)

	entries, err := trail.ListByDeal(ctx, dealID)
	require.NoError(t, err)
	assert.Equal(t, "deal_created", entries[0].Action)
	assert.Equal(t, "deal_approved", entries[1].Action)
	assert.Equal(t, domain.StatusApproved, entries[1].Status)

	cancel()
	<-done
}

func TestTrail_FullInboxDropsInsteadOfBlocking(t *testing.T) {
	trail := NewTrail(NewInMemoryStore(), nil)
	// No Run loop: the inbox fills up and Emit must still return promptly.
	for i := 0; i < defaultInboxSize+10; i++ {
		err := trail.Emit(context.Background(), events.Event{
			Type:   events.TypeDealCreated,
			DealID: domain.NewDealID(),
		})
		assert.NoError(t, err)
	}
}
