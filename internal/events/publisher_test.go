package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nilgate/pkg/domain"
)

type failingSink struct{ err error }

func (f *failingSink) Emit(context.Context, Event) error { return f.err }
func (f *failingSink) Close() error                      { return f.err }

func TestFanout_ReachesAllSinksDespiteFailure(t *testing.T) {
	boom := errors.New("sink down")
	first := NewMemorySink()
	second := NewMemorySink()
	fanout := NewFanout(first, &failingSink{err: boom}, second)

	err := fanout.Emit(context.Background(), Event{
		Type:   TypeDealCreated,
		DealID: domain.NewDealID(),
		Status: domain.StatusCreated,
	})

	require.ErrorIs(t, err, boom)
	assert.Len(t, first.Events(), 1, "sinks before the failure still receive the event")
	assert.Len(t, second.Events(), 1, "sinks after the failure still receive the event")
}

func TestMemorySink_OfType(t *testing.T) {
	sink := NewMemorySink()
	dealID := domain.NewDealID()

	for _, typ := range []Type{TypeDealCreated, TypeDealApproved, TypeDealApproved} {
		require.NoError(t, sink.Emit(context.Background(), Event{Type: typ, DealID: dealID}))
	}

	assert.Len(t, sink.OfType(TypeDealApproved), 2)
	assert.Len(t, sink.OfType(TypeDealPaid), 0)
	for _, e := range sink.Events() {
		assert.False(t, e.Timestamp.IsZero(), "sink stamps events that arrive without a timestamp")
	}
}

func TestEvent_WirePayload(t *testing.T) {
	dealID := domain.NewDealID()
	e := Event{
		Type:        TypeDealDisputed,
		Timestamp:   time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		DealID:      dealID,
		ChainDealID: "nil-1",
		Status:      domain.StatusDisputed,
		Reason:      "terms contested",
	}

	payload, err := json.Marshal(e)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(payload, &decoded))
	assert.Equal(t, "deal_disputed", decoded["type"])
	assert.Equal(t, dealID.String(), decoded["deal_id"])
	assert.Equal(t, "DISPUTED", decoded["status"])
	assert.Equal(t, "terms contested", decoded["reason"])
	assert.NotContains(t, decoded, "request_id", "empty optional fields stay off the wire")
}
