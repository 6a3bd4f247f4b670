package domain

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "nilgate/pkg/domain-errors"
)

// TestParseUUID_Invariants validates the parsing invariant: ids must be valid,
// non-empty, non-nil UUIDs. These are trust-boundary functions; handlers feed
// them raw path and body strings.
func TestParseUUID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseDealID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseDealID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("rejects nil uuid", func(t *testing.T) {
		_, err := ParseDealID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("accepts valid uuid", func(t *testing.T) {
		want := uuid.New()
		id, err := ParseDealID(want.String())
		require.NoError(t, err)
		assert.Equal(t, want.String(), id.String())
	})

	t.Run("error message names the id kind", func(t *testing.T) {
		_, err := ParseAthleteID("nope")
		require.Error(t, err)
		assert.True(t, strings.Contains(err.Error(), "athlete"))

		_, err = ParsePayoutID("nope")
		require.Error(t, err)
		assert.True(t, strings.Contains(err.Error(), "payout"))

		_, err = ParseIssuerID("nope")
		require.Error(t, err)
		assert.True(t, strings.Contains(err.Error(), "issuer"))
	})
}

func TestIDs_NewAndNil(t *testing.T) {
	t.Run("fresh ids are never nil", func(t *testing.T) {
		assert.False(t, NewDealID().IsNil())
		assert.False(t, NewAthleteID().IsNil())
		assert.False(t, NewPayoutID().IsNil())
		assert.False(t, NewIssuerID().IsNil())
	})

	t.Run("zero value is nil", func(t *testing.T) {
		var id DealID
		assert.True(t, id.IsNil())
	})
}

func TestIDs_JSONRoundTrip(t *testing.T) {
	id := NewDealID()

	encoded, err := json.Marshal(id)
	require.NoError(t, err)
	assert.Equal(t, `"`+id.String()+`"`, string(encoded), "ids marshal as canonical uuid strings")

	var decoded DealID
	require.NoError(t, json.Unmarshal(encoded, &decoded))
	assert.Equal(t, id, decoded)

	var garbage DealID
	assert.Error(t, json.Unmarshal([]byte(`"not-a-uuid"`), &garbage))
}
