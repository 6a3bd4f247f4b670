package domain

import (
	"testing"
)

// FuzzParseDealID verifies parsing never panics on arbitrary input and always
// returns either a valid id or an error, never both.
func FuzzParseDealID(f *testing.F) {
	f.Add("")
	f.Add("550e8400-e29b-41d4-a716-446655440000")
	f.Add("00000000-0000-0000-0000-000000000000")
	f.Add("not-a-uuid")
	f.Add("550e8400e29b41d4a716446655440000")

	f.Fuzz(func(t *testing.T, input string) {
		id, err := ParseDealID(input)
		if err == nil && id.IsNil() {
			t.Errorf("ParseDealID(%q) returned nil id without error", input)
		}
		if err != nil && !id.IsNil() {
			t.Errorf("ParseDealID(%q) returned both id and error", input)
		}
	})
}
