package hexid_test

import (
	"testing"

	"github.com/niksmo/sweet-shop/pkg/hexid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("WellFormed", func(t *testing.T) {
		id := hexid.New()
		require.Len(t, id, hexid.Len)
		assert.True(t, hexid.Valid(id))
	})

	t.Run("Distinct", func(t *testing.T) {
		seen := make(map[string]struct{})
		for range 100 {
			id := hexid.New()
			_, dup := seen[id]
			require.False(t, dup)
			seen[id] = struct{}{}
		}
	})
}

func TestValid(t *testing.T) {
	tests := []struct {
		name string
		id   string
		want bool
	}{
		{"Lowercase", "64f1b2c3d4e5f60718293a4b", true},
		{"Uppercase", "64F1B2C3D4E5F60718293A4B", true},
		{"TooShort", "64f1b2c3d4e5f60718293a4", false},
		{"TooLong", "64f1b2c3d4e5f60718293a4bf", false},
		{"NonHex", "64f1b2c3d4e5f60718293a4z", false},
		{"Empty", "", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, hexid.Valid(tc.id))
		})
	}
}
