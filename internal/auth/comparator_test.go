package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewComparator(t *testing.T) {
	t.Run("rejects empty secret", func(t *testing.T) {
		_, err := NewComparator("")
		assert.Error(t, err)
	})

	t.Run("accepts non-empty secret", func(t *testing.T) {
		c, err := NewComparator("secret-key")
		require.NoError(t, err)
		assert.NotNil(t, c)
	})
}

func TestComparatorAuthorize(t *testing.T) {
	c, err := NewComparator("secret-key")
	require.NoError(t, err)

	cases := []struct {
		name     string
		supplied string
		want     bool
	}{
		{"exact match", "secret-key", true},
		{"empty", "", false},
		{"wrong same length", "secret-kez", false},
		{"shorter", "secret", false},
		{"longer", "secret-key-extended", false},
		{"prefix with one extra byte", "secret-keyX", false},
		{"case differs", "Secret-Key", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, c.Authorize(tc.supplied))
		})
	}
}

// The two rejection paths should cost about the same; compare these two
// benchmarks to check the length short-circuit stays indistinguishable.
func BenchmarkAuthorizeContentMismatch(b *testing.B) {
	c, _ := NewComparator("secret-key")
	for i := 0; i < b.N; i++ {
		c.Authorize("secret-kez")
	}
}

func BenchmarkAuthorizeLengthMismatch(b *testing.B) {
	c, _ := NewComparator("secret-key")
	for i := 0; i < b.N; i++ {
		c.Authorize("secret-key-but-longer")
	}
}
