package validate_test

import (
	"strconv"
	"strings"
	"testing"

	"github.com/serroba/shortener-demo-go/internal/validate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidURL(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"https://example.com", true},
		{"http://a.b", true},
		{"https://example.com/path?q=1", true},
		{"https://sub.example.co.uk", true},
		{"http://localhost", false},
		{"https://example", false},
		{"ftp://example.com", false},
		{"//example.com", false},
		{"example.com", false},
		{"not-a-url", false},
		{"", false},
		{"https://", false},
		{" https://example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, validate.IsValidURL(tt.input))
		})
	}
}

func TestIsValidURL_RequiresHTTPScheme(t *testing.T) {
	for _, s := range []string{"mailto:a@b.com", "file:///etc/hosts", "HTTPS://EXAMPLE.COM", "javascript:x.y"} {
		assert.False(t, validate.IsValidURL(s), s)
	}
}

func TestIsValidShortcode(t *testing.T) {
	t.Run("accepts alphanumerics of length 1 to 10", func(t *testing.T) {
		for n := 1; n <= 10; n++ {
			code := strings.Repeat("a1B", 4)[:n]
			assert.True(t, validate.IsValidShortcode(code), code)
		}
	})

	t.Run("rejects empty and overlong codes", func(t *testing.T) {
		assert.False(t, validate.IsValidShortcode(""))
		assert.False(t, validate.IsValidShortcode("abcdefghijk"))
	})

	t.Run("rejects non alphanumeric characters", func(t *testing.T) {
		for _, code := range []string{"ab_cd", "ab-cd", "ab cd", "ab.cd", "é", "abc!"} {
			assert.False(t, validate.IsValidShortcode(code), code)
		}
	})
}

func TestIsValidValidity(t *testing.T) {
	t.Run("empty means default", func(t *testing.T) {
		assert.True(t, validate.IsValidValidity(""))
		assert.True(t, validate.IsValidValidity("   "))
	})

	t.Run("accepts the inclusive range", func(t *testing.T) {
		for _, n := range []int{1, 2, 30, 720, 1439, 1440} {
			assert.True(t, validate.IsValidValidity(strconv.Itoa(n)), n)
		}
	})

	t.Run("rejects out of range and non numeric", func(t *testing.T) {
		for _, s := range []string{"0", "-5", "1441", "99999", "abc", "12abc", "1.5", " 10"} {
			assert.False(t, validate.IsValidValidity(s), s)
		}
	})
}

func TestResolveValidity(t *testing.T) {
	t.Run("defaults to thirty minutes", func(t *testing.T) {
		n, err := validate.ResolveValidity("")

		require.NoError(t, err)
		assert.Equal(t, validate.DefaultValidity, n)
	})

	t.Run("parses explicit value", func(t *testing.T) {
		n, err := validate.ResolveValidity("120")

		require.NoError(t, err)
		assert.Equal(t, 120, n)
	})

	t.Run("returns error when out of range", func(t *testing.T) {
		_, err := validate.ResolveValidity("2000")

		assert.ErrorIs(t, err, validate.ErrInvalidValidity)
	})
}
