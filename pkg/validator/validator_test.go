package validator

import (
	"errors"
	"testing"

	"github.com/gamassss/utm-tracker/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsAbsoluteURL(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{"https://example.com", true},
		{"http://example.com/path?q=1#frag", true},
		{"ftp://files.example.com/a.txt", true},
		{"mailto:someone@example.com", true},
		{"not-a-valid-url", false},
		{"/relative/path", false},
		{"http://", false},
		{"", false},
		{"://missing-scheme.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, IsAbsoluteURL(tt.raw))
		})
	}
}

func TestValidate_ShortenRequest(t *testing.T) {
	err := Validate(&domain.ShortenRequest{})
	require.Error(t, err)

	var vErr *domain.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "originalUrl", vErr.Field)
	assert.Equal(t, "originalUrl is required", vErr.Message)

	err = Validate(&domain.ShortenRequest{OriginalURL: "not-a-valid-url"})
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "Invalid URL format", vErr.Message)

	assert.NoError(t, Validate(&domain.ShortenRequest{OriginalURL: "https://example.com"}))
}

func TestValidate_TrackRequest(t *testing.T) {
	err := Validate(&domain.TrackRequest{ShortID: "abcd1234"})

	var vErr *domain.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "visitorId", vErr.Field)

	assert.NoError(t, Validate(&domain.TrackRequest{ShortID: "abcd1234", VisitorID: "fp"}))
}
