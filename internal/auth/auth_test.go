package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenValidator(t *testing.T) {
	v := NewTokenValidator("s3cret", "alice")

	identity, err := v.Validate(context.Background(), "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "alice", identity.Name)

	for _, token := range []string{"", "s3cre", "s3cret!", "S3CRET"} {
		_, err := v.Validate(context.Background(), token)
		assert.ErrorIs(t, err, ErrInvalidToken, "token %q", token)
	}
}

func TestNoopValidator(t *testing.T) {
	identity, err := NewNoopValidator().Validate(context.Background(), "anything")
	assert.NoError(t, err)
	assert.Nil(t, identity)
}

func TestNew(t *testing.T) {
	assert.IsType(t, &NoopValidator{}, New(""))
	assert.IsType(t, &TokenValidator{}, New("abc"))
}

func TestTokenFromRequest(t *testing.T) {
	tests := []struct {
		name   string
		header string
		target string
		want   string
	}{
		{"bearer header", "Bearer abc", "/ws", "abc"},
		{"query parameter", "", "/ws?token=xyz", "xyz"},
		{"header wins over query", "Bearer abc", "/ws?token=xyz", "abc"},
		{"non-bearer header ignored", "Basic dXNlcg==", "/ws", ""},
		{"nothing", "", "/ws", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			assert.Equal(t, tt.want, TokenFromRequest(r))
		})
	}
}

func TestSetToken(t *testing.T) {
	h := http.Header{}
	SetToken(h, "")
	assert.Empty(t, h.Get("Authorization"))

	SetToken(h, "abc")
	assert.Equal(t, "Bearer abc", h.Get("Authorization"))
}
