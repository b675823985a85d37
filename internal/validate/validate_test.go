package validate

import (
	"net/http"
	"testing"

	"github.com/newsdesk/newsdesk/internal/apperr"
	"github.com/stretchr/testify/require"
)

func TestValidator_CollectsFirstFailurePerField(t *testing.T) {
	v := New()
	v.Required("title", "  ").MaxLen("title", "  ", 1)
	v.Email("email", "not-an-email")
	v.URL("link", "ftp//broken")
	v.URL("optional", "")
	v.OneOf("status", "gone", "draft", "published")

	err := v.Err("invalid input")
	require.Error(t, err)
	ae := apperr.From(err)
	require.Equal(t, http.StatusBadRequest, ae.Status)
	fields := ae.Payload.(map[string]string)
	require.Equal(t, "required", fields["title"])
	require.Contains(t, fields, "email")
	require.Contains(t, fields, "link")
	require.NotContains(t, fields, "optional")
	require.Equal(t, "must be one of: draft, published", fields["status"])
}

func TestValidator_ValidInput(t *testing.T) {
	v := New().
		Required("name", "Rahim").
		MinLen("password", "secret-pass", 8).
		Email("email", "rahim@example.com").
		URL("avatar", "https://cdn.example.com/a.png").
		Check(true, "x", "never")
	require.True(t, v.Valid())
	require.NoError(t, v.Err("invalid"))
}
