package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/newsdesk/newsdesk/internal/app"
	"github.com/newsdesk/newsdesk/internal/config"
	"github.com/newsdesk/newsdesk/internal/models"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withApp(t *testing.T, cmd *cobra.Command) (*app.App, *bytes.Buffer) {
	t.Helper()
	a, err := app.New(context.Background(), &config.Config{}, false)
	require.NoError(t, err)
	t.Cleanup(func() { a.Close(context.Background()) })
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetContext(context.WithValue(context.Background(), appKey{}, a))
	return a, &out
}

func TestSeedThenApprove(t *testing.T) {
	a, out := withApp(t, seedCmd)
	require.NoError(t, runSeed(seedCmd, []string{"../../internal/seed/testdata/newsroom.yaml"}))
	assert.Contains(t, out.String(), "created map[")

	approveCmd.SetContext(seedCmd.Context())
	approveCmd.SetOut(out)
	approveAs = "rina@newsdesk.test"
	err := approveCmd.RunE(approveCmd, []string{"new@newsdesk.test"})
	require.EqualError(t, err, "rina@newsdesk.test is not an admin")

	approveAs = "admin@newsdesk.test"
	require.NoError(t, approveCmd.RunE(approveCmd, []string{"new@newsdesk.test"}))
	assert.Contains(t, out.String(), "approved new@newsdesk.test")

	got, err := a.Authors.GetByEmail(context.Background(), "new@newsdesk.test")
	require.NoError(t, err)
	assert.Equal(t, models.AuthorApproved, got.Status)
}

func TestCreateAdmin(t *testing.T) {
	a, out := withApp(t, createAdminCmd)
	adminFlags.name, adminFlags.email, adminFlags.password = "Chief", "Chief@Newsdesk.test", "password-123"
	require.NoError(t, createAdminCmd.RunE(createAdminCmd, nil))
	assert.Contains(t, out.String(), "admin chief@newsdesk.test")

	got, err := a.Authors.GetByEmail(context.Background(), "chief@newsdesk.test")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, got.Role)
}
