package database

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationNamesSorted(t *testing.T) {
	names, err := migrationNames(Migrations())
	require.NoError(t, err)
	require.NotEmpty(t, names)
	assert.Equal(t, []string{"001_schema.sql", "002_delivery_skipped.sql"}, names)
}

func TestSchemaDefinesInviteTable(t *testing.T) {
	raw, err := fs.ReadFile(Migrations(), "001_schema.sql")
	require.NoError(t, err)
	sql := string(raw)

	for _, want := range []string{"CREATE TABLE IF NOT EXISTS events", "CREATE TABLE IF NOT EXISTS event_invites", "invite_token TEXT NOT NULL UNIQUE", "event_invites_contact"} {
		assert.True(t, strings.Contains(sql, want), "schema missing %q", want)
	}
}
