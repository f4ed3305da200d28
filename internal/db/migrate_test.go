package db

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrate_Idempotent(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, Migrate(db))
	require.NoError(t, Migrate(db))
}

func TestMigrate_CreatesAllTables(t *testing.T) {
	db := openTestDB(t)

	for _, table := range []string{"templates", "template_items", "template_groups", "prepared_sections"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
		assert.Equal(t, table, name)
	}
}

func TestMigrate_CreatesIndexes(t *testing.T) {
	db := openTestDB(t)

	for _, idx := range []string{"idx_template_items_parent", "idx_prepared_sections_group"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='index' AND name=?`, idx).Scan(&name)
		require.NoError(t, err, "index %s should exist", idx)
	}
}

func TestMigrate_ForeignKeysEnabled(t *testing.T) {
	db := openTestDB(t)

	var fk int
	require.NoError(t, db.QueryRow(`PRAGMA foreign_keys`).Scan(&fk))
	assert.Equal(t, 1, fk)
}

func TestMigrate_TemplateDeleteCascades(t *testing.T) {
	db := openTestDB(t)

	_, err := db.Exec(`INSERT INTO templates (id, name, created_at, updated_at) VALUES ('t1', 'CV', 'now', 'now')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO template_items (template_id, id, name, kind) VALUES ('t1', 'g1', 'Teaching', 'group')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO template_groups (template_id, id, name) VALUES ('t1', 'hidden', 'Hidden')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO prepared_sections (template_id, data_section_id, group_id) VALUES ('t1', 's1', 'hidden')`)
	require.NoError(t, err)

	_, err = db.Exec(`DELETE FROM templates WHERE id = 't1'`)
	require.NoError(t, err)

	for _, table := range []string{"template_items", "template_groups", "prepared_sections"} {
		var n int
		require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM `+table).Scan(&n))
		assert.Zero(t, n, "%s should be empty", table)
	}
}

func TestMigrate_RejectsUnknownItemKind(t *testing.T) {
	db := openTestDB(t)

	_, err := db.Exec(`INSERT INTO templates (id, name, created_at, updated_at) VALUES ('t1', 'CV', 'now', 'now')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO template_items (template_id, id, name, kind) VALUES ('t1', 'x', 'X', 'folder')`)
	assert.Error(t, err)
}
