package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate applies the schema. Every statement is idempotent so it runs on
// each open.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// ALTER TABLE ... ADD COLUMN is not idempotent in SQLite.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS templates (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL UNIQUE,
		description TEXT NOT NULL DEFAULT '',
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	)`,

	// Tree nodes of a template; nesting is parent_id, sibling order is order_index.
	`CREATE TABLE IF NOT EXISTS template_items (
		template_id TEXT NOT NULL REFERENCES templates(id) ON DELETE CASCADE,
		id          TEXT NOT NULL,
		parent_id   TEXT,
		name        TEXT NOT NULL,
		kind        TEXT NOT NULL CHECK(kind IN ('group','leaf')),
		order_index INTEGER NOT NULL DEFAULT 0,
		collapsed   INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (template_id, id),
		FOREIGN KEY (template_id, parent_id) REFERENCES template_items(template_id, id) ON DELETE CASCADE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_template_items_parent ON template_items(template_id, parent_id)`,

	`CREATE TABLE IF NOT EXISTS template_groups (
		template_id TEXT NOT NULL REFERENCES templates(id) ON DELETE CASCADE,
		id          TEXT NOT NULL,
		name        TEXT NOT NULL,
		order_index INTEGER NOT NULL DEFAULT 0,
		is_hidden   INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (template_id, id)
	)`,

	`CREATE TABLE IF NOT EXISTS prepared_sections (
		template_id     TEXT NOT NULL,
		data_section_id TEXT NOT NULL,
		group_id        TEXT NOT NULL,
		title           TEXT NOT NULL DEFAULT '',
		show_row_count  INTEGER NOT NULL DEFAULT 0,
		order_index     INTEGER NOT NULL DEFAULT 0,
		metadata        TEXT,
		PRIMARY KEY (template_id, data_section_id),
		FOREIGN KEY (template_id, group_id) REFERENCES template_groups(template_id, id) ON DELETE CASCADE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_prepared_sections_group ON prepared_sections(template_id, group_id)`,
}
