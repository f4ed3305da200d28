package repository

import (
	"context"
	"database/sql"
	"fmt"

	json "github.com/goccy/go-json"

	"github.com/alexanderramin/cvorganizer/internal/db"
	"github.com/alexanderramin/cvorganizer/internal/domain"
)

// SQLiteLayoutRepo implements LayoutRepo. Tree rows carry parent_id and
// order_index; groups and sections carry order_index. Section metadata is
// stored as a JSON document.
type SQLiteLayoutRepo struct {
	db db.DBTX
}

func NewSQLiteLayoutRepo(conn db.DBTX) *SQLiteLayoutRepo {
	return &SQLiteLayoutRepo{db: conn}
}

func (r *SQLiteLayoutRepo) SaveTree(ctx context.Context, templateID string, tree []domain.Item) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM template_items WHERE template_id = ?`, templateID); err != nil {
		return fmt.Errorf("clearing template items: %w", err)
	}

	query := `INSERT INTO template_items (template_id, id, parent_id, name, kind, order_index, collapsed)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	var insert func(items []domain.Item, parentID string) error
	insert = func(items []domain.Item, parentID string) error {
		for i, it := range items {
			_, err := r.db.ExecContext(ctx, query,
				templateID,
				it.ID,
				nullableString(parentID),
				it.Name,
				string(it.Kind),
				i,
				boolToInt(it.Collapsed),
			)
			if err != nil {
				return fmt.Errorf("inserting template item %q: %w", it.ID, err)
			}
			if err := insert(it.Children, it.ID); err != nil {
				return err
			}
		}
		return nil
	}
	return insert(tree, "")
}

func (r *SQLiteLayoutRepo) LoadTree(ctx context.Context, templateID string) ([]domain.Item, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, parent_id, name, kind, collapsed FROM template_items
		WHERE template_id = ? ORDER BY order_index, id`, templateID)
	if err != nil {
		return nil, fmt.Errorf("listing template items: %w", err)
	}
	defer rows.Close()

	byParent := make(map[string][]domain.Item)
	for rows.Next() {
		var it domain.Item
		var parentID sql.NullString
		var kind string
		var collapsed int
		if err := rows.Scan(&it.ID, &parentID, &it.Name, &kind, &collapsed); err != nil {
			return nil, fmt.Errorf("scanning template item row: %w", err)
		}
		it.Kind = domain.ItemKind(kind)
		it.Collapsed = intToBool(collapsed)
		p := stringOrEmpty(parentID)
		byParent[p] = append(byParent[p], it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating template items: %w", err)
	}

	var assemble func(parentID string) []domain.Item
	assemble = func(parentID string) []domain.Item {
		children := byParent[parentID]
		out := make([]domain.Item, len(children))
		for i, it := range children {
			it.Children = assemble(it.ID)
			out[i] = it
		}
		return out
	}
	return assemble(""), nil
}

func (r *SQLiteLayoutRepo) SaveGroups(ctx context.Context, templateID string, groups []domain.Group) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM prepared_sections WHERE template_id = ?`, templateID); err != nil {
		return fmt.Errorf("clearing prepared sections: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM template_groups WHERE template_id = ?`, templateID); err != nil {
		return fmt.Errorf("clearing template groups: %w", err)
	}

	for gi, g := range groups {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO template_groups (template_id, id, name, order_index, is_hidden) VALUES (?, ?, ?, ?, ?)`,
			templateID, g.ID, g.Name, gi, boolToInt(g.IsHidden()))
		if err != nil {
			return fmt.Errorf("inserting group %q: %w", g.ID, err)
		}
		for si, s := range g.Sections {
			meta, err := encodeMetadata(s.Metadata)
			if err != nil {
				return fmt.Errorf("encoding metadata of section %q: %w", s.DataSectionID, err)
			}
			_, err = r.db.ExecContext(ctx,
				`INSERT INTO prepared_sections (template_id, data_section_id, group_id, title, show_row_count, order_index, metadata)
				VALUES (?, ?, ?, ?, ?, ?, ?)`,
				templateID, s.DataSectionID, g.ID, s.Title, boolToInt(s.ShowRowCount), si, meta)
			if err != nil {
				return fmt.Errorf("inserting section %q: %w", s.DataSectionID, err)
			}
		}
	}
	return nil
}

func (r *SQLiteLayoutRepo) LoadGroups(ctx context.Context, templateID string) ([]domain.Group, error) {
	groupRows, err := r.db.QueryContext(ctx,
		`SELECT id, name FROM template_groups WHERE template_id = ? ORDER BY order_index, id`, templateID)
	if err != nil {
		return nil, fmt.Errorf("listing template groups: %w", err)
	}
	groups := []domain.Group{}
	index := make(map[string]int)
	for groupRows.Next() {
		g := domain.Group{Sections: []domain.PreparedSection{}}
		if err := groupRows.Scan(&g.ID, &g.Name); err != nil {
			groupRows.Close()
			return nil, fmt.Errorf("scanning template group row: %w", err)
		}
		index[g.ID] = len(groups)
		groups = append(groups, g)
	}
	groupRows.Close()
	if err := groupRows.Err(); err != nil {
		return nil, fmt.Errorf("iterating template groups: %w", err)
	}

	secRows, err := r.db.QueryContext(ctx,
		`SELECT data_section_id, group_id, title, show_row_count, metadata FROM prepared_sections
		WHERE template_id = ? ORDER BY order_index, data_section_id`, templateID)
	if err != nil {
		return nil, fmt.Errorf("listing prepared sections: %w", err)
	}
	defer secRows.Close()
	for secRows.Next() {
		var s domain.PreparedSection
		var groupID string
		var showRowCount int
		var meta sql.NullString
		if err := secRows.Scan(&s.DataSectionID, &groupID, &s.Title, &showRowCount, &meta); err != nil {
			return nil, fmt.Errorf("scanning prepared section row: %w", err)
		}
		s.ShowRowCount = intToBool(showRowCount)
		if s.Metadata, err = decodeMetadata(meta); err != nil {
			return nil, fmt.Errorf("decoding metadata of section %q: %w", s.DataSectionID, err)
		}
		gi, ok := index[groupID]
		if !ok {
			return nil, fmt.Errorf("section %q references unknown group %q", s.DataSectionID, groupID)
		}
		groups[gi].Sections = append(groups[gi].Sections, s)
	}
	if err := secRows.Err(); err != nil {
		return nil, fmt.Errorf("iterating prepared sections: %w", err)
	}
	return groups, nil
}

func encodeMetadata(m map[string]any) (any, error) {
	if len(m) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func decodeMetadata(s sql.NullString) (map[string]any, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(s.String), &m); err != nil {
		return nil, err
	}
	return m, nil
}
