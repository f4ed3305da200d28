package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/cvorganizer/internal/db"
	"github.com/alexanderramin/cvorganizer/internal/domain"
)

const templateColumns = `id, name, description, created_at, updated_at`

// SQLiteTemplateRepo implements TemplateRepo.
type SQLiteTemplateRepo struct {
	db db.DBTX
}

func NewSQLiteTemplateRepo(conn db.DBTX) *SQLiteTemplateRepo {
	return &SQLiteTemplateRepo{db: conn}
}

func (r *SQLiteTemplateRepo) Create(ctx context.Context, t *domain.Template) error {
	query := `INSERT INTO templates (` + templateColumns + `) VALUES (?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		t.ID,
		t.Name,
		t.Description,
		formatTime(t.CreatedAt),
		formatTime(t.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting template: %w", err)
	}
	return nil
}

func (r *SQLiteTemplateRepo) GetByID(ctx context.Context, id string) (*domain.Template, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+templateColumns+` FROM templates WHERE id = ?`, id)
	return r.scanTemplate(row)
}

// GetByName matches the name case-insensitively.
func (r *SQLiteTemplateRepo) GetByName(ctx context.Context, name string) (*domain.Template, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+templateColumns+` FROM templates WHERE name = ? COLLATE NOCASE`, name)
	return r.scanTemplate(row)
}

func (r *SQLiteTemplateRepo) List(ctx context.Context) ([]*domain.Template, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+templateColumns+` FROM templates ORDER BY name COLLATE NOCASE`)
	if err != nil {
		return nil, fmt.Errorf("listing templates: %w", err)
	}
	defer rows.Close()

	var out []*domain.Template
	for rows.Next() {
		var t domain.Template
		var createdAt, updatedAt string
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning template row: %w", err)
		}
		if err := populateTimes(&t, createdAt, updatedAt); err != nil {
			return nil, err
		}
		out = append(out, &t)
	}
	return out, rows.Err()
}

func (r *SQLiteTemplateRepo) Update(ctx context.Context, t *domain.Template) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE templates SET name = ?, description = ?, updated_at = ? WHERE id = ?`,
		t.Name, t.Description, formatTime(t.UpdatedAt), t.ID)
	if err != nil {
		return fmt.Errorf("updating template: %w", err)
	}
	return requireAffected(res, "template")
}

// Delete removes the template together with its tree, groups and sections.
func (r *SQLiteTemplateRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM templates WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting template: %w", err)
	}
	return requireAffected(res, "template")
}

func (r *SQLiteTemplateRepo) scanTemplate(row *sql.Row) (*domain.Template, error) {
	var t domain.Template
	var createdAt, updatedAt string
	if err := row.Scan(&t.ID, &t.Name, &t.Description, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("template: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning template: %w", err)
	}
	if err := populateTimes(&t, createdAt, updatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

func populateTimes(t *domain.Template, createdAt, updatedAt string) error {
	var err error
	if t.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
		return err
	}
	if t.UpdatedAt, err = parseTime(updatedAt, "updated_at"); err != nil {
		return err
	}
	return nil
}

func requireAffected(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return nil
}
