package postgres

import (
	"embed"
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// MigrationsDir is the directory of Migrations that holds the SQL files.
const MigrationsDir = "migrations"

// Migrations returns the embedded schema migrations.
func Migrations() fs.FS { return migrationFiles }

// scannable is satisfied by pgx.Row and pgx.Rows.
type scannable interface {
	Scan(dest ...any) error
}

// dueDateLayouts are the accepted invoice due date formats.
var dueDateLayouts = []string{time.DateOnly, time.RFC3339, "02/01/2006"}

// parseDueDate returns nil when raw is empty or does not parse.
func parseDueDate(raw *string) *time.Time {
	if raw == nil {
		return nil
	}
	s := strings.TrimSpace(*raw)
	for _, layout := range dueDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

func formatDueDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.DateOnly)
	return &s
}

func decimalPtr(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	v := d.Decimal
	return &v
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
