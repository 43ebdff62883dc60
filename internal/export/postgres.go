package export

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/dataquality/internal/core"
)

// ErrPublishDisabled is returned when no database is configured.
var ErrPublishDisabled = errors.New("publishing disabled: no database configured")

// Beginner starts transactions. *pgxpool.Pool satisfies it.
type Beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Publisher copies tables into PostgreSQL.
type Publisher struct {
	db      Beginner
	timeout time.Duration
}

// NewPublisher creates a publisher. A nil db yields a disabled publisher.
func NewPublisher(db Beginner, timeout time.Duration) *Publisher {
	return &Publisher{db: db, timeout: timeout}
}

// Enabled reports whether a database is configured.
func (p *Publisher) Enabled() bool {
	return p != nil && p.db != nil
}

// PublishResult describes a completed publish.
type PublishResult struct {
	Table   string   `json:"table"`
	Columns []string `json:"columns"`
	Rows    int64    `json:"rows"`
}

// Publish creates the target table if needed and copies every row of t
// into it in one transaction.
func (p *Publisher) Publish(ctx context.Context, table string, t *core.Table) (*PublishResult, error) {
	if !p.Enabled() {
		return nil, ErrPublishDisabled
	}
	if table == "" {
		return nil, errors.New("publish: table name is required")
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	tx, err := p.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, createTableSQL(table, t)); err != nil {
		return nil, fmt.Errorf("create table %s: %w", table, err)
	}

	names := t.ColumnNames()
	n, err := tx.CopyFrom(ctx, pgx.Identifier{table}, names, newTableSource(t))
	if err != nil {
		return nil, fmt.Errorf("copy into %s: %w", table, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	return &PublishResult{Table: table, Columns: names, Rows: n}, nil
}

// createTableSQL builds a CREATE TABLE IF NOT EXISTS statement with one
// column per table column, typed from the inferred column kind.
func createTableSQL(table string, t *core.Table) string {
	var sb strings.Builder
	sb.WriteString("CREATE TABLE IF NOT EXISTS ")
	sb.WriteString(pgx.Identifier{table}.Sanitize())
	sb.WriteString(" (")
	for i, c := range t.Columns {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(pgx.Identifier{c.Name}.Sanitize())
		sb.WriteString(" ")
		sb.WriteString(pgColumnType(columnTypeOf(c)))
	}
	sb.WriteString(")")
	return sb.String()
}

func pgColumnType(ct columnType) string {
	switch ct {
	case typeInt:
		return "bigint"
	case typeFloat:
		return "double precision"
	case typeBool:
		return "boolean"
	default:
		return "text"
	}
}

// tableSource streams table rows to CopyFrom as pgtype values.
type tableSource struct {
	t     *core.Table
	types []columnType
	row   int
}

func newTableSource(t *core.Table) *tableSource {
	types := make([]columnType, t.NumColumns())
	for i, c := range t.Columns {
		types[i] = columnTypeOf(c)
	}
	return &tableSource{t: t, types: types, row: -1}
}

func (s *tableSource) Next() bool {
	s.row++
	return s.row < s.t.NumRows()
}

func (s *tableSource) Values() ([]any, error) {
	values := make([]any, len(s.types))
	for i, c := range s.t.Columns {
		v := c.Values[s.row]
		switch s.types[i] {
		case typeInt:
			values[i] = toPgInt8(v)
		case typeFloat:
			values[i] = toPgFloat8(v)
		case typeBool:
			values[i] = toPgBool(v)
		default:
			values[i] = toPgText(v)
		}
	}
	return values, nil
}

func (s *tableSource) Err() error { return nil }

/* ----------------------------------------
	Pgx Helpers
---------------------------------------- */

func toPgText(v core.Value) pgtype.Text {
	if v.IsNull() {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: v.String(), Valid: true}
}

func toPgInt8(v core.Value) pgtype.Int8 {
	if v.Kind != core.KindInt {
		return pgtype.Int8{Valid: false}
	}
	return pgtype.Int8{Int64: v.Int, Valid: true}
}

func toPgFloat8(v core.Value) pgtype.Float8 {
	f, ok := v.Number()
	if !ok {
		return pgtype.Float8{Valid: false}
	}
	return pgtype.Float8{Float64: f, Valid: true}
}

func toPgBool(v core.Value) pgtype.Bool {
	if v.Kind != core.KindBool {
		return pgtype.Bool{Valid: false}
	}
	return pgtype.Bool{Bool: v.Bool, Valid: true}
}
