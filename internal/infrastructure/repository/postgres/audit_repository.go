package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/kirillkom/emotion-tutor/internal/core/domain"
)

// AuditRepository appends audit records to the documents and questions tables.
type AuditRepository struct {
	db *sql.DB
}

func NewAuditRepository(db *sql.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *AuditRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026101901)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS documents (
	id BIGSERIAL PRIMARY KEY,
	text TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS questions (
	id BIGSERIAL PRIMARY KEY,
	question TEXT NOT NULL,
	emotion TEXT NOT NULL,
	answer TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *AuditRepository) Write(ctx context.Context, record domain.AuditRecord) error {
	recordedAt := record.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = time.Now().UTC()
	}

	switch {
	case record.Kind == domain.AuditKindDocument && record.Document != nil:
		_, err := r.db.ExecContext(ctx, `
INSERT INTO documents (text, created_at) VALUES ($1, $2)
`, textColumn(record.Document.Text), recordedAt)
		if err != nil {
			return fmt.Errorf("insert document audit: %w", err)
		}
	case record.Kind == domain.AuditKindQuestion && record.Question != nil:
		_, err := r.db.ExecContext(ctx, `
INSERT INTO questions (question, emotion, answer, created_at) VALUES ($1, $2, $3, $4)
`, textColumn(record.Question.Question), textColumn(record.Question.Emotion), textColumn(record.Question.Answer), recordedAt)
		if err != nil {
			return fmt.Errorf("insert question audit: %w", err)
		}
	default:
		return domain.WrapError(domain.ErrInvalidInput, "write audit", fmt.Errorf("unsupported record kind %q", record.Kind))
	}
	return nil
}

// textColumn makes s storable in a TEXT column, which rejects NUL bytes and
// invalid UTF-8.
func textColumn(s string) string {
	return strings.ReplaceAll(strings.ToValidUTF8(s, "\uFFFD"), "\x00", "")
}
