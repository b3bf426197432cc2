// Package postgres publishes cleaned run rows to a warehouse table so
// downstream analysis can query them without re-reading CSV artifacts.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"cartool/domain/table"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

const runsSchema = `
CREATE TABLE IF NOT EXISTS cleaned_runs (
	batch_id   UUID        NOT NULL,
	run        BIGINT      NOT NULL,
	donor      BIGINT,
	date_range TEXT,
	system     TEXT,
	row_data   JSONB       NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (batch_id, run)
)`

// RunStore persists cleaned run rows
type RunStore struct {
	db *sqlx.DB
}

// NewRunStore connects to the warehouse and ensures the target table exists
func NewRunStore(ctx context.Context, databaseURL string) (*RunStore, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if _, err := db.ExecContext(ctx, runsSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure cleaned_runs table: %w", err)
	}
	return &RunStore{db: db}, nil
}

// Close releases the database connection
func (s *RunStore) Close() error {
	return s.db.Close()
}

// PublishTable inserts every row of the cleaned table under a fresh batch id
// and returns that id. The full row is stored as JSON keyed by column name,
// with the key fields lifted into queryable columns.
func (s *RunStore) PublishTable(ctx context.Context, t *table.Table) (uuid.UUID, error) {
	batchID := uuid.New()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	names := t.Names()
	query := `INSERT INTO cleaned_runs (batch_id, run, donor, date_range, system, row_data)
		VALUES ($1, $2, $3, $4, $5, $6)`

	for r := 0; r < t.NumRows(); r++ {
		rowData := make(map[string]string, len(names))
		for c, name := range names {
			rowData[name] = t.Cell(r, c).String()
		}
		payload, err := json.Marshal(rowData)
		if err != nil {
			return uuid.Nil, fmt.Errorf("failed to marshal row %d: %w", r, err)
		}

		run, donor := keyField(t, r, "Run"), keyField(t, r, "Donor")
		if _, err := tx.ExecContext(ctx, query,
			batchID, run, donor, cellString(t, r, "Date"), cellString(t, r, "System"), payload,
		); err != nil {
			return uuid.Nil, fmt.Errorf("failed to insert run row %d: %w", r, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return uuid.Nil, fmt.Errorf("failed to commit batch %s: %w", batchID, err)
	}

	log.Printf("[RunStore] published %d run(s) as batch %s", t.NumRows(), batchID)
	return batchID, nil
}

// keyField reads an integer key column as a nullable value
func keyField(t *table.Table, row int, name string) interface{} {
	col, ok := t.Column(name)
	if !ok || col.Cells[row].IsMissing {
		return nil
	}
	return col.Cells[row].AsInt()
}

// cellString reads a column cell as its output string, empty when missing
func cellString(t *table.Table, row int, name string) string {
	col, ok := t.Column(name)
	if !ok {
		return ""
	}
	return col.Cells[row].String()
}
