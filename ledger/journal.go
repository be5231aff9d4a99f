package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// SQLJournal stores blocks in the ledger database's blocks table, one row
// per block with the full block as JSON.
type SQLJournal struct {
	db *sql.DB
}

func NewSQLJournal(db *sql.DB) *SQLJournal {
	return &SQLJournal{db: db}
}

func (j *SQLJournal) Load(ctx context.Context) ([]Block, error) {
	rows, err := j.db.QueryContext(ctx, `SELECT idx, body FROM blocks ORDER BY idx`)
	if err != nil {
		return nil, fmt.Errorf("query blocks: %w", err)
	}
	defer rows.Close()

	var out []Block
	for rows.Next() {
		var idx int
		var body string
		if err := rows.Scan(&idx, &body); err != nil {
			return nil, fmt.Errorf("scan block: %w", err)
		}
		var b Block
		if err := json.Unmarshal([]byte(body), &b); err != nil {
			return nil, fmt.Errorf("decode block %d: %w", idx, err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (j *SQLJournal) Append(ctx context.Context, b Block) error {
	body, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("encode block %d: %w", b.Index, err)
	}
	_, err = j.db.ExecContext(ctx,
		`INSERT INTO blocks (idx, hash, previous_hash, body, recorded_at) VALUES (?, ?, ?, ?, ?)`,
		b.Index, b.Hash, b.PreviousHash, string(body), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("insert block %d: %w", b.Index, err)
	}
	return nil
}
