package repositories

import (
	"database/sql"
	"fmt"
)

var _ sequencer = (*sql.Tx)(nil)

// sequencer is satisfied by [sql.DB] and [sql.Tx].
type sequencer interface {
	QueryRow(query string, args ...any) *sql.Row
}

// NextSequence increments and returns the counter kept in the "<table>_sequence" table.
//
// Pass the insert transaction so a rolled-back insert leaves the counter unchanged.
func NextSequence(q sequencer, table string) (int, error) {
	query := fmt.Sprintf("UPDATE %s_sequence SET value = value + 1 WHERE id = 1 RETURNING value", table)

	var sequence int
	if err := q.QueryRow(query).Scan(&sequence); err != nil {
		return 0, fmt.Errorf("failed to increment %s sequence: %w", table, err)
	}
	return sequence, nil
}
