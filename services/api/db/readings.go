package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

// RawReading is a single untrusted row from the reading store. Both fields
// hold whatever the driver decoded and must be validated before use.
type RawReading struct {
	Persons   any
	Timestamp any
}

// buildLatestSQL maps the configured table and columns onto the two
// RawReading fields. Identifiers are quoted, so configuration can never
// inject SQL.
func buildLatestSQL(table, personsCol, timestampCol string) (string, error) {
	table = strings.TrimSpace(table)
	personsCol = strings.TrimSpace(personsCol)
	timestampCol = strings.TrimSpace(timestampCol)
	if table == "" || personsCol == "" || timestampCol == "" {
		return "", errors.New("table, persons column and timestamp column are required")
	}

	tableIdent := pgx.Identifier(strings.Split(table, "."))
	persons := pgx.Identifier{personsCol}.Sanitize()
	ts := pgx.Identifier{timestampCol}.Sanitize()

	return `SELECT ` + persons + `, ` + ts + `
    FROM ` + tableIdent.Sanitize() + `
    ORDER BY ` + ts + ` DESC NULLS LAST
    LIMIT $1`, nil
}

// FetchLatestReadings returns up to limit rows ordered by timestamp
// descending. The result is never nil on success.
func (s *Store) FetchLatestReadings(ctx context.Context, limit int) ([]RawReading, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("invalid limit %d: must be positive", limit)
	}

	res, err := s.execute(ctx, func(ctx context.Context) (any, error) {
		return s.queryLatest(ctx, limit)
	})
	if err != nil {
		return nil, err
	}
	return res.([]RawReading), nil
}

func (s *Store) queryLatest(ctx context.Context, limit int) ([]RawReading, error) {
	rows, err := s.q.Query(ctx, s.latestSQL, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	readings := make([]RawReading, 0, limit)
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		if len(values) != 2 {
			return nil, fmt.Errorf("unexpected column count %d", len(values))
		}
		readings = append(readings, RawReading{Persons: values[0], Timestamp: values[1]})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return readings, nil
}
