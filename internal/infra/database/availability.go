package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"projectflow_reminder/internal/domain/reminder"
)

// Table names queried by the reminder engine.
const (
	TableSchedules = "schedules"
	TableWorkItems = "work_items"
)

// undefinedTable is the SQLSTATE PostgreSQL returns for a missing relation.
const undefinedTable pq.ErrorCode = "42P01"

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// CheckResult is the outcome of probing one collection.
type CheckResult struct {
	Collection string
	Exists     bool
	// Missing is set when the collection is known not to be provisioned.
	Missing bool
	// Err holds any other failure. It is nil when the collection is merely missing.
	Err error
}

// AvailabilityProbe tells whether a table can currently be queried.
type AvailabilityProbe struct {
	db execer
}

func NewAvailabilityProbe(db *sql.DB) *AvailabilityProbe {
	return &AvailabilityProbe{db: db}
}

// Exists queries zero rows from the collection.
func (p *AvailabilityProbe) Exists(ctx context.Context, collection string) CheckResult {
	res := CheckResult{Collection: collection}
	query := fmt.Sprintf("SELECT * FROM %s LIMIT 0", pq.QuoteIdentifier(collection))
	if _, err := p.db.ExecContext(ctx, query); err != nil {
		if IsCollectionMissing(err) {
			res.Missing = true
			return res
		}
		res.Err = err
		return res
	}
	res.Exists = true
	return res
}

// CheckRequired probes every named collection.
func (p *AvailabilityProbe) CheckRequired(ctx context.Context, collections ...string) []CheckResult {
	results := make([]CheckResult, 0, len(collections))
	for _, c := range collections {
		results = append(results, p.Exists(ctx, c))
	}
	return results
}

// MissingTablesMessage builds a provisioning hint for unavailable collections.
// It returns "" when every collection exists.
func MissingTablesMessage(results []CheckResult) string {
	var missing []string
	for _, r := range results {
		if !r.Exists {
			missing = append(missing, "- "+r.Collection)
		}
	}
	if len(missing) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("Database tables are missing:\n")
	b.WriteString(strings.Join(missing, "\n"))
	b.WriteString("\nReminders for these tables stay silent until they are created.")
	return b.String()
}

// IsCollectionMissing reports whether err means the queried table does not exist.
func IsCollectionMissing(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == undefinedTable {
		return true
	}
	// REST gateways in front of Postgres report a schema cache miss instead.
	msg := err.Error()
	return strings.Contains(msg, "PGRST205") || strings.Contains(msg, "schema cache")
}

// wrapQueryError maps a missing table to reminder.ErrCollectionUnavailable.
func wrapQueryError(err error, table, op string) error {
	if IsCollectionMissing(err) {
		return fmt.Errorf("%w: %s: %v", reminder.ErrCollectionUnavailable, table, err)
	}
	return fmt.Errorf("error %s: %w", op, err)
}
