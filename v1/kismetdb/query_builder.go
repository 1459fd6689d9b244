package kismetdb

import (
	"context"
	"strings"

	"gorm.io/gorm"
)

// rowIDColumn is selected ahead of the declared columns so decode failures
// can name the offending row.
const rowIDColumn = "rowid"

// RowsScanner provides an interface for iterating through rows of data
type RowsScanner interface {
	Next() bool
	Scan(dest ...interface{}) error
	Close() error
	Err() error
}

// query starts a QueryBuilder on the table. The table's read lock is held
// until a terminal method returns, so Close cannot pull
// the connection out from under a statement being prepared.
func (t *Table) query(ctx context.Context) *QueryBuilder {
	t.mu.RLock()
	return &QueryBuilder{
		db:      t.db.WithContext(ctx).Table(t.name),
		release: t.mu.RUnlock,
	}
}

// QueryBuilder provides a fluent interface over gorm for the handful of
// clauses the reader needs. Predicates only ever arrive as Fragments, so
// values are bound, never spliced into SQL text.
type QueryBuilder struct {
	// db is the underlying GORM DB instance that handles the actual query execution
	db *gorm.DB

	// release is the function to call to release the table lock when done with the query
	release func()
}

// Select specifies the columns to read. Names are quoted, except rowid.
//
// Example:
//
//	qb.Select([]string{"devmac", "type"})
func (qb *QueryBuilder) Select(columns []string) *QueryBuilder {
	quoted := make([]string, 0, len(columns)+1)
	quoted = append(quoted, rowIDColumn)
	for _, c := range columns {
		quoted = append(quoted, quoteIdent(c))
	}
	qb.db = qb.db.Select(strings.Join(quoted, ", "))
	return qb
}

// Where adds every fragment as its own AND-ed condition.
func (qb *QueryBuilder) Where(fragments ...Fragment) *QueryBuilder {
	for _, f := range fragments {
		qb.db = qb.db.Where(f.Clause, f.Args...)
	}
	return qb
}

// Order adds an ORDER BY on a single column.
func (qb *QueryBuilder) Order(column string, desc bool) *QueryBuilder {
	if column == "" {
		return qb
	}
	clause := quoteIdent(column)
	if desc {
		clause += " DESC"
	}
	qb.db = qb.db.Order(clause)
	return qb
}

// Limit caps the number of rows returned. Zero means no limit.
func (qb *QueryBuilder) Limit(limit int) *QueryBuilder {
	if limit > 0 {
		qb.db = qb.db.Limit(limit)
	}
	return qb
}

// QueryRows executes the query and returns a RowsScanner over the result.
func (qb *QueryBuilder) QueryRows() (RowsScanner, error) {
	defer qb.release()
	return qb.db.Rows()
}

// Count executes a COUNT over the current conditions.
func (qb *QueryBuilder) Count(count *int64) error {
	defer qb.release()
	return qb.db.Count(count).Error
}
