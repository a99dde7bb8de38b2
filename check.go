package sqlar

import (
	"database/sql"
	"fmt"
)

// IsArchive reports whether filename is a SQLite Archive: an existing
// SQLite database that carries a conforming sqlar table.
func IsArchive(filename string) bool {
	a, err := Open(filename, ReadOnly)
	if err != nil {
		return false
	}
	a.Close()
	return true
}

// Query runs a raw SQL query against the archive database. It exists so
// auxiliary metadata tables can be stored next to the sqlar table. The
// caller owns the returned rows and must close them before issuing further
// archive operations: the archive holds a single connection, and another
// call while the rows are open blocks waiting for it.
func (a *Archive) Query(query string, args ...any) (*sql.Rows, error) {
	if err := a.ensureOpen(); err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	rows, err := a.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	return rows, nil
}

// Exec runs a raw SQL statement against the archive database. Like other
// mutating operations it fails with ErrReadOnly on a read-only archive.
func (a *Archive) Exec(query string, args ...any) (sql.Result, error) {
	if err := a.ensureWritable(); err != nil {
		return nil, fmt.Errorf("exec: %w", err)
	}
	res, err := a.db.Exec(query, args...)
	if err != nil {
		return nil, fmt.Errorf("exec: %w", err)
	}
	return res, nil
}
