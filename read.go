package sqlar

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"time"
)

// Entry describes a single archive member.
type Entry struct {
	// Name is the member path as stored, case-sensitive and unnormalized.
	Name string

	// Mode holds the POSIX permission bits.
	Mode fs.FileMode

	// ModTime is the member's modification time.
	ModTime time.Time

	// Size is the uncompressed payload size in bytes. Directories store 0
	// and symbolic links -1, following the sqlar conventions.
	Size int64
}

// Read returns the decompressed content of the named entry.
//
// A blob whose length matches neither the decompressed nor the raw
// interpretation of the recorded size fails with ErrCorrupt; a missing
// entry fails with ErrNotFound.
func (a *Archive) Read(name string) ([]byte, error) {
	if err := a.ensureOpen(); err != nil {
		return nil, fmt.Errorf("read %q: %w", name, err)
	}

	var (
		sz   int64
		data []byte
	)
	err := a.db.QueryRow(`SELECT sz, data FROM sqlar WHERE name = ?`, name).Scan(&sz, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("read %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", name, err)
	}

	if sz < 0 {
		// Symbolic link row: data holds the target, never compressed.
		return data, nil
	}
	content, ok := decode(data, sz)
	if !ok {
		return nil, fmt.Errorf("read %q: %w", name, ErrCorrupt)
	}
	return content, nil
}

// Info returns the metadata of the named entry.
func (a *Archive) Info(name string) (Entry, error) {
	if err := a.ensureOpen(); err != nil {
		return Entry{}, fmt.Errorf("info %q: %w", name, err)
	}

	var (
		e           Entry
		mode, mtime int64
	)
	err := a.db.QueryRow(`SELECT name, mode, mtime, sz FROM sqlar WHERE name = ?`, name).
		Scan(&e.Name, &mode, &mtime, &e.Size)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, fmt.Errorf("info %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return Entry{}, fmt.Errorf("info %q: %w", name, err)
	}

	e.Mode = fs.FileMode(mode)
	e.ModTime = time.Unix(mtime, 0)
	return e, nil
}

// InfoList returns the metadata of every entry in the archive.
func (a *Archive) InfoList() ([]Entry, error) {
	if err := a.ensureOpen(); err != nil {
		return nil, fmt.Errorf("info list: %w", err)
	}

	rows, err := a.db.Query(`SELECT name, mode, mtime, sz FROM sqlar`)
	if err != nil {
		return nil, fmt.Errorf("info list: %w", err)
	}
	defer rows.Close()

	var list []Entry
	for rows.Next() {
		var (
			e           Entry
			mode, mtime int64
		)
		if err := rows.Scan(&e.Name, &mode, &mtime, &e.Size); err != nil {
			return nil, fmt.Errorf("info list: %w", err)
		}
		e.Mode = fs.FileMode(mode)
		e.ModTime = time.Unix(mtime, 0)
		list = append(list, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("info list: %w", err)
	}
	return list, nil
}

// NameList returns the names of all entries. The order is the store's
// natural row order and is not part of the contract.
func (a *Archive) NameList() ([]string, error) {
	if err := a.ensureOpen(); err != nil {
		return nil, fmt.Errorf("name list: %w", err)
	}

	rows, err := a.db.Query(`SELECT name FROM sqlar`)
	if err != nil {
		return nil, fmt.Errorf("name list: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("name list: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("name list: %w", err)
	}
	return names, nil
}

// Contains reports whether an entry with the given name exists. A missing
// name is not an error.
func (a *Archive) Contains(name string) (bool, error) {
	if err := a.ensureOpen(); err != nil {
		return false, fmt.Errorf("contains %q: %w", name, err)
	}

	var one int
	err := a.db.QueryRow(`SELECT 1 FROM sqlar WHERE name = ? LIMIT 1`, name).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("contains %q: %w", name, err)
	}
	return true, nil
}
