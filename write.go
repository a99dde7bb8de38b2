package sqlar

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// defaultWriteMode matches what prior-generation writers record for
// payloads written without an explicit mode.
const defaultWriteMode fs.FileMode = 0o777

// Write upserts an entry under name with the given payload. An existing
// entry with the same name is replaced entirely.
//
// With the default deflate setting the payload is stored compressed only
// when compression makes it smaller. Fails with ErrReadOnly on an archive
// opened ReadOnly.
func (a *Archive) Write(name string, data []byte, opts ...WriteOption) error {
	cfg := a.writeConfig(opts)
	if err := a.ensureWritable(); err != nil {
		return fmt.Errorf("write %q: %w", name, err)
	}

	if data == nil {
		// NULL data marks a directory row; an empty payload is an empty blob.
		data = []byte{}
	}
	stored := data
	if cfg.compression == CompressionDeflate {
		var err error
		stored, err = deflate(data, cfg.level)
		if err != nil {
			return fmt.Errorf("write %q: %w", name, err)
		}
	}
	return a.put(name, int64(cfg.mode), cfg.modTime.Unix(), int64(len(data)), stored)
}

// WriteString writes data as UTF-8 bytes under name.
func (a *Archive) WriteString(name, data string, opts ...WriteOption) error {
	return a.Write(name, []byte(data), opts...)
}

// WriteFile archives the file, directory, or symbolic link at filename.
//
// Mode and modification time are taken from the file itself. Directories
// are stored with NULL data and size 0; symbolic links store their resolved
// target with size -1. The archive name defaults to the slash form of
// filename and can be overridden with WriteWithName.
func (a *Archive) WriteFile(filename string, opts ...WriteOption) error {
	cfg := a.writeConfig(opts)
	if err := a.ensureWritable(); err != nil {
		return fmt.Errorf("write file %q: %w", filename, err)
	}

	info, err := os.Lstat(filename)
	if err != nil {
		return fmt.Errorf("write file %q: %w", filename, err)
	}

	name := cfg.name
	if name == "" {
		name = filepath.ToSlash(filename)
	}
	mode := int64(info.Mode().Perm())
	mtime := info.ModTime().Unix()

	switch {
	case info.Mode()&fs.ModeSymlink != 0:
		target, err := filepath.EvalSymlinks(filename)
		if err != nil {
			return fmt.Errorf("write file %q: %w", filename, err)
		}
		if target, err = filepath.Abs(target); err != nil {
			return fmt.Errorf("write file %q: %w", filename, err)
		}
		return a.put(name, mode, mtime, -1, []byte(filepath.ToSlash(target)))

	case info.Mode().IsDir():
		return a.put(name, mode, mtime, 0, nil)

	case info.Mode().IsRegular():
		data, err := os.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("write file %q: %w", filename, err)
		}
		if data == nil {
			data = []byte{}
		}
		stored := data
		if cfg.compression == CompressionDeflate {
			if stored, err = deflate(data, cfg.level); err != nil {
				return fmt.Errorf("write file %q: %w", filename, err)
			}
		}
		return a.put(name, mode, mtime, int64(len(data)), stored)

	default:
		return fmt.Errorf("write file %q: not a file, directory or symlink", filename)
	}
}

// put upserts one row. The statement autocommits, so the entry is visible
// to subsequent reads immediately; a mid-statement failure leaves the
// previous row intact.
func (a *Archive) put(name string, mode, mtime, sz int64, data []byte) error {
	_, err := a.db.Exec(`
		INSERT INTO sqlar (name, mode, mtime, sz, data) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			mode = excluded.mode,
			mtime = excluded.mtime,
			sz = excluded.sz,
			data = excluded.data`,
		name, mode, mtime, sz, data)
	if err != nil {
		return fmt.Errorf("write %q: %w", name, err)
	}
	a.log().Debug("wrote entry", "name", name, "mode", mode, "mtime", mtime, "size", sz, "stored", len(data))
	return nil
}

// Remove deletes the named entry. Removing a missing entry fails with
// ErrNotFound; it is not a silent no-op.
func (a *Archive) Remove(name string) error {
	if err := a.ensureWritable(); err != nil {
		return fmt.Errorf("remove %q: %w", name, err)
	}

	res, err := a.db.Exec(`DELETE FROM sqlar WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("remove %q: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("remove %q: %w", name, err)
	}
	if n == 0 {
		return fmt.Errorf("remove %q: %w", name, ErrNotFound)
	}
	a.log().Debug("removed entry", "name", name)
	return nil
}
