package sqlar

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	_ "modernc.org/sqlite"
)

// Mode controls how an archive file is opened.
type Mode string

const (
	// ReadOnly opens an existing archive for reading.
	ReadOnly Mode = "ro"

	// ReadWrite opens an existing archive for reading and writing.
	ReadWrite Mode = "rw"

	// ReadWriteCreate opens an archive for reading and writing, creating
	// the file and the sqlar table when absent.
	ReadWriteCreate Mode = "rwc"

	// Memory opens a transient in-memory archive.
	Memory Mode = "memory"
)

// InMemory is a special filename that opens a transient in-memory archive.
// The mode argument is ignored for it.
const InMemory = ":memory:"

// sqlarColumns is the column set of the sqlar table, in declared order.
// This is the on-disk interop contract; see https://sqlite.org/sqlar.html.
var sqlarColumns = [...]string{"name", "mode", "mtime", "sz", "data"}

const createTableSQL = `
CREATE TABLE IF NOT EXISTS sqlar(
	name TEXT PRIMARY KEY,
	mode INT,
	mtime INT,
	sz INT,
	data BLOB
)`

// Archive provides named-entry read/write access to a SQLite Archive file.
//
// An Archive owns exactly one database connection. Operations are serial and
// blocking; sharing an Archive across goroutines requires external
// synchronization. Release the connection with Close.
type Archive struct {
	db       *sql.DB
	filename string
	mode     Mode
	closed   bool

	compression Compression
	level       int
	logger      *slog.Logger
}

// log returns the logger, falling back to a discard logger if nil.
func (a *Archive) log() *slog.Logger {
	if a.logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return a.logger
}

// Open opens the SQLite Archive at filename.
//
// The mode must be one of ReadOnly, ReadWrite, ReadWriteCreate, or Memory.
// Opening a missing file with ReadOnly or ReadWrite fails with ErrNotFound.
// The sqlar table is created only when the mode allows creation; an existing
// table whose column set differs from the sqlar schema fails with ErrSchema.
func Open(filename string, mode Mode, opts ...Option) (*Archive, error) {
	a := &Archive{
		filename:    filename,
		mode:        mode,
		compression: CompressionDeflate,
		level:       DefaultLevel,
	}
	for _, opt := range opts {
		opt(a)
	}

	dsn, err := a.dataSource()
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open archive %s: %w", filename, err)
	}
	// The connection is a singly-owned resource. A pool of one keeps
	// in-memory archives alive and makes sequential writes immediately
	// visible to subsequent reads.
	db.SetMaxOpenConns(1)
	a.db = db

	if err := a.init(); err != nil {
		db.Close()
		return nil, err
	}

	a.log().Debug("opened archive", "filename", filename, "mode", string(a.mode))
	return a, nil
}

// dataSource builds the SQLite URI for the configured filename and mode.
func (a *Archive) dataSource() (string, error) {
	if a.filename == InMemory {
		a.mode = ReadWriteCreate
		return InMemory, nil
	}

	switch a.mode {
	case Memory:
		return "file:" + a.filename + "?mode=memory", nil
	case ReadOnly, ReadWrite:
		if _, err := os.Stat(a.filename); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return "", fmt.Errorf("open archive %s: %w", a.filename, ErrNotFound)
			}
			return "", fmt.Errorf("open archive %s: %w", a.filename, err)
		}
	case ReadWriteCreate:
	default:
		return "", fmt.Errorf("open archive %s: invalid mode %q", a.filename, a.mode)
	}

	return fmt.Sprintf("file:%s?mode=%s", a.filename, a.mode), nil
}

func (a *Archive) init() error {
	if a.mode == ReadWriteCreate || a.mode == Memory {
		if _, err := a.db.Exec(createTableSQL); err != nil {
			return fmt.Errorf("create sqlar table: %w", err)
		}
	}
	return a.checkSchema()
}

// checkSchema validates the column set of the sqlar table against the
// archive contract. It refuses to operate on files whose table shape it
// does not recognize rather than risk corrupting unrelated data.
func (a *Archive) checkSchema() error {
	rows, err := a.db.Query(`PRAGMA table_info(sqlar)`)
	if err != nil {
		return fmt.Errorf("inspect sqlar table: %w", err)
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var (
			cid, notNull, pk int
			name, typ        string
			dflt             any
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dflt, &pk); err != nil {
			return fmt.Errorf("inspect sqlar table: %w", err)
		}
		cols = append(cols, strings.ToLower(name))
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("inspect sqlar table: %w", err)
	}

	if len(cols) == 0 {
		return fmt.Errorf("%s has no sqlar table: %w", a.filename, ErrSchema)
	}
	if len(cols) != len(sqlarColumns) {
		return fmt.Errorf("%s: sqlar table has columns %v: %w", a.filename, cols, ErrSchema)
	}
	for i, want := range sqlarColumns {
		if cols[i] != want {
			return fmt.Errorf("%s: sqlar table has columns %v: %w", a.filename, cols, ErrSchema)
		}
	}
	return nil
}

// Filename returns the path the archive was opened with.
func (a *Archive) Filename() string { return a.filename }

// Mode returns the mode the archive was opened with.
func (a *Archive) Mode() Mode { return a.mode }

// Close releases the underlying database connection. It is safe to call
// more than once; any other operation after Close fails with ErrClosed.
func (a *Archive) Close() error {
	if a.closed {
		return nil
	}
	a.closed = true
	if err := a.db.Close(); err != nil {
		return fmt.Errorf("close archive: %w", err)
	}
	return nil
}

func (a *Archive) ensureOpen() error {
	if a.closed {
		return ErrClosed
	}
	return nil
}

func (a *Archive) ensureWritable() error {
	if err := a.ensureOpen(); err != nil {
		return err
	}
	if a.mode == ReadOnly {
		return ErrReadOnly
	}
	return nil
}
