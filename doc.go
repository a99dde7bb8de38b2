// Package sqlar reads and writes SQLite Archive files.
//
// A SQLite Archive stores named byte payloads as rows of a single sqlar
// table inside an ordinary SQLite database:
//
//	CREATE TABLE sqlar(
//		name TEXT PRIMARY KEY,
//		mode INT,
//		mtime INT,
//		sz INT,
//		data BLOB
//	)
//
// Payloads are transparently zlib-compressed when that makes them smaller
// and decompressed on read, so callers only ever see original bytes. The
// sz column always records the uncompressed length; whether a blob is
// compressed is inferred on read, not stored. Archives written by this
// package interoperate with the sqlite3 command-line archiver and other
// sqlar implementations.
//
// # Quick Start
//
// Create an archive and write an entry:
//
//	a, err := sqlar.Open("site.sqlar", sqlar.ReadWriteCreate)
//	if err != nil {
//	    return err
//	}
//	defer a.Close()
//
//	if err := a.WriteString("docs/readme.txt", "hello"); err != nil {
//	    return err
//	}
//
// Read it back:
//
//	content, err := a.Read("docs/readme.txt")
//
// Open an existing archive read-only and list its entries:
//
//	a, err := sqlar.Open("site.sqlar", sqlar.ReadOnly)
//	if err != nil {
//	    return err
//	}
//	defer a.Close()
//
//	names, err := a.NameList()
//
// # Modes
//
// Open takes one of four modes: ReadOnly and ReadWrite require the file to
// exist, ReadWriteCreate creates file and table when absent, and Memory
// (or the InMemory filename) opens a transient in-memory archive. Mutating
// calls on a ReadOnly archive fail with ErrReadOnly.
package sqlar
