// Package file abstracts the artefact storage gossamer's components
// read and write: a local-disk implementation for production use, an
// in-memory implementation for tests, and an S3-backed implementation
// for artefacts that live in object storage.
package file

import "io"

// Factory is the storage capability every component persisting an
// artefact (DenseArray, SparseArray, Graph, ...) depends on, so that
// the same code works against local disk, a test double, or a remote
// object store.
type Factory interface {
	OpenRead(name string) (io.ReadCloser, error)
	OpenWrite(name string) (io.WriteCloser, error)

	// Mmap returns a read-only memory mapping of the named file's
	// entire contents, for the random-access artefacts (DenseArray,
	// RRRArray, SparseArray) that are built once and queried in place.
	Mmap(name string) ([]byte, error)

	Remove(name string) error

	// TempFile returns a writable scratch file whose name starts with
	// prefix and ends in a factory-specific unique suffix (PhysicalFactory
	// uses ${sec}-${usec}-${serial}); it is removed when closed.
	TempFile(prefix string) (TempFile, error)
}

// TempFile is a writable scratch file that deletes itself on Close.
type TempFile interface {
	io.Writer
	io.Closer
	Name() string
}
