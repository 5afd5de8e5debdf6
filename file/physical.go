package file

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// PhysicalFactory stores artefacts as ordinary files under a root
// directory on local disk.
type PhysicalFactory struct {
	root   string
	serial int64
}

// NewPhysicalFactory returns a Factory rooted at dir.
func NewPhysicalFactory(dir string) *PhysicalFactory {
	return &PhysicalFactory{root: dir}
}

func (f *PhysicalFactory) path(name string) string { return filepath.Join(f.root, name) }

// OpenRead opens name for reading.
func (f *PhysicalFactory) OpenRead(name string) (io.ReadCloser, error) {
	file, err := os.Open(f.path(name))
	if err != nil {
		return nil, errors.Wrapf(err, "file.PhysicalFactory.OpenRead(%s)", name)
	}
	return file, nil
}

// OpenWrite creates (or truncates) name for writing.
func (f *PhysicalFactory) OpenWrite(name string) (io.WriteCloser, error) {
	file, err := os.Create(f.path(name))
	if err != nil {
		return nil, errors.Wrapf(err, "file.PhysicalFactory.OpenWrite(%s)", name)
	}
	return file, nil
}

// Mmap maps the whole of name read-only.
func (f *PhysicalFactory) Mmap(name string) ([]byte, error) {
	fd, err := os.Open(f.path(name))
	if err != nil {
		return nil, errors.Wrapf(err, "file.PhysicalFactory.Mmap(%s)", name)
	}
	defer fd.Close()
	fi, err := fd.Stat()
	if err != nil {
		return nil, errors.Wrapf(err, "file.PhysicalFactory.Mmap(%s): stat", name)
	}
	size := fi.Size()
	if size == 0 {
		return nil, nil
	}
	data, err := unix.Mmap(int(fd.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, errors.Wrapf(err, "file.PhysicalFactory.Mmap(%s): mmap", name)
	}
	return data, nil
}

// Remove deletes name.
func (f *PhysicalFactory) Remove(name string) error {
	if err := os.Remove(f.path(name)); err != nil {
		return errors.Wrapf(err, "file.PhysicalFactory.Remove(%s)", name)
	}
	return nil
}

// TempFile returns a new scratch file named
// ${dir}/${prefix}${sec}-${usec}-${serial}.
func (f *PhysicalFactory) TempFile(prefix string) (TempFile, error) {
	now := time.Now()
	serial := atomic.AddInt64(&f.serial, 1)
	name := fmt.Sprintf("%s%d-%d-%d", prefix, now.Unix(), now.Nanosecond()/1000, serial)
	path := f.path(name)
	fh, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrapf(err, "file.PhysicalFactory.TempFile")
	}
	return &physicalTempFile{File: fh, path: path}, nil
}

type physicalTempFile struct {
	*os.File
	path string
}

func (t *physicalTempFile) Name() string { return t.path }

func (t *physicalTempFile) Close() error {
	closeErr := t.File.Close()
	if removeErr := os.Remove(t.path); removeErr != nil && !os.IsNotExist(removeErr) {
		if closeErr == nil {
			return removeErr
		}
	}
	return closeErr
}
