package file

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/grailbio/gossamer/errs"
)

// InMemoryFactory stores artefacts in a process-local map, for unit
// tests that want Factory semantics without touching disk (mirrors
// the teacher's StringFileFactory test double).
type InMemoryFactory struct {
	mu     sync.Mutex
	files  map[string][]byte
	serial int64
}

// NewInMemoryFactory returns an empty in-memory Factory.
func NewInMemoryFactory() *InMemoryFactory {
	return &InMemoryFactory{files: make(map[string][]byte)}
}

// OpenRead returns a reader over the named file's current contents.
func (f *InMemoryFactory) OpenRead(name string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.files[name]
	if !ok {
		return nil, errs.IOError(name, fmt.Errorf("no such file"))
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// OpenWrite returns a writer that replaces name's contents on Close.
func (f *InMemoryFactory) OpenWrite(name string) (io.WriteCloser, error) {
	return &memWriter{factory: f, name: name}, nil
}

// Mmap returns the named file's current contents directly (no actual
// memory mapping is possible for an in-memory store).
func (f *InMemoryFactory) Mmap(name string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.files[name]
	if !ok {
		return nil, errs.IOError(name, fmt.Errorf("no such file"))
	}
	return data, nil
}

// Remove deletes name.
func (f *InMemoryFactory) Remove(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.files, name)
	return nil
}

// TempFile returns a new scratch entry under a synthetic name.
func (f *InMemoryFactory) TempFile(prefix string) (TempFile, error) {
	f.mu.Lock()
	f.serial++
	name := fmt.Sprintf("%s-tmp-%d", prefix, f.serial)
	f.mu.Unlock()
	return &memWriter{factory: f, name: name, temp: true}, nil
}

type memWriter struct {
	factory *InMemoryFactory
	name    string
	buf     bytes.Buffer
	temp    bool
}

func (w *memWriter) Write(p []byte) (int, error) { return w.buf.Write(p) }

func (w *memWriter) Name() string { return w.name }

func (w *memWriter) Close() error {
	w.factory.mu.Lock()
	w.factory.files[w.name] = append([]byte(nil), w.buf.Bytes()...)
	w.factory.mu.Unlock()
	if w.temp {
		return w.factory.Remove(w.name)
	}
	return nil
}
