package file

import (
	"io/ioutil"
	"testing"

	"github.com/stretchr/testify/assert"
)

func testFactory(t *testing.T, f Factory) {
	t.Helper()

	w, err := f.OpenWrite("greeting.txt")
	assert.NoError(t, err)
	_, err = w.Write([]byte("hello, gossamer"))
	assert.NoError(t, err)
	assert.NoError(t, w.Close())

	r, err := f.OpenRead("greeting.txt")
	assert.NoError(t, err)
	data, err := ioutil.ReadAll(r)
	assert.NoError(t, err)
	assert.NoError(t, r.Close())
	assert.Equal(t, "hello, gossamer", string(data))

	mapped, err := f.Mmap("greeting.txt")
	assert.NoError(t, err)
	assert.Equal(t, "hello, gossamer", string(mapped))

	tmp, err := f.TempFile("scratch-")
	assert.NoError(t, err)
	_, err = tmp.Write([]byte("ephemeral"))
	assert.NoError(t, err)
	name := tmp.Name()
	assert.NoError(t, tmp.Close())
	_, err = f.OpenRead(name)
	assert.Error(t, err, "temp file should be removed after Close")

	assert.NoError(t, f.Remove("greeting.txt"))
	_, err = f.OpenRead("greeting.txt")
	assert.Error(t, err)
}

func TestPhysicalFactory(t *testing.T) {
	dir := t.TempDir()
	testFactory(t, NewPhysicalFactory(dir))
}

func TestInMemoryFactory(t *testing.T) {
	testFactory(t, NewInMemoryFactory())
}

func TestInMemoryFactoryIsolatedInstances(t *testing.T) {
	a := NewInMemoryFactory()
	b := NewInMemoryFactory()
	w, err := a.OpenWrite("x")
	assert.NoError(t, err)
	_, err = w.Write([]byte("only in a"))
	assert.NoError(t, err)
	assert.NoError(t, w.Close())

	_, err = b.OpenRead("x")
	assert.Error(t, err)
}
