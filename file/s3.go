package file

import (
	"bytes"
	"io"
	"io/ioutil"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/pkg/errors"
)

// S3Factory stores artefacts as objects under a bucket/prefix, for
// pipelines that stage graphs and indexes in object storage rather
// than on a local disk.
type S3Factory struct {
	client *s3.S3
	bucket string
	prefix string
}

// NewS3Factory returns a Factory backed by the given bucket, with keys
// namespaced under prefix. sess is a configured AWS session (region,
// credentials) supplied by the caller.
func NewS3Factory(sess *session.Session, bucket, prefix string) *S3Factory {
	return &S3Factory{client: s3.New(sess), bucket: bucket, prefix: prefix}
}

func (f *S3Factory) key(name string) string { return f.prefix + name }

// OpenRead fetches the named object in full and returns a reader over
// its body; S3 objects have no streaming random-access handle so
// callers doing Mmap-style access should prefer Mmap instead.
func (f *S3Factory) OpenRead(name string) (io.ReadCloser, error) {
	out, err := f.client.GetObject(&s3.GetObjectInput{
		Bucket: aws.String(f.bucket),
		Key:    aws.String(f.key(name)),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "file.S3Factory.OpenRead(%s)", name)
	}
	return out.Body, nil
}

// OpenWrite buffers writes locally and uploads the object on Close,
// since S3 has no append or partial-write API.
func (f *S3Factory) OpenWrite(name string) (io.WriteCloser, error) {
	return &s3Writer{factory: f, name: name}, nil
}

// Mmap downloads the object and returns its bytes directly; there is
// no true memory mapping of a remote object.
func (f *S3Factory) Mmap(name string) ([]byte, error) {
	r, err := f.OpenRead(name)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	data, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, errors.Wrapf(err, "file.S3Factory.Mmap(%s)", name)
	}
	return data, nil
}

// Remove deletes the named object.
func (f *S3Factory) Remove(name string) error {
	_, err := f.client.DeleteObject(&s3.DeleteObjectInput{
		Bucket: aws.String(f.bucket),
		Key:    aws.String(f.key(name)),
	})
	if err != nil {
		return errors.Wrapf(err, "file.S3Factory.Remove(%s)", name)
	}
	return nil
}

// TempFile returns a scratch object under "tmp/", removed on Close.
func (f *S3Factory) TempFile(prefix string) (TempFile, error) {
	return &s3Writer{factory: f, name: "tmp/" + prefix, temp: true}, nil
}

type s3Writer struct {
	factory *S3Factory
	name    string
	buf     bytes.Buffer
	temp    bool
}

func (w *s3Writer) Write(p []byte) (int, error) { return w.buf.Write(p) }

func (w *s3Writer) Name() string { return w.name }

func (w *s3Writer) Close() error {
	_, err := w.factory.client.PutObject(&s3.PutObjectInput{
		Bucket: aws.String(w.factory.bucket),
		Key:    aws.String(w.factory.key(w.name)),
		Body:   bytes.NewReader(w.buf.Bytes()),
	})
	if err != nil {
		return errors.Wrapf(err, "file.S3Factory: upload %s", w.name)
	}
	if w.temp {
		return w.factory.Remove(w.name)
	}
	return nil
}
