package trace

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pierrec/lz4/v4"
)

// OpenOptions configures where remote traces are fetched from.
type OpenOptions struct {
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3Secure    bool
}

type stackedReadCloser struct {
	io.Reader
	closers []io.Closer
}

// Close closes the layers from the outermost one inward.
func (s *stackedReadCloser) Close() error {
	var firstErr error

	for _, c := range s.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}

// Open opens a trace for reading. The location is a file path, "-" for the
// standard input, or s3://bucket/key. Files ending in .gz, .zst or .lz4 are
// decompressed.
func Open(
	ctx context.Context,
	location string,
	opts OpenOptions,
) (io.ReadCloser, error) {
	raw, name, err := openRaw(ctx, location, opts)
	if err != nil {
		return nil, err
	}

	r, err := decompress(raw, name)
	if err != nil {
		raw.Close()
		return nil, fmt.Errorf("trace %s: %w", location, err)
	}

	return r, nil
}

func openRaw(
	ctx context.Context,
	location string,
	opts OpenOptions,
) (io.ReadCloser, string, error) {
	if location == "-" {
		return io.NopCloser(os.Stdin), location, nil
	}

	if bucket, key, ok := parseS3Location(location); ok {
		obj, err := openS3Object(ctx, bucket, key, opts)
		if err != nil {
			return nil, "", err
		}

		return obj, key, nil
	}

	f, err := os.Open(location)
	if err != nil {
		return nil, "", err
	}

	return f, location, nil
}

func parseS3Location(location string) (bucket, key string, ok bool) {
	rest, found := strings.CutPrefix(location, "s3://")
	if !found {
		return "", "", false
	}

	bucket, key, found = strings.Cut(rest, "/")
	if !found || bucket == "" || key == "" {
		return "", "", false
	}

	return bucket, key, true
}

func openS3Object(
	ctx context.Context,
	bucket, key string,
	opts OpenOptions,
) (io.ReadCloser, error) {
	if opts.S3Endpoint == "" {
		return nil, fmt.Errorf("trace s3://%s/%s: no S3 endpoint configured",
			bucket, key)
	}

	client, err := minio.New(opts.S3Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.S3AccessKey, opts.S3SecretKey, ""),
		Secure: opts.S3Secure,
	})
	if err != nil {
		return nil, err
	}

	obj, err := client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}

	if _, err := obj.Stat(); err != nil {
		obj.Close()
		return nil, fmt.Errorf("trace s3://%s/%s: %w", bucket, key, err)
	}

	return obj, nil
}

func decompress(raw io.ReadCloser, name string) (io.ReadCloser, error) {
	switch {
	case strings.HasSuffix(name, ".gz"):
		gz, err := gzip.NewReader(raw)
		if err != nil {
			return nil, err
		}

		return &stackedReadCloser{Reader: gz, closers: []io.Closer{gz, raw}},
			nil
	case strings.HasSuffix(name, ".zst"):
		dec, err := zstd.NewReader(raw)
		if err != nil {
			return nil, err
		}

		rc := dec.IOReadCloser()

		return &stackedReadCloser{Reader: rc, closers: []io.Closer{rc, raw}},
			nil
	case strings.HasSuffix(name, ".lz4"):
		return &stackedReadCloser{
			Reader:  lz4.NewReader(raw),
			closers: []io.Closer{raw},
		}, nil
	default:
		return raw, nil
	}
}

type stackedWriteCloser struct {
	io.Writer
	closers []io.Closer
}

func (s *stackedWriteCloser) Close() error {
	var firstErr error

	for _, c := range s.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}

// Create creates a trace file for writing, compressing it when the path ends
// in .gz, .zst or .lz4. The path "-" writes to the standard output.
func Create(path string) (io.WriteCloser, error) {
	var raw io.WriteCloser

	if path == "-" {
		raw = nopWriteCloser{os.Stdout}
	} else {
		f, err := os.Create(path)
		if err != nil {
			return nil, err
		}

		raw = f
	}

	switch {
	case strings.HasSuffix(path, ".gz"):
		gz := gzip.NewWriter(raw)
		return &stackedWriteCloser{Writer: gz, closers: []io.Closer{gz, raw}},
			nil
	case strings.HasSuffix(path, ".zst"):
		enc, err := zstd.NewWriter(raw)
		if err != nil {
			raw.Close()
			return nil, err
		}

		return &stackedWriteCloser{Writer: enc, closers: []io.Closer{enc, raw}},
			nil
	case strings.HasSuffix(path, ".lz4"):
		lw := lz4.NewWriter(raw)
		return &stackedWriteCloser{Writer: lw, closers: []io.Closer{lw, raw}},
			nil
	default:
		return raw, nil
	}
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
