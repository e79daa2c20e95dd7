// Package source opens pileup, catalog and FASTA inputs from local files,
// standard input or S3, decompressing gzip transparently.
package source

import (
	"bufio"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Stdin is the path that selects standard input.
const Stdin = "-"

// S3Config configures access to s3:// inputs. Credentials come from the
// default AWS chain (environment, shared config, instance role).
type S3Config struct {
	Region    string
	Endpoint  string // optional, for S3-compatible stores such as MinIO
	PathStyle bool
}

// ObjectGetter is the part of the S3 API used to read objects.
type ObjectGetter interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Opener opens inputs by path. It is safe for concurrent use.
type Opener struct {
	cfg   S3Config
	stdin io.Reader

	mu     sync.Mutex
	client ObjectGetter
}

// NewOpener creates an opener. The S3 client is created on first use.
func NewOpener(cfg S3Config) *Opener {
	return &Opener{cfg: cfg, stdin: os.Stdin}
}

// SetS3Client replaces the S3 client.
func (o *Opener) SetS3Client(c ObjectGetter) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.client = c
}

// SetStdin replaces the reader used for "-".
func (o *Opener) SetStdin(r io.Reader) {
	o.stdin = r
}

// Open opens path: "-" for standard input, s3://bucket/key for S3,
// anything else as a local file. Gzip input is detected by its magic
// bytes and decompressed.
func (o *Opener) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	var rc io.ReadCloser
	switch {
	case path == Stdin:
		rc = io.NopCloser(o.stdin)
	case strings.HasPrefix(path, "s3://"):
		body, err := o.openS3(ctx, path)
		if err != nil {
			return nil, err
		}
		rc = body
	default:
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		rc = f
	}

	dec, err := Decompress(rc)
	if err != nil {
		rc.Close()
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return dec, nil
}

func (o *Opener) openS3(ctx context.Context, uri string) (io.ReadCloser, error) {
	bucket, key, err := ParseS3URI(uri)
	if err != nil {
		return nil, err
	}
	client, err := o.s3Client(ctx)
	if err != nil {
		return nil, err
	}
	out, err := client.GetObject(ctx, &s3.GetObjectInput{Bucket: &bucket, Key: &key})
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", uri, err)
	}
	return out.Body, nil
}

func (o *Opener) s3Client(ctx context.Context) (ObjectGetter, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.client != nil {
		return o.client, nil
	}

	region := o.cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	o.client = s3.NewFromConfig(awsCfg, func(opts *s3.Options) {
		opts.UsePathStyle = o.cfg.PathStyle
		if o.cfg.Endpoint != "" {
			opts.BaseEndpoint = aws.String(o.cfg.Endpoint)
		}
	})
	return o.client, nil
}

// ParseS3URI splits s3://bucket/key.
func ParseS3URI(uri string) (bucket, key string, err error) {
	rest, ok := strings.CutPrefix(uri, "s3://")
	if !ok {
		return "", "", fmt.Errorf("not an s3 uri: %q", uri)
	}
	bucket, key, _ = strings.Cut(rest, "/")
	if bucket == "" || key == "" {
		return "", "", fmt.Errorf("s3 uri %q needs a bucket and a key", uri)
	}
	return bucket, key, nil
}

// Decompress wraps rc with a gzip reader when its first bytes are the
// gzip magic number (0x1f, 0x8b). Closing the result closes rc.
func Decompress(rc io.ReadCloser) (io.ReadCloser, error) {
	br := bufio.NewReaderSize(rc, 64*1024)
	magic, err := br.Peek(2)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(magic) == 2 && magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		return &readCloser{Reader: gz, closers: []io.Closer{gz, rc}}, nil
	}
	return &readCloser{Reader: br, closers: []io.Closer{rc}}, nil
}

type readCloser struct {
	io.Reader
	closers []io.Closer
}

func (r *readCloser) Close() error {
	var first error
	for _, c := range r.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Open opens path with a one-off opener.
func Open(ctx context.Context, path string, cfg S3Config) (io.ReadCloser, error) {
	return NewOpener(cfg).Open(ctx, path)
}
