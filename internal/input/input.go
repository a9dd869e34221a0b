// Package input opens record and hit-count streams from local files,
// standard input, HTTP(S) URLs and S3 objects. Gzip-compressed streams are
// detected by their magic bytes and decompressed in parallel.
package input

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/klauspost/pgzip"
)

// Stdin is the path that selects standard input.
const Stdin = "-"

// S3Options configures access to S3-compatible object stores.
type S3Options struct {
	Region    string
	Endpoint  string // optional, e.g. a MinIO URL
	PathStyle bool
	// Static keys; the default credential chain is used when empty.
	AccessKeyID     string
	SecretAccessKey string
}

// S3Getter is the subset of the S3 client used to read objects.
type S3Getter interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Options configures Open.
type Options struct {
	S3 S3Options
	// S3Client overrides the client built from S3.
	S3Client S3Getter
	// HTTPClient defaults to a client with a 30 minute timeout.
	HTTPClient *http.Client
}

// Open opens path for reading. The caller must close the returned reader.
func Open(ctx context.Context, path string, opts Options) (io.ReadCloser, error) {
	var (
		rc  io.ReadCloser
		err error
	)
	switch {
	case path == Stdin:
		rc = io.NopCloser(os.Stdin)
	case strings.HasPrefix(path, "s3://"):
		rc, err = openS3(ctx, path, opts)
	case strings.HasPrefix(path, "http://"), strings.HasPrefix(path, "https://"):
		rc, err = openHTTP(ctx, path, opts)
	default:
		rc, err = os.Open(path)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return maybeGunzip(path, rc)
}

// IsLocal reports whether path names a local file.
func IsLocal(path string) bool {
	return path != Stdin && !strings.Contains(path, "://")
}

// ParseS3URL splits s3://bucket/key.
func ParseS3URL(u string) (bucket, key string, err error) {
	rest, ok := strings.CutPrefix(u, "s3://")
	if !ok {
		return "", "", fmt.Errorf("not an s3 URL: %s", u)
	}
	bucket, key, _ = strings.Cut(rest, "/")
	if bucket == "" || key == "" {
		return "", "", fmt.Errorf("s3 URL needs a bucket and key: %s", u)
	}
	return bucket, key, nil
}

// NewS3Client builds an S3 client from static keys or the default
// credential chain.
func NewS3Client(ctx context.Context, o S3Options) (*s3.Client, error) {
	region := o.Region
	if region == "" {
		region = "us-east-1"
	}
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if o.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(o.AccessKeyID, o.SecretAccessKey, "")))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return s3.NewFromConfig(awsCfg, func(so *s3.Options) {
		so.UsePathStyle = o.PathStyle
		if o.Endpoint != "" {
			so.BaseEndpoint = aws.String(o.Endpoint)
		}
	}), nil
}

func openS3(ctx context.Context, path string, opts Options) (io.ReadCloser, error) {
	bucket, key, err := ParseS3URL(path)
	if err != nil {
		return nil, err
	}
	client := opts.S3Client
	if client == nil {
		c, err := NewS3Client(ctx, opts.S3)
		if err != nil {
			return nil, err
		}
		client = c
	}
	out, err := client.GetObject(ctx, &s3.GetObjectInput{Bucket: aws.String(bucket), Key: aws.String(key)})
	if err != nil {
		return nil, err
	}
	return out.Body, nil
}

func openHTTP(ctx context.Context, url string, opts Options) (io.ReadCloser, error) {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Minute}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("HTTP %s", resp.Status)
	}
	return resp.Body, nil
}

// readCloser reads through a decompressor and closes both layers.
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

func maybeGunzip(path string, rc io.ReadCloser) (io.ReadCloser, error) {
	br := bufio.NewReader(rc)
	magic, err := br.Peek(2)
	if err != nil || magic[0] != 0x1f || magic[1] != 0x8b {
		// Short or empty input is passed through; the reader reports EOF.
		return &readCloser{Reader: br, closers: []io.Closer{rc}}, nil
	}
	zr, err := pgzip.NewReader(br)
	if err != nil {
		rc.Close()
		return nil, fmt.Errorf("gunzip %s: %w", path, err)
	}
	return &readCloser{Reader: zr, closers: []io.Closer{zr, rc}}, nil
}
