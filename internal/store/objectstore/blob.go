// Package objectstore stores onboarding media in an S3-compatible bucket (AWS S3,
// MinIO and similar).
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/rs/zerolog/log"
)

// API is the subset of *s3.Client used by BlobStore.
type API interface {
	HeadBucket(ctx context.Context, in *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	CreateBucket(ctx context.Context, in *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Config selects the bucket and how objects are addressed. When
// PublicBaseURL is empty object URLs are derived from Endpoint.
type Config struct {
	Endpoint      string
	Region        string
	Bucket        string
	AccessKey     string
	SecretKey     string //nolint:gosec // G117: object store credential
	UsePathStyle  bool
	PublicBaseURL string
}

type BlobStore struct {
	client  API
	bucket  string
	baseURL string
}

// New builds a BlobStore from cfg. Static credentials are used when
// AccessKey is set, otherwise the default AWS credential chain.
func New(ctx context.Context, cfg Config) (*BlobStore, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("objectstore.New: bucket is required")
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("objectstore.New: load aws config: %w", err)
	}

	baseURL, err := publicBaseURL(cfg)
	if err != nil {
		return nil, fmt.Errorf("objectstore.New: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	return NewWithClient(client, cfg.Bucket, baseURL), nil
}

// NewWithClient wraps an existing client. baseURL prefixes every returned
// object URL.
func NewWithClient(client API, bucket, baseURL string) *BlobStore {
	return &BlobStore{
		client:  client,
		bucket:  bucket,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// EnsureBucket creates the bucket if it does not exist.
func (b *BlobStore) EnsureBucket(ctx context.Context) error {
	_, err := b.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(b.bucket)})
	if err == nil {
		return nil
	}
	if !isMissingBucket(err) {
		return fmt.Errorf("objectstore.BlobStore.EnsureBucket: head: %w", err)
	}

	log.Info().Str("bucket", b.bucket).Msg("creating storage bucket")
	_, err = b.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(b.bucket)})
	if err != nil {
		var owned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &owned) {
			return nil
		}
		return fmt.Errorf("objectstore.BlobStore.EnsureBucket: create: %w", err)
	}

	return nil
}

// Ping reports whether the bucket is reachable.
func (b *BlobStore) Ping(ctx context.Context) error {
	_, err := b.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(b.bucket)})
	if err != nil {
		return fmt.Errorf("objectstore.BlobStore.Ping: %w", err)
	}
	return nil
}

// Put uploads body under name, overwriting any existing object, and returns
// the object's public URL.
func (b *BlobStore) Put(ctx context.Context, name string, body io.Reader, size int64, contentType string) (string, error) {
	if name == "" {
		return "", errors.New("objectstore.BlobStore.Put: name is required")
	}

	in := &s3.PutObjectInput{
		Bucket:      aws.String(b.bucket),
		Key:         aws.String(name),
		Body:        body,
		ContentType: aws.String(contentType),
	}
	if size > 0 {
		in.ContentLength = aws.Int64(size)
	}

	if _, err := b.client.PutObject(ctx, in); err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("objectstore.BlobStore.Put: %s: %s: %w", name, apiErr.ErrorCode(), err)
		}
		return "", fmt.Errorf("objectstore.BlobStore.Put: %s: %w", name, err)
	}

	return b.URL(name), nil
}

// URL returns the public URL of the object called name.
func (b *BlobStore) URL(name string) string {
	segments := strings.Split(name, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return b.baseURL + "/" + strings.Join(segments, "/")
}

func isMissingBucket(err error) bool {
	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if errors.As(err, &notFound) || errors.As(err, &noSuchBucket) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchBucket":
			return true
		}
	}
	return false
}

func publicBaseURL(cfg Config) (string, error) {
	if cfg.PublicBaseURL != "" {
		return strings.TrimRight(cfg.PublicBaseURL, "/"), nil
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = "https://s3." + cfg.Region + ".amazonaws.com"
	}
	u, err := url.Parse(endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid storage endpoint %q", endpoint)
	}

	if cfg.UsePathStyle {
		return strings.TrimRight(u.Scheme+"://"+u.Host+u.Path, "/") + "/" + cfg.Bucket, nil
	}
	return u.Scheme + "://" + cfg.Bucket + "." + u.Host + strings.TrimRight(u.Path, "/"), nil
}
