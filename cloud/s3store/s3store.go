// Package s3store implements the cloud.ObjectStore boundary on S3.
//
// Credentials come from the AWS SDK default chain (env vars, shared config,
// IAM role). Custom endpoints and path-style addressing are supported for
// S3-compatible providers (R2, MinIO).
package s3store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/copytrader-io/copybot/cloud"
)

// Config holds S3 object store configuration.
type Config struct {
	// Bucket is the S3 bucket name (required).
	Bucket string
	// Prefix is the key prefix within the bucket (optional). Normalized to
	// have no leading or trailing slashes.
	Prefix string
	// Region is the AWS region (optional, uses default chain if empty).
	Region string
	// Endpoint is a custom S3 endpoint URL for S3-compatible providers.
	// Empty uses the default AWS endpoint.
	Endpoint string
	// UsePathStyle forces path-style addressing (bucket in path, not
	// subdomain). Required by most S3-compatible providers.
	UsePathStyle bool
}

// Validate checks that required S3 configuration is present.
func (c *Config) Validate() error {
	if c.Bucket == "" {
		return errors.New("S3 bucket is required")
	}
	return nil
}

// api is the subset of the S3 client the store uses. Satisfied by *s3.Client;
// tests substitute a fake.
type api interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, opts ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, opts ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// Store is the S3-backed cloud.ObjectStore.
type Store struct {
	client api
	bucket string
	prefix string
}

// New creates an S3 object store using the AWS SDK default credential chain.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	var s3Opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		endpoint := cfg.Endpoint
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = &endpoint
		})
	}
	if cfg.UsePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}

	return NewWithClient(s3.NewFromConfig(awsCfg, s3Opts...), cfg), nil
}

// NewWithClient creates a store around an existing client. For tests.
func NewWithClient(client api, cfg Config) *Store {
	return &Store{
		client: client,
		bucket: cfg.Bucket,
		prefix: NormalizePrefix(cfg.Prefix),
	}
}

// NormalizePrefix trims surrounding whitespace and slashes from a key prefix.
func NormalizePrefix(prefix string) string {
	return strings.Trim(strings.TrimSpace(prefix), "/")
}

// objectKey maps a logical key to the full S3 key under the configured prefix.
func (s *Store) objectKey(key string) string {
	clean := strings.TrimPrefix(key, "/")
	if s.prefix == "" {
		return clean
	}
	return s.prefix + "/" + clean
}

func (s *Store) uri(fullKey string) string {
	return fmt.Sprintf("s3://%s/%s", s.bucket, fullKey)
}

// Put implements cloud.ObjectStore.
func (s *Store) Put(ctx context.Context, key string, data []byte, contentType string) (cloud.WriteResult, error) {
	if err := cloud.ValidateKey(key); err != nil {
		return cloud.WriteResult{}, err
	}

	fullKey := s.objectKey(key)
	in := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(fullKey),
		Body:   bytes.NewReader(data),
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}

	if _, err := s.client.PutObject(ctx, in); err != nil {
		return cloud.WriteResult{}, cloud.WrapStorageError(err, "put", key)
	}

	return cloud.WriteResult{
		URI:          s.uri(fullKey),
		BytesWritten: int64(len(data)),
		ContentType:  contentType,
	}, nil
}

// Get implements cloud.ObjectStore.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if err := cloud.ValidateKey(key); err != nil {
		return nil, err
	}

	fullKey := s.objectKey(key)
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(fullKey),
	})
	if err != nil {
		var noKey *s3types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, cloud.NewStorageError(cloud.ErrNotFound, "get", key, err)
		}
		return nil, cloud.WrapStorageError(err, "get", key)
	}
	defer func() { _ = out.Body.Close() }()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, cloud.WrapStorageError(err, "get", key)
	}
	return data, nil
}

// Exists implements cloud.ObjectStore via HeadObject.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	if err := cloud.ValidateKey(key); err != nil {
		return false, err
	}

	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	if err != nil {
		var notFound *s3types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, cloud.WrapStorageError(err, "exists", key)
	}
	return true, nil
}

// List implements cloud.Lister. Returned keys are logical (store prefix
// stripped), sorted by S3's lexicographic listing order.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	fullPrefix := s.objectKey(prefix)

	var keys []string
	var continuation *string
	for {
		out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(s.bucket),
			Prefix:            aws.String(fullPrefix),
			ContinuationToken: continuation,
		})
		if err != nil {
			return nil, cloud.WrapStorageError(err, "list", prefix)
		}
		for _, obj := range out.Contents {
			if obj.Key == nil {
				continue
			}
			key := *obj.Key
			if s.prefix != "" {
				key = strings.TrimPrefix(key, s.prefix+"/")
			}
			keys = append(keys, key)
		}
		if out.IsTruncated == nil || !*out.IsTruncated {
			break
		}
		continuation = out.NextContinuationToken
	}
	return keys, nil
}

// Verify Store implements the boundary interfaces.
var (
	_ cloud.ObjectStore = (*Store)(nil)
	_ cloud.Lister      = (*Store)(nil)
)
