// Package storage provides object storage implementations for template and font assets.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/hotelagreement/backend/internal/domain/agreement"
	infraconfig "github.com/hotelagreement/backend/internal/infrastructure/config"
	"github.com/hotelagreement/backend/internal/infrastructure/printing"
	"go.uber.org/zap"
)

// Ensure S3AssetSource implements AssetSource
var _ printing.AssetSource = (*S3AssetSource)(nil)

// s3API is the subset of the S3 client used by S3AssetSource
type s3API interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
}

// S3AssetSource reads template and font assets from an S3 bucket.
// It is compatible with any S3-compatible storage (AWS S3, RustFS, MinIO, etc.)
type S3AssetSource struct {
	client s3API
	bucket string
	prefix string
	logger *zap.Logger
}

// S3AssetSourceOption is a functional option for configuring S3AssetSource
type S3AssetSourceOption func(*S3AssetSource)

// WithLogger sets a custom logger for S3AssetSource
func WithLogger(logger *zap.Logger) S3AssetSourceOption {
	return func(s *S3AssetSource) {
		s.logger = logger
	}
}

// withClient replaces the S3 client
func withClient(client s3API) S3AssetSourceOption {
	return func(s *S3AssetSource) {
		s.client = client
	}
}

// NewS3AssetSource creates a new S3AssetSource from configuration.
// Asset names are resolved as keys under cfg.Prefix.
func NewS3AssetSource(cfg *infraconfig.S3Config, opts ...S3AssetSourceOption) (*S3AssetSource, error) {
	if cfg == nil {
		return nil, errors.New("s3 configuration is required")
	}

	if cfg.Bucket == "" {
		return nil, errors.New("s3 bucket is required")
	}
	if cfg.AccessKey == "" {
		return nil, errors.New("s3 access key is required")
	}
	if cfg.SecretKey == "" {
		return nil, errors.New("s3 secret key is required")
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = "http://localhost:9000"
	}
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		if cfg.UseSSL {
			endpoint = "https://" + endpoint
		} else {
			endpoint = "http://" + endpoint
		}
	}
	if _, err := url.Parse(endpoint); err != nil {
		return nil, fmt.Errorf("invalid s3 endpoint: %w", err)
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		o.BaseEndpoint = aws.String(endpoint)
	})

	source := &S3AssetSource{
		client: client,
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(source)
	}

	return source, nil
}

// Key returns the object key of an asset
func (s *S3AssetSource) Key(name string) string {
	name = strings.TrimLeft(path.Clean("/"+name), "/")
	if s.prefix == "" {
		return name
	}
	return s.prefix + "/" + name
}

// Exists reports whether the asset object is present
func (s *S3AssetSource) Exists(ctx context.Context, name string) (bool, error) {
	if name == "" {
		return false, nil
	}

	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.Key(name)),
	})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check asset existence: %w", err)
	}

	return true, nil
}

// Open streams the asset object
func (s *S3AssetSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	key := s.Key(name)
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, agreement.NewResourceNotFound("asset not found: "+name, err)
		}
		return nil, fmt.Errorf("failed to get asset: %w", err)
	}

	s.logger.Debug("asset fetched",
		zap.String("bucket", s.bucket),
		zap.String("key", key))
	return out.Body, nil
}

// Upload stores an asset, used when provisioning a bucket from local files
func (s *S3AssetSource) Upload(ctx context.Context, name string, data []byte, contentType string) error {
	if name == "" {
		return errors.New("asset name is required")
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.Key(name)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload asset: %w", err)
	}

	s.logger.Info("asset uploaded",
		zap.String("bucket", s.bucket),
		zap.String("key", s.Key(name)),
		zap.Int("size", len(data)))
	return nil
}

// EnsureBucket creates the bucket if it doesn't exist
func (s *S3AssetSource) EnsureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err == nil {
		return nil
	}

	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if !errors.As(err, &notFound) && !errors.As(err, &noSuchBucket) {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	s.logger.Info("Creating asset bucket", zap.String("bucket", s.bucket))
	_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		var alreadyOwned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &alreadyOwned) {
			return nil
		}
		return fmt.Errorf("failed to create bucket: %w", err)
	}

	return nil
}

// Bucket returns the bucket name
func (s *S3AssetSource) Bucket() string {
	return s.bucket
}

// isNotFound matches the typed S3 not-found errors and the codes
// some S3-compatible services return instead
func isNotFound(err error) bool {
	var notFound *types.NotFound
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &notFound) || errors.As(err, &noSuchKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "NotFound") || strings.Contains(msg, "NoSuchKey")
}
