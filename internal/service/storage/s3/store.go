// Package s3 provides an Amazon S3 object store.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"call-summary-service/internal/service/storage"
)

// Config holds S3 client settings.
type Config struct {
	Region       string
	Endpoint     string // optional, e.g. a local MinIO
	UsePathStyle bool
}

// Store implements storage.Store using the AWS SDK v2 S3 client.
type Store struct {
	client *s3.Client
}

// New creates an S3 store using the default AWS credential chain.
func New(ctx context.Context, cfg Config) (*Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})
	return NewWithClient(client), nil
}

// NewWithClient wraps an existing S3 client.
func NewWithClient(client *s3.Client) *Store {
	return &Store{client: client}
}

// Get downloads the object body.
func (s *Store) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		var nf *types.NotFound
		if errors.As(err, &nsk) || errors.As(err, &nf) {
			return nil, fmt.Errorf("s3://%s/%s: %w", bucket, key, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("get s3://%s/%s: %w", bucket, key, err)
	}
	defer out.Body.Close()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read s3://%s/%s: %w", bucket, key, err)
	}
	return body, nil
}

// List returns keys under prefix. A positive maxKeys issues a single bounded
// ListObjectsV2 call; otherwise every page is read.
func (s *Store) List(ctx context.Context, bucket, prefix string, maxKeys int) ([]string, error) {
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(prefix),
	}

	if maxKeys > 0 {
		input.MaxKeys = aws.Int32(int32(maxKeys))
		out, err := s.client.ListObjectsV2(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("list s3://%s/%s: %w", bucket, prefix, err)
		}
		return objectKeys(nil, out.Contents), nil
	}

	var keys []string
	p := s3.NewListObjectsV2Paginator(s.client, input)
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list s3://%s/%s: %w", bucket, prefix, err)
		}
		keys = objectKeys(keys, page.Contents)
	}
	return keys, nil
}

// Put uploads body, overwriting any existing object.
func (s *Store) Put(ctx context.Context, bucket, key string, body []byte, contentType string) error {
	input := &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(body),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("put s3://%s/%s: %w", bucket, key, err)
	}
	return nil
}

func objectKeys(dst []string, objects []types.Object) []string {
	for _, o := range objects {
		dst = append(dst, aws.ToString(o.Key))
	}
	return dst
}
