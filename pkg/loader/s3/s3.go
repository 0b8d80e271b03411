package s3

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"golang.org/x/sync/singleflight"

	"github.com/OFFIS-RIT/corpusgraph/pkg/loader"
)

// S3ByteLoader is a ByteLoader implementation that loads file contents
// from an Amazon S3 bucket using the AWS SDK v2 for Go.
//
// This loader is useful when documents are stored in S3 or an
// S3-compatible store instead of the local filesystem.
type S3ByteLoader struct {
	bucket string
	client *s3.Client

	cache   map[string][]byte
	cacheMu sync.RWMutex
	group   singleflight.Group
}

// NewS3ByteLoaderWithClient creates a new S3ByteLoader using an existing
// s3.Client. This is useful if you want to reuse a preconfigured AWS
// client (e.g., with custom middleware or credentials).
func NewS3ByteLoaderWithClient(bucket string, client *s3.Client) *S3ByteLoader {
	return &S3ByteLoader{
		bucket: bucket,
		client: client,
		cache:  make(map[string][]byte),
	}
}

// NewS3ByteLoaderParams defines the configuration parameters for
// creating a new S3ByteLoader.
//
// Bucket specifies the S3 bucket name.
// Endpoint allows overriding the S3 endpoint (useful for S3-compatible
// storage like MinIO).
// Region specifies the AWS region.
// AccessKey and SecretKey provide static credentials.
type NewS3ByteLoaderParams struct {
	Bucket    string
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
}

// NewS3ByteLoader creates a new S3ByteLoader using the provided
// parameters. It initializes an AWS S3 client with static credentials
// and the given endpoint/region.
//
// Example:
//
//	src, err := s3.NewS3ByteLoader(ctx, s3.NewS3ByteLoaderParams{
//		Bucket:    "my-bucket",
//		Endpoint:  "https://s3.amazonaws.com",
//		Region:    "us-east-1",
//		AccessKey: os.Getenv("AWS_ACCESS_KEY_ID"),
//		SecretKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	content, err := src.GetFile(ctx, "docs/input.pdf")
func NewS3ByteLoader(ctx context.Context, params NewS3ByteLoaderParams) (*S3ByteLoader, error) {
	cfg, err := config.LoadDefaultConfig(
		ctx,
		config.WithRegion(params.Region),
		config.WithBaseEndpoint(params.Endpoint),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			params.AccessKey,
			params.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = true
	})

	return &S3ByteLoader{
		bucket: params.Bucket,
		client: client,
		cache:  make(map[string][]byte),
	}, nil
}

// GetFile retrieves the contents of the given key from the configured
// S3 bucket. It implements the ByteLoader interface.
func (l *S3ByteLoader) GetFile(ctx context.Context, key string) ([]byte, error) {
	cacheKey := loader.CacheKey(key)

	l.cacheMu.RLock()
	if cached, ok := l.cache[cacheKey]; ok {
		l.cacheMu.RUnlock()
		return cached, nil
	}
	l.cacheMu.RUnlock()

	result, err, _ := l.group.Do(cacheKey, func() (any, error) {
		l.cacheMu.RLock()
		if cached, ok := l.cache[cacheKey]; ok {
			l.cacheMu.RUnlock()
			return cached, nil
		}
		l.cacheMu.RUnlock()

		out, err := l.client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(l.bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			return nil, err
		}
		defer out.Body.Close()

		buf := new(bytes.Buffer)
		if _, err := io.Copy(buf, out.Body); err != nil {
			return nil, err
		}

		byts := buf.Bytes()

		l.cacheMu.Lock()
		l.cache[cacheKey] = byts
		l.cacheMu.Unlock()

		return byts, nil
	})
	if err != nil {
		return nil, err
	}

	return result.([]byte), nil
}
