package objectstore

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"qslgen/internal/config"
	"qslgen/internal/services"
)

// Uploader stores an object and returns its location.
type Uploader interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
}

// UploadAPI is the subset of the S3 transfer manager used for uploads.
type UploadAPI interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// S3Store uploads cards into a single bucket under a key prefix.
type S3Store struct {
	uploader UploadAPI
	bucket   string
	prefix   string
}

// NewS3Store builds a store from the storage configuration.
func NewS3Store(ctx context.Context, cfg config.Storage) (*S3Store, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "objectstore", "load aws config", "", err)
	}

	var s3Opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		})
	}

	client := s3.NewFromConfig(awsCfg, s3Opts...)
	return NewS3StoreWithUploader(manager.NewUploader(client), cfg.Bucket, cfg.Prefix)
}

// NewS3StoreWithUploader builds a store around an existing uploader.
func NewS3StoreWithUploader(uploader UploadAPI, bucket, prefix string) (*S3Store, error) {
	if strings.TrimSpace(bucket) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "objectstore", "new", "bucket required", nil)
	}
	return &S3Store{uploader: uploader, bucket: bucket, prefix: strings.Trim(prefix, "/")}, nil
}

// Key joins the configured prefix with the run identifier and file name.
func (s *S3Store) Key(runID, fileName string) string {
	return path.Join(s.prefix, runID, path.Base(fileName))
}

// Upload writes body under key and returns the object location.
func (s *S3Store) Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   body,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	result, err := s.uploader.Upload(ctx, input)
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, "objectstore", "s3 upload", key, err)
	}
	if result.Location != "" {
		return result.Location, nil
	}
	return fmt.Sprintf("s3://%s/%s", s.bucket, key), nil
}
