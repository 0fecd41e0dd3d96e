package objectstore_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"qslgen/internal/services"
	"qslgen/internal/services/objectstore"
)

type stubUploader struct {
	inputs   []*s3.PutObjectInput
	bodies   []string
	location string
	err      error
}

func (s *stubUploader) Upload(_ context.Context, input *s3.PutObjectInput, _ ...func(*manager.Uploader)) (*manager.UploadOutput, error) {
	s.inputs = append(s.inputs, input)
	data, _ := io.ReadAll(input.Body)
	s.bodies = append(s.bodies, string(data))
	if s.err != nil {
		return nil, s.err
	}
	return &manager.UploadOutput{Location: s.location}, nil
}

func TestUploadUsesBucketAndKey(t *testing.T) {
	uploader := &stubUploader{location: "https://bucket.s3.amazonaws.com/qsl/run-1/W1AW.png"}
	store, err := objectstore.NewS3StoreWithUploader(uploader, "bucket", "/qsl/")
	if err != nil {
		t.Fatalf("NewS3StoreWithUploader returned error: %v", err)
	}

	key := store.Key("run-1", "/out/W1AW.png")
	if key != "qsl/run-1/W1AW.png" {
		t.Fatalf("unexpected key %q", key)
	}
	location, err := store.Upload(context.Background(), key, strings.NewReader("png-bytes"), "image/png")
	if err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}
	if location != uploader.location {
		t.Fatalf("unexpected location %q", location)
	}
	input := uploader.inputs[0]
	if *input.Bucket != "bucket" || *input.Key != key || *input.ContentType != "image/png" {
		t.Fatalf("unexpected input: %+v", input)
	}
	if uploader.bodies[0] != "png-bytes" {
		t.Fatalf("unexpected body %q", uploader.bodies[0])
	}
}

func TestUploadFallsBackToS3URI(t *testing.T) {
	store, err := objectstore.NewS3StoreWithUploader(&stubUploader{}, "bucket", "")
	if err != nil {
		t.Fatalf("NewS3StoreWithUploader returned error: %v", err)
	}
	location, err := store.Upload(context.Background(), store.Key("run-1", "K1ABC.png"), strings.NewReader("x"), "")
	if err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}
	if location != "s3://bucket/run-1/K1ABC.png" {
		t.Fatalf("unexpected location %q", location)
	}
}

func TestUploadWrapsError(t *testing.T) {
	store, err := objectstore.NewS3StoreWithUploader(&stubUploader{err: errors.New("denied")}, "bucket", "qsl")
	if err != nil {
		t.Fatalf("NewS3StoreWithUploader returned error: %v", err)
	}
	if _, err := store.Upload(context.Background(), "k", strings.NewReader("x"), ""); !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
}

func TestNewRequiresBucket(t *testing.T) {
	if _, err := objectstore.NewS3StoreWithUploader(&stubUploader{}, " ", ""); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}
