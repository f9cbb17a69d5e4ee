// Package archive stores finished documents.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"

	"pharmabill/m/internal/config"
)

// Sink receives a named document and returns where it ended up.
type Sink interface {
	Put(ctx context.Context, name string, body []byte) (string, error)
}

// New returns an S3 sink when a bucket is configured and a directory sink
// otherwise.
func New(cfg config.ArchiveConfig) (Sink, error) {
	if cfg.S3Bucket != "" {
		return NewS3Sink(cfg.S3Region, cfg.S3Bucket, cfg.S3Prefix)
	}
	return NewDirSink(cfg.Dir), nil
}

func checkName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("invalid document name %q", name)
	}
	return nil
}

// DirSink writes documents into a local directory.
type DirSink struct {
	Dir string
}

// NewDirSink writes documents into dir, creating it on first use.
func NewDirSink(dir string) *DirSink {
	return &DirSink{Dir: dir}
}

// Put writes body to Dir/name through a temporary file, replacing any
// previous document of the same name.
func (s *DirSink) Put(ctx context.Context, name string, body []byte) (string, error) {
	if err := checkName(name); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create archive dir: %w", err)
	}

	tmp, err := os.CreateTemp(s.Dir, "."+name+".*")
	if err != nil {
		return "", fmt.Errorf("create %s: %w", name, err)
	}
	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("close %s: %w", name, err)
	}

	dest := filepath.Join(s.Dir, name)
	if err := os.Rename(tmp.Name(), dest); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("store %s: %w", name, err)
	}
	return dest, nil
}

// S3Sink uploads documents to a bucket under an optional key prefix.
type S3Sink struct {
	uploader s3manageriface.UploaderAPI
	bucket   string
	prefix   string
}

// NewS3Sink uses the default AWS credential chain.
func NewS3Sink(region, bucket, prefix string) (*S3Sink, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
	})
	if err != nil {
		return nil, fmt.Errorf("aws session: %w", err)
	}
	return NewS3SinkWithUploader(s3manager.NewUploader(sess), bucket, prefix), nil
}

// NewS3SinkWithUploader uploads through uploader, under prefix in bucket.
func NewS3SinkWithUploader(uploader s3manageriface.UploaderAPI, bucket, prefix string) *S3Sink {
	return &S3Sink{uploader: uploader, bucket: bucket, prefix: strings.Trim(prefix, "/")}
}

// Put uploads body as name and returns its object location.
func (s *S3Sink) Put(ctx context.Context, name string, body []byte) (string, error) {
	if err := checkName(name); err != nil {
		return "", err
	}
	key := name
	if s.prefix != "" {
		key = path.Join(s.prefix, name)
	}
	out, err := s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType(name)),
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	if out != nil && out.Location != "" {
		return out.Location, nil
	}
	return fmt.Sprintf("s3://%s/%s", s.bucket, key), nil
}

func contentType(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return "application/pdf"
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ".json":
		return "application/json"
	}
	return "application/octet-stream"
}
