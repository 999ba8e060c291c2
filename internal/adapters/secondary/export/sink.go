package export

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/fredcamaral/carouselkit/internal/domain/entities"
	"github.com/fredcamaral/carouselkit/internal/domain/ports"
)

// LocalSink writes archives into a directory. Files are written under a
// temporary name and renamed, so a reader never sees a partial archive.
type LocalSink struct {
	dir string
	fs  ports.FileSystem
}

// NewLocalSink creates a sink writing into dir
func NewLocalSink(dir string, fs ports.FileSystem) *LocalSink {
	if fs == nil {
		fs = ports.NewRealFileSystem()
	}
	return &LocalSink{dir: dir, fs: fs}
}

// Save implements ports.ArchiveSink
func (s *LocalSink) Save(ctx context.Context, name, _ string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if name == "" || strings.ContainsAny(name, `/\`) || name == ".." {
		return "", &ExportError{
			Type:    ErrorTypeValidation,
			Message: "invalid archive name",
			Details: name,
			Code:    "INVALID_NAME",
		}
	}

	if err := s.fs.MkdirAll(s.dir, 0750); err != nil {
		return "", sinkError("failed to create output directory", s.dir, err)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", sinkError("failed to read archive", name, err)
	}

	target := filepath.Join(s.dir, name)
	tmp := target + ".tmp"
	if err := s.fs.WriteFile(tmp, data, 0600); err != nil {
		return "", sinkError("failed to write archive", tmp, err)
	}
	if err := s.fs.Rename(tmp, target); err != nil {
		return "", sinkError("failed to move archive into place", target, err)
	}
	return target, nil
}

// s3API is the subset of the S3 client the sink uses
type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Sink uploads archives to an S3 compatible bucket
type S3Sink struct {
	client s3API
	bucket string
	prefix string
}

// NewS3Sink builds an S3 client from the sink configuration. Static keys are
// used when configured, otherwise the default AWS credential chain.
func NewS3Sink(ctx context.Context, cfg entities.SinkConfig) (*S3Sink, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.GetRegion()),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	return newS3Sink(client, cfg.Bucket, cfg.Prefix), nil
}

func newS3Sink(client s3API, bucket, prefix string) *S3Sink {
	return &S3Sink{client: client, bucket: bucket, prefix: strings.Trim(prefix, "/")}
}

// Save implements ports.ArchiveSink and returns the s3:// location
func (s *S3Sink) Save(ctx context.Context, name, contentType string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", sinkError("failed to read archive", name, err)
	}

	key := name
	if s.prefix != "" {
		key = path.Join(s.prefix, name)
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return "", sinkError("failed to upload archive", key, err)
	}
	return fmt.Sprintf("s3://%s/%s", s.bucket, key), nil
}

// NewSink selects the sink backend from configuration
func NewSink(ctx context.Context, cfg entities.SinkConfig, outputDir string, fs ports.FileSystem) (ports.ArchiveSink, error) {
	switch cfg.GetBackend() {
	case "s3":
		return NewS3Sink(ctx, cfg)
	case "local":
		return NewLocalSink(outputDir, fs), nil
	default:
		return nil, &ExportError{
			Type:    ErrorTypeConfiguration,
			Message: "unknown sink backend",
			Details: cfg.Backend,
			Code:    "UNKNOWN_SINK",
		}
	}
}

func sinkError(message, details string, err error) *ExportError {
	return &ExportError{
		Type:      ErrorTypeSink,
		Message:   message,
		Details:   details,
		Code:      "SINK_FAILED",
		Retryable: true,
		Cause:     err,
	}
}
