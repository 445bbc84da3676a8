package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/matdori/matdori-backend/config"
	"github.com/matdori/matdori-backend/internal/metrics"
	"github.com/matdori/matdori-backend/pkg/logger"
)

const jokboFolder = "jokbos"

var (
	ErrStorageFailure  = errors.New("attachment storage failure")
	ErrInvalidFileType = fmt.Errorf("%w: unsupported file type", ErrStorageFailure)
	ErrFileTooLarge    = fmt.Errorf("%w: file too large", ErrStorageFailure)
	ErrEmptyFile       = fmt.Errorf("%w: empty file", ErrStorageFailure)
	ErrForeignURL      = fmt.Errorf("%w: url does not belong to this bucket", ErrStorageFailure)
)

// 업로드 허용 이미지 타입
var allowedImageTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

// Attachment is one image payload submitted with a jokbo.
type Attachment struct {
	Filename string
	Data     []byte
}

// AttachmentStore uploads attachment bytes and returns a stable URL for them.
type AttachmentStore interface {
	Upload(ctx context.Context, a Attachment) (string, error)
	Delete(ctx context.Context, fileURL string) error
}

// Recorder receives upload/delete outcomes.
type Recorder interface {
	RecordUpload(result string)
	RecordDelete(result string)
}

type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type S3Storage struct {
	client       objectAPI
	bucket       string
	region       string
	baseURL      string
	endpoint     string
	usePathStyle bool
	timeout      time.Duration
	maxBytes     int64
	recorder     Recorder
}

func NewS3Storage(cfg *config.S3Config, recorder Recorder) *S3Storage {
	var awsCfg aws.Config
	var err error

	// If credentials are provided, use them. Otherwise, use default credential chain
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		awsCfg = aws.Config{
			Region: cfg.Region,
			Credentials: credentials.NewStaticCredentialsProvider(
				cfg.AccessKeyID,
				cfg.SecretAccessKey,
				"",
			),
		}
	} else {
		awsCfg, err = awsconfig.LoadDefaultConfig(context.Background(),
			awsconfig.WithRegion(cfg.Region),
		)
		if err != nil {
			logger.Warn("Failed to load default AWS config, using region only", map[string]interface{}{
				"error": err.Error(),
			})
			awsCfg = aws.Config{Region: cfg.Region}
		}
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		// MinIO / LocalStack
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	return newS3Storage(client, cfg, recorder)
}

func newS3Storage(client objectAPI, cfg *config.S3Config, recorder Recorder) *S3Storage {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &S3Storage{
		client:       client,
		bucket:       cfg.Bucket,
		region:       cfg.Region,
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		endpoint:     strings.TrimRight(cfg.Endpoint, "/"),
		usePathStyle: cfg.UsePathStyle,
		timeout:      cfg.UploadTimeout,
		maxBytes:     cfg.MaxUploadBytes,
		recorder:     recorder,
	}
}

// Upload validates the payload and stores it under jokbos/<uuid><ext>.
func (s *S3Storage) Upload(ctx context.Context, a Attachment) (string, error) {
	mime, err := s.validate(a)
	if err != nil {
		s.recorder.RecordUpload(metrics.ResultInvalid)
		logger.Warn("Rejected attachment", map[string]interface{}{
			"filename": a.Filename,
			"size":     len(a.Data),
			"error":    err.Error(),
		})
		return "", err
	}

	key := fmt.Sprintf("%s/%s%s", jokboFolder, uuid.New().String(), mime.Extension())

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(a.Data),
		ContentType:   aws.String(mime.String()),
		ContentLength: aws.Int64(int64(len(a.Data))),
	})
	if err != nil {
		s.recorder.RecordUpload(metrics.ResultFailure)
		logger.Error("Failed to upload attachment", err, map[string]interface{}{
			"key": key,
		})
		return "", fmt.Errorf("%w: put %s: %w", ErrStorageFailure, key, err)
	}

	s.recorder.RecordUpload(metrics.ResultSuccess)
	logger.Debug("Attachment uploaded", map[string]interface{}{
		"key":  key,
		"size": len(a.Data),
	})
	return s.fileURL(key), nil
}

// Delete removes the object behind fileURL.
func (s *S3Storage) Delete(ctx context.Context, fileURL string) error {
	key, err := s.keyFromURL(fileURL)
	if err != nil {
		s.recorder.RecordDelete(metrics.ResultInvalid)
		return err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		s.recorder.RecordDelete(metrics.ResultFailure)
		return fmt.Errorf("%w: delete %s: %w", ErrStorageFailure, key, err)
	}

	s.recorder.RecordDelete(metrics.ResultSuccess)
	return nil
}

func (s *S3Storage) validate(a Attachment) (*mimetype.MIME, error) {
	if len(a.Data) == 0 {
		return nil, ErrEmptyFile
	}
	if s.maxBytes > 0 && int64(len(a.Data)) > s.maxBytes {
		return nil, fmt.Errorf("%w: %d bytes exceeds %d", ErrFileTooLarge, len(a.Data), s.maxBytes)
	}

	mime := mimetype.Detect(a.Data)
	for _, allowed := range allowedImageTypes {
		if mime.Is(allowed) {
			return mime, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrInvalidFileType, mime.String())
}

func (s *S3Storage) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *S3Storage) fileURL(key string) string {
	switch {
	case s.baseURL != "":
		// CloudFront or custom domain
		return fmt.Sprintf("%s/%s", s.baseURL, key)
	case s.endpoint != "" && s.usePathStyle:
		return fmt.Sprintf("%s/%s/%s", s.endpoint, s.bucket, key)
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
	}
}

func (s *S3Storage) keyFromURL(fileURL string) (string, error) {
	if s.baseURL != "" && strings.HasPrefix(fileURL, s.baseURL+"/") {
		return strings.TrimPrefix(fileURL, s.baseURL+"/"), nil
	}

	u, err := url.Parse(fileURL)
	if err != nil || u.Path == "" {
		return "", fmt.Errorf("%w: %q", ErrForeignURL, fileURL)
	}

	key := strings.TrimPrefix(u.Path, "/")
	if s.usePathStyle {
		prefix := s.bucket + "/"
		if !strings.HasPrefix(key, prefix) {
			return "", fmt.Errorf("%w: %q", ErrForeignURL, fileURL)
		}
		key = strings.TrimPrefix(key, prefix)
	} else if !strings.HasPrefix(u.Host, s.bucket+".") {
		return "", fmt.Errorf("%w: %q", ErrForeignURL, fileURL)
	}

	if key == "" {
		return "", fmt.Errorf("%w: %q", ErrForeignURL, fileURL)
	}
	return key, nil
}

type nopRecorder struct{}

func (nopRecorder) RecordUpload(string) {}
func (nopRecorder) RecordDelete(string) {}
