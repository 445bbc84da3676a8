package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/matdori/matdori-backend/config"
	"github.com/matdori/matdori-backend/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	pngBytes  = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")
	jpegBytes = []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00\x01\x01\x00\x00\x01\x00\x01\x00\x00")
)

type fakeObjectAPI struct {
	mu       sync.Mutex
	puts     map[string][]byte
	types    map[string]string
	deletes  []string
	putErr   error
	delErr   error
	blockPut bool
}

func newFakeObjectAPI() *fakeObjectAPI {
	return &fakeObjectAPI{puts: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeObjectAPI) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.blockPut {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.putErr != nil {
		return nil, f.putErr
	}
	body, _ := io.ReadAll(in.Body)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.puts[aws.ToString(in.Key)] = body
	f.types[aws.ToString(in.Key)] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeObjectAPI) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, aws.ToString(in.Key))
	if f.delErr != nil {
		return nil, f.delErr
	}
	return &s3.DeleteObjectOutput{}, nil
}

type countingRecorder struct {
	mu      sync.Mutex
	uploads map[string]int
	deletes map[string]int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{uploads: map[string]int{}, deletes: map[string]int{}}
}

func (r *countingRecorder) RecordUpload(result string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.uploads[result]++
}

func (r *countingRecorder) RecordDelete(result string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deletes[result]++
}

func testS3Config() *config.S3Config {
	return &config.S3Config{
		Region:         "ap-northeast-2",
		Bucket:         "matdori-jokbo",
		UploadTimeout:  time.Second,
		MaxUploadBytes: 1024,
	}
}

func TestS3Storage_Upload(t *testing.T) {
	api := newFakeObjectAPI()
	rec := newCountingRecorder()
	s := newS3Storage(api, testS3Config(), rec)

	url, err := s.Upload(context.Background(), Attachment{Filename: "a.png", Data: pngBytes})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(url, "https://matdori-jokbo.s3.ap-northeast-2.amazonaws.com/jokbos/"))
	assert.True(t, strings.HasSuffix(url, ".png"))
	require.Len(t, api.puts, 1)
	for key, body := range api.puts {
		assert.True(t, strings.HasPrefix(key, "jokbos/"))
		assert.Equal(t, pngBytes, body)
		assert.Equal(t, "image/png", api.types[key])
	}
	assert.Equal(t, 1, rec.uploads[metrics.ResultSuccess])
}

func TestS3Storage_UploadValidation(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{"Empty file", nil, ErrEmptyFile},
		{"Too large", append(append([]byte{}, jpegBytes...), make([]byte, 2048)...), ErrFileTooLarge},
		{"Not an image", []byte("%PDF-1.4 hello"), ErrInvalidFileType},
		{"Plain text", []byte("just some text"), ErrInvalidFileType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newFakeObjectAPI()
			s := newS3Storage(api, testS3Config(), nil)

			_, err := s.Upload(context.Background(), Attachment{Filename: "x", Data: tt.data})
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, ErrStorageFailure)
			assert.Empty(t, api.puts)
		})
	}
}

func TestS3Storage_UploadFailure(t *testing.T) {
	api := newFakeObjectAPI()
	api.putErr = errors.New("access denied")
	rec := newCountingRecorder()
	s := newS3Storage(api, testS3Config(), rec)

	_, err := s.Upload(context.Background(), Attachment{Data: jpegBytes})
	assert.ErrorIs(t, err, ErrStorageFailure)
	assert.Equal(t, 1, rec.uploads[metrics.ResultFailure])
}

func TestS3Storage_UploadTimeout(t *testing.T) {
	api := newFakeObjectAPI()
	api.blockPut = true
	cfg := testS3Config()
	cfg.UploadTimeout = 20 * time.Millisecond
	s := newS3Storage(api, cfg, nil)

	start := time.Now()
	_, err := s.Upload(context.Background(), Attachment{Data: jpegBytes})
	assert.ErrorIs(t, err, ErrStorageFailure)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}

func TestS3Storage_URLRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.S3Config)
		wantURL string
	}{
		{
			name:    "Virtual hosted",
			mutate:  func(*config.S3Config) {},
			wantURL: "https://matdori-jokbo.s3.ap-northeast-2.amazonaws.com/jokbos/a.png",
		},
		{
			name:    "CDN base URL",
			mutate:  func(c *config.S3Config) { c.BaseURL = "https://cdn.matdori.com/" },
			wantURL: "https://cdn.matdori.com/jokbos/a.png",
		},
		{
			name: "Path style endpoint",
			mutate: func(c *config.S3Config) {
				c.Endpoint = "http://localhost:9000"
				c.UsePathStyle = true
			},
			wantURL: "http://localhost:9000/matdori-jokbo/jokbos/a.png",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testS3Config()
			tt.mutate(cfg)
			s := newS3Storage(newFakeObjectAPI(), cfg, nil)

			url := s.fileURL("jokbos/a.png")
			assert.Equal(t, tt.wantURL, url)

			key, err := s.keyFromURL(url)
			require.NoError(t, err)
			assert.Equal(t, "jokbos/a.png", key)
		})
	}
}

func TestS3Storage_Delete(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		api := newFakeObjectAPI()
		rec := newCountingRecorder()
		s := newS3Storage(api, testS3Config(), rec)

		err := s.Delete(context.Background(), "https://matdori-jokbo.s3.ap-northeast-2.amazonaws.com/jokbos/a.png")
		require.NoError(t, err)
		assert.Equal(t, []string{"jokbos/a.png"}, api.deletes)
		assert.Equal(t, 1, rec.deletes[metrics.ResultSuccess])
	})

	t.Run("Foreign URL", func(t *testing.T) {
		api := newFakeObjectAPI()
		s := newS3Storage(api, testS3Config(), nil)

		err := s.Delete(context.Background(), "https://example.com/jokbos/a.png")
		assert.ErrorIs(t, err, ErrForeignURL)
		assert.Empty(t, api.deletes)
	})

	t.Run("Backend failure", func(t *testing.T) {
		api := newFakeObjectAPI()
		api.delErr = errors.New("throttled")
		s := newS3Storage(api, testS3Config(), nil)

		err := s.Delete(context.Background(), "https://matdori-jokbo.s3.ap-northeast-2.amazonaws.com/jokbos/a.png")
		assert.ErrorIs(t, err, ErrStorageFailure)
	})
}
