package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Miraku17/Exam-Permit/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestNewS3ObjectStorage_Validation(t *testing.T) {
	tests := []struct {
		name string
		cfg  *config.StorageConfig
		msg  string
	}{
		{"nil config", nil, "configuration is required"},
		{"missing bucket", &config.StorageConfig{AccessKey: "k", SecretKey: "s"}, "bucket is required"},
		{"missing access key", &config.StorageConfig{Bucket: "b", SecretKey: "s"}, "access key is required"},
		{"missing secret key", &config.StorageConfig{Bucket: "b", AccessKey: "k"}, "secret key is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewS3ObjectStorage(tt.cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestNewS3ObjectStorage_BaseURL(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.StorageConfig
		want string
	}{
		{
			name: "public base url wins",
			cfg:  config.StorageConfig{Endpoint: "minio:9000", PublicBaseURL: "https://cdn.example.edu/proofs/"},
			want: "https://cdn.example.edu/proofs",
		},
		{
			name: "endpoint without scheme",
			cfg:  config.StorageConfig{Endpoint: "minio:9000"},
			want: "http://minio:9000/tuition",
		},
		{
			name: "endpoint with ssl",
			cfg:  config.StorageConfig{Endpoint: "storage.example.edu", UseSSL: true},
			want: "https://storage.example.edu/tuition",
		},
		{
			name: "aws default",
			cfg:  config.StorageConfig{Region: "ap-southeast-1"},
			want: "https://tuition.s3.ap-southeast-1.amazonaws.com",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			cfg.Bucket = "tuition"
			cfg.AccessKey = "key"
			cfg.SecretKey = "secret"
			s, err := NewS3ObjectStorage(&cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.want, s.BaseURL())
		})
	}
}

type recordedRequest struct {
	method      string
	path        string
	contentType string
	body        string
}

func newFakeS3(t *testing.T) (*httptest.Server, func() []recordedRequest) {
	t.Helper()
	var mu sync.Mutex
	var reqs []recordedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		reqs = append(reqs, recordedRequest{r.Method, r.URL.Path, r.Header.Get("Content-Type"), string(body)})
		mu.Unlock()
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)
	return srv, func() []recordedRequest {
		mu.Lock()
		defer mu.Unlock()
		return append([]recordedRequest(nil), reqs...)
	}
}

func TestS3ObjectStorage_PutAndDelete(t *testing.T) {
	srv, requests := newFakeS3(t)
	s, err := NewS3ObjectStorage(&config.StorageConfig{
		Endpoint:     srv.URL,
		Bucket:       "tuition",
		AccessKey:    "key",
		SecretKey:    "secret",
		UsePathStyle: true,
	}, WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)

	url, err := s.Put(context.Background(), "payment-proofs/TRX1.png", []byte("png-bytes"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/tuition/payment-proofs/TRX1.png", url)

	require.NoError(t, s.Delete(context.Background(), "payment-proofs/TRX1.png"))

	reqs := requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, http.MethodPut, reqs[0].method)
	assert.Equal(t, "/tuition/payment-proofs/TRX1.png", reqs[0].path)
	assert.Equal(t, "image/png", reqs[0].contentType)
	assert.Contains(t, reqs[0].body, "png-bytes")
	assert.Equal(t, http.MethodDelete, reqs[1].method)
}

func TestS3ObjectStorage_PutFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`<Error><Code>AccessDenied</Code><Message>denied</Message></Error>`))
	}))
	defer srv.Close()

	s, err := NewS3ObjectStorage(&config.StorageConfig{
		Endpoint: srv.URL, Bucket: "tuition", AccessKey: "key", SecretKey: "secret", UsePathStyle: true,
	})
	require.NoError(t, err)

	_, err = s.Put(context.Background(), "payment-proofs/x.png", []byte("x"), "image/png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to upload object")
}

func TestS3ObjectStorage_DownloadURL(t *testing.T) {
	s, err := NewS3ObjectStorage(&config.StorageConfig{
		Endpoint: "http://localhost:9000", Bucket: "tuition", AccessKey: "key", SecretKey: "secret", UsePathStyle: true,
	}, WithPresignExpiration(time.Hour))
	require.NoError(t, err)

	url, expiresAt, err := s.DownloadURL(context.Background(), "payment-proofs/TRX1.png", 0)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "http://localhost:9000/tuition/payment-proofs/TRX1.png?"))
	assert.Contains(t, url, "X-Amz-Expires=3600")
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)
}

func TestS3ObjectStorage_EmptyKey(t *testing.T) {
	s, err := NewS3ObjectStorage(&config.StorageConfig{Bucket: "b", AccessKey: "k", SecretKey: "s"})
	require.NoError(t, err)
	ctx := context.Background()

	_, err = s.Put(ctx, "", nil, "")
	assert.ErrorIs(t, err, ErrEmptyKey)
	assert.ErrorIs(t, s.Delete(ctx, ""), ErrEmptyKey)
	_, _, err = s.DownloadURL(ctx, "", time.Minute)
	assert.ErrorIs(t, err, ErrEmptyKey)
}

func TestMemoryObjectStorage(t *testing.T) {
	s := NewMemoryObjectStorage("http://localhost:8080/files/")
	ctx := context.Background()

	url, err := s.Put(ctx, "payment-proofs/a.pdf", []byte("%PDF"), "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/files/payment-proofs/a.pdf", url)
	assert.Equal(t, 1, s.Len())

	obj, ok := s.Get("payment-proofs/a.pdf")
	require.True(t, ok)
	assert.Equal(t, "application/pdf", obj.ContentType)
	assert.Equal(t, []byte("%PDF"), obj.Data)

	dl, _, err := s.DownloadURL(ctx, "payment-proofs/a.pdf", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, url, dl)

	require.NoError(t, s.Delete(ctx, "payment-proofs/a.pdf"))
	assert.Zero(t, s.Len())

	_, err = s.Put(ctx, "", nil, "")
	assert.ErrorIs(t, err, ErrEmptyKey)
	assert.Equal(t, "memory://proofs", NewMemoryObjectStorage("").BaseURL())
}

func TestObjectKey(t *testing.T) {
	assert.Equal(t, "payment-proofs/a.png", ObjectKey("payment-proofs", "a.png"))
	assert.Equal(t, "payment-proofs/a.png", ObjectKey("/payment-proofs/", "/a.png"))
	assert.Equal(t, "a.png", ObjectKey("", "a.png"))
}

func TestKeyFromURL(t *testing.T) {
	key, ok := KeyFromURL("https://cdn.example.edu/proofs/", "https://cdn.example.edu/proofs/payment-proofs/a.png")
	assert.True(t, ok)
	assert.Equal(t, "payment-proofs/a.png", key)

	_, ok = KeyFromURL("https://cdn.example.edu/proofs", "https://elsewhere.example.com/a.png")
	assert.False(t, ok)
	_, ok = KeyFromURL("https://cdn.example.edu/proofs", "https://cdn.example.edu/proofs/")
	assert.False(t, ok)
}
