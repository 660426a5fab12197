// Package server implements a small path-style S3 endpoint backed by package
// storage. It understands the object requests issued by package objstore plus
// the bucket calls needed to prepare a test environment.
package server

import (
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/wzshiming/s3sign/pkg/storage"
)

const requestIDHeader = "x-amz-request-id"

// S3Handler represents the S3-compatible server
type S3Handler struct {
	storage      *storage.Storage
	region       string
	strictDelete bool
	logger       logrus.FieldLogger
}

// Option is a functional option for configuring S3Handler
type Option func(*S3Handler)

// WithRegion sets the region for the S3Handler
func WithRegion(region string) Option {
	return func(h *S3Handler) {
		h.region = region
	}
}

// WithStrictDelete makes DELETE of a missing object answer 404 NoSuchKey
// instead of 204.
func WithStrictDelete() Option {
	return func(h *S3Handler) {
		h.strictDelete = true
	}
}

// WithLogger sets the logger for internal errors
func WithLogger(logger logrus.FieldLogger) Option {
	return func(h *S3Handler) {
		h.logger = logger
	}
}

// NewS3Handler creates a new S3 server
func NewS3Handler(storage *storage.Storage, opts ...Option) *S3Handler {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	h := &S3Handler{
		storage: storage,
		region:  "us-east-1", // default region
		logger:  discard,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RequestID assigns an x-amz-request-id to every response before next runs,
// so that errors written by outer middleware carry it too.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if w.Header().Get(requestIDHeader) == "" {
			w.Header().Set(requestIDHeader, uuid.NewString())
		}
		next.ServeHTTP(w, r)
	})
}

// ServeHTTP routes path-style bucket and object requests
func (s *S3Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if w.Header().Get(requestIDHeader) == "" {
		w.Header().Set(requestIDHeader, uuid.NewString())
	}

	path := strings.TrimPrefix(r.URL.Path, "/")
	if path == "" {
		s.errorResponse(w, r, "MethodNotAllowed", "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	parts := strings.SplitN(path, "/", 2)
	bucket := parts[0]
	var key string
	if len(parts) > 1 {
		key = parts[1]
	}

	if key == "" {
		switch r.Method {
		case http.MethodPut:
			s.handleCreateBucket(w, r, bucket)
		case http.MethodHead:
			s.handleHeadBucket(w, r, bucket)
		default:
			s.errorResponse(w, r, "MethodNotAllowed", "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	switch r.Method {
	case http.MethodPut:
		s.handlePutObject(w, r, bucket, key)
	case http.MethodGet, http.MethodHead:
		s.handleGetObject(w, r, bucket, key)
	case http.MethodDelete:
		s.handleDeleteObject(w, r, bucket, key)
	default:
		s.errorResponse(w, r, "MethodNotAllowed", "Method not allowed", http.StatusMethodNotAllowed)
	}
}
