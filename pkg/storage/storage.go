// Package storage is a bbolt backed object store used by the development server.
//
// Each S3 bucket is a top-level bolt bucket holding two nested buckets, one for
// object data and one for the JSON metadata records.
package storage

import (
	"errors"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	dataBucket = []byte("data")
	metaBucket = []byte("meta")
)

var (
	ErrBucketNotFound      = errors.New("bucket not found")
	ErrBucketAlreadyExists = errors.New("bucket already exists")
	ErrObjectNotFound      = errors.New("object not found")
	ErrInvalidBucketName   = errors.New("invalid bucket name")
	ErrInvalidObjectKey    = errors.New("invalid object key")
)

// Storage is the bbolt storage backend
type Storage struct {
	db  *bolt.DB
	now func() time.Time
}

// Option configures a Storage
type Option func(*Storage)

// WithClock sets the time source used for object modification times
func WithClock(now func() time.Time) Option {
	return func(s *Storage) {
		s.now = now
	}
}

// NewStorage opens or creates the database file at path
func NewStorage(path string, opts ...Option) (*Storage, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	s := &Storage{
		db:  db,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close releases the database file
func (s *Storage) Close() error {
	return s.db.Close()
}

// sanitizeBucketName validates bucket name
func sanitizeBucketName(bucket string) error {
	if bucket == "" || bucket == "." || bucket == ".." {
		return ErrInvalidBucketName
	}
	if strings.Contains(bucket, "/") || strings.Contains(bucket, "\\") {
		return ErrInvalidBucketName
	}
	if strings.HasPrefix(bucket, ".") {
		return ErrInvalidBucketName
	}
	return nil
}

// sanitizeObjectKey validates object key
func sanitizeObjectKey(key string) error {
	if key == "" || key == "." || key == ".." {
		return ErrInvalidObjectKey
	}
	if len(key) > bolt.MaxKeySize {
		return ErrInvalidObjectKey
	}
	return nil
}
