package storage

import (
	"errors"

	bolt "go.etcd.io/bbolt"
)

// CreateBucket creates a new bucket
func (s *Storage) CreateBucket(bucket string) error {
	if err := sanitizeBucketName(bucket); err != nil {
		return err
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucket([]byte(bucket))
		if err != nil {
			if errors.Is(err, bolt.ErrBucketExists) {
				return ErrBucketAlreadyExists
			}
			return err
		}
		if _, err := b.CreateBucket(dataBucket); err != nil {
			return err
		}
		_, err = b.CreateBucket(metaBucket)
		return err
	})
}

// BucketExists checks if a bucket exists
func (s *Storage) BucketExists(bucket string) bool {
	if sanitizeBucketName(bucket) != nil {
		return false
	}

	exists := false
	_ = s.db.View(func(tx *bolt.Tx) error {
		exists = tx.Bucket([]byte(bucket)) != nil
		return nil
	})
	return exists
}

// objectBuckets returns the data and metadata buckets of an S3 bucket
func objectBuckets(tx *bolt.Tx, bucket string) (data, meta *bolt.Bucket, err error) {
	b := tx.Bucket([]byte(bucket))
	if b == nil {
		return nil, nil, ErrBucketNotFound
	}
	return b.Bucket(dataBucket), b.Bucket(metaBucket), nil
}
