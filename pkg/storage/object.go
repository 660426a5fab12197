package storage

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"io"

	bolt "go.etcd.io/bbolt"
)

// objectReader wraps a bytes.Reader to implement io.ReadSeekCloser
type objectReader struct {
	*bytes.Reader
}

// Close implements io.Closer (no-op for in-memory data)
func (r *objectReader) Close() error {
	return nil
}

// PutObject stores an object, replacing any previous version
func (s *Storage) PutObject(bucket, key string, data io.Reader, contentType string) (*ObjectInfo, error) {
	if err := sanitizeBucketName(bucket); err != nil {
		return nil, err
	}
	if err := sanitizeObjectKey(key); err != nil {
		return nil, err
	}

	content, err := io.ReadAll(data)
	if err != nil {
		return nil, err
	}

	sum := md5.Sum(content)
	metadata := objectMetadata{
		ContentType: contentType,
		ETag:        hex.EncodeToString(sum[:]),
		Size:        int64(len(content)),
		ModTime:     s.now().UTC(),
	}
	record, err := json.Marshal(metadata)
	if err != nil {
		return nil, err
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		dataB, metaB, err := objectBuckets(tx, bucket)
		if err != nil {
			return err
		}
		if err := dataB.Put([]byte(key), content); err != nil {
			return err
		}
		return metaB.Put([]byte(key), record)
	})
	if err != nil {
		return nil, err
	}

	return metadata.info(key), nil
}

// GetObject retrieves an object
func (s *Storage) GetObject(bucket, key string) (io.ReadSeekCloser, *ObjectInfo, error) {
	if err := sanitizeBucketName(bucket); err != nil {
		return nil, nil, err
	}
	if err := sanitizeObjectKey(key); err != nil {
		return nil, nil, err
	}

	var (
		content  []byte
		metadata objectMetadata
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		dataB, metaB, err := objectBuckets(tx, bucket)
		if err != nil {
			return err
		}
		record := metaB.Get([]byte(key))
		if record == nil {
			return ErrObjectNotFound
		}
		if err := json.Unmarshal(record, &metadata); err != nil {
			return err
		}
		// Values are only valid for the life of the transaction
		content = bytes.Clone(dataB.Get([]byte(key)))
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return &objectReader{bytes.NewReader(content)}, metadata.info(key), nil
}

// DeleteObject deletes an object
func (s *Storage) DeleteObject(bucket, key string) error {
	if err := sanitizeBucketName(bucket); err != nil {
		return err
	}
	if err := sanitizeObjectKey(key); err != nil {
		return err
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		dataB, metaB, err := objectBuckets(tx, bucket)
		if err != nil {
			return err
		}
		if metaB.Get([]byte(key)) == nil {
			return ErrObjectNotFound
		}
		if err := dataB.Delete([]byte(key)); err != nil {
			return err
		}
		return metaB.Delete([]byte(key))
	})
}

func (m *objectMetadata) info(key string) *ObjectInfo {
	contentType := m.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return &ObjectInfo{
		Key:         key,
		Size:        m.Size,
		ETag:        m.ETag,
		ContentType: contentType,
		ModTime:     m.ModTime,
	}
}
