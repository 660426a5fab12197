package storage

import "time"

// ObjectInfo contains metadata about an object
type ObjectInfo struct {
	Key         string
	Size        int64
	ETag        string
	ContentType string
	ModTime     time.Time
}

// objectMetadata is the record stored next to the object data
type objectMetadata struct {
	ContentType string    `json:"ContentType,omitempty"`
	ETag        string    `json:"ETag"`
	Size        int64     `json:"Size"`
	ModTime     time.Time `json:"ModTime"`
}
