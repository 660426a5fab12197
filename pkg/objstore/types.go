package objstore

import (
	"encoding/xml"
	"errors"
	"fmt"
)

var (
	ErrUploadFailed  = errors.New("upload failed")
	ErrDeleteFailed  = errors.New("delete failed")
	ErrInvalidConfig = errors.New("invalid storage config")
)

const (
	opUpload = "upload"
	opDelete = "delete"
)

// Error represents an S3 error response body
type Error struct {
	XMLName   xml.Name `xml:"Error"`
	Code      string   `xml:"Code"`
	Message   string   `xml:"Message"`
	RequestID string   `xml:"RequestId"`
}

// StatusError is returned when the store answers with an unexpected HTTP status.
// It unwraps to ErrUploadFailed or ErrDeleteFailed depending on Op.
type StatusError struct {
	Op         string
	Key        string
	StatusCode int
	StatusText string

	// Code and Message are taken from the S3 error body when present
	Code    string
	Message string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s %q: %d %s", e.Op, e.Key, e.StatusCode, e.StatusText)
	if e.Code != "" {
		msg += ": " + e.Code
		if e.Message != "" {
			msg += ": " + e.Message
		}
	}
	return msg
}

func (e *StatusError) Unwrap() error {
	switch e.Op {
	case opUpload:
		return ErrUploadFailed
	case opDelete:
		return ErrDeleteFailed
	}
	return nil
}
