package server

import (
	"bytes"
	"crypto/subtle"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/wzshiming/s3sign/pkg/sigv4"
	"github.com/wzshiming/s3sign/pkg/storage"
)

// handlePutObject handles PutObject operation
func (s *S3Handler) handlePutObject(w http.ResponseWriter, r *http.Request, bucket, key string) {
	payloadHash := r.Header.Get(sigv4.AmzContentSHA256Header)
	if strings.HasPrefix(payloadHash, "STREAMING-") {
		s.errorResponse(w, r, "NotImplemented", "Streaming uploads are not supported", http.StatusNotImplemented)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.errorResponse(w, r, "IncompleteBody", "Failed to read request body", http.StatusBadRequest)
		return
	}

	if payloadHash != "" && payloadHash != sigv4.UnsignedPayload {
		computed := sigv4.SHA256Hex(body)
		if subtle.ConstantTimeCompare([]byte(computed), []byte(strings.ToLower(payloadHash))) != 1 {
			s.errorResponse(w, r, "XAmzContentSHA256Mismatch", "The provided 'x-amz-content-sha256' header does not match what was computed.", http.StatusBadRequest)
			return
		}
	}

	objInfo, err := s.storage.PutObject(bucket, key, bytes.NewReader(body), r.Header.Get("Content-Type"))
	if err != nil {
		s.storageError(w, r, err)
		return
	}

	s.setHeaders(w)
	w.Header().Set("ETag", fmt.Sprintf("%q", objInfo.ETag))
	w.WriteHeader(http.StatusOK)
}

// handleGetObject handles GetObject and HeadObject operations
func (s *S3Handler) handleGetObject(w http.ResponseWriter, r *http.Request, bucket, key string) {
	reader, info, err := s.storage.GetObject(bucket, key)
	if err != nil {
		s.storageError(w, r, err)
		return
	}
	defer reader.Close()

	s.setHeaders(w)
	w.Header().Set("ETag", fmt.Sprintf("%q", info.ETag))
	w.Header().Set("Content-Type", info.ContentType)

	http.ServeContent(w, r, key, info.ModTime, reader)
}

// handleDeleteObject handles DeleteObject operation
func (s *S3Handler) handleDeleteObject(w http.ResponseWriter, r *http.Request, bucket, key string) {
	err := s.storage.DeleteObject(bucket, key)
	if err != nil && (err != storage.ErrObjectNotFound || s.strictDelete) {
		s.storageError(w, r, err)
		return
	}

	s.setHeaders(w)
	w.WriteHeader(http.StatusNoContent)
}

// storageError maps storage errors to S3 error responses
func (s *S3Handler) storageError(w http.ResponseWriter, r *http.Request, err error) {
	switch err {
	case storage.ErrBucketNotFound:
		s.errorResponse(w, r, "NoSuchBucket", "The specified bucket does not exist", http.StatusNotFound)
	case storage.ErrObjectNotFound:
		s.errorResponse(w, r, "NoSuchKey", "The specified key does not exist.", http.StatusNotFound)
	case storage.ErrInvalidBucketName:
		s.errorResponse(w, r, "InvalidBucketName", "The specified bucket is not valid", http.StatusBadRequest)
	case storage.ErrInvalidObjectKey:
		s.errorResponse(w, r, "InvalidArgument", "The specified key is not valid", http.StatusBadRequest)
	default:
		s.errorResponse(w, r, "InternalError", err.Error(), http.StatusInternalServerError)
	}
}
