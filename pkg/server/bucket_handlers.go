package server

import (
	"net/http"

	"github.com/wzshiming/s3sign/pkg/storage"
)

// handleCreateBucket handles CreateBucket operation
func (s *S3Handler) handleCreateBucket(w http.ResponseWriter, r *http.Request, bucket string) {
	err := s.storage.CreateBucket(bucket)
	if err != nil {
		switch err {
		case storage.ErrBucketAlreadyExists:
			s.errorResponse(w, r, "BucketAlreadyOwnedByYou", "Bucket already exists", http.StatusConflict)
		case storage.ErrInvalidBucketName:
			s.errorResponse(w, r, "InvalidBucketName", "The specified bucket is not valid", http.StatusBadRequest)
		default:
			s.errorResponse(w, r, "InternalError", err.Error(), http.StatusInternalServerError)
		}
		return
	}

	s.setHeaders(w)
	w.Header().Set("Location", "/"+bucket)
	w.WriteHeader(http.StatusOK)
}

// handleHeadBucket handles HeadBucket operation
func (s *S3Handler) handleHeadBucket(w http.ResponseWriter, r *http.Request, bucket string) {
	s.setHeaders(w)
	if !s.storage.BucketExists(bucket) {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusOK)
}
