package server

import (
	"encoding/xml"
	"net/http"

	"github.com/sirupsen/logrus"
)

// setHeaders sets the headers common to successful responses
func (s *S3Handler) setHeaders(w http.ResponseWriter) {
	w.Header().Set("x-amz-bucket-region", s.region)
}

// errorResponse writes an error response
func (s *S3Handler) errorResponse(w http.ResponseWriter, r *http.Request, code, message string, status int) {
	err := Error{
		Code:      code,
		Message:   message,
		Resource:  r.URL.Path,
		RequestID: w.Header().Get(requestIDHeader),
	}

	if status >= http.StatusInternalServerError {
		s.logger.WithFields(logrus.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"request_id": err.RequestID,
		}).Error(message)
	}

	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(status)

	// HEAD responses carry no body
	if r.Method == http.MethodHead {
		return
	}
	if _, writeErr := w.Write([]byte(xml.Header)); writeErr != nil {
		return
	}
	if encodeErr := xml.NewEncoder(w).Encode(err); encodeErr != nil {
		return
	}
}
