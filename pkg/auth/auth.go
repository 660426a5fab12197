// Package auth implements AWS Signature V4 authentication for S3-compatible servers.
//
// Only header based signatures are accepted. The canonical request is rebuilt
// with package sigv4, the same code that signs outgoing requests.
package auth

import (
	"crypto/subtle"
	"encoding/xml"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/wzshiming/s3sign/pkg/sigv4"
)

// DefaultMaxSkew is the accepted difference between x-amz-date and the server clock
const DefaultMaxSkew = 15 * time.Minute

// AWS4Authenticator handles authentication
type AWS4Authenticator struct {
	mu          sync.RWMutex
	credentials map[string]string // accessKeyID -> secretAccessKey
	now         func() time.Time
	maxSkew     time.Duration
}

// Option is a functional option for configuring AWS4Authenticator
type Option func(*AWS4Authenticator)

// WithClock sets the time source used for the skew check
func WithClock(now func() time.Time) Option {
	return func(a *AWS4Authenticator) {
		a.now = now
	}
}

// WithMaxSkew sets the accepted clock skew, zero disables the check
func WithMaxSkew(d time.Duration) Option {
	return func(a *AWS4Authenticator) {
		a.maxSkew = d
	}
}

// NewAWS4Authenticator creates a new authenticator
func NewAWS4Authenticator(opts ...Option) *AWS4Authenticator {
	a := &AWS4Authenticator{
		credentials: make(map[string]string),
		now:         time.Now,
		maxSkew:     DefaultMaxSkew,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// AddCredentials adds credentials for authentication
func (a *AWS4Authenticator) AddCredentials(accessKeyID, secretAccessKey string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.credentials[accessKeyID] = secretAccessKey
}

func (a *AWS4Authenticator) secret(accessKeyID string) (string, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	secret, ok := a.credentials[accessKeyID]
	return secret, ok
}

// AuthMiddleware is HTTP middleware for authentication
func (a *AWS4Authenticator) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := a.Authenticate(r); err != nil {
			// Use specific error code if AuthError is returned
			var authErr *AuthError
			errResp := Error{
				Code:    "AccessDenied",
				Message: "Access Denied",
			}
			if errors.As(err, &authErr) {
				errResp.Code = authErr.Code
				errResp.Message = authErr.Message
			}
			errResp.RequestID = w.Header().Get("x-amz-request-id")

			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusForbidden)

			if _, writeErr := w.Write([]byte(xml.Header)); writeErr != nil {
				return
			}
			if encodeErr := xml.NewEncoder(w).Encode(errResp); encodeErr != nil {
				return
			}
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Authenticate validates the request signature and returns the access key ID
func (a *AWS4Authenticator) Authenticate(r *http.Request) (string, error) {
	if r.URL.Query().Get("X-Amz-Algorithm") != "" {
		return "", NewAuthError("InvalidArgument", "Query string authentication is not supported")
	}

	authHeader := r.Header.Get(sigv4.AuthorizationHeader)
	if authHeader == "" {
		return "", NewAuthError("AccessDenied", "Missing or invalid authentication information")
	}
	if !strings.HasPrefix(authHeader, sigv4.Algorithm) {
		return "", NewAuthError("InvalidArgument", "Unsupported authorization type")
	}

	parsed, err := ParseAuthorization(authHeader)
	if err != nil {
		return "", err
	}

	secretAccessKey, exists := a.secret(parsed.AccessKeyID)
	if !exists {
		return "", NewAuthError("InvalidAccessKeyId", "The AWS access key ID you provided does not exist in our records")
	}

	timestamp := r.Header.Get(sigv4.AmzDateHeader)
	requestTime, err := time.Parse(sigv4.TimeFormat, timestamp)
	if err != nil {
		return "", NewAuthError("AccessDenied", "Missing or invalid X-Amz-Date header")
	}
	if requestTime.Format(sigv4.ShortTimeFormat) != parsed.Scope.Date {
		return "", NewAuthError("RequestTimeTooSkewed", "Credential scope date does not match X-Amz-Date")
	}
	if a.maxSkew > 0 {
		skew := a.now().Sub(requestTime)
		if skew < 0 {
			skew = -skew
		}
		if skew > a.maxSkew {
			return "", NewAuthError("RequestTimeTooSkewed", "The difference between the request time and the server's time is too large")
		}
	}

	canonical := canonicalRequest(r, parsed.SignedHeaders)
	signer := sigv4.NewSigner(sigv4.Credentials{
		AccessKeyID:     parsed.AccessKeyID,
		SecretAccessKey: secretAccessKey,
	}, parsed.Scope.Region, sigv4.WithService(parsed.Scope.Service))
	expected := signer.Sign(canonical, requestTime)

	if subtle.ConstantTimeCompare([]byte(expected.Signature), []byte(parsed.Signature)) != 1 {
		return "", NewAuthError("SignatureDoesNotMatch", "The request signature we calculated does not match the signature you provided")
	}

	return parsed.AccessKeyID, nil
}

// canonicalRequest rebuilds the descriptor the client signed
func canonicalRequest(r *http.Request, signedHeaders []string) *sigv4.CanonicalRequest {
	headers := make([]sigv4.Header, 0, len(signedHeaders))
	for _, name := range signedHeaders {
		switch name {
		case "host":
			// Host header is special in Go and stored in r.Host
			headers = append(headers, sigv4.Header{Name: name, Value: r.Host})
		default:
			values := r.Header.Values(name)
			if len(values) == 0 && name == "content-length" && r.ContentLength >= 0 {
				values = []string{strconv.FormatInt(r.ContentLength, 10)}
			}
			headers = append(headers, sigv4.Header{Name: name, Value: strings.Join(values, ",")})
		}
	}

	payloadHash := r.Header.Get(sigv4.AmzContentSHA256Header)
	if payloadHash == "" {
		payloadHash = sigv4.UnsignedPayload
	}

	return &sigv4.CanonicalRequest{
		Method:      r.Method,
		Path:        r.URL.EscapedPath(),
		Query:       sigv4.CanonicalQuery(r.URL.Query()),
		Headers:     headers,
		PayloadHash: payloadHash,
	}
}
