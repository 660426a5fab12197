// Package sigv4 implements AWS Signature Version 4 header signing for S3-compatible stores.
//
// Only header based signing is supported, presigned URLs are not.
package sigv4

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	// Algorithm is the signing algorithm name used in the string to sign and Authorization header
	Algorithm = "AWS4-HMAC-SHA256"
	// ServiceS3 is the service name in the credential scope
	ServiceS3 = "s3"
	// UnsignedPayload replaces the payload hash when the body is not signed
	UnsignedPayload = "UNSIGNED-PAYLOAD"
	// EmptyPayloadHash is the SHA256 hash of an empty body
	EmptyPayloadHash = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"

	// TimeFormat is the ISO 8601 basic format of x-amz-date
	TimeFormat = "20060102T150405Z"
	// ShortTimeFormat is the date stamp format of the credential scope
	ShortTimeFormat = "20060102"

	// AmzDateHeader carries the signing timestamp
	AmzDateHeader = "X-Amz-Date"
	// AmzContentSHA256Header carries the payload hash
	AmzContentSHA256Header = "X-Amz-Content-Sha256"
	// AuthorizationHeader carries the signature
	AuthorizationHeader = "Authorization"

	secretKeyPrefix = "AWS4"
	scopeTerminator = "aws4_request"
)

// Credentials represents AWS credentials
type Credentials struct {
	AccessKeyID     string
	SecretAccessKey string
}

// Material holds everything computed while signing one request
type Material struct {
	Timestamp        string
	DateStamp        string
	CredentialScope  string
	CanonicalRequest string
	SignedHeaders    string
	StringToSign     string
	SigningKey       Key
	Signature        string
	Authorization    string
}

// Signer signs requests for a single set of credentials and region
type Signer struct {
	credentials Credentials
	region      string
	service     string
	cache       *KeyCache
}

// Option is a functional option for configuring Signer
type Option func(*Signer)

// WithService overrides the service name of the credential scope
func WithService(service string) Option {
	return func(s *Signer) {
		s.service = service
	}
}

// WithKeyCache reuses derived signing keys within a credential scope
func WithKeyCache(cache *KeyCache) Option {
	return func(s *Signer) {
		s.cache = cache
	}
}

// NewSigner creates a new signer
func NewSigner(credentials Credentials, region string, opts ...Option) *Signer {
	s := &Signer{
		credentials: credentials,
		region:      region,
		service:     ServiceS3,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Region returns the signing region
func (s *Signer) Region() string {
	return s.region
}

// Sign computes the signature of req at time t.
// The timestamp and the credential scope both derive from t.
func (s *Signer) Sign(req *CanonicalRequest, t time.Time) *Material {
	t = t.UTC()
	scope := NewScope(t, s.region, s.service)
	timestamp := t.Format(TimeFormat)

	canonicalRequest := req.String()
	credentialScope := scope.String()

	stringToSign := strings.Join([]string{
		Algorithm,
		timestamp,
		credentialScope,
		SHA256Hex([]byte(canonicalRequest)),
	}, "\n")

	var signingKey Key
	if s.cache != nil {
		signingKey = s.cache.Get(s.credentials.AccessKeyID, s.credentials.SecretAccessKey, scope)
	} else {
		signingKey = DeriveScopedKey(s.credentials.SecretAccessKey, scope)
	}

	signature := HMACSHA256Hex(signingKey, stringToSign)
	signedHeaders := req.SignedHeaders()

	return &Material{
		Timestamp:        timestamp,
		DateStamp:        scope.Date,
		CredentialScope:  credentialScope,
		CanonicalRequest: canonicalRequest,
		SignedHeaders:    signedHeaders,
		StringToSign:     stringToSign,
		SigningKey:       signingKey,
		Signature:        signature,
		Authorization:    BuildAuthorization(s.credentials.AccessKeyID, credentialScope, signedHeaders, signature),
	}
}

// SignHTTP signs r in place at time t.
//
// The signed headers are host, content-length (when the length is known and
// non-zero), content-type and every x-amz-* header. X-Amz-Date and
// X-Amz-Content-Sha256 are set on r before signing.
func (s *Signer) SignHTTP(r *http.Request, payloadHash string, t time.Time) *Material {
	r.Header.Set(AmzDateHeader, t.UTC().Format(TimeFormat))
	r.Header.Set(AmzContentSHA256Header, payloadHash)
	r.Header.Del(AuthorizationHeader)

	host := r.Host
	if host == "" {
		host = r.URL.Host
	}

	headers := []Header{{Name: "host", Value: host}}
	if r.ContentLength > 0 {
		headers = append(headers, Header{Name: "content-length", Value: strconv.FormatInt(r.ContentLength, 10)})
	}
	for name, values := range r.Header {
		lower := strings.ToLower(name)
		if lower != "content-type" && !strings.HasPrefix(lower, "x-amz-") {
			continue
		}
		for _, v := range values {
			headers = append(headers, Header{Name: lower, Value: v})
		}
	}

	m := s.Sign(&CanonicalRequest{
		Method:      r.Method,
		Path:        r.URL.EscapedPath(),
		Query:       CanonicalQuery(r.URL.Query()),
		Headers:     headers,
		PayloadHash: payloadHash,
	}, t)

	r.Header.Set(AuthorizationHeader, m.Authorization)
	return m
}

// BuildAuthorization formats the Authorization header value
func BuildAuthorization(accessKeyID, credentialScope, signedHeaders, signature string) string {
	return Algorithm + " Credential=" + accessKeyID + "/" + credentialScope +
		", SignedHeaders=" + signedHeaders +
		", Signature=" + signature
}
