// Package objstore implements an upload/delete client for S3-compatible object stores.
//
// Requests are signed with AWS Signature Version 4 in headers. The client holds
// only immutable configuration and is safe for concurrent use.
package objstore

import (
	"bytes"
	"context"
	"encoding/xml"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/wzshiming/s3sign/pkg/sigv4"
)

const (
	// maxErrorBody bounds how much of an error response is read
	maxErrorBody = 64 << 10

	defaultContentType = "application/octet-stream"
)

// Client uploads and deletes objects in a single bucket
type Client struct {
	endpoint   *url.URL
	bucket     string
	signer     *sigv4.Signer
	httpClient *http.Client
	now        func() time.Time
	logger     logrus.FieldLogger
	metrics    *Metrics
	keyCache   *sigv4.KeyCache
}

// Option is a functional option for configuring Client
type Option func(*Client)

// WithHTTPClient sets the HTTP client used to issue requests.
// Timeouts and cancellation belong to the HTTP client and the request context.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithClock sets the time source used for x-amz-date and the credential scope
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// WithLogger sets the logger
func WithLogger(logger logrus.FieldLogger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithMetrics records request metrics
func WithMetrics(metrics *Metrics) Option {
	return func(c *Client) {
		c.metrics = metrics
	}
}

// WithKeyCache reuses derived signing keys within a credential scope
func WithKeyCache(cache *sigv4.KeyCache) Option {
	return func(c *Client) {
		c.keyCache = cache
	}
}

// New creates a client for cfg
func New(cfg Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	endpoint, err := url.Parse(strings.TrimRight(cfg.Endpoint, "/"))
	if err != nil {
		return nil, err
	}

	discard := logrus.New()
	discard.SetOutput(io.Discard)

	c := &Client{
		endpoint:   endpoint,
		bucket:     cfg.Bucket,
		httpClient: http.DefaultClient,
		now:        time.Now,
		logger:     discard,
	}
	for _, opt := range opts {
		opt(c)
	}

	var signerOpts []sigv4.Option
	if c.keyCache != nil {
		signerOpts = append(signerOpts, sigv4.WithKeyCache(c.keyCache))
	}
	c.signer = sigv4.NewSigner(sigv4.Credentials{
		AccessKeyID:     cfg.AccessKeyID,
		SecretAccessKey: cfg.SecretAccessKey,
	}, cfg.Region, signerOpts...)

	return c, nil
}

// Bucket returns the target bucket name
func (c *Client) Bucket() string {
	return c.bucket
}

// ObjectURL returns the URL of the object id.
// Path segments are escaped the same way they are signed.
func (c *Client) ObjectURL(id string) *url.URL {
	u := *c.endpoint
	u.Path = strings.TrimRight(u.Path, "/") + "/" + c.bucket + "/" + id
	u.RawPath = sigv4.EscapePath(u.Path)
	return &u
}

// Upload stores body under id with the given MIME type.
// Any non-2xx response is returned as a *StatusError wrapping ErrUploadFailed.
func (c *Client) Upload(ctx context.Context, id string, body []byte, mimeType string) error {
	start := time.Now()
	payloadHash := sigv4.SHA256Hex(body)
	if mimeType == "" {
		mimeType = defaultContentType
	}

	req, err := c.newRequest(ctx, http.MethodPut, id, body, []sigv4.Header{
		{Name: "content-type", Value: mimeType},
		{Name: "content-length", Value: strconv.Itoa(len(body))},
	}, payloadHash)
	if err != nil {
		return err
	}

	log := c.logger.WithFields(logrus.Fields{
		"op":     opUpload,
		"bucket": c.bucket,
		"key":    id,
		"size":   len(body),
	})
	log.Debug("Uploading object")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.observe(opUpload, "transport", start)
		log.WithError(err).Warn("Upload request failed")
		return err
	}
	defer resp.Body.Close()

	log = log.WithFields(logrus.Fields{
		"status":     resp.StatusCode,
		"request_id": resp.Header.Get("x-amz-request-id"),
	})

	if !isSuccess(resp.StatusCode) {
		c.metrics.observe(opUpload, "status", start)
		err := newStatusError(opUpload, id, resp)
		log.WithError(err).Warn("Upload rejected")
		return err
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	c.metrics.observe(opUpload, "ok", start)
	c.metrics.addUploaded(len(body))
	log.Debug("Uploaded object")
	return nil
}

// Delete removes id. A missing object is not an error, so deleting twice succeeds.
// Any other non-2xx response is returned as a *StatusError wrapping ErrDeleteFailed.
func (c *Client) Delete(ctx context.Context, id string) error {
	start := time.Now()

	req, err := c.newRequest(ctx, http.MethodDelete, id, nil, nil, sigv4.UnsignedPayload)
	if err != nil {
		return err
	}

	log := c.logger.WithFields(logrus.Fields{
		"op":     opDelete,
		"bucket": c.bucket,
		"key":    id,
	})
	log.Debug("Deleting object")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.observe(opDelete, "transport", start)
		log.WithError(err).Warn("Delete request failed")
		return err
	}
	defer resp.Body.Close()

	log = log.WithFields(logrus.Fields{
		"status":     resp.StatusCode,
		"request_id": resp.Header.Get("x-amz-request-id"),
	})

	switch {
	case isSuccess(resp.StatusCode):
		c.metrics.observe(opDelete, "ok", start)
	case resp.StatusCode == http.StatusNotFound:
		c.metrics.observe(opDelete, "missing", start)
		log.Debug("Object already absent")
	default:
		c.metrics.observe(opDelete, "status", start)
		err := newStatusError(opDelete, id, resp)
		log.WithError(err).Warn("Delete rejected")
		return err
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	log.Debug("Deleted object")
	return nil
}

// Sign returns the signing material Upload or Delete would compute for id at time t,
// without sending anything. An empty payloadHash means UNSIGNED-PAYLOAD.
func (c *Client) Sign(method, id string, extra []sigv4.Header, payloadHash string, t time.Time) *sigv4.Material {
	if payloadHash == "" {
		payloadHash = sigv4.UnsignedPayload
	}
	u := c.ObjectURL(id)
	return c.signer.Sign(c.describe(method, u, extra, payloadHash, t), t)
}

// describe builds the canonical request descriptor for one call
func (c *Client) describe(method string, u *url.URL, extra []sigv4.Header, payloadHash string, t time.Time) *sigv4.CanonicalRequest {
	headers := append([]sigv4.Header{}, extra...)
	headers = append(headers,
		sigv4.Header{Name: "host", Value: u.Host},
		sigv4.Header{Name: "x-amz-content-sha256", Value: payloadHash},
		sigv4.Header{Name: "x-amz-date", Value: t.UTC().Format(sigv4.TimeFormat)},
	)
	return &sigv4.CanonicalRequest{
		Method:      method,
		Path:        u.EscapedPath(),
		Headers:     headers,
		PayloadHash: payloadHash,
	}
}

// newRequest builds and signs a request. Host and Content-Length are carried by
// the request itself, every other signed header is copied into req.Header.
func (c *Client) newRequest(ctx context.Context, method, id string, body []byte, extra []sigv4.Header, payloadHash string) (*http.Request, error) {
	u := c.ObjectURL(id)
	t := c.now()
	desc := c.describe(method, u, extra, payloadHash, t)
	m := c.signer.Sign(desc, t)

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, err
	}
	req.Host = u.Host
	req.ContentLength = int64(len(body))

	for _, h := range desc.Headers {
		switch h.Name {
		case "host", "content-length":
			continue
		}
		req.Header.Set(h.Name, h.Value)
	}
	req.Header.Set(sigv4.AuthorizationHeader, m.Authorization)
	return req, nil
}

func isSuccess(code int) bool {
	return code >= 200 && code < 300
}

// statusText prefers the reason phrase sent by the server
func statusText(resp *http.Response) string {
	if text := strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)+" "); text != "" && text != resp.Status {
		return text
	}
	return http.StatusText(resp.StatusCode)
}

func newStatusError(op, key string, resp *http.Response) *StatusError {
	err := &StatusError{
		Op:         op,
		Key:        key,
		StatusCode: resp.StatusCode,
		StatusText: statusText(resp),
	}

	data, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if readErr != nil || len(data) == 0 {
		return err
	}
	var body Error
	if xml.Unmarshal(data, &body) == nil {
		err.Code = body.Code
		err.Message = body.Message
	}
	return err
}
