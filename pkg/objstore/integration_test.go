package objstore_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/wzshiming/s3sign/pkg/auth"
	"github.com/wzshiming/s3sign/pkg/objstore"
	"github.com/wzshiming/s3sign/pkg/server"
	"github.com/wzshiming/s3sign/pkg/storage"
)

const (
	testAccessKey = "test-access-key"
	testSecretKey = "test-secret-key"
	testRegion    = "us-east-1"
	testBucket    = "listings"
)

// startServer runs the development server behind the verifier
func startServer(t *testing.T, opts ...server.Option) *httptest.Server {
	t.Helper()

	store, err := storage.NewStorage(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	if err := store.CreateBucket(testBucket); err != nil {
		t.Fatalf("CreateBucket failed: %v", err)
	}

	authenticator := auth.NewAWS4Authenticator()
	authenticator.AddCredentials(testAccessKey, testSecretKey)

	opts = append([]server.Option{server.WithRegion(testRegion)}, opts...)
	srv := httptest.NewServer(server.RequestID(authenticator.AuthMiddleware(server.NewS3Handler(store, opts...))))
	t.Cleanup(func() {
		srv.Close()
		store.Close()
	})
	return srv
}

func newClient(t *testing.T, endpoint, secret string) *objstore.Client {
	t.Helper()
	c, err := objstore.New(objstore.Config{
		Endpoint:        endpoint,
		Region:          testRegion,
		Bucket:          testBucket,
		AccessKeyID:     testAccessKey,
		SecretAccessKey: secret,
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return c
}

func newSDKClient(t *testing.T, endpoint string) *s3.Client {
	t.Helper()
	cfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion(testRegion),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(testAccessKey, testSecretKey, "")),
	)
	if err != nil {
		t.Fatalf("LoadDefaultConfig failed: %v", err)
	}
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})
}

func TestUploadAndDeleteRoundTrip(t *testing.T) {
	ctx := context.Background()
	srv := startServer(t)
	client := newClient(t, srv.URL, testSecretKey)
	sdk := newSDKClient(t, srv.URL)

	tests := []struct {
		name     string
		id       string
		body     []byte
		mimeType string
		wantType string
	}{
		{"Text", "properties/abc.txt", []byte("hello"), "text/plain", "text/plain"},
		{"Escaped key", "photos/my house (1).jpg", []byte{0xff, 0xd8, 0xff}, "image/jpeg", "image/jpeg"},
		{"Empty body", "empty", nil, "", "application/octet-stream"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := client.Upload(ctx, tt.id, tt.body, tt.mimeType); err != nil {
				t.Fatalf("Upload failed: %v", err)
			}

			output, err := sdk.GetObject(ctx, &s3.GetObjectInput{
				Bucket: aws.String(testBucket),
				Key:    aws.String(tt.id),
			})
			if err != nil {
				t.Fatalf("GetObject failed: %v", err)
			}
			data, err := io.ReadAll(output.Body)
			output.Body.Close()
			if err != nil {
				t.Fatalf("Failed to read object: %v", err)
			}
			if string(data) != string(tt.body) {
				t.Fatalf("Expected %q, got %q", tt.body, data)
			}
			if got := aws.ToString(output.ContentType); got != tt.wantType {
				t.Fatalf("Expected content type %q, got %q", tt.wantType, got)
			}

			if err := client.Delete(ctx, tt.id); err != nil {
				t.Fatalf("Delete failed: %v", err)
			}
			// Deleting again is still a success
			if err := client.Delete(ctx, tt.id); err != nil {
				t.Fatalf("Second delete failed: %v", err)
			}

			_, err = sdk.HeadObject(ctx, &s3.HeadObjectInput{
				Bucket: aws.String(testBucket),
				Key:    aws.String(tt.id),
			})
			var notFound *types.NotFound
			if !errors.As(err, &notFound) {
				t.Fatalf("Expected NotFound after delete, got %v", err)
			}
		})
	}
}

func TestDeleteMissingObjectStrictServer(t *testing.T) {
	srv := startServer(t, server.WithStrictDelete())
	client := newClient(t, srv.URL, testSecretKey)

	// The server answers 404 NoSuchKey, which the client treats as done
	if err := client.Delete(context.Background(), "never-uploaded"); err != nil {
		t.Fatalf("Delete of a missing object should succeed, got %v", err)
	}
}

func TestWrongSecretRejected(t *testing.T) {
	ctx := context.Background()
	srv := startServer(t)
	client := newClient(t, srv.URL, "not-the-secret")

	err := client.Upload(ctx, "properties/abc.txt", []byte("hello"), "text/plain")
	if !errors.Is(err, objstore.ErrUploadFailed) {
		t.Fatalf("Expected ErrUploadFailed, got %v", err)
	}
	var statusErr *objstore.StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("Expected *StatusError, got %T", err)
	}
	if statusErr.StatusCode != http.StatusForbidden || statusErr.Code != "SignatureDoesNotMatch" {
		t.Fatalf("Unexpected status error: %v", statusErr)
	}

	err = client.Delete(ctx, "properties/abc.txt")
	if !errors.Is(err, objstore.ErrDeleteFailed) {
		t.Fatalf("Expected ErrDeleteFailed, got %v", err)
	}
}
