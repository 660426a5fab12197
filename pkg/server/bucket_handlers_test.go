package server

import (
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

func TestBucketOperations(t *testing.T) {
	bucketName := "test-bucket-operations"

	t.Run("CreateBucket", func(t *testing.T) {
		ts.createBucket(t, bucketName)
	})

	t.Run("HeadBucket", func(t *testing.T) {
		_, err := ts.client.HeadBucket(ts.ctx, &s3.HeadBucketInput{
			Bucket: aws.String(bucketName),
		})
		if err != nil {
			t.Fatalf("HeadBucket failed: %v", err)
		}
	})

	t.Run("CreateExistingBucket", func(t *testing.T) {
		_, err := ts.client.CreateBucket(ts.ctx, &s3.CreateBucketInput{
			Bucket: aws.String(bucketName),
		})
		var apiErr smithy.APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("Expected API error, got %v", err)
		}
		if apiErr.ErrorCode() != "BucketAlreadyOwnedByYou" {
			t.Fatalf("Expected BucketAlreadyOwnedByYou, got %s", apiErr.ErrorCode())
		}
	})

	t.Run("HeadMissingBucket", func(t *testing.T) {
		_, err := ts.client.HeadBucket(ts.ctx, &s3.HeadBucketInput{
			Bucket: aws.String("test-missing-bucket"),
		})
		if err == nil {
			t.Fatal("HeadBucket should fail for a missing bucket")
		}
	})
}
