package storage

import (
	"path/filepath"
	"testing"
)

func newTestStorage(t *testing.T, opts ...Option) *Storage {
	t.Helper()
	store, err := NewStorage(filepath.Join(t.TempDir(), "test.db"), opts...)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

func TestBucketOperations(t *testing.T) {
	store := newTestStorage(t)

	bucketName := "test-bucket"

	if store.BucketExists(bucketName) {
		t.Fatal("Bucket should not exist yet")
	}

	if err := store.CreateBucket(bucketName); err != nil {
		t.Fatalf("CreateBucket failed: %v", err)
	}

	if !store.BucketExists(bucketName) {
		t.Fatal("Bucket should exist")
	}
}

func TestBucketDuplicateCreation(t *testing.T) {
	store := newTestStorage(t)

	bucketName := "test-bucket"
	if err := store.CreateBucket(bucketName); err != nil {
		t.Fatal(err)
	}

	// Try to create the same bucket again - should fail
	err := store.CreateBucket(bucketName)
	if err != ErrBucketAlreadyExists {
		t.Fatalf("Expected ErrBucketAlreadyExists, got %v", err)
	}
}

func TestBucketInvalidNames(t *testing.T) {
	store := newTestStorage(t)

	invalidNames := []string{
		"",
		".",
		"..",
		".hidden",
		"bucket/with/slashes",
		"bucket\\with\\backslashes",
	}

	for _, name := range invalidNames {
		err := store.CreateBucket(name)
		if err != ErrInvalidBucketName {
			t.Errorf("CreateBucket(%q) should return ErrInvalidBucketName, got %v", name, err)
		}
		if store.BucketExists(name) {
			t.Errorf("BucketExists(%q) should be false", name)
		}
	}
}

func TestBucketPersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	store, err := NewStorage(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.CreateBucket("persisted"); err != nil {
		t.Fatal(err)
	}
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := NewStorage(path)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()

	if !reopened.BucketExists("persisted") {
		t.Fatal("Bucket should survive reopening the database")
	}
}
