package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioStorage implements Storage using a MinIO (or any S3-compatible) backend.
type MinioStorage struct {
	client     *minio.Client
	buckets    Buckets
	publicBase string
}

// MinioConfig holds the connection settings for NewMinioStorage.
type MinioConfig struct {
	Endpoint   string
	AccessKey  string
	SecretKey  string
	UseSSL     bool
	Buckets    Buckets
	PublicBase string
}

// NewMinioStorage creates a MinIO client, ensures every namespace bucket exists with a
// public-read policy, and returns a ready-to-use MinioStorage.
func NewMinioStorage(ctx context.Context, cfg MinioConfig) (*MinioStorage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	for _, bucket := range cfg.Buckets {
		exists, err := client.BucketExists(ctx, bucket)
		if err != nil {
			return nil, fmt.Errorf("check bucket %q: %w", bucket, err)
		}
		if !exists {
			if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
				return nil, fmt.Errorf("create bucket %q: %w", bucket, err)
			}
			log.Printf("storage: created bucket %q", bucket)
		}
		if err := client.SetBucketPolicy(ctx, bucket, publicReadPolicy(bucket)); err != nil {
			return nil, fmt.Errorf("set bucket policy %q: %w", bucket, err)
		}
	}

	return &MinioStorage{
		client:     client,
		buckets:    cfg.Buckets,
		publicBase: strings.TrimRight(cfg.PublicBase, "/"),
	}, nil
}

// Put uploads obj under key. With Overwrite=false the key is checked first; MinIO has
// no portable conditional PUT, so two writers racing on the same key can both pass.
// Publish keys carry a fresh attempt id, which keeps that window theoretical.
func (s *MinioStorage) Put(ctx context.Context, namespace, key string, obj Object, opts PutOptions) (ObjectRef, error) {
	bucket, err := s.buckets.resolve(namespace)
	if err != nil {
		return ObjectRef{}, err
	}

	if !opts.Overwrite {
		exists, err := s.exists(ctx, bucket, key)
		if err != nil {
			return ObjectRef{}, err
		}
		if exists {
			return ObjectRef{}, fmt.Errorf("put object %q: %w", key, ErrObjectExists)
		}
	}

	size := obj.Size
	if size == 0 {
		size = -1
	}
	_, err = s.client.PutObject(ctx, bucket, key, obj.Body, size, minio.PutObjectOptions{
		ContentType: obj.ContentType,
	})
	if err != nil {
		return ObjectRef{}, fmt.Errorf("put object %q: %w", key, err)
	}

	return ObjectRef{Namespace: namespace, Key: key, URL: s.PublicURL(namespace, key)}, nil
}

// Delete removes the object at key from the namespace bucket.
func (s *MinioStorage) Delete(ctx context.Context, namespace, key string) error {
	bucket, err := s.buckets.resolve(namespace)
	if err != nil {
		return err
	}
	if err := s.client.RemoveObject(ctx, bucket, key, minio.RemoveObjectOptions{}); err != nil {
		if isMinioNotFound(err) {
			return nil
		}
		return fmt.Errorf("remove object %q: %w", key, err)
	}
	return nil
}

// Exists reports whether key is present in the namespace bucket.
func (s *MinioStorage) Exists(ctx context.Context, namespace, key string) (bool, error) {
	bucket, err := s.buckets.resolve(namespace)
	if err != nil {
		return false, err
	}
	return s.exists(ctx, bucket, key)
}

// PublicURL returns the browser-accessible URL for the given key.
// For local MinIO: "http://localhost:9000/audio-objects/audio-My%20Title-<id>.mp3"
func (s *MinioStorage) PublicURL(namespace, key string) string {
	bucket, err := s.buckets.resolve(namespace)
	if err != nil {
		return ""
	}
	return s.publicBase + "/" + objectPath(bucket, key)
}

func (s *MinioStorage) exists(ctx context.Context, bucket, key string) (bool, error) {
	_, err := s.client.StatObject(ctx, bucket, key, minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}
	if isMinioNotFound(err) {
		return false, nil
	}
	return false, fmt.Errorf("stat object %q: %w", key, err)
}

func isMinioNotFound(err error) bool {
	code := minio.ToErrorResponse(err).Code
	return code == "NoSuchKey" || code == "NotFound"
}

// publicReadPolicy returns an S3 bucket policy JSON that allows anonymous GET on all objects.
func publicReadPolicy(bucket string) string {
	policy := map[string]interface{}{
		"Version": "2012-10-17",
		"Statement": []map[string]interface{}{
			{
				"Effect":    "Allow",
				"Principal": "*",
				"Action":    "s3:GetObject",
				"Resource":  fmt.Sprintf("arn:aws:s3:::%s/*", bucket),
			},
		},
	}
	b, _ := json.Marshal(policy)
	return string(b)
}
