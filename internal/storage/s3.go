package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// S3Config represents the settings required to talk to S3 or an S3-compatible API.
type S3Config struct {
	Region         string
	Endpoint       string // optional, for S3-compatible providers
	AccessKey      string // optional, falls back to the default credential chain
	SecretKey      string
	ForcePathStyle bool
	Buckets        Buckets
	PublicBase     string
}

// S3Storage implements Storage on top of the AWS SDK.
type S3Storage struct {
	client     *s3.Client
	buckets    Buckets
	region     string
	publicBase string
}

// NewS3Storage loads the AWS SDK configuration and wires an S3 client.
func NewS3Storage(ctx context.Context, cfg S3Config) (*S3Storage, error) {
	if cfg.Region == "" {
		return nil, errors.New("s3 region is required")
	}

	loadOpts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws sdk config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = cfg.ForcePathStyle
		}
	})

	// Fallback so S3-compatible storage without a public base still yields readable URLs.
	publicBase := strings.TrimSuffix(cfg.PublicBase, "/")
	if publicBase == "" && cfg.Endpoint != "" && cfg.ForcePathStyle {
		publicBase = strings.TrimSuffix(cfg.Endpoint, "/")
	}

	return &S3Storage{
		client:     client,
		buckets:    cfg.Buckets,
		region:     cfg.Region,
		publicBase: publicBase,
	}, nil
}

// Put stores obj under key. With Overwrite=false the write is conditional on the key
// being absent (If-None-Match: *), so the check and the write are atomic.
func (s *S3Storage) Put(ctx context.Context, namespace, key string, obj Object, opts PutOptions) (ObjectRef, error) {
	bucket, err := s.buckets.resolve(namespace)
	if err != nil {
		return ObjectRef{}, err
	}

	input := &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   obj.Body,
	}
	if obj.ContentType != "" {
		input.ContentType = aws.String(obj.ContentType)
	}
	if obj.Size > 0 {
		input.ContentLength = aws.Int64(obj.Size)
	}
	if !opts.Overwrite {
		input.IfNoneMatch = aws.String("*")
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		if isPreconditionFailed(err) {
			return ObjectRef{}, fmt.Errorf("put object %q: %w", key, ErrObjectExists)
		}
		return ObjectRef{}, fmt.Errorf("put object %q: %w", key, err)
	}

	return ObjectRef{Namespace: namespace, Key: key, URL: s.PublicURL(namespace, key)}, nil
}

// Delete removes the object. S3 treats deleting a missing key as success.
func (s *S3Storage) Delete(ctx context.Context, namespace, key string) error {
	bucket, err := s.buckets.resolve(namespace)
	if err != nil {
		return err
	}
	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil && !isS3NotFound(err) {
		return fmt.Errorf("delete object %q: %w", key, err)
	}
	return nil
}

// Exists issues a HEAD request for key.
func (s *S3Storage) Exists(ctx context.Context, namespace, key string) (bool, error) {
	bucket, err := s.buckets.resolve(namespace)
	if err != nil {
		return false, err
	}
	_, err = s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err == nil {
		return true, nil
	}
	if isS3NotFound(err) {
		return false, nil
	}
	return false, fmt.Errorf("head object %q: %w", key, err)
}

// PublicURL returns the object URL, virtual-hosted on AWS unless a public base is set.
func (s *S3Storage) PublicURL(namespace, key string) string {
	bucket, err := s.buckets.resolve(namespace)
	if err != nil {
		return ""
	}
	if s.publicBase != "" {
		return s.publicBase + "/" + objectPath(bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", bucket, s.region, url.PathEscape(key))
}

func isPreconditionFailed(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.ErrorCode() {
	case "PreconditionFailed", "ConditionalRequestConflict":
		return true
	}
	return false
}

func isS3NotFound(err error) bool {
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && (apiErr.ErrorCode() == "NotFound" || apiErr.ErrorCode() == "NoSuchKey")
}
