// Copyright (c) 2026 Medibank. All rights reserved.

/*
Package objectstore provides presigned-URL access to S3-compatible storage.

Profile pictures and report attachments never flow through the API server.
Instead, the server hands out short-lived presigned PUT URLs for uploads and
presigned GET URLs for downloads; the client talks to the bucket directly.

Core Responsibilities:

  - Key Generation: Date-partitioned, collision-free object keys.
  - Upload Grants: Presigned PUT URLs bounded by [PresignTTL].
  - Download Grants: Presigned GET URLs bounded by [PresignTTL].
*/
package objectstore

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// PresignTTL bounds how long a handed-out URL stays usable.
const PresignTTL = 15 * time.Minute

// Settings carries the S3 connection parameters from the application config.
type Settings struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

// Store wraps an S3 presign client bound to a single bucket.
type Store struct {
	bucket  string
	presign *s3.PresignClient
}

// New builds a [Store] from static credentials.
//
// A non-empty Endpoint switches to an S3-compatible server (MinIO in local
// development); otherwise the AWS default endpoint resolution applies.
func New(ctx context.Context, settings Settings) (*Store, error) {
	if settings.Bucket == "" {
		return nil, fmt.Errorf("objectstore: bucket must not be empty")
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(settings.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			settings.AccessKeyID,
			settings.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("objectstore: failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(options *s3.Options) {
		if settings.Endpoint != "" {
			options.BaseEndpoint = aws.String(settings.Endpoint)
			options.UsePathStyle = true
		}
	})

	return &Store{
		bucket:  settings.Bucket,
		presign: s3.NewPresignClient(client),
	}, nil
}

// NewKey returns a fresh date-partitioned object key under the given prefix.
//
// Example: "profile-pics/2026/8/30/8f0c2f5e-...".
func NewKey(prefix string) string {
	now := time.Now()
	return fmt.Sprintf("%s/%d/%d/%d/%s", prefix, now.Year(), now.Month(), now.Day(), uuid.New())
}

// PresignPut returns a presigned PUT URL granting a single upload to key.
//
// The content type is pinned into the signature so the client cannot upload
// a different media type than it declared.
func (s *Store) PresignPut(ctx context.Context, key, contentType string) (string, error) {
	request, err := s.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(PresignTTL))
	if err != nil {
		return "", fmt.Errorf("objectstore: failed to presign put: %w", err)
	}

	return request.URL, nil
}

// PresignGet returns a presigned GET URL for an existing object key.
func (s *Store) PresignGet(ctx context.Context, key string) (string, error) {
	request, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(PresignTTL))
	if err != nil {
		return "", fmt.Errorf("objectstore: failed to presign get: %w", err)
	}

	return request.URL, nil
}
