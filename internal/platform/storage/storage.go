// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package storage uploads user files to S3-compatible object storage.
//
// # Architecture
//
// The account service depends on the [Uploader] contract only. [S3Uploader]
// talks to AWS S3, MinIO or Cloudflare R2 through aws-sdk-go-v2; [Disabled]
// stands in when no bucket is configured so the rest of the API still boots.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ErrDisabled is returned by [Disabled] for every upload.
var ErrDisabled = errors.New("storage: object storage is not configured")

// Uploader stores an object and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
}

// Config holds the bucket coordinates and credentials.
type Config struct {
	Bucket          string
	Region          string
	Endpoint        string // Empty means AWS; set for MinIO/R2 and switches to path-style addressing.
	AccessKeyID     string
	SecretAccessKey string
	PublicURL       string // Prefix of returned URLs; defaults to Endpoint/Bucket.
}

// objectPutter is the slice of *s3.Client used here.
type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) objectPutter {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// S3Uploader writes objects with PutObject.
type S3Uploader struct {
	client    objectPutter
	bucket    string
	publicURL string
}

// NewS3Uploader builds the SDK client from cfg.
func NewS3Uploader(ctx context.Context, cfg Config) (*S3Uploader, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("storage: bucket must not be empty")
	}

	awsConfig, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("storage: load aws config: %w", err)
	}

	client := newS3ClientFromConfig(awsConfig, func(options *s3.Options) {
		if cfg.Endpoint != "" {
			options.BaseEndpoint = aws.String(cfg.Endpoint)
			options.UsePathStyle = true
		}
	})

	return &S3Uploader{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: publicURL(cfg),
	}, nil
}

// Upload puts body under key, overwriting any previous object.
func (uploader *S3Uploader) Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	_, err := uploader.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(uploader.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("storage: put %s: %w", key, err)
	}

	return uploader.publicURL + "/" + key, nil
}

func publicURL(cfg Config) string {
	if cfg.PublicURL != "" {
		return strings.TrimRight(cfg.PublicURL, "/")
	}
	if cfg.Endpoint != "" {
		return strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
}

// Disabled rejects every upload with [ErrDisabled].
type Disabled struct{}

// Upload implements [Uploader].
func (Disabled) Upload(context.Context, string, io.Reader, string) (string, error) {
	return "", ErrDisabled
}
