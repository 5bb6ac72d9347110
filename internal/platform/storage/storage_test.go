// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePutter struct {
	input *s3.PutObjectInput
	body  string
	err   error
}

func (f *fakePutter) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = params
	if params.Body != nil {
		data, _ := io.ReadAll(params.Body)
		f.body = string(data)
	}
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

// stubClient swaps the SDK constructor for the duration of a test.
func stubClient(t *testing.T, putter *fakePutter) *s3.Options {
	t.Helper()

	applied := &s3.Options{}
	previous := newS3ClientFromConfig
	newS3ClientFromConfig = func(_ aws.Config, optFns ...func(*s3.Options)) objectPutter {
		for _, fn := range optFns {
			fn(applied)
		}
		return putter
	}
	t.Cleanup(func() { newS3ClientFromConfig = previous })

	return applied
}

func TestNewS3Uploader_RequiresBucket(t *testing.T) {
	_, err := NewS3Uploader(context.Background(), Config{Region: "auto"})
	assert.Error(t, err)
}

func TestNewS3Uploader_CustomEndpoint(t *testing.T) {
	options := stubClient(t, &fakePutter{})

	uploader, err := NewS3Uploader(context.Background(), Config{
		Bucket:   "avatars",
		Region:   "auto",
		Endpoint: "http://127.0.0.1:9000/",
	})
	require.NoError(t, err)

	require.NotNil(t, options.BaseEndpoint)
	assert.Equal(t, "http://127.0.0.1:9000/", *options.BaseEndpoint)
	assert.True(t, options.UsePathStyle)
	assert.Equal(t, "http://127.0.0.1:9000/avatars", uploader.publicURL)
}

func TestNewS3Uploader_ConfigError(t *testing.T) {
	previous := loadDefaultAWSConfig
	loadDefaultAWSConfig = func(context.Context, ...func(*config.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("no profile")
	}
	t.Cleanup(func() { loadDefaultAWSConfig = previous })

	_, err := NewS3Uploader(context.Background(), Config{Bucket: "avatars"})
	assert.ErrorContains(t, err, "no profile")
}

func TestS3Uploader_Upload(t *testing.T) {
	putter := &fakePutter{}
	stubClient(t, putter)

	uploader, err := NewS3Uploader(context.Background(), Config{
		Bucket:    "avatars",
		Region:    "auto",
		PublicURL: "https://cdn.contactbook.dev/",
	})
	require.NoError(t, err)

	url, err := uploader.Upload(context.Background(), "avatars/a@x.com", strings.NewReader("png-bytes"), "image/png")
	require.NoError(t, err)

	assert.Equal(t, "https://cdn.contactbook.dev/avatars/a@x.com", url)
	assert.Equal(t, "avatars", aws.ToString(putter.input.Bucket))
	assert.Equal(t, "avatars/a@x.com", aws.ToString(putter.input.Key))
	assert.Equal(t, "image/png", aws.ToString(putter.input.ContentType))
	assert.Equal(t, "png-bytes", putter.body)
}

func TestS3Uploader_UploadError(t *testing.T) {
	putter := &fakePutter{err: errors.New("access denied")}
	stubClient(t, putter)

	uploader, err := NewS3Uploader(context.Background(), Config{Bucket: "avatars", Region: "us-east-1"})
	require.NoError(t, err)
	assert.Equal(t, "https://avatars.s3.us-east-1.amazonaws.com", uploader.publicURL)

	_, err = uploader.Upload(context.Background(), "avatars/a@x.com", strings.NewReader("x"), "image/png")
	assert.ErrorContains(t, err, "access denied")
}

func TestDisabled(t *testing.T) {
	var uploader Uploader = Disabled{}
	_, err := uploader.Upload(context.Background(), "k", strings.NewReader(""), "image/png")
	assert.ErrorIs(t, err, ErrDisabled)
}
