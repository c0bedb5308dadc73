package uploadsvc

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pkg/errors"

	"github.com/astravon/portal/core"
)

// S3Uploader puts objects in a bucket of any S3 compatible storage.
type S3Uploader struct {
	client    *s3.Client
	bucket    string
	publicURL string
}

var _ Uploader = (*S3Uploader)(nil)

func NewS3Uploader(ctx context.Context, conf core.UploadConfig) (*S3Uploader, error) {
	if conf.S3Bucket == "" {
		return nil, errors.New("s3 upload: bucket is required")
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(conf.S3Region)}
	if conf.S3AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(conf.S3AccessKey, conf.S3SecretKey, ""),
		))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "loading aws config")
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if conf.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(conf.S3Endpoint)
			o.UsePathStyle = true
		}
	})

	publicURL := conf.PublicURL
	switch {
	case publicURL != "":
	case conf.S3Endpoint != "":
		publicURL = joinURL(conf.S3Endpoint, conf.S3Bucket)
	default:
		publicURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", conf.S3Bucket, conf.S3Region)
	}

	return &S3Uploader{client: client, bucket: conf.S3Bucket, publicURL: strings.TrimRight(publicURL, "/")}, nil
}

func (u *S3Uploader) Upload(ctx context.Context, filename, contentType string, r io.Reader) (string, error) {
	// a seekable body lets the SDK compute the payload checksum
	body, err := io.ReadAll(r)
	if err != nil {
		return "", errors.Wrap(err, "reading upload")
	}

	key := objectKey(filename, time.Now().UTC())
	in := &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}
	if _, err := u.client.PutObject(ctx, in); err != nil {
		return "", errors.Wrap(err, "putting object")
	}
	return joinURL(u.publicURL, key), nil
}
