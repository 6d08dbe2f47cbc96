package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"

	"github.com/you/nirogsvc/domain"
)

var sseAlgorithm = "AES256"

// S3Store keeps blobs in an S3 bucket. Refs look like s3://bucket/prefix/name.
type S3Store struct {
	s3       s3iface.S3API
	bucket   string
	prefix   string
	maxBytes int64
}

// NewS3Store returns a store backed by the given session.
func NewS3Store(sess *session.Session, bucket, prefix string, maxBytes int64) *S3Store {
	return NewS3StoreWithClient(s3.New(sess), bucket, prefix, maxBytes)
}

// NewS3StoreWithClient is NewS3Store with an explicit client.
func NewS3StoreWithClient(client s3iface.S3API, bucket, prefix string, maxBytes int64) *S3Store {
	prefix = strings.Trim(prefix, "/")
	if prefix != "" {
		prefix += "/"
	}
	return &S3Store{
		s3:       client,
		bucket:   bucket,
		prefix:   prefix,
		maxBytes: maxBytes,
	}
}

// NewS3Session builds an AWS session for region using the default credential chain.
func NewS3Session(region string) (*session.Session, error) {
	sess, err := session.NewSession(&aws.Config{Region: aws.String(region)})
	if err != nil {
		return nil, fmt.Errorf("storage: aws session: %w", err)
	}
	return sess, nil
}

// Put implements domain.BlobStore. The body is buffered, up to the store's
// size limit, so the request can be signed and retried.
func (s *S3Store) Put(ctx context.Context, name, contentType string, r io.Reader, size int64) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("storage: read upload: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return "", fmt.Errorf("storage: object %q exceeds %d bytes", name, s.maxBytes)
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	key := s.prefix + strings.TrimPrefix(name, "/")
	_, err = s.s3.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:               aws.String(s.bucket),
		Key:                  aws.String(key),
		Body:                 bytes.NewReader(data),
		ContentLength:        aws.Int64(int64(len(data))),
		ContentType:          aws.String(contentType),
		ServerSideEncryption: aws.String(sseAlgorithm),
	})
	if err != nil {
		return "", fmt.Errorf("storage: put %s: %w", key, err)
	}
	return fmt.Sprintf("s3://%s/%s", s.bucket, key), nil
}

// Delete implements domain.BlobStore
func (s *S3Store) Delete(ctx context.Context, ref string) error {
	bucket, key, err := parseS3URI(ref)
	if err != nil {
		return err
	}
	_, err = s.s3.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if aerr, ok := err.(awserr.Error); ok && aerr.Code() == s3.ErrCodeNoSuchKey {
		return domain.ErrBlobNotFound
	}
	return err
}

func parseS3URI(uri string) (bucket, key string, err error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", "", err
	}
	if u.Scheme != "s3" || u.Host == "" || len(u.Path) < 2 {
		return "", "", fmt.Errorf("storage: bad S3 ref %q", uri)
	}
	return u.Host, strings.TrimPrefix(u.Path, "/"), nil
}
