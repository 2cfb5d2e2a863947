// Package uploads issues presigned S3 URLs so clients push collateral
// photos and documents straight to object storage. The service never
// proxies file bytes; it only signs time-limited URLs under a
// tenant-namespaced key prefix.
package uploads

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/gadaihub/backoffice/pkg/config"
)

// SignedURL is one presigned request a client can execute directly
// against object storage.
type SignedURL struct {
	URL       string    `json:"url"`
	Method    string    `json:"method"`
	Key       string    `json:"key"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Signer issues presigned upload and download URLs.
type Signer interface {
	SignUpload(ctx context.Context, key, contentType string, size int64) (*SignedURL, error)
	SignDownload(ctx context.Context, key string) (*SignedURL, error)
}

// S3Signer signs URLs against an S3-compatible endpoint (AWS or MinIO).
type S3Signer struct {
	presign *s3.PresignClient
	cfg     config.UploadsConfig
	log     *logrus.Entry
}

// NewS3Signer builds a signer from upload configuration. Static
// credentials take precedence; otherwise the default AWS credential
// chain applies.
func NewS3Signer(ctx context.Context, cfg config.UploadsConfig) (*S3Signer, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		if cfg.UsePathStyle {
			o.UsePathStyle = true
		}
	})

	return &S3Signer{
		presign: s3.NewPresignClient(client),
		cfg:     cfg,
		log:     logrus.WithField("component", "uploads"),
	}, nil
}

// SignUpload issues a presigned PUT for a new object.
func (s *S3Signer) SignUpload(ctx context.Context, key, contentType string, size int64) (*SignedURL, error) {
	if s.cfg.MaxObjectBytes > 0 && size > s.cfg.MaxObjectBytes {
		return nil, fmt.Errorf("object size %d exceeds limit %d", size, s.cfg.MaxObjectBytes)
	}

	req, err := s.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.cfg.Bucket),
		Key:           aws.String(key),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	}, s3.WithPresignExpires(s.cfg.PresignExpiry))
	if err != nil {
		return nil, fmt.Errorf("failed to presign upload: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"key":          key,
		"content_type": contentType,
		"size":         size,
	}).Debug("signed upload URL")

	return &SignedURL{
		URL:       req.URL,
		Method:    req.Method,
		Key:       key,
		ExpiresAt: time.Now().Add(s.cfg.PresignExpiry),
	}, nil
}

// SignDownload issues a presigned GET for an existing object.
func (s *S3Signer) SignDownload(ctx context.Context, key string) (*SignedURL, error) {
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.cfg.PresignExpiry))
	if err != nil {
		return nil, fmt.Errorf("failed to presign download: %w", err)
	}

	s.log.WithField("key", key).Debug("signed download URL")

	return &SignedURL{
		URL:       req.URL,
		Method:    req.Method,
		Key:       key,
		ExpiresAt: time.Now().Add(s.cfg.PresignExpiry),
	}, nil
}

// ObjectKey builds the tenant-namespaced storage key for a new upload.
// The companyID segment keeps one tenant's objects out of another's
// listing scope; the random segment prevents overwrites.
func ObjectKey(companyID, filename string) string {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if companyID == "" {
		companyID = "platform"
	}
	return path.Join(companyID, uuid.NewString(), base)
}
