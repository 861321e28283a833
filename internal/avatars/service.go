// Package avatars hands out presigned S3 URLs for user profile images. The
// service never proxies image bytes; clients upload and download directly
// against object storage.
package avatars

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/Rana-Faraz/authbase/internal/common"
	"github.com/Rana-Faraz/authbase/internal/users"
)

const presignExpiry = 15 * time.Minute

// Config holds the S3-compatible storage settings.
type Config struct {
	AccessKey    string
	SecretKey    string
	Bucket       string
	Region       string
	BaseEndpoint string
}

type Service struct {
	config Config
	users  users.Repository
}

func NewService(config Config, users users.Repository) *Service {
	return &Service{config: config, users: users}
}

// storageKey builds a per-user object key. Uploads are never overwritten in
// place; every upload gets a fresh key.
func storageKey(userID string) string {
	return fmt.Sprintf("avatars/%s/%s", userID, uuid.New())
}

func (s *Service) presignClient(ctx context.Context) (*s3.PresignClient, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(s.config.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.AccessKey,
			s.config.SecretKey,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		// An empty endpoint means real AWS; anything else is a
		// MinIO-style S3-compatible server.
		if s.config.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(s.config.BaseEndpoint)
			o.UsePathStyle = true
		}
	})

	return s3.NewPresignClient(client), nil
}

// UploadURL returns a fresh object key for the user's avatar and a presigned
// PUT URL the client uploads to.
func (s *Service) UploadURL(ctx context.Context, userID string) (string, string, error) {
	presignClient, err := s.presignClient(ctx)
	if err != nil {
		return "", "", err
	}

	bucket := s.config.Bucket
	key := storageKey(userID)

	req, err := presignClient.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return "", "", err
	}

	return key, req.URL, nil
}

// ConfirmUpload records key as the user's current avatar. The key must have
// been issued for the same user by UploadURL.
func (s *Service) ConfirmUpload(ctx context.Context, userID, key string) error {
	if !strings.HasPrefix(key, "avatars/"+userID+"/") {
		return common.ErrorUnauthorized
	}
	return s.users.SetImage(ctx, userID, key)
}

// DownloadURL returns a presigned GET URL for a stored avatar key.
func (s *Service) DownloadURL(ctx context.Context, key string) (string, error) {
	presignClient, err := s.presignClient(ctx)
	if err != nil {
		return "", err
	}

	bucket := s.config.Bucket

	req, err := presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return "", err
	}

	return req.URL, nil
}
