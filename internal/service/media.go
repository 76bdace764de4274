package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	_ "golang.org/x/image/webp" // register webp decoder

	"snapshare/internal/config"
	domain "snapshare/internal/model"
)

// ObjectStore is the subset of the S3 API used for media. *s3.Client satisfies it.
type ObjectStore interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// MediaService handles media uploads to Cloudflare R2.
type MediaService struct {
	store     ObjectStore
	bucket    string
	publicURL string
	logger    logrus.FieldLogger
}

// NewMediaService constructs an S3-compatible client for Cloudflare R2.
func NewMediaService(ctx context.Context, cfg *config.Config, logger logrus.FieldLogger) (*MediaService, error) {
	if !cfg.R2Enabled() || cfg.R2PublicURL == "" {
		return nil, fmt.Errorf("missing Cloudflare R2 configuration")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(
		ctx,
		awsconfig.WithRegion("auto"),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.R2AccessKeyID, cfg.R2SecretAccessKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config for R2: %w", err)
	}

	endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.R2AccountID)
	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	return NewMediaServiceWithStore(s3Client, cfg.R2BucketName, cfg.R2PublicURL, logger), nil
}

// NewMediaServiceWithStore wires a MediaService to an arbitrary object store.
func NewMediaServiceWithStore(store ObjectStore, bucket, publicURL string, logger logrus.FieldLogger) *MediaService {
	return &MediaService{
		store:     store,
		bucket:    bucket,
		publicURL: strings.TrimSuffix(publicURL, "/"),
		logger:    logger.WithField("component", "media_service"),
	}
}

// UploadImage enforces size/type, normalizes the image for folder and uploads
// it as JPEG. Avatars are cropped to 200x200; post images are fit within
// 500x500 without upscaling.
func (s *MediaService) UploadImage(ctx context.Context, file io.Reader, header *multipart.FileHeader, folder string) (*domain.UploadResult, error) {
	data, err := readAndValidateImage(file, header, domain.MaxImageSizeBytes)
	if err != nil {
		return nil, err
	}

	jpegBytes, err := normalizeToJPEG(data, folder, 85)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%s/%s%s", folder, uuid.NewString(), domain.ImageExt)

	if err := s.putObject(ctx, key, jpegBytes, domain.ContentTypeJPEG, domain.ImageCacheControl); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/%s", s.publicURL, key)
	return &domain.UploadResult{URL: url, Key: key}, nil
}

// DeleteObject removes an object by key.
func (s *MediaService) DeleteObject(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	_, err := s.store.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from r2: %w", err)
	}
	return nil
}

// DeleteQuietly deletes key and logs instead of failing.
func (s *MediaService) DeleteQuietly(ctx context.Context, key *string) {
	if s == nil || key == nil || *key == "" {
		return
	}
	if err := s.DeleteObject(ctx, *key); err != nil {
		s.logger.WithError(err).WithField("key", *key).Warn("Failed to delete orphaned object")
	}
}

// readAndValidateImage loads the upload into memory with size and type checks.
func readAndValidateImage(file io.Reader, header *multipart.FileHeader, maxSize int64) ([]byte, error) {
	if header != nil && header.Size > maxSize {
		return nil, domain.ErrFileTooLarge
	}

	data, err := io.ReadAll(io.LimitReader(file, maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > maxSize {
		return nil, domain.ErrFileTooLarge
	}

	var contentType string
	if header != nil {
		contentType = header.Header.Get("Content-Type")
	}
	if (contentType == "" || contentType == "application/octet-stream") && len(data) > 0 {
		contentType = http.DetectContentType(data[:min(len(data), 512)])
	}
	if idx := strings.Index(contentType, ";"); idx != -1 {
		contentType = strings.TrimSpace(contentType[:idx])
	}
	if !domain.IsAllowedImageType(contentType) {
		return nil, domain.ErrInvalidImageType
	}

	return data, nil
}

// normalizeToJPEG resizes for the target folder and encodes as JPEG.
func normalizeToJPEG(data []byte, folder string, quality int) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, domain.ErrInvalidImageType
	}

	var resized image.Image
	switch folder {
	case domain.AvatarFolder:
		resized = imaging.Fill(img, domain.AvatarWidth, domain.AvatarHeight, imaging.Center, imaging.Lanczos)
	default:
		resized = imaging.Fit(img, domain.PostImageMaxWidth, domain.PostImageMaxHeight, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("failed to encode jpeg: %w", err)
	}

	return buf.Bytes(), nil
}

// putObject uploads bytes to R2 with metadata.
func (s *MediaService) putObject(ctx context.Context, key string, body []byte, contentType, cacheControl string) error {
	_, err := s.store.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(s.bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(body),
		ContentType:  aws.String(contentType),
		CacheControl: aws.String(cacheControl),
	})
	if err != nil {
		return fmt.Errorf("failed to upload to r2: %w", err)
	}
	return nil
}
