package s3

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/windoze95/chefremy-api/internal/config"
)

// ImageStore uploads recipe images to one S3 bucket.
type ImageStore struct {
	bucket   string
	client   *s3.Client
	uploader *manager.Uploader
}

// NewImageStore creates a store from the app config.
// When AWS access key and secret are provided, static credentials are used;
// otherwise the default credential chain is preserved (IAM role, instance
// profile, etc.) so ECS/EC2 task roles work without explicit keys.
func NewImageStore(ctx context.Context, cfg *config.Config) (*ImageStore, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.EnvVars.AWSRegion),
	}

	if cfg.EnvVars.AWSAccessKeyID != "" && cfg.EnvVars.AWSSecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.EnvVars.AWSAccessKeyID,
			cfg.EnvVars.AWSSecretAccessKey,
			"",
		)))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %v", err)
	}
	client := s3.NewFromConfig(awsCfg)
	return &ImageStore{
		bucket:   cfg.EnvVars.S3Bucket,
		client:   client,
		uploader: manager.NewUploader(client),
	}, nil
}

// UploadImage stores an image under key and returns its public location.
func (s *ImageStore) UploadImage(ctx context.Context, key, contentType string, data []byte) (string, error) {
	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	result, err := s.uploader.Upload(ctx, input)
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %v", err)
	}
	return result.Location, nil
}

// DeleteImage removes an image from the bucket.
func (s *ImageStore) DeleteImage(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from S3: %v", err)
	}
	return nil
}

// ImageKey builds the object key for an upload. Images attached to a recipe
// live under that recipe; the rest go to a shared uploads prefix.
func ImageKey(recipeID, ext string) string {
	ext = strings.ToLower(ext)
	name := uuid.New().String() + ext
	if recipeID == "" {
		return path.Join("uploads", "images", name)
	}
	return path.Join("recipes", recipeID, "images", name)
}
