package adapter

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/google/uuid"
	"github.com/wfunc/puzzle-planet/internal/config"
	apperrors "github.com/wfunc/puzzle-planet/internal/errors"
)

// ImageStorage 图片存储接口
type ImageStorage interface {
	// Upload 上传图片并返回可公开访问的URL
	Upload(ctx context.Context, data []byte, contentType string) (string, error)
}

// s3Storage S3图片存储实现
type s3Storage struct {
	config   *config.StorageConfig
	uploader *s3manager.Uploader
}

// NewS3Storage 创建S3图片存储
func NewS3Storage(cfg *config.StorageConfig) (ImageStorage, error) {
	awsConfig := &aws.Config{
		Region: aws.String(cfg.Region),
	}
	if cfg.AccessKey != "" {
		awsConfig.Credentials = credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, "")
	}
	if cfg.Endpoint != "" {
		// MinIO等兼容服务需要路径风格
		awsConfig.Endpoint = aws.String(cfg.Endpoint)
		awsConfig.S3ForcePathStyle = aws.Bool(true)
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrImageUpload, "初始化存储会话失败")
	}

	return &s3Storage{
		config:   cfg,
		uploader: s3manager.NewUploader(sess),
	}, nil
}

// Upload 上传图片到S3
func (s *s3Storage) Upload(ctx context.Context, data []byte, contentType string) (string, error) {
	key := s.buildKey(contentType)

	result, err := s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(s.config.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrImageUpload, "图片上传失败")
	}

	if s.config.PublicURL != "" {
		return fmt.Sprintf("%s/%s", strings.TrimRight(s.config.PublicURL, "/"), key), nil
	}
	return result.Location, nil
}

// buildKey 生成存储键
func (s *s3Storage) buildKey(contentType string) string {
	ext := ".png"
	if contentType == "image/jpeg" {
		ext = ".jpg"
	}
	return s.config.KeyPrefix + uuid.New().String() + ext
}
