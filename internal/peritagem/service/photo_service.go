package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
)

// ErrStorageIndisponivel is returned when object storage is not configured;
// callers then fall back to inline data-URI photo references.
var ErrStorageIndisponivel = errors.New("armazenamento de fotos indisponível")

// PhotoService stores already-compressed inspection photos in object storage
// and hands back opaque URLs. Image bytes are never decoded here.
type PhotoService struct {
	minioClient *minio.Client
	bucket      string
}

func NewPhotoService(minioClient *minio.Client, bucket string) *PhotoService {
	return &PhotoService{minioClient: minioClient, bucket: bucket}
}

// Upload streams one photo into the bucket and returns its reference URL.
func (s *PhotoService) Upload(ctx context.Context, reader io.Reader, fileName string, fileSize int64, contentType string) (string, error) {
	if s.minioClient == nil {
		return "", ErrStorageIndisponivel
	}

	objectName := fmt.Sprintf("peritagens/%s/%s%s",
		time.Now().Format("2006/01/02"), uuid.New().String()[:8], filepath.Ext(fileName))

	_, err := s.minioClient.PutObject(ctx, s.bucket, objectName, reader, fileSize, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("upload da foto: %w", err)
	}

	return fmt.Sprintf("/%s/%s", s.bucket, objectName), nil
}
