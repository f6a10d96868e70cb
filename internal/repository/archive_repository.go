package repository

import (
	"bytes"
	"context"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

type ArchiveRepository struct {
	Log        *zap.Logger
	DBObject   *minio.Client
	BucketName string
}

func NewArchiveRepository(zap *zap.Logger, minio *minio.Client, bucketName string) *ArchiveRepository {
	return &ArchiveRepository{
		Log:        zap,
		DBObject:   minio,
		BucketName: bucketName,
	}
}

func (repository *ArchiveRepository) Bucket() string {
	return repository.BucketName
}

func (repository *ArchiveRepository) PutJSON(ctx context.Context, objectKey string, data []byte) error {
	_, err := repository.DBObject.PutObject(ctx, repository.BucketName, objectKey, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{
			ContentType: "application/json",
		})
	if err != nil {
		return err
	}

	return nil
}
