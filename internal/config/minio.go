package config

import (
	"context"
	"time"

	"github.com/knadh/koanf/v2"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// NewMinIO returns a client for the history archive and makes sure its bucket exists.
func NewMinIO(config *koanf.Koanf, log *zap.Logger) *minio.Client {
	client, err := minio.New(config.String("MINIO_URL"), &minio.Options{
		Creds:  credentials.NewStaticV4(config.String("MINIO_USER"), config.String("MINIO_PASSWORD"), ""),
		Secure: config.Bool("MINIO_USE_SSL"),
	})
	if err != nil {
		log.Fatal("failed to initialize minio client", zap.Error(err))
	}

	bucket := config.String("MINIO_BUCKET_NAME")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		log.Fatal("failed to check archive bucket", zap.String("bucket", bucket), zap.Error(err))
	}
	if exists {
		return client
	}

	err = client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: config.String("MINIO_LOCATION")})
	if err != nil {
		log.Fatal("failed to create archive bucket", zap.String("bucket", bucket), zap.Error(err))
	}
	log.Info("created archive bucket", zap.String("bucket", bucket))

	return client
}
