// Package storage 提供了与对象存储服务（如 MinIO）交互的功能。
package storage

import (
	"context"
	"fmt"
	"liveroom-go/internal/config"
	"liveroom-go/pkg/log"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinIOSigner 为文件记录生成临时下载地址。
type MinIOSigner struct {
	client *minio.Client
}

// NewMinIO 初始化 MinIO 客户端并确保默认存储桶存在。
func NewMinIO(ctx context.Context, cfg config.MinIOConfig) (*MinIOSigner, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("初始化 MinIO 客户端失败: %w", err)
	}
	log.Info("MinIO 客户端初始化成功")

	if cfg.BucketName != "" {
		exists, err := client.BucketExists(ctx, cfg.BucketName)
		if err != nil {
			return nil, fmt.Errorf("检查 MinIO 存储桶失败: %w", err)
		}
		if !exists {
			log.Infof("存储桶 '%s' 不存在，正在创建...", cfg.BucketName)
			if err := client.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{}); err != nil {
				return nil, fmt.Errorf("创建 MinIO 存储桶失败: %w", err)
			}
		}
	}
	return &MinIOSigner{client: client}, nil
}

// PresignedGetURL 生成对象的预签名下载地址。
func (s *MinIOSigner) PresignedGetURL(ctx context.Context, bucket, objectKey string, expiry time.Duration) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, bucket, objectKey, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("presign %s/%s: %w", bucket, objectKey, err)
	}
	return u.String(), nil
}
