package uploader

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"newsroom_api/internal/pkg/config"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/google/uuid"
)

// Uploader 上传文件并返回可访问的 URL
type Uploader interface {
	Upload(name string, r io.Reader) (string, error)
}

type AliyunOSSUploader struct {
	bucket *oss.Bucket
	config config.OSSConfig
}

func NewAliyunOSSUploader(cfg config.OSSConfig) (*AliyunOSSUploader, error) {
	client, err := oss.New(cfg.Endpoint, cfg.AccessKeyID, cfg.AccessKeySecret)
	if err != nil {
		return nil, err
	}

	bucket, err := client.Bucket(cfg.BucketName)
	if err != nil {
		return nil, err
	}

	return &AliyunOSSUploader{
		bucket: bucket,
		config: cfg,
	}, nil
}

func (u *AliyunOSSUploader) Upload(name string, r io.Reader) (string, error) {
	key := ObjectKey(name, time.Now())
	if err := u.bucket.PutObject(key, r); err != nil {
		return "", err
	}
	// bucket 为公共读或经 CDN 访问
	return fmt.Sprintf("https://%s.%s/%s", u.config.BucketName, u.config.Endpoint, key), nil
}

// ObjectKey 生成对象名: news/YYYYMMDD/uuid.ext
func ObjectKey(name string, now time.Time) string {
	ext := strings.ToLower(filepath.Ext(name))
	return fmt.Sprintf("news/%s/%s%s", now.Format("20060102"), uuid.New().String(), ext)
}
