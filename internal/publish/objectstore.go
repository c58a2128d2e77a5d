package publish

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"matrixctl/internal/sanitize"
	"matrixctl/pkg/logging"
)

// ObjectStoreConfig configures the S3-compatible artifact store used when
// slices run on separate machines and a shared directory is not available.
type ObjectStoreConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	Region    string `yaml:"region"`
	UseSSL    bool   `yaml:"useSSL"`
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix,omitempty"`
}

// Validate checks the configuration before a client is built.
func (c ObjectStoreConfig) Validate() error {
	if strings.TrimSpace(c.Endpoint) == "" {
		return errors.New("endpoint is required")
	}
	if strings.Contains(c.Endpoint, "://") {
		return fmt.Errorf("endpoint must not include scheme: %q", c.Endpoint)
	}
	if strings.TrimSpace(c.AccessKey) == "" {
		return errors.New("access key is required")
	}
	if strings.TrimSpace(c.SecretKey) == "" {
		return errors.New("secret key is required")
	}
	if strings.TrimSpace(c.Bucket) == "" {
		return errors.New("bucket is required")
	}
	return nil
}

// ObjectStorePublisher uploads result records to an S3-compatible bucket.
type ObjectStorePublisher struct {
	client *minio.Client
	cfg    ObjectStoreConfig
	logger *zap.Logger
}

// NewObjectStorePublisher validates cfg and builds the client.
func NewObjectStorePublisher(cfg ObjectStoreConfig) (*ObjectStorePublisher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid object store config: %w", err)
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object store client: %w", err)
	}
	return &ObjectStorePublisher{client: client, cfg: cfg, logger: logging.Named("publish")}, nil
}

// Publish uploads localPath as <prefix>/<key>.results. Object stores give us
// replace-on-put, which satisfies the atomic create-or-replace requirement.
func (p *ObjectStorePublisher) Publish(ctx context.Context, localPath, key string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("%w: opening %s: %v", ErrPublish, localPath, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("%w: stat %s: %v", ErrPublish, localPath, err)
	}

	object := path.Join(p.cfg.Prefix, key+sanitize.ResultFileExt)
	_, err = p.client.PutObject(ctx, p.cfg.Bucket, object, f, info.Size(),
		minio.PutObjectOptions{ContentType: "application/yaml"})
	if err != nil {
		return fmt.Errorf("%w: uploading %s to %s/%s: %v", ErrPublish, localPath, p.cfg.Bucket, object, err)
	}

	p.logger.Info("published result record",
		zap.String("key", key),
		zap.String("bucket", p.cfg.Bucket),
		zap.String("object", object))
	return nil
}
