package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/spetersoncode/newsbrief/internal/retry"
)

// Publisher stores a digest and returns where it was written.
type Publisher interface {
	Publish(ctx context.Context, d Digest) (string, error)
}

// FilePublisher writes digests under a local directory using the digest key
// as the relative path.
type FilePublisher struct {
	Dir string
}

// Publish writes the digest file.
func (p FilePublisher) Publish(_ context.Context, d Digest) (string, error) {
	data, err := d.JSON()
	if err != nil {
		return "", fmt.Errorf("report: encode digest: %w", err)
	}
	path := filepath.Join(p.Dir, filepath.FromSlash(d.Key()))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("report: create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("report: write digest: %w", err)
	}
	return path, nil
}

// S3Config configures an S3Publisher.
type S3Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// S3Publisher uploads digests to an S3-compatible bucket.
type S3Publisher struct {
	client *minio.Client
	bucket string
	region string
	retry  retry.Config
	logger *slog.Logger

	mu          sync.Mutex // guards bucketReady
	bucketReady bool
}

// NewS3Publisher validates cfg and creates the client. The bucket is created
// on first publish if it does not exist.
func NewS3Publisher(cfg S3Config, logger *slog.Logger) (*S3Publisher, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, errors.New("report: s3 endpoint is required")
	}
	access := strings.TrimSpace(cfg.AccessKey)
	secret := strings.TrimSpace(cfg.SecretKey)
	if access == "" || secret == "" {
		return nil, errors.New("report: s3 access key and secret key are required")
	}
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, errors.New("report: s3 bucket is required")
	}
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}
	if logger == nil {
		logger = slog.Default()
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(access, secret, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("report: init s3 client: %w", err)
	}

	return &S3Publisher{
		client: client,
		bucket: bucket,
		region: region,
		retry: retry.Config{
			MaxAttempts:     3,
			InitialDelay:    time.Second,
			MaxDelay:        30 * time.Second,
			Multiplier:      2,
			HonorRetryAfter: true,
			RetryIf:         transientS3,
		},
		logger: logger,
	}, nil
}

// ensureBucket creates the bucket if it is missing. Success is remembered;
// a failure is retried on the next publish.
func (p *S3Publisher) ensureBucket(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bucketReady {
		return nil
	}
	exists, err := p.client.BucketExists(ctx, p.bucket)
	if err != nil {
		return err
	}
	if !exists {
		if err := p.client.MakeBucket(ctx, p.bucket, minio.MakeBucketOptions{Region: p.region}); err != nil {
			return err
		}
	}
	p.bucketReady = true
	return nil
}

// Publish uploads the digest JSON and returns its s3:// location. Transient
// upload failures are retried.
func (p *S3Publisher) Publish(ctx context.Context, d Digest) (string, error) {
	if err := p.ensureBucket(ctx); err != nil {
		return "", fmt.Errorf("report: ensure bucket: %w", err)
	}
	data, err := d.JSON()
	if err != nil {
		return "", fmt.Errorf("report: encode digest: %w", err)
	}

	key := d.Key()
	info, err := retry.Do(ctx, p.retry, func(attempt int) (minio.UploadInfo, error) {
		if attempt > 1 {
			p.logger.Warn("retrying digest upload", "key", key, "attempt", attempt)
		}
		return p.client.PutObject(ctx, p.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
			ContentType: "application/json",
		})
	})
	if err != nil {
		return "", fmt.Errorf("report: upload %s: %w", key, err)
	}
	p.logger.Info("digest published", "bucket", p.bucket, "key", key, "size", info.Size)
	return fmt.Sprintf("s3://%s/%s", p.bucket, key), nil
}

func transientS3(err error) bool {
	resp := minio.ToErrorResponse(err)
	if resp.StatusCode != 0 {
		return resp.StatusCode == 429 || resp.StatusCode >= 500
	}
	return retry.IsTransient(err)
}
