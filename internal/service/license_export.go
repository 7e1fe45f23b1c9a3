package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/sandeepkv93/authplus-license-service/internal/domain"
)

const (
	licenseExportPrefix   = "license-batches"
	exportPresignedURLTTL = 15 * time.Minute
)

var (
	ErrEmptyExport          = errors.New("no licenses to export")
	ErrBucketCreationFailed = errors.New("failed to create export bucket")
	ErrExportUploadFailed   = errors.New("failed to upload license manifest")
	ErrURLGenerationFailed  = errors.New("failed to generate presigned URL")
)

// LicenseExporter writes a CSV manifest of freshly issued licenses to object storage.
type LicenseExporter interface {
	Export(ctx context.Context, licenses []domain.License) (string, error)
	PresignedURL(ctx context.Context, objectKey string) (string, error)
}

type MinIOLicenseExporter struct {
	client     *minio.Client
	bucketName string
	now        func() time.Time
	initOnce   sync.Once
	initErr    error
}

// NewMinIOLicenseExporter builds the client without contacting the server.
// The bucket is created on first export.
func NewMinIOLicenseExporter(endpoint, accessKey, secretKey, bucketName string, useSSL bool) (*MinIOLicenseExporter, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}
	return &MinIOLicenseExporter{client: client, bucketName: bucketName, now: time.Now}, nil
}

func (s *MinIOLicenseExporter) lazyInit(ctx context.Context) error {
	s.initOnce.Do(func() {
		exists, err := s.client.BucketExists(ctx, s.bucketName)
		if err != nil {
			s.initErr = fmt.Errorf("%w: check bucket existence: %v", ErrBucketCreationFailed, err)
			return
		}
		if !exists {
			if err := s.client.MakeBucket(ctx, s.bucketName, minio.MakeBucketOptions{}); err != nil {
				s.initErr = fmt.Errorf("%w: create bucket: %v", ErrBucketCreationFailed, err)
			}
		}
	})
	return s.initErr
}

func (s *MinIOLicenseExporter) Export(ctx context.Context, licenses []domain.License) (string, error) {
	if len(licenses) == 0 {
		return "", ErrEmptyExport
	}
	body, err := EncodeLicenseManifest(licenses)
	if err != nil {
		return "", err
	}
	if err := s.lazyInit(ctx); err != nil {
		return "", err
	}

	now := s.now().UTC()
	objectKey := fmt.Sprintf("%s/%s/%s.csv", licenseExportPrefix, now.Format("2006-01-02"), uuid.NewString())
	_, err = s.client.PutObject(ctx, s.bucketName, objectKey, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType: "text/csv",
		UserMetadata: map[string]string{
			"License-Count": fmt.Sprintf("%d", len(licenses)),
			"Exported-At":   now.Format(time.RFC3339),
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExportUploadFailed, err)
	}
	return objectKey, nil
}

func (s *MinIOLicenseExporter) PresignedURL(ctx context.Context, objectKey string) (string, error) {
	if objectKey == "" {
		return "", fmt.Errorf("%w: empty object key", ErrURLGenerationFailed)
	}
	if err := s.lazyInit(ctx); err != nil {
		return "", err
	}
	u, err := s.client.PresignedGetObject(ctx, s.bucketName, objectKey, exportPresignedURLTTL, url.Values{})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrURLGenerationFailed, err)
	}
	return u.String(), nil
}

// EncodeLicenseManifest renders licenses as CSV with a license,date_created header.
func EncodeLicenseManifest(licenses []domain.License) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"license", "date_created"}); err != nil {
		return nil, err
	}
	for _, l := range licenses {
		if err := w.Write([]string{l.Key, l.DateCreated}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("encode license manifest: %w", err)
	}
	return buf.Bytes(), nil
}
