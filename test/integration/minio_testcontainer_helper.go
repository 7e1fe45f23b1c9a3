//go:build integration

package integration

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/sandeepkv93/authplus-license-service/internal/service"
)

const (
	minioTestImage = "docker.io/minio/minio:RELEASE.2025-09-07T16-13-09Z"
	minioTestUser  = "minioadmin"
)

type licenseExportEnv struct {
	bucket   string
	exporter *service.MinIOLicenseExporter
	client   *minio.Client
}

func newLicenseExportEnv(t *testing.T) *licenseExportEnv {
	t.Helper()

	endpoint := startTestContainer(t, "MINIO_TEST_IMAGE", testcontainers.ContainerRequest{
		Image: minioTestImage,
		Env: map[string]string{
			"MINIO_ROOT_USER":     minioTestUser,
			"MINIO_ROOT_PASSWORD": minioTestUser,
		},
		ExposedPorts: []string{"9000/tcp"},
		Cmd:          []string{"server", "/data", "--address", ":9000"},
		WaitingFor:   wait.ForListeningPort("9000/tcp").WithStartupTimeout(45 * time.Second),
	}, "9000/tcp")

	bucket := fmt.Sprintf("license-batches-it-%d", time.Now().UnixNano())
	exporter, err := service.NewMinIOLicenseExporter(endpoint, minioTestUser, minioTestUser, bucket, false)
	if err != nil {
		t.Fatalf("create license exporter: %v", err)
	}
	client, err := minio.New(endpoint, &minio.Options{
		Creds: credentials.NewStaticV4(minioTestUser, minioTestUser, ""),
	})
	if err != nil {
		t.Fatalf("create minio verification client: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	for {
		_, err := client.ListBuckets(ctx)
		if err == nil {
			break
		}
		select {
		case <-ctx.Done():
			t.Fatalf("minio readiness check timed out: %v", err)
		case <-time.After(250 * time.Millisecond):
		}
	}
	return &licenseExportEnv{bucket: bucket, exporter: exporter, client: client}
}

func (e *licenseExportEnv) statManifest(t *testing.T, objectKey string) minio.ObjectInfo {
	t.Helper()
	obj, err := e.client.StatObject(context.Background(), e.bucket, objectKey, minio.StatObjectOptions{})
	if err != nil {
		t.Fatalf("stat manifest %q: %v", objectKey, err)
	}
	return obj
}

func isNoSuchKey(err error) bool {
	var errResp minio.ErrorResponse
	return errors.As(err, &errResp) && (errResp.Code == "NoSuchKey" || errResp.Code == "NoSuchBucket")
}
