//go:build integration

package integration

import (
	"fmt"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"

	"github.com/sandeepkv93/authplus-license-service/internal/config"
	"github.com/sandeepkv93/authplus-license-service/internal/database"
)

const postgresTestImage = "docker.io/library/postgres:17-alpine"

func newPostgresIntegrationDB(t *testing.T) *gorm.DB {
	t.Helper()

	addr := startTestContainer(t, "POSTGRES_TEST_IMAGE", testcontainers.ContainerRequest{
		Image: postgresTestImage,
		Env: map[string]string{
			"POSTGRES_USER":     "authplus",
			"POSTGRES_PASSWORD": "authplus",
			"POSTGRES_DB":       "authplus",
		},
		ExposedPorts: []string{"5432/tcp"},
		// postgres restarts once after init; the second line means it is serving
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}, "5432/tcp")

	dsn := fmt.Sprintf("postgres://authplus:authplus@%s/authplus?sslmode=disable", addr)
	db, err := database.OpenDriver(config.DatabaseDriverPostgres, dsn)
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate postgres: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}
