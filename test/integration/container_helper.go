//go:build integration

package integration

import (
	"context"
	"net"
	"os"
	"strings"
	"testing"

	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
)

// startTestContainer runs req and returns the host:port mapped to port.
// imageEnv, when set in the environment, overrides req.Image.
func startTestContainer(t *testing.T, imageEnv string, req testcontainers.ContainerRequest, port nat.Port) string {
	t.Helper()

	ctx := context.Background()
	if image := strings.TrimSpace(os.Getenv(imageEnv)); image != "" {
		req.Image = image
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("start %s test container: %v", req.Image, err)
	}
	t.Cleanup(func() {
		_ = container.Terminate(ctx)
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("resolve %s host: %v", req.Image, err)
	}
	mappedPort, err := container.MappedPort(ctx, port)
	if err != nil {
		t.Fatalf("resolve %s port: %v", req.Image, err)
	}
	return net.JoinHostPort(host, mappedPort.Port())
}
