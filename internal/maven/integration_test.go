//go:build integration
// +build integration

package maven

import (
	"context"
	"errors"
	"net"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// requireCentral skips the test when Maven Central is unreachable.
func requireCentral(t *testing.T) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	conn, err := net.DialTimeout("tcp", "repo.maven.apache.org:443", 2*time.Second)
	if err != nil {
		t.Skipf("skipping test: Maven Central not reachable: %v", err)
	}
	conn.Close()
}

func TestIntegration_Dependencies_Slf4jAPI(t *testing.T) {
	requireCentral(t)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	r := NewResolver()
	depset, err := r.Dependencies(ctx, NewCoordinate("org.slf4j", "slf4j-api", "1.7.29"))
	require.NoError(t, err)
	require.NotEmpty(t, depset)

	// slf4j-api declares junit in its root dependencies block
	products := make(map[string]bool)
	for _, deps := range depset {
		for _, d := range deps {
			products[d.Product] = true
		}
	}
	assert.True(t, products["junit:junit"], "expected junit:junit in %v", products)
}

func TestIntegration_DownloadJar_Slf4jAPI(t *testing.T) {
	requireCentral(t)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	r := NewResolver()
	path, err := r.DownloadJar(ctx, NewCoordinate("org.slf4j", "slf4j-api", "1.7.29"))
	require.NoError(t, err)
	defer os.Remove(path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestIntegration_UnpublishedVersionIsNotFound(t *testing.T) {
	requireCentral(t)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	r := NewResolver()
	coord := NewCoordinate("org.slf4j", "slf4j-api", "0.0.0-unpublished")

	_, err := r.DownloadPom(ctx, coord)
	assert.True(t, errors.Is(err, ErrNotFound), "want ErrNotFound, got %v", err)

	_, err = r.DownloadJar(ctx, coord)
	assert.True(t, errors.Is(err, ErrNotFound), "want ErrNotFound, got %v", err)
}
