package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/testforge/hrm-e2e/internal/config"
	"github.com/testforge/hrm-e2e/internal/observability"
)

type upload struct {
	key, contentType string
	data             []byte
}

type fakeUploader struct {
	uploads []upload
	err     error
}

func (f *fakeUploader) Upload(_ context.Context, key string, data []byte, contentType string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.uploads = append(f.uploads, upload{key: key, contentType: contentType, data: data})
	return "s3://hrm-e2e/" + key, nil
}

func writeShot(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "add-job-title-failed.png")
	require.NoError(t, os.WriteFile(p, []byte("\x89PNG"), 0o644))
	return p
}

func TestArtifacts_LocalOnly(t *testing.T) {
	ctx := context.Background()
	a := NewArtifacts(nil, "screenshots", zaptest.NewLogger(t), nil)
	assert.False(t, a.Remote())

	p := writeShot(t)
	got, err := a.PublishScreenshot(ctx, "run-1", p)
	require.NoError(t, err)
	assert.Equal(t, p, got)

	uri, err := a.PublishReport(ctx, "run-1", []byte(`{}`))
	require.NoError(t, err)
	assert.Empty(t, uri)
}

func TestArtifacts_Upload(t *testing.T) {
	ctx := context.Background()
	up := &fakeUploader{}
	m := observability.NewMetrics("storage_test")
	a := NewArtifacts(up, "/screenshots/", zaptest.NewLogger(t), m)
	assert.True(t, a.Remote())

	uri, err := a.PublishScreenshot(ctx, "run-1", writeShot(t))
	require.NoError(t, err)
	assert.Equal(t, "s3://hrm-e2e/screenshots/run-1/add-job-title-failed.png", uri)
	require.Len(t, up.uploads, 1)
	assert.Equal(t, "image/png", up.uploads[0].contentType)
	assert.Equal(t, []byte("\x89PNG"), up.uploads[0].data)

	uri, err = a.PublishReport(ctx, "run-1", []byte(`{"id":"run-1"}`))
	require.NoError(t, err)
	assert.Equal(t, "s3://hrm-e2e/screenshots/run-1/report.json", uri)
	assert.Equal(t, "application/json", up.uploads[1].contentType)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ScreenshotsTotal.WithLabelValues("minio", "ok")))
}

func TestArtifacts_UploadErrors(t *testing.T) {
	ctx := context.Background()
	m := observability.NewMetrics("storage_test")
	a := NewArtifacts(&fakeUploader{err: errors.New("bucket gone")}, "", nil, m)

	_, err := a.PublishScreenshot(ctx, "run-1", writeShot(t))
	assert.ErrorContains(t, err, "bucket gone")

	_, err = a.PublishScreenshot(ctx, "run-1", filepath.Join(t.TempDir(), "missing.png"))
	assert.ErrorContains(t, err, "reading screenshot")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ScreenshotsTotal.WithLabelValues("minio", "error")))
}

func TestContentType(t *testing.T) {
	tests := map[string]string{
		"a.png":       "image/png",
		"a.PNG":       "image/png",
		"a.jpeg":      "image/jpeg",
		"report.json": "application/json",
		"trace.zip":   "application/octet-stream",
	}
	for name, want := range tests {
		assert.Equal(t, want, ContentType(name), name)
	}
}

func TestFromConfig_Disabled(t *testing.T) {
	a, err := FromConfig(context.Background(), config.Default().Storage, nil, nil)
	require.NoError(t, err)
	assert.False(t, a.Remote())
	assert.Equal(t, "screenshots/r/x.png", a.Key("r", "x.png"))
}

func TestOpenBucket(t *testing.T) {
	cfg := config.Default().Storage

	b, err := OpenBucket(cfg)
	require.NoError(t, err)
	assert.Equal(t, "hrm-e2e", b.Name())
	assert.Equal(t, "s3://hrm-e2e/screenshots/r/x.png", b.URI("screenshots/r/x.png"))

	cfg.Endpoint = "http://localhost:9000"
	_, err = OpenBucket(cfg)
	assert.Error(t, err, "endpoint must be host:port without a scheme")
}

func TestArtifacts_Health(t *testing.T) {
	assert.NoError(t, NewArtifacts(nil, "", nil, nil).Health(context.Background()))

	down := errors.New("connection refused")
	a := NewArtifacts(&healthyUploader{err: down}, "", nil, nil)
	assert.ErrorIs(t, a.Health(context.Background()), down)
}

type healthyUploader struct{ err error }

func (u *healthyUploader) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	return key, nil
}

func (u *healthyUploader) Health(ctx context.Context) error { return u.err }
