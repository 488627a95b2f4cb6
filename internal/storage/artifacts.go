// Package storage publishes run artifacts: screenshots and the JSON run
// report. Files always stay in the local screenshot directory; when a
// MinIO bucket is configured they are copied there too.
package storage

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/testforge/hrm-e2e/internal/config"
	"github.com/testforge/hrm-e2e/internal/observability"
)

// Uploader stores an object and returns where it went
type Uploader interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// Artifacts publishes files produced by a run
type Artifacts struct {
	uploader Uploader
	prefix   string
	logger   *zap.Logger
	metrics  *observability.Metrics
}

// NewArtifacts creates a publisher. A nil uploader keeps artifacts local.
func NewArtifacts(uploader Uploader, prefix string, logger *zap.Logger, metrics *observability.Metrics) *Artifacts {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Artifacts{
		uploader: uploader,
		prefix:   strings.Trim(prefix, "/"),
		logger:   logger,
		metrics:  metrics,
	}
}

// FromConfig connects to MinIO when storage is enabled and returns a
// local-only publisher otherwise.
func FromConfig(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger, metrics *observability.Metrics) (*Artifacts, error) {
	if !cfg.Enabled {
		return NewArtifacts(nil, cfg.Prefix, logger, metrics), nil
	}

	bucket, err := OpenBucket(cfg)
	if err != nil {
		return nil, err
	}
	if err := bucket.Ensure(ctx); err != nil {
		return nil, err
	}
	return NewArtifacts(bucket, cfg.Prefix, logger, metrics), nil
}

// Remote reports whether artifacts are uploaded
func (a *Artifacts) Remote() bool { return a.uploader != nil }

// Health probes the uploader when it supports it
func (a *Artifacts) Health(ctx context.Context) error {
	if h, ok := a.uploader.(interface{ Health(context.Context) error }); ok {
		return h.Health(ctx)
	}
	return nil
}

// Key returns the object key of a file in run
func (a *Artifacts) Key(runID, name string) string {
	return path.Join(a.prefix, runID, name)
}

// PublishScreenshot uploads the file at localPath under the run and
// returns its remote URI, or localPath when storage is local-only.
func (a *Artifacts) PublishScreenshot(ctx context.Context, runID, localPath string) (string, error) {
	if a.uploader == nil {
		return localPath, nil
	}

	data, err := os.ReadFile(localPath)
	if err != nil {
		a.metrics.RecordScreenshot("minio", err)
		return "", fmt.Errorf("reading screenshot: %w", err)
	}

	name := filepath.Base(localPath)
	uri, err := a.uploader.Upload(ctx, a.Key(runID, name), data, ContentType(name))
	a.metrics.RecordScreenshot("minio", err)
	if err != nil {
		return "", err
	}

	a.logger.Debug("screenshot uploaded", zap.String("uri", uri))
	return uri, nil
}

// PublishReport uploads the JSON report of a run. It is a no-op returning
// "" when storage is local-only.
func (a *Artifacts) PublishReport(ctx context.Context, runID string, report []byte) (string, error) {
	if a.uploader == nil {
		return "", nil
	}
	return a.uploader.Upload(ctx, a.Key(runID, "report.json"), report, "application/json")
}

// ContentType picks the MIME type of an artifact from its extension
func ContentType(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".json":
		return "application/json"
	default:
		return "application/octet-stream"
	}
}
