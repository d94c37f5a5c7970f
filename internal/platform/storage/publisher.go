package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	gcs "cloud.google.com/go/storage"

	"github.com/chairlinked/api/internal/platform/config"
)

const (
	htmlContentType  = "text/html; charset=utf-8"
	siteCacheControl = "public, max-age=300"
	gcsPublicBase    = "https://storage.googleapis.com"
)

// Object is the payload and metadata of one upload.
type Object struct {
	Data         []byte
	ContentType  string
	CacheControl string
	Metadata     map[string]string
}

// ObjectWriter writes and removes bucket objects.
type ObjectWriter interface {
	WriteObject(ctx context.Context, bucket, name string, obj Object) error
	DeleteObject(ctx context.Context, bucket, name string) error
}

// GCSWriter implements ObjectWriter on Cloud Storage.
type GCSWriter struct {
	client *gcs.Client
}

func NewGCSWriter(client *gcs.Client) (*GCSWriter, error) {
	if client == nil {
		return nil, errors.New("storage writer: client is required")
	}
	return &GCSWriter{client: client}, nil
}

func (w *GCSWriter) WriteObject(ctx context.Context, bucket, name string, obj Object) error {
	writer := w.client.Bucket(bucket).Object(name).NewWriter(ctx)
	writer.ContentType = obj.ContentType
	writer.CacheControl = obj.CacheControl
	writer.Metadata = obj.Metadata
	if _, err := writer.Write(obj.Data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("storage: write %s/%s: %w", bucket, name, err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("storage: finalize %s/%s: %w", bucket, name, err)
	}
	return nil
}

// DeleteObject removes the object. A missing object is not an error.
func (w *GCSWriter) DeleteObject(ctx context.Context, bucket, name string) error {
	err := w.client.Bucket(bucket).Object(name).Delete(ctx)
	if err != nil && !errors.Is(err, gcs.ErrObjectNotExist) {
		return fmt.Errorf("storage: delete %s/%s: %w", bucket, name, err)
	}
	return nil
}

// Ping checks that the bucket is reachable.
func (w *GCSWriter) Ping(ctx context.Context, bucket string) error {
	_, err := w.client.Bucket(bucket).Attrs(ctx)
	return err
}

// SitePublisher uploads rendered demo pages.
type SitePublisher struct {
	writer  ObjectWriter
	bucket  string
	prefix  string
	baseURL string
}

func NewSitePublisher(writer ObjectWriter, cfg config.StorageConfig) (*SitePublisher, error) {
	if writer == nil {
		return nil, errors.New("site publisher: writer is required")
	}
	bucket := strings.TrimSpace(cfg.SitesBucket)
	if bucket == "" {
		return nil, errors.New("site publisher: bucket is required")
	}
	base := strings.TrimRight(strings.TrimSpace(cfg.PublicBaseURL), "/")
	if base == "" {
		base = gcsPublicBase + "/" + bucket
	}
	return &SitePublisher{
		writer:  writer,
		bucket:  bucket,
		prefix:  strings.TrimSpace(cfg.PathPrefix),
		baseURL: base,
	}, nil
}

// PublishPage uploads the page and returns its public URL.
func (p *SitePublisher) PublishPage(ctx context.Context, demoID string, html []byte) (string, error) {
	name, err := BuildObjectPath(KindSitePage, PathParams{Prefix: p.prefix, DemoID: demoID})
	if err != nil {
		return "", err
	}
	err = p.writer.WriteObject(ctx, p.bucket, name, Object{
		Data:         html,
		ContentType:  htmlContentType,
		CacheControl: siteCacheControl,
		Metadata:     map[string]string{"demo-id": demoID},
	})
	if err != nil {
		return "", err
	}
	return p.baseURL + "/" + name, nil
}

// Unpublish removes the published page.
func (p *SitePublisher) Unpublish(ctx context.Context, demoID string) error {
	name, err := BuildObjectPath(KindSitePage, PathParams{Prefix: p.prefix, DemoID: demoID})
	if err != nil {
		return err
	}
	return p.writer.DeleteObject(ctx, p.bucket, name)
}
