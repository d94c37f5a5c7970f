package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/chairlinked/api/internal/platform/config"
)

type recordingWriter struct {
	written map[string]Object
	deleted []string
	err     error
}

func (w *recordingWriter) WriteObject(_ context.Context, bucket, name string, obj Object) error {
	if w.err != nil {
		return w.err
	}
	if w.written == nil {
		w.written = map[string]Object{}
	}
	w.written[bucket+"/"+name] = obj
	return nil
}

func (w *recordingWriter) DeleteObject(_ context.Context, bucket, name string) error {
	w.deleted = append(w.deleted, bucket+"/"+name)
	return nil
}

func TestSitePublisherPublishPage(t *testing.T) {
	writer := &recordingWriter{}
	pub, err := NewSitePublisher(writer, config.StorageConfig{SitesBucket: "sites", PathPrefix: "prod", PublicBaseURL: "https://sites.example.com/"})
	if err != nil {
		t.Fatalf("NewSitePublisher: %v", err)
	}

	url, err := pub.PublishPage(context.Background(), "d1", []byte("<html></html>"))
	if err != nil {
		t.Fatalf("PublishPage: %v", err)
	}
	if url != "https://sites.example.com/prod/demos/d1/index.html" {
		t.Fatalf("unexpected url %s", url)
	}
	obj, ok := writer.written["sites/prod/demos/d1/index.html"]
	if !ok {
		t.Fatalf("expected object to be written, got %v", writer.written)
	}
	if obj.ContentType != htmlContentType || string(obj.Data) != "<html></html>" || obj.Metadata["demo-id"] != "d1" {
		t.Fatalf("unexpected object %+v", obj)
	}

	if err := pub.Unpublish(context.Background(), "d1"); err != nil {
		t.Fatalf("Unpublish: %v", err)
	}
	if len(writer.deleted) != 1 || writer.deleted[0] != "sites/prod/demos/d1/index.html" {
		t.Fatalf("unexpected deletes %v", writer.deleted)
	}
}

func TestSitePublisherDefaultsToBucketURL(t *testing.T) {
	pub, err := NewSitePublisher(&recordingWriter{}, config.StorageConfig{SitesBucket: "sites"})
	if err != nil {
		t.Fatalf("NewSitePublisher: %v", err)
	}
	url, err := pub.PublishPage(context.Background(), "d2", nil)
	if err != nil {
		t.Fatalf("PublishPage: %v", err)
	}
	if url != "https://storage.googleapis.com/sites/demos/d2/index.html" {
		t.Fatalf("unexpected url %s", url)
	}
}

func TestSitePublisherErrors(t *testing.T) {
	if _, err := NewSitePublisher(nil, config.StorageConfig{SitesBucket: "sites"}); err == nil {
		t.Fatalf("expected writer error")
	}
	if _, err := NewSitePublisher(&recordingWriter{}, config.StorageConfig{}); err == nil {
		t.Fatalf("expected bucket error")
	}

	boom := errors.New("quota")
	pub, _ := NewSitePublisher(&recordingWriter{err: boom}, config.StorageConfig{SitesBucket: "sites"})
	if _, err := pub.PublishPage(context.Background(), "d1", nil); !errors.Is(err, boom) {
		t.Fatalf("expected writer error, got %v", err)
	}
	if _, err := pub.PublishPage(context.Background(), "", nil); err == nil {
		t.Fatalf("expected missing demo id error")
	}
}
