package firestore

import (
	"testing"
	"time"

	"github.com/chairlinked/api/internal/domain"
)

func TestEncodeDemoStoresPageDataAsMap(t *testing.T) {
	published := time.Date(2025, 2, 3, 4, 5, 6, 0, time.FixedZone("JST", 9*3600))
	demo := domain.Demo{
		ID:          "d1",
		OwnerID:     " u1 ",
		Title:       "Studio",
		Status:      domain.DemoStatusPublished,
		PublishedAt: &published,
		Data: domain.PageData{
			BusinessName: "Studio",
			Hero:         domain.Hero{HeroTitle: "Welcome", HeroImageExplicitlySet: true},
			Testimonials: []domain.Testimonial{{ID: "t1", Author: "Ann", Text: "Great", Rating: 5}},
		},
	}

	doc, err := encodeDemo(demo)
	if err != nil {
		t.Fatalf("encodeDemo: %v", err)
	}
	if doc.OwnerID != "u1" || doc.Deleted {
		t.Fatalf("unexpected document %+v", doc)
	}
	hero, ok := doc.Data["hero"].(map[string]any)
	if !ok || hero["heroTitle"] != "Welcome" {
		t.Fatalf("expected camelCase hero map, got %#v", doc.Data["hero"])
	}
	if doc.PublishedAt.Location() != time.UTC {
		t.Fatalf("expected UTC timestamps")
	}

	back, err := decodeDemo("d1", doc)
	if err != nil {
		t.Fatalf("decodeDemo: %v", err)
	}
	if back.Data.Testimonials[0].Rating != 5 || !back.Data.Hero.HeroImageExplicitlySet {
		t.Fatalf("page data lost in conversion: %+v", back.Data)
	}
	if !back.PublishedAt.Equal(published) {
		t.Fatalf("unexpected publishedAt %s", back.PublishedAt)
	}
}

func TestDecodeDemoDefaultsStatus(t *testing.T) {
	demo, err := decodeDemo("d2", demoDocument{})
	if err != nil {
		t.Fatalf("decodeDemo: %v", err)
	}
	if demo.Status != domain.DemoStatusDraft || demo.Data.BusinessName != "" {
		t.Fatalf("unexpected demo %+v", demo)
	}
}

func TestEncodeDemoMarksDeleted(t *testing.T) {
	deleted := time.Now()
	doc, err := encodeDemo(domain.Demo{ID: "d3", DeletedAt: &deleted})
	if err != nil {
		t.Fatalf("encodeDemo: %v", err)
	}
	if !doc.Deleted || doc.DeletedAt == nil {
		t.Fatalf("expected deleted flag")
	}
}
