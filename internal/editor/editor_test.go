package editor

import (
	"errors"
	"testing"
	"time"

	"github.com/chairlinked/api/internal/domain"
)

var testNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

func strPtr(v string) *string { return &v }

func TestParseFlow(t *testing.T) {
	if flow, ok := ParseFlow(""); !ok || flow != FlowAdvanced {
		t.Fatalf("expected empty flow to be advanced, got %q %v", flow, ok)
	}
	if flow, ok := ParseFlow(" Simple "); !ok || flow != FlowSimple {
		t.Fatalf("expected simple flow, got %q %v", flow, ok)
	}
	if _, ok := ParseFlow("wizard"); ok {
		t.Fatalf("expected unknown flow to be rejected")
	}
	if got := len(FlowSimple.Sections()); got != 5 {
		t.Fatalf("expected 5 simple sections, got %d", got)
	}
	if FlowSimple.Contains(domain.SectionNavbar) {
		t.Fatalf("simple flow must not contain navbar")
	}
}

func TestSessionNavigationClamps(t *testing.T) {
	s := NewSession("sess", FlowAdvanced, domain.PageData{}, testNow)
	if s.Current != domain.SectionNavbar || !s.IsFirst() {
		t.Fatalf("expected session to start at navbar, got %s", s.Current)
	}
	if got := s.Previous(); got != domain.SectionNavbar {
		t.Fatalf("expected previous to clamp at navbar, got %s", got)
	}
	for i := 0; i < 10; i++ {
		s.Next()
	}
	if s.Current != domain.SectionFooter || !s.IsLast() {
		t.Fatalf("expected next to clamp at footer, got %s", s.Current)
	}
	if got := s.Previous(); got != domain.SectionBooking {
		t.Fatalf("expected booking, got %s", got)
	}
}

func TestSessionJumpIgnoresCompletion(t *testing.T) {
	s := NewSession("sess", FlowSimple, domain.PageData{}, testNow)
	if err := s.JumpTo(domain.SectionBooking); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Current != domain.SectionBooking {
		t.Fatalf("expected booking, got %s", s.Current)
	}
	err := s.JumpTo(domain.SectionFooter)
	if !errors.Is(err, ErrUnknownSection) {
		t.Fatalf("expected ErrUnknownSection, got %v", err)
	}
	if s.Current != domain.SectionBooking {
		t.Fatalf("failed jump must not move the session")
	}
}

func TestHeroWithEmptyTitleIsNeverCompleted(t *testing.T) {
	data := domain.PageData{Hero: domain.Hero{
		HeroTitle:    "   ",
		HeroSubtitle: "Cuts and colour",
		HeroImage:    "https://images.example.com/hero.jpg",
		CTA:          domain.CallToAction{Label: "Book", Href: "#booking"},
	}}
	if IsSectionCompleted(domain.SectionHero, data) {
		t.Fatalf("hero without a title must not be completed")
	}
	data.Hero.HeroTitle = "Studio Nova"
	if !IsSectionCompleted(domain.SectionHero, data) {
		t.Fatalf("hero with a title should be completed")
	}
}

func TestGalleryCompletionFollowsFirstImage(t *testing.T) {
	s := NewSession("sess", FlowAdvanced, domain.PageData{}, testNow)
	if s.Completed[domain.SectionGallery] {
		t.Fatalf("empty gallery must not be completed")
	}

	withImage := SectionUpdate{Gallery: &domain.Gallery{Images: []domain.GalleryImage{
		{URL: "https://images.example.com/1.jpg"},
		{URL: ""},
	}}}
	if err := s.UpdateSection(domain.SectionGallery, withImage, testNow); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !s.Completed[domain.SectionGallery] {
		t.Fatalf("gallery with a first image url should be completed")
	}

	firstEmpty := SectionUpdate{Gallery: &domain.Gallery{Images: []domain.GalleryImage{
		{URL: ""},
		{URL: "https://images.example.com/2.jpg"},
	}}}
	if err := s.UpdateSection(domain.SectionGallery, firstEmpty, testNow); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Completed[domain.SectionGallery] {
		t.Fatalf("gallery must flip back when the first image url is cleared")
	}
}

func TestUpdateSectionAssignsIDsAndProgress(t *testing.T) {
	s := NewSession("sess", FlowSimple, domain.PageData{}, testNow)
	update := SectionUpdate{Services: []domain.ServiceItem{
		{Name: "Cut"},
		{Name: "Colour"},
	}}
	if err := s.UpdateSection(domain.SectionServices, update, testNow.Add(time.Minute)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Data.Services[0].ID == "" || s.Data.Services[0].ID == s.Data.Services[1].ID {
		t.Fatalf("expected unique item ids, got %+v", s.Data.Services)
	}
	if !s.UpdatedAt.Equal(testNow.Add(time.Minute)) {
		t.Fatalf("expected updated timestamp")
	}
	progress := s.Progress()
	if progress.Completed != 1 || progress.Total != 5 || progress.Percent != 20 {
		t.Fatalf("unexpected progress %+v", progress)
	}
}

func TestUpdateSectionRejectsInvalidData(t *testing.T) {
	s := NewSession("sess", FlowAdvanced, domain.PageData{BusinessName: "Nova"}, testNow)
	err := s.UpdateSection(domain.SectionFooter, SectionUpdate{Email: strPtr("not-an-email")}, testNow)
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if s.Data.Email != "" {
		t.Fatalf("session data must be unchanged after a rejected update")
	}

	if err := s.UpdateSection(domain.SectionHero, SectionUpdate{}, testNow); !errors.Is(err, ErrEmptyUpdate) {
		t.Fatalf("expected ErrEmptyUpdate, got %v", err)
	}

	simple := NewSession("sess", FlowSimple, domain.PageData{}, testNow)
	if err := simple.UpdateSection(domain.SectionNavbar, SectionUpdate{BusinessName: strPtr("Nova")}, testNow); !errors.Is(err, ErrUnknownSection) {
		t.Fatalf("expected ErrUnknownSection, got %v", err)
	}
}

func TestHeroUpdateMarksImageExplicit(t *testing.T) {
	s := NewSession("sess", FlowAdvanced, domain.PageData{Hero: domain.Hero{
		HeroTitle:       "Nova",
		LegacyHeroImage: "https://images.example.com/legacy.jpg",
	}}, testNow)
	if err := s.UpdateSection(domain.SectionHero, SectionUpdate{Hero: &domain.Hero{HeroTitle: "Nova", HeroImage: "https://images.example.com/new.jpg"}}, testNow); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !s.Data.Hero.HeroImageExplicitlySet {
		t.Fatalf("changing the hero image should mark it explicit")
	}
	if got := domain.ResolveHeroImage(s.Data.Hero, "https://images.example.com/default.jpg"); got != "https://images.example.com/new.jpg" {
		t.Fatalf("unexpected hero image %s", got)
	}
}

func TestHeroImageRemovalSurvivesLaterEdits(t *testing.T) {
	const legacy = "https://images.example.com/legacy.jpg"
	s := NewSession("sess", FlowAdvanced, domain.PageData{Hero: domain.Hero{
		HeroTitle:       "Nova",
		HeroImage:       "https://images.example.com/old.jpg",
		LegacyHeroImage: legacy,
	}}, testNow)

	if err := s.UpdateSection(domain.SectionHero, SectionUpdate{Hero: &domain.Hero{HeroTitle: "Nova"}}, testNow); err != nil {
		t.Fatalf("remove image: %v", err)
	}
	if !s.Data.Hero.HeroImageExplicitlySet {
		t.Fatalf("removing the hero image should mark it explicit")
	}

	// the client resends the hero without the flag
	if err := s.UpdateSection(domain.SectionHero, SectionUpdate{Hero: &domain.Hero{HeroTitle: "Nova Salon"}}, testNow); err != nil {
		t.Fatalf("edit title: %v", err)
	}
	if !s.Data.Hero.HeroImageExplicitlySet {
		t.Fatalf("a title edit must not reset the explicit image flag")
	}
	if got := domain.ResolveHeroImage(s.Data.Hero, "https://images.example.com/default.jpg"); got == legacy {
		t.Fatalf("expected the removed image to stay removed, got legacy %s", got)
	}
}

func TestFooterCompletion(t *testing.T) {
	data := domain.PageData{BusinessName: "Nova"}
	if IsSectionCompleted(domain.SectionFooter, data) {
		t.Fatalf("footer needs a contact detail")
	}
	data.Address = "1 Main St"
	if !IsSectionCompleted(domain.SectionFooter, data) {
		t.Fatalf("footer with name and address should be completed")
	}
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	s := NewSession("sess", FlowSimple, domain.PageData{Hero: domain.Hero{HeroTitle: "Nova"}}, testNow)
	s.DemoID = "demo-1"
	s.OwnerID = "user-1"
	s.Next()

	restored := Restore(s.Snapshot(testNow.Add(time.Hour)), testNow.Add(2*time.Hour))
	if restored.Current != domain.SectionServices || restored.Flow != FlowSimple {
		t.Fatalf("unexpected restored position %s/%s", restored.Flow, restored.Current)
	}
	if restored.DemoID != "demo-1" || restored.OwnerID != "user-1" {
		t.Fatalf("unexpected restored identity %+v", restored)
	}
	if !restored.Completed[domain.SectionHero] {
		t.Fatalf("expected completion to be recomputed on restore")
	}
}

func TestSaveButtonDisabled(t *testing.T) {
	for _, saving := range []bool{false, true} {
		for _, autoSaving := range []bool{false, true} {
			for _, authLoading := range []bool{false, true} {
				want := saving || autoSaving || authLoading
				if got := SaveButtonDisabled(saving, autoSaving, authLoading); got != want {
					t.Fatalf("SaveButtonDisabled(%v, %v, %v) = %v", saving, autoSaving, authLoading, got)
				}
			}
		}
	}
}

func TestClassifySaveError(t *testing.T) {
	cases := []struct {
		message string
		kind    SaveErrorKind
		title   string
	}{
		{"Network request failed", SaveErrorNetwork, "Network error"},
		{"Failed to fetch", SaveErrorNetwork, "Network error"},
		{"User is not authenticated", SaveErrorAuth, "Authentication required"},
		{"401 Unauthorized", SaveErrorAuth, "Authentication required"},
		{"Please sign in first", SaveErrorAuth, "Authentication required"},
		{"validation failed: testimonials[0].author: too long", SaveErrorValidation, "Validation error"},
		{"Permission denied on demo", SaveErrorPermission, "Permission denied"},
		{"disk full", SaveErrorUnknown, "Save failed"},
	}
	for _, tc := range cases {
		toast := ClassifySaveError(errors.New(tc.message))
		if toast.Kind != tc.kind || toast.Title != tc.title {
			t.Fatalf("%q: expected %s/%q, got %s/%q", tc.message, tc.kind, tc.title, toast.Kind, toast.Title)
		}
		if !toast.Destructive || toast.Description == "" {
			t.Fatalf("%q: expected destructive toast with description", tc.message)
		}
	}
	if got := ClassifySaveError(errors.New("disk full")).Description; got != "disk full" {
		t.Fatalf("expected unknown errors to surface their message, got %q", got)
	}
}
