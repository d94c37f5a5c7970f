package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestResolveHeroImage(t *testing.T) {
	t.Parallel()

	const fallback = "https://images.example.com/default.jpg"
	cases := []struct {
		name string
		hero Hero
		want string
	}{
		{name: "explicit image", hero: Hero{HeroImage: "https://a.example.com/x.jpg", HeroImageExplicitlySet: true}, want: "https://a.example.com/x.jpg"},
		{name: "explicit removal", hero: Hero{HeroImageExplicitlySet: true, LegacyHeroImage: "https://old.example.com/y.jpg"}, want: ""},
		{name: "legacy image", hero: Hero{LegacyHeroImage: "https://old.example.com/y.jpg", HeroImage: "https://a.example.com/x.jpg"}, want: "https://old.example.com/y.jpg"},
		{name: "unflagged current image", hero: Hero{HeroImage: "https://a.example.com/x.jpg"}, want: "https://a.example.com/x.jpg"},
		{name: "industry default", hero: Hero{}, want: fallback},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := ResolveHeroImage(tc.hero, fallback); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestEnsureItemIDsAssignsUniqueIDs(t *testing.T) {
	counter := 0
	gen := func() string {
		counter++
		return fmt.Sprintf("id-%d", counter)
	}
	data := PageData{
		Services: []ServiceItem{{ID: "a", Name: "Cut"}, {ID: "a", Name: "Color"}, {Name: "Blowout"}},
		Gallery:  Gallery{Images: []GalleryImage{{URL: "https://example.com/1.jpg"}}},
	}

	if changed := EnsureItemIDs(&data, gen); !changed {
		t.Fatalf("expected ids to be assigned")
	}
	seen := map[string]struct{}{}
	for _, svc := range data.Services {
		if svc.ID == "" {
			t.Fatalf("expected id for %q", svc.Name)
		}
		if _, dup := seen[svc.ID]; dup {
			t.Fatalf("duplicate id %q", svc.ID)
		}
		seen[svc.ID] = struct{}{}
	}
	if data.Services[0].ID != "a" {
		t.Fatalf("expected first id to be kept, got %q", data.Services[0].ID)
	}
	if data.Gallery.Images[0].ID == "" {
		t.Fatalf("expected gallery image id")
	}

	if EnsureItemIDs(&data, gen) {
		t.Fatalf("expected second pass to be a no-op")
	}
}

func TestNewItemIDIsUniqueUnderRapidCalls(t *testing.T) {
	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		id := NewItemID()
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id %q after %d calls", id, i)
		}
		seen[id] = struct{}{}
	}
}

func TestValidatePageData(t *testing.T) {
	valid := PageData{
		BusinessName: "Glow Studio",
		Email:        "hello@glow.example",
		Hero:         Hero{HeroTitle: "Welcome", HeroImage: "https://images.example.com/hero.jpg"},
		Booking: Booking{Hours: []BusinessHours{
			{Day: "Monday", Open: "09:00", Close: "17:30"},
			{Day: "sunday", Closed: true},
		}},
		Style: Style{SectionTheme: "industry", BrandColors: BrandColors{Primary: "#112233"}},
	}
	if err := ValidatePageData(valid); err != nil {
		t.Fatalf("expected valid page data, got %v", err)
	}

	invalid := valid
	invalid.Email = "not-an-email"
	invalid.Style.BrandColors.Primary = "purple"
	invalid.Booking.Hours = []BusinessHours{{Day: "funday", Open: "25:00"}}

	err := ValidatePageData(invalid)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %T %v", err, err)
	}
	fields := map[string]bool{}
	for _, f := range verr.Fields {
		fields[f.Field] = true
	}
	for _, want := range []string{"email", "style.brandColors.primary", "booking.hours[0].day", "booking.hours[0].open"} {
		if !fields[want] {
			t.Fatalf("expected field %q in %+v", want, verr.Fields)
		}
	}
}

func TestValidatePageDataFontOverride(t *testing.T) {
	for font, ok := range map[string]bool{
		"Playfair Display":       true,
		"":                       true,
		"Inter} body{color:red":  false,
		"Inter; background:red":  false,
		"Inter'</style><script>": false,
		"Noto Sans \\7d":         false,
		"Café":                   false,
	} {
		err := ValidatePageData(PageData{Style: Style{FontOverride: font}})
		if ok && err != nil {
			t.Errorf("%q: expected valid, got %v", font, err)
		}
		if !ok {
			var verr *ValidationError
			if !errors.As(err, &verr) || len(verr.Fields) != 1 || verr.Fields[0].Field != "style.fontOverride" {
				t.Errorf("%q: expected style.fontOverride error, got %v", font, err)
			}
		}
	}
}

func TestParseSection(t *testing.T) {
	if s, ok := ParseSection("gallery"); !ok || s != SectionGallery {
		t.Fatalf("expected gallery, got %q %v", s, ok)
	}
	if _, ok := ParseSection("pricing"); ok {
		t.Fatalf("expected unknown section to be rejected")
	}
}
