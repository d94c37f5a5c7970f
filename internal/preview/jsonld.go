package preview

import (
	"encoding/json"
	"strings"

	"github.com/chairlinked/api/internal/domain"
)

var schemaTypes = map[string]string{
	"hair_stylist":      "HairSalon",
	"barber":            "HairSalon",
	"nail_technician":   "NailSalon",
	"esthetician":       "BeautySalon",
	"massage_therapist": "HealthAndBeautyBusiness",
	"makeup_artist":     "BeautySalon",
	"lash_technician":   "BeautySalon",
	"spa":               "DaySpa",
	"tattoo_artist":     "TattooParlor",
	"photographer":      "ProfessionalService",
	"fitness_trainer":   "ExerciseGym",
}

var dayNames = map[string]string{
	"monday":    "Monday",
	"tuesday":   "Tuesday",
	"wednesday": "Wednesday",
	"thursday":  "Thursday",
	"friday":    "Friday",
	"saturday":  "Saturday",
	"sunday":    "Sunday",
}

// LocalBusiness returns a schema.org LocalBusiness payload for the page.
func LocalBusiness(data domain.PageData, industry, pageURL, imageURL string) map[string]any {
	kind, ok := schemaTypes[industry]
	if !ok {
		kind = "LocalBusiness"
	}
	m := map[string]any{
		"@context": "https://schema.org",
		"@type":    kind,
		"name":     strings.TrimSpace(data.BusinessName),
	}
	if v := strings.TrimSpace(data.Tagline); v != "" {
		m["description"] = v
	}
	if pageURL != "" {
		m["url"] = pageURL
	}
	if imageURL != "" {
		m["image"] = imageURL
	}
	if v := strings.TrimSpace(data.Phone); v != "" {
		m["telephone"] = v
	} else if v := strings.TrimSpace(data.Booking.Phone); v != "" {
		m["telephone"] = v
	}
	if v := strings.TrimSpace(data.Email); v != "" {
		m["email"] = v
	}
	if v := strings.TrimSpace(data.Address); v != "" {
		m["address"] = map[string]any{"@type": "PostalAddress", "streetAddress": v}
	}

	var hours []map[string]any
	for _, h := range data.Booking.Hours {
		if h.Closed || h.Open == "" || h.Close == "" {
			continue
		}
		hours = append(hours, map[string]any{
			"@type":     "OpeningHoursSpecification",
			"dayOfWeek": dayNames[strings.ToLower(h.Day)],
			"opens":     h.Open,
			"closes":    h.Close,
		})
	}
	if len(hours) > 0 {
		m["openingHoursSpecification"] = hours
	}

	var sameAs []string
	for _, link := range data.Footer.SocialLinks {
		if u := strings.TrimSpace(link.URL); u != "" {
			sameAs = append(sameAs, u)
		}
	}
	if len(sameAs) > 0 {
		m["sameAs"] = sameAs
	}

	if rating, count := aggregateRating(data.Testimonials); count > 0 {
		m["aggregateRating"] = map[string]any{
			"@type":       "AggregateRating",
			"ratingValue": rating,
			"reviewCount": count,
		}
	}
	return m
}

func aggregateRating(reviews []domain.Testimonial) (float64, int) {
	total, count := 0, 0
	for _, r := range reviews {
		if r.Rating > 0 {
			total += r.Rating
			count++
		}
	}
	if count == 0 {
		return 0, 0
	}
	return float64(total*10/count) / 10, count
}

// JSON marshals v to a compact JSON string. It returns an empty string on error.
func JSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}
