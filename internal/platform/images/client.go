package images

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	defaultTimeout = 8 * time.Second
	maxPerPage     = 30
)

// ErrDisabled is returned when no endpoint is configured.
var ErrDisabled = errors.New("images: client disabled")

// ErrNoResults is returned when a search matches nothing.
var ErrNoResults = errors.New("images: no results")

// Photo is one curated image.
type Photo struct {
	URL string
	Alt string
}

// Client searches a stock photo API (Unsplash-compatible).
type Client struct {
	endpoint  string
	accessKey string
	http      *http.Client
}

type Options struct {
	Endpoint   string
	AccessKey  string
	Timeout    time.Duration
	HTTPClient *http.Client
}

func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		endpoint:  strings.TrimRight(strings.TrimSpace(opts.Endpoint), "/"),
		accessKey: strings.TrimSpace(opts.AccessKey),
		http:      httpClient,
	}
}

// Enabled reports whether requests will be sent.
func (c *Client) Enabled() bool {
	return c != nil && c.endpoint != ""
}

// industryQueries maps industry ids to search phrases that return usable imagery.
var industryQueries = map[string]string{
	"hair_stylist":      "hair salon",
	"barber":            "barbershop",
	"nail_technician":   "nail salon manicure",
	"esthetician":       "skincare facial",
	"massage_therapist": "massage therapy",
	"makeup_artist":     "makeup artist",
	"lash_technician":   "eyelash extensions",
	"spa":               "day spa",
	"tattoo_artist":     "tattoo studio",
	"photographer":      "photography studio",
	"fitness_trainer":   "personal trainer gym",
}

// Query builds the search phrase for an industry and optional vibe.
func Query(industry, vibe string) string {
	industry = strings.ToLower(strings.TrimSpace(industry))
	q, ok := industryQueries[industry]
	if !ok {
		q = strings.ReplaceAll(industry, "_", " ")
	}
	if q == "" {
		q = industryQueries["hair_stylist"]
	}
	if v := strings.TrimSpace(vibe); v != "" {
		q = v + " " + q
	}
	return q
}

// HeroImage returns one landscape photo for the hero section.
func (c *Client) HeroImage(ctx context.Context, industry, vibe string) (Photo, error) {
	photos, err := c.Search(ctx, Query(industry, vibe), 1, "landscape")
	if err != nil {
		return Photo{}, err
	}
	return photos[0], nil
}

// GalleryImages returns count photos for the gallery section.
func (c *Client) GalleryImages(ctx context.Context, industry string, count int, vibe string) ([]Photo, error) {
	return c.Search(ctx, Query(industry, vibe), count, "squarish")
}

// ServiceImages returns count photos for service cards.
func (c *Client) ServiceImages(ctx context.Context, industry string, count int) ([]Photo, error) {
	return c.Search(ctx, Query(industry, ""), count, "squarish")
}

// Search runs a photo search.
func (c *Client) Search(ctx context.Context, query string, count int, orientation string) ([]Photo, error) {
	if !c.Enabled() {
		return nil, ErrDisabled
	}
	if count <= 0 {
		return nil, nil
	}
	if count > maxPerPage {
		count = maxPerPage
	}

	endpoint, err := url.JoinPath(c.endpoint, "search", "photos")
	if err != nil {
		return nil, err
	}
	params := url.Values{}
	params.Set("query", query)
	params.Set("per_page", strconv.Itoa(count))
	params.Set("content_filter", "high")
	if orientation != "" {
		params.Set("orientation", orientation)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Version", "v1")
	if c.accessKey != "" {
		req.Header.Set("Authorization", "Client-ID "+c.accessKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("images: request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, fmt.Errorf("images: status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var payload searchPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("images: decode response: %w", err)
	}

	photos := make([]Photo, 0, len(payload.Results))
	for _, r := range payload.Results {
		u := strings.TrimSpace(r.URLs.Regular)
		if u == "" {
			continue
		}
		alt := strings.TrimSpace(r.AltDescription)
		if alt == "" {
			alt = strings.TrimSpace(r.Description)
		}
		photos = append(photos, Photo{URL: u, Alt: alt})
	}
	if len(photos) == 0 {
		return nil, ErrNoResults
	}
	return photos, nil
}

type searchPayload struct {
	Results []struct {
		Description    string `json:"description"`
		AltDescription string `json:"alt_description"`
		URLs           struct {
			Regular string `json:"regular"`
		} `json:"urls"`
	} `json:"results"`
}
