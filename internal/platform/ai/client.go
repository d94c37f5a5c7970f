package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultTimeout = 20 * time.Second

// ErrDisabled is returned when no endpoint is configured.
var ErrDisabled = errors.New("ai: client disabled")

// Client requests marketing copy from the text generation backend.
type Client struct {
	endpoint string
	apiKey   string
	model    string
	http     *http.Client
}

// Options configures the client.
type Options struct {
	Endpoint string
	APIKey   string
	Model    string
	Timeout  time.Duration
	// HTTPClient overrides the default client; tests point it at httptest servers.
	HTTPClient *http.Client
}

// Prompt describes the business the copy is written for.
type Prompt struct {
	BusinessName string   `json:"business_name"`
	Industry     string   `json:"industry"`
	Location     string   `json:"location,omitempty"`
	Vibe         string   `json:"vibe,omitempty"`
	Services     []string `json:"services,omitempty"`
}

// Copy is the generated text. Any field may be empty.
type Copy struct {
	Tagline      string        `json:"tagline"`
	HeroTitle    string        `json:"hero_title"`
	HeroSubtitle string        `json:"hero_subtitle"`
	CTALabel     string        `json:"cta_label"`
	Services     []Service     `json:"services"`
	Testimonials []Testimonial `json:"testimonials"`
}

type Service struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`
	Duration    string `json:"duration"`
}

type Testimonial struct {
	Author string `json:"author"`
	Text   string `json:"text"`
	Rating int    `json:"rating"`
}

// Empty reports whether the backend returned nothing usable.
func (c Copy) Empty() bool {
	return strings.TrimSpace(c.Tagline) == "" &&
		strings.TrimSpace(c.HeroTitle) == "" &&
		strings.TrimSpace(c.HeroSubtitle) == "" &&
		len(c.Services) == 0 &&
		len(c.Testimonials) == 0
}

// NewClient constructs a client. An empty endpoint yields a disabled client.
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
		endpoint: strings.TrimRight(strings.TrimSpace(opts.Endpoint), "/"),
		apiKey:   strings.TrimSpace(opts.APIKey),
		model:    strings.TrimSpace(opts.Model),
		http:     httpClient,
	}
}

// Enabled reports whether requests will be sent.
func (c *Client) Enabled() bool {
	return c != nil && c.endpoint != ""
}

// GenerateCopy asks the backend for site copy.
func (c *Client) GenerateCopy(ctx context.Context, prompt Prompt) (Copy, error) {
	if !c.Enabled() {
		return Copy{}, ErrDisabled
	}

	endpoint, err := url.JoinPath(c.endpoint, "v1", "site-copy")
	if err != nil {
		return Copy{}, err
	}
	payload, err := json.Marshal(struct {
		Model string `json:"model,omitempty"`
		Prompt
	}{Model: c.model, Prompt: prompt})
	if err != nil {
		return Copy{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return Copy{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Copy{}, fmt.Errorf("ai: request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return Copy{}, fmt.Errorf("ai: status %d: %s", resp.StatusCode, drainError(resp.Body))
	}

	var out Copy
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Copy{}, fmt.Errorf("ai: decode response: %w", err)
	}
	return out, nil
}

func drainError(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, 256))
	return strings.TrimSpace(string(b))
}
