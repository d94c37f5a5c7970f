package pagination

import (
	"errors"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"
)

func query(pairs ...string) url.Values {
	v := url.Values{}
	for i := 0; i+1 < len(pairs); i += 2 {
		v.Set(pairs[i], pairs[i+1])
	}
	return v
}

func TestParse_PageSize(t *testing.T) {
	cases := []struct {
		name string
		opts Options
		raw  string
		want int
	}{
		{name: "package default", raw: "", want: DefaultPageSize},
		{name: "handler default", opts: Options{DefaultPageSize: 12}, want: 12},
		{name: "default above max is clamped", opts: Options{DefaultPageSize: 80, MaxPageSize: 50}, want: 50},
		{name: "explicit", opts: Options{MaxPageSize: 40}, raw: "30", want: 30},
		{name: "explicit above max is clamped", opts: Options{MaxPageSize: 40}, raw: "400", want: 40},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := Parse(query("pageSize", tc.raw), tc.opts)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if p.PageSize != tc.want {
				t.Fatalf("page size = %d, want %d", p.PageSize, tc.want)
			}
			if !p.Cursor.IsZero() || p.PageToken != "" {
				t.Fatalf("expected first page, got %+v", p)
			}
		})
	}
}

func TestParse_RejectsBadPageSize(t *testing.T) {
	for _, raw := range []string{"ten", "0", "-1", "1.5"} {
		if _, err := Parse(query("pageSize", raw), Options{}); !errors.Is(err, ErrInvalidPageSize) {
			t.Errorf("pageSize=%q: got %v, want ErrInvalidPageSize", raw, err)
		}
	}
}

func TestFromRequest_FollowsToken(t *testing.T) {
	first := Params{Scope: "status=draft"}
	updated := time.Date(2025, 6, 9, 14, 30, 0, 0, time.FixedZone("JST", 9*3600))
	token, err := EncodeToken(first.Next(Cursor{UpdatedAt: updated, ID: "demo-7"}))
	if err != nil {
		t.Fatalf("EncodeToken: %v", err)
	}

	req := httptest.NewRequest("GET", "/api/v1/demos?status=draft&pageToken="+url.QueryEscape(token), nil)
	p, err := FromRequest(req, Options{Scope: "status=draft"})
	if err != nil {
		t.Fatalf("FromRequest: %v", err)
	}
	if p.PageToken != token || p.Scope != "status=draft" {
		t.Fatalf("unexpected params %+v", p)
	}
	if !p.Cursor.UpdatedAt.Equal(updated) || p.Cursor.ID != "demo-7" {
		t.Fatalf("unexpected cursor %+v", p.Cursor)
	}
}

func TestParse_RejectsTokenFromOtherScope(t *testing.T) {
	token, err := EncodeToken(Cursor{UpdatedAt: time.Now(), ID: "demo-1", Scope: "status=draft"})
	if err != nil {
		t.Fatalf("EncodeToken: %v", err)
	}
	if _, err := Parse(query("pageToken", token), Options{Scope: "status=published"}); !errors.Is(err, ErrInvalidPageToken) {
		t.Fatalf("got %v, want ErrInvalidPageToken", err)
	}
}

func TestEncodeToken_ZeroCursor(t *testing.T) {
	if token, err := EncodeToken(Cursor{Scope: "status="}); err != nil || token != "" {
		t.Fatalf("got %q, %v; want empty token", token, err)
	}
}

func TestDecodeToken_Invalid(t *testing.T) {
	for _, token := range []string{
		"%%%",             // not base64url
		"bm90LWpzb24",     // "not-json"
		"e30",             // {}
		"eyJpZCI6ImQxIn0", // {"id":"d1"} without a timestamp
	} {
		if _, err := DecodeToken(token); !errors.Is(err, ErrInvalidPageToken) {
			t.Errorf("token %q: got %v, want ErrInvalidPageToken", token, err)
		}
	}
}
