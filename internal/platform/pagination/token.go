package pagination

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Cursor is the last item of a page. Scope binds it to the filter that
// produced the page.
type Cursor struct {
	UpdatedAt time.Time `json:"u"`
	ID        string    `json:"id"`
	Scope     string    `json:"s,omitempty"`
}

func (c Cursor) IsZero() bool {
	return c.ID == "" && c.UpdatedAt.IsZero()
}

// EncodeToken returns "" for the zero cursor.
func EncodeToken(c Cursor) (string, error) {
	if c.IsZero() {
		return "", nil
	}
	c.UpdatedAt = c.UpdatedAt.UTC()
	raw, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("pagination: encode token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

func DecodeToken(token string) (Cursor, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Cursor{}, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, fmt.Errorf("%w: not base64url", ErrInvalidPageToken)
	}
	var c Cursor
	if err := json.Unmarshal(raw, &c); err != nil {
		return Cursor{}, fmt.Errorf("%w: malformed", ErrInvalidPageToken)
	}
	if c.ID == "" || c.UpdatedAt.IsZero() {
		return Cursor{}, fmt.Errorf("%w: incomplete cursor", ErrInvalidPageToken)
	}
	return c, nil
}
