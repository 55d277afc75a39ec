package domain

import (
	"strings"
	"time"

	"jobalert/internal/normalize"
)

type Posting struct {
	Title       string
	Location    string // raw, may be empty
	Link        string
	Source      string
	NativeID    string
	Description string // used for classification, not rendered
	WorkMode    string // Remote/Hybrid/Onsite/Unknown
	PostedAt    *time.Time
}

// PostingKey identifies a real-world posting across runs.
type PostingKey string

// Key is "<source>:<native id>", falling back to the link and then the
// normalized title.
func (p Posting) Key() PostingKey {
	id := strings.TrimSpace(p.NativeID)
	if id == "" {
		id = strings.TrimSpace(p.Link)
	}
	if id == "" {
		id = normalize.Normalize(p.Title)
	}
	return PostingKey(p.Source + ":" + id)
}
