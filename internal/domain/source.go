package domain

import (
	"fmt"
	"strings"
)

// ProviderKind tags which adapter serves a Source.
type ProviderKind string

const (
	KindHTML            ProviderKind = "html"
	KindGreenhouse      ProviderKind = "greenhouse"
	KindLever           ProviderKind = "lever"
	KindSmartRecruiters ProviderKind = "smartrecruiters"
	KindAmazon          ProviderKind = "amazon"
	KindGoogle          ProviderKind = "google"
	KindBoard           ProviderKind = "board"
	KindWorkday         ProviderKind = "workday"
)

var AllKinds = []ProviderKind{
	KindHTML, KindGreenhouse, KindLever, KindSmartRecruiters,
	KindAmazon, KindGoogle, KindBoard, KindWorkday,
}

func ParseKind(s string) (ProviderKind, error) {
	k := ProviderKind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllKinds {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown provider kind %q", s)
}

// Selectors drive the board-specific HTML adapter.
type Selectors struct {
	Item     string `yaml:"item" json:"item"`
	Title    string `yaml:"title" json:"title"`
	Link     string `yaml:"link" json:"link"`
	Location string `yaml:"location" json:"location"`
}

// Source is one configured origin of postings. Param is the board slug,
// page URL or search query depending on Kind.
type Source struct {
	Name      string       `yaml:"name" json:"name"`
	Kind      ProviderKind `yaml:"kind" json:"kind"`
	Param     string       `yaml:"param" json:"param"`
	Location  string       `yaml:"location,omitempty" json:"location,omitempty"`
	Selectors *Selectors   `yaml:"selectors,omitempty" json:"selectors,omitempty"`
	Disabled  bool         `yaml:"disabled,omitempty" json:"disabled,omitempty"`
}

func (s Source) String() string {
	return fmt.Sprintf("%s(%s)", s.Name, s.Kind)
}
