package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"jobalert/internal/domain"
)

// companyEntry is the loose shape accepted in a sources file. Entries with
// no kind are generic HTML career pages, and url is accepted as an alias
// for param.
type companyEntry struct {
	Name      string            `yaml:"name" json:"name"`
	Kind      string            `yaml:"kind" json:"kind"`
	Param     string            `yaml:"param" json:"param"`
	URL       string            `yaml:"url" json:"url"`
	Location  string            `yaml:"location" json:"location"`
	Selectors *domain.Selectors `yaml:"selectors" json:"selectors"`
	Disabled  bool              `yaml:"disabled" json:"disabled"`
}

// OverlaySources merges the sources listed in path (JSON or YAML list) over
// cfg.Sources; an entry replaces an existing source with the same name.
// A missing file is not an error.
func OverlaySources(cfg *Config, path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var entries []companyEntry
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(b, &entries)
	} else {
		err = yaml.Unmarshal(b, &entries)
	}
	if err != nil {
		return fmt.Errorf("parse sources file: %w", err)
	}

	index := make(map[string]int, len(cfg.Sources))
	for i, s := range cfg.Sources {
		index[strings.ToLower(s.Name)] = i
	}

	for _, e := range entries {
		src := domain.Source{
			Name:      strings.TrimSpace(e.Name),
			Kind:      domain.ProviderKind(strings.ToLower(strings.TrimSpace(e.Kind))),
			Param:     strings.TrimSpace(e.Param),
			Location:  strings.TrimSpace(e.Location),
			Selectors: e.Selectors,
			Disabled:  e.Disabled,
		}
		if src.Kind == "" {
			src.Kind = domain.KindHTML
		}
		if src.Param == "" {
			src.Param = strings.TrimSpace(e.URL)
		}

		if i, ok := index[strings.ToLower(src.Name)]; ok {
			cfg.Sources[i] = src
			continue
		}
		index[strings.ToLower(src.Name)] = len(cfg.Sources)
		cfg.Sources = append(cfg.Sources, src)
	}
	return nil
}
