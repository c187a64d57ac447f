// Package content holds the static data the bot responds with: project
// cards, contact details, and technology blurbs. The data lives in an
// embedded YAML table so the classification logic stays free of literal
// content.
package content

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed data.yaml
var raw []byte

// Button describes one call-to-action attached to a project card.
type Button struct {
	Type    string `yaml:"type"`
	Title   string `yaml:"title"`
	URL     string `yaml:"url,omitempty"`
	Payload string `yaml:"payload,omitempty"`
}

// Project is one card in the project carousel.
type Project struct {
	Title    string   `yaml:"title"`
	Subtitle string   `yaml:"subtitle"`
	URL      string   `yaml:"url"`
	Image    string   `yaml:"image"`
	Buttons  []Button `yaml:"buttons"`
}

// Contact holds the ways to reach the page owner.
type Contact struct {
	Email   string `yaml:"email"`
	Phone   string `yaml:"phone"`
	Twitter string `yaml:"twitter"`
	GitHub  string `yaml:"github"`
	Site    string `yaml:"site"`
}

// Technologies holds the canned tech-stack texts.
type Technologies struct {
	Summary  string `yaml:"summary"`
	Followup string `yaml:"followup"`
}

type projects struct {
	Work       []Project `yaml:"work"`
	OpenSource []Project `yaml:"open_source"`
}

// Catalog is the full parsed data table.
type Catalog struct {
	Contact      Contact      `yaml:"contact"`
	Technologies Technologies `yaml:"technologies"`
	Projects     projects     `yaml:"projects"`
}

// Load parses the embedded data table.
func Load() (*Catalog, error) {
	c := &Catalog{}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return nil, fmt.Errorf("failed to parse content table: %w", err)
	}

	if len(c.Projects.Work) == 0 || len(c.Projects.OpenSource) == 0 {
		return nil, fmt.Errorf("content table is missing project entries")
	}

	return c, nil
}

// AssetURL resolves a relative image path from the data table against the
// configured public server URL. Absolute URLs pass through unchanged.
func AssetURL(serverURL, path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return strings.TrimSuffix(serverURL, "/") + path
}
