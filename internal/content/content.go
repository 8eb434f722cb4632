// Package content loads the editable site copy shown on public pages.
package content

import (
	"bytes"
	_ "embed"
	"fmt"
	"html"
	"html/template"
	"os"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"gopkg.in/yaml.v3"
)

//go:embed content.yaml
var defaultContent []byte

type Contact struct {
	Phone   string `yaml:"phone"`
	Email   string `yaml:"email"`
	Address string `yaml:"address"`
	Hours   string `yaml:"hours"`
}

type Highlight struct {
	Title string `yaml:"title"`
	Body  string `yaml:"body"`
}

// Site is the site copy. AboutHTML is rendered once at load.
type Site struct {
	Company    string      `yaml:"company"`
	Tagline    string      `yaml:"tagline"`
	Contact    Contact     `yaml:"contact"`
	Highlights []Highlight `yaml:"highlights"`
	About      string      `yaml:"about"`

	aboutHTML template.HTML
}

var (
	markdown     = goldmark.New(goldmark.WithExtensions(extension.GFM))
	aboutPolicy  = bluemonday.UGCPolicy()
	strictPolicy = bluemonday.StrictPolicy()
)

// Load reads site copy from path, or the embedded defaults when path is empty.
func Load(path string) (*Site, error) {
	data := defaultContent
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read content file: %w", err)
		}
	}
	return Parse(data)
}

// Parse decodes YAML site copy and renders its markdown.
func Parse(data []byte) (*Site, error) {
	var s Site
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse content: %w", err)
	}
	if strings.TrimSpace(s.Company) == "" {
		return nil, fmt.Errorf("parse content: company is required")
	}

	var buf bytes.Buffer
	if err := markdown.Convert([]byte(s.About), &buf); err != nil {
		return nil, fmt.Errorf("render about markdown: %w", err)
	}
	s.aboutHTML = template.HTML(aboutPolicy.SanitizeBytes(buf.Bytes()))
	return &s, nil
}

// AboutHTML returns the sanitised about-us page body.
func (s *Site) AboutHTML() template.HTML {
	return s.aboutHTML
}

// SanitizeMessage strips all markup from user-submitted text. The result is
// plain text and still needs escaping on output.
func SanitizeMessage(msg string) string {
	return strings.TrimSpace(html.UnescapeString(strictPolicy.Sanitize(msg)))
}
