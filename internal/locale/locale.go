// Package locale renders template keys into user-facing text.
package locale

import (
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/arbor/pkg/domain"
)

// Placeholder is replaced by prompt arguments, left to right.
const Placeholder = "{?}"

// FallbackLang is consulted when a key is missing from the active language.
const FallbackLang = "en"

//go:embed default.yaml
var defaultCatalog []byte

// Catalog holds language groups of key -> text.
type Catalog struct {
	groups map[string]map[string]string
	lang   string
}

// Default returns the embedded catalog.
func Default(lang string) *Catalog {
	c, err := Parse(strings.NewReader(string(defaultCatalog)), lang)
	if err != nil {
		panic(fmt.Sprintf("embedded locale catalog is invalid: %v", err))
	}
	return c
}

// Load reads a catalog file; an empty path gives the embedded catalog.
func Load(path, lang string) (*Catalog, error) {
	if path == "" {
		return Default(lang), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open locale file: %w", err)
	}
	defer f.Close()
	return Parse(f, lang)
}

// Parse decodes a YAML catalog and selects the active language.
func Parse(r io.Reader, lang string) (*Catalog, error) {
	groups := make(map[string]map[string]string)
	if err := yaml.NewDecoder(r).Decode(&groups); err != nil {
		return nil, fmt.Errorf("failed to decode locale catalog: %w", err)
	}

	lang = strings.ToLower(lang)
	if _, ok := groups[lang]; !ok {
		if _, ok := groups[FallbackLang]; !ok {
			return nil, fmt.Errorf("locale catalog has neither %q nor %q", lang, FallbackLang)
		}
		lang = FallbackLang
	}
	return &Catalog{groups: groups, lang: lang}, nil
}

// Lang is the active language.
func (c *Catalog) Lang() string {
	return c.lang
}

// Lookup resolves a key in the active language, then in the fallback one.
func (c *Catalog) Lookup(key string) (string, bool) {
	if text, ok := c.groups[c.lang][key]; ok {
		return text, true
	}
	text, ok := c.groups[FallbackLang][key]
	return text, ok
}

// Text resolves a key; unknown keys render as themselves.
func (c *Catalog) Text(key string) string {
	if text, ok := c.Lookup(key); ok {
		return text
	}
	return key
}

// Render resolves key and fills its placeholders with args in order.
// Surplus placeholders stay as they are and surplus args are dropped.
func (c *Catalog) Render(key string, args ...string) string {
	return Fill(c.Text(key), args...)
}

// Fill substitutes placeholders left to right.
func Fill(text string, args ...string) string {
	var sb strings.Builder
	for _, arg := range args {
		i := strings.Index(text, Placeholder)
		if i < 0 {
			break
		}
		sb.WriteString(text[:i])
		sb.WriteString(arg)
		text = text[i+len(Placeholder):]
	}
	sb.WriteString(text)
	return sb.String()
}

// Prompt renders the body of a prompt. Args flagged as keys are translated
// before they fill the template.
func (c *Catalog) Prompt(p domain.Prompt) string {
	args := p.Args
	if p.ArgKeys {
		args = make([]string, len(p.Args))
		for i, a := range p.Args {
			args[i] = c.Text(a)
		}
	}
	return c.Render(p.Template, args...)
}
