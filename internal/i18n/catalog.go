// Package i18n selects localized response text for a request locale.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"math/rand/v2"
	"path"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var embedded embed.FS

// DefaultLocale is used when neither the request locale nor its base
// language has a table.
const DefaultLocale = "en"

// Template is either a single string or a list of alternative phrasings.
type Template struct {
	Text         string
	Alternatives []string
}

func (t *Template) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		return node.Decode(&t.Text)
	case yaml.SequenceNode:
		return node.Decode(&t.Alternatives)
	default:
		return fmt.Errorf("line %d: template must be a string or a list of strings", node.Line)
	}
}

// Bundle is the template table of one locale.
type Bundle map[string]Template

// Catalog holds every locale bundle. It is immutable after loading.
type Catalog struct {
	bundles       map[string]Bundle
	defaultLocale string
	intn          func(n int) int
}

type Option func(*Catalog)

// WithDefaultLocale sets the last-resort locale.
func WithDefaultLocale(locale string) Option {
	return func(c *Catalog) {
		if locale != "" {
			c.defaultLocale = normalize(locale)
		}
	}
}

// WithRand replaces the source used to pick among alternatives.
func WithRand(intn func(n int) int) Option {
	return func(c *Catalog) {
		c.intn = intn
	}
}

// Load reads the bundles compiled into the binary.
func Load(opts ...Option) (*Catalog, error) {
	sub, err := fs.Sub(embedded, "locales")
	if err != nil {
		return nil, fmt.Errorf("opening embedded locales: %w", err)
	}
	return LoadFS(sub, opts...)
}

// LoadFS reads one <locale>.yaml file per locale from fsys.
func LoadFS(fsys fs.FS, opts ...Option) (*Catalog, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("reading locales: %w", err)
	}

	bundles := make(map[string]Bundle)
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".yaml" {
			continue
		}

		data, err := fs.ReadFile(fsys, entry.Name())
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", entry.Name(), err)
		}

		var b Bundle
		if err := yaml.Unmarshal(data, &b); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", entry.Name(), err)
		}

		bundles[normalize(strings.TrimSuffix(entry.Name(), ".yaml"))] = b
	}

	return New(bundles, opts...), nil
}

// New builds a catalog from in-memory bundles.
func New(bundles map[string]Bundle, opts ...Option) *Catalog {
	c := &Catalog{
		bundles:       make(map[string]Bundle, len(bundles)),
		defaultLocale: DefaultLocale,
		intn:          rand.IntN,
	}
	for locale, b := range bundles {
		c.bundles[normalize(locale)] = b
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Locales lists the loaded locale codes.
func (c *Catalog) Locales() []string {
	out := make([]string, 0, len(c.bundles))
	for l := range c.bundles {
		out = append(out, l)
	}
	return out
}

// DefaultLocale is the last-resort locale of every fallback chain.
func (c *Catalog) DefaultLocale() string {
	return c.defaultLocale
}

// HasLocale reports whether a bundle was loaded for locale.
func (c *Catalog) HasLocale(locale string) bool {
	_, ok := c.bundles[normalize(locale)]
	return ok
}

// For returns the localizer of one request. Lookups try the exact locale,
// then its base language, then the catalog default.
func (c *Catalog) For(locale string) *Localizer {
	chain := make([]Bundle, 0, 3)
	seen := make(map[string]bool, 3)
	for _, l := range fallbackChain(locale, c.defaultLocale) {
		if seen[l] {
			continue
		}
		seen[l] = true
		if b, ok := c.bundles[l]; ok {
			chain = append(chain, b)
		}
	}
	return &Localizer{locale: locale, chain: chain, intn: c.intn}
}

func fallbackChain(locale, defaultLocale string) []string {
	chain := []string{}
	if locale != "" {
		chain = append(chain, normalize(locale))
		if tag, err := language.Parse(locale); err == nil {
			if base, conf := tag.Base(); conf != language.No {
				chain = append(chain, base.String())
			}
		}
	}
	return append(chain, defaultLocale)
}

// normalize canonicalizes the case of a locale code, e.g. "en-us" -> "en-US".
func normalize(locale string) string {
	tag, err := language.Parse(locale)
	if err != nil {
		return locale
	}
	return tag.String()
}
