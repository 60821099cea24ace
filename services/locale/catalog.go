package locale

import (
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed resources/*.yaml
var resources embed.FS

// Translator renders display text for a locale.
type Translator interface {
	Translate(locale, key string, params map[string]any) string
}

// Catalog holds flattened message tables per locale.
type Catalog struct {
	defaultLocale string
	locales       []string
	messages      map[string]map[string]string
	matcher       language.Matcher
}

// Load builds a catalog from the embedded resources.
func Load(defaultLocale string) (*Catalog, error) {
	entries, err := resources.ReadDir("resources")
	if err != nil {
		return nil, fmt.Errorf("failed to list locale resources: %w", err)
	}

	messages := make(map[string]map[string]string, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || path.Ext(name) != ".yaml" {
			continue
		}
		data, err := resources.ReadFile("resources/" + name)
		if err != nil {
			return nil, fmt.Errorf("failed to read locale %s: %w", name, err)
		}
		table, err := parseYAML(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse locale %s: %w", name, err)
		}
		messages[strings.TrimSuffix(name, ".yaml")] = table
	}
	return NewCatalog(defaultLocale, messages)
}

// NewCatalog builds a catalog from already flattened tables.
func NewCatalog(defaultLocale string, messages map[string]map[string]string) (*Catalog, error) {
	if _, ok := messages[defaultLocale]; !ok {
		return nil, fmt.Errorf("default locale %q has no messages", defaultLocale)
	}

	locales := make([]string, 0, len(messages))
	for l := range messages {
		if l != defaultLocale {
			locales = append(locales, l)
		}
	}
	sort.Strings(locales)
	// The matcher falls back to its first tag.
	locales = append([]string{defaultLocale}, locales...)

	tags := make([]language.Tag, 0, len(locales))
	for _, l := range locales {
		tag, err := language.Parse(l)
		if err != nil {
			return nil, fmt.Errorf("invalid locale %q: %w", l, err)
		}
		tags = append(tags, tag)
	}

	return &Catalog{
		defaultLocale: defaultLocale,
		locales:       locales,
		messages:      messages,
		matcher:       language.NewMatcher(tags),
	}, nil
}

// DefaultLocale returns the locale used when nothing better matches.
func (c *Catalog) DefaultLocale() string { return c.defaultLocale }

// Locales lists the supported locales, default first.
func (c *Catalog) Locales() []string {
	return append([]string(nil), c.locales...)
}

// Match picks the best supported locale for an Accept-Language header.
func (c *Catalog) Match(acceptLanguage string) string {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return c.defaultLocale
	}
	_, idx, conf := c.matcher.Match(tags...)
	if conf == language.No {
		return c.defaultLocale
	}
	return c.locales[idx]
}

// Resolve prefers an explicitly requested supported locale over the header.
func (c *Catalog) Resolve(explicit, acceptLanguage string) string {
	if explicit != "" {
		if _, ok := c.messages[strings.ToLower(explicit)]; ok {
			return strings.ToLower(explicit)
		}
		return c.Match(explicit)
	}
	return c.Match(acceptLanguage)
}

// Messages returns the flattened table of a locale.
func (c *Catalog) Messages(locale string) (map[string]string, bool) {
	table, ok := c.messages[locale]
	if !ok {
		return nil, false
	}
	out := make(map[string]string, len(table))
	for k, v := range table {
		out[k] = v
	}
	return out, true
}

// Translate looks a key up in locale, then in the default locale, and finally
// returns the key itself. {name} placeholders are replaced from params.
func (c *Catalog) Translate(locale, key string, params map[string]any) string {
	msg, ok := c.messages[locale][key]
	if !ok {
		msg, ok = c.messages[c.defaultLocale][key]
	}
	if !ok {
		return key
	}
	if len(params) == 0 {
		return msg
	}

	pairs := make([]string, 0, len(params)*2)
	for name, value := range params {
		pairs = append(pairs, "{"+name+"}", fmt.Sprint(value))
	}
	return strings.NewReplacer(pairs...).Replace(msg)
}

func parseYAML(data []byte) (map[string]string, error) {
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, err
	}
	out := make(map[string]string)
	flatten("", tree, out)
	return out, nil
}

func flatten(prefix string, node map[string]any, out map[string]string) {
	for k, v := range node {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch val := v.(type) {
		case map[string]any:
			flatten(key, val, out)
		case nil:
			out[key] = ""
		default:
			out[key] = fmt.Sprint(val)
		}
	}
}
