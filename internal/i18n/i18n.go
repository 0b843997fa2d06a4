// Package i18n holds the server-side message tables and picks a locale for
// each request.
package i18n

import (
	"golang.org/x/text/language"
)

// Supported locales.
const (
	LocaleZhCN = "zh-CN"
	LocaleEn   = "en"
)

// Translator resolves message keys for a locale.
type Translator interface {
	Negotiate(raw string) string
	T(locale, key string) string
}

// Catalog is an immutable set of message tables.
type Catalog struct {
	tables        map[string]map[string]string
	locales       []string
	matcher       language.Matcher
	defaultLocale string
}

// NewCatalog builds the catalog. An unsupported default falls back to zh-CN.
func NewCatalog(defaultLocale string) *Catalog {
	tables := map[string]map[string]string{
		LocaleZhCN: zhCN,
		LocaleEn:   en,
	}
	if _, ok := tables[defaultLocale]; !ok {
		defaultLocale = LocaleZhCN
	}

	// The matcher falls back to its first tag, so the default goes first.
	locales := []string{defaultLocale}
	for _, l := range []string{LocaleZhCN, LocaleEn} {
		if l != defaultLocale {
			locales = append(locales, l)
		}
	}
	tags := make([]language.Tag, 0, len(locales))
	for _, l := range locales {
		tags = append(tags, language.MustParse(l))
	}

	return &Catalog{
		tables:        tables,
		locales:       locales,
		matcher:       language.NewMatcher(tags),
		defaultLocale: defaultLocale,
	}
}

// Default returns the fallback locale.
func (c *Catalog) Default() string {
	return c.defaultLocale
}

// Negotiate maps a raw locale value (e.g. a cookie) onto a supported locale.
func (c *Catalog) Negotiate(raw string) string {
	if raw == "" {
		return c.defaultLocale
	}
	tag, err := language.Parse(raw)
	if err != nil {
		return c.defaultLocale
	}
	_, idx, conf := c.matcher.Match(tag)
	if conf == language.No || idx < 0 || idx >= len(c.locales) {
		return c.defaultLocale
	}
	return c.locales[idx]
}

// T returns the message for key, falling back to the default locale and then
// to the key itself.
func (c *Catalog) T(locale, key string) string {
	if msg, ok := c.tables[locale][key]; ok {
		return msg
	}
	if msg, ok := c.tables[c.defaultLocale][key]; ok {
		return msg
	}
	return key
}

// Has reports whether key exists in the default table.
func (c *Catalog) Has(key string) bool {
	_, ok := c.tables[c.defaultLocale][key]
	return ok
}
