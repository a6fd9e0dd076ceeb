package i18n

import "fmt"

// Localizer resolves template keys for a single request.
type Localizer struct {
	locale string
	chain  []Bundle
	intn   func(n int) int
}

func (l *Localizer) Locale() string {
	return l.locale
}

// T returns the text for key. List templates yield one member chosen
// uniformly at random. When args are given they are substituted into the
// template with fmt.Sprintf. An unknown key is returned as-is.
func (l *Localizer) T(key string, args ...any) string {
	tmpl, ok := l.lookup(key)
	if !ok {
		return key
	}

	text := tmpl.Text
	if n := len(tmpl.Alternatives); n > 0 {
		text = tmpl.Alternatives[l.intn(n)]
	}

	if len(args) > 0 {
		return fmt.Sprintf(text, args...)
	}
	return text
}

// Has reports whether any bundle in the fallback chain defines key.
func (l *Localizer) Has(key string) bool {
	_, ok := l.lookup(key)
	return ok
}

func (l *Localizer) lookup(key string) (Template, bool) {
	for _, b := range l.chain {
		if t, ok := b[key]; ok {
			return t, true
		}
	}
	return Template{}, false
}
