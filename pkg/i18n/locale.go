package i18n

import (
	"strings"

	"golang.org/x/text/language"
)

// DefaultLanguage is the fallback language code.
const DefaultLanguage = "en"

// LocaleMatcher clamps arbitrary locale tags to a fixed set of supported
// base languages.
type LocaleMatcher struct {
	supported map[language.Base]string
	fallback  string
}

// NewLocaleMatcher builds a matcher over supported language codes. Tags
// that don't parse are skipped. The fallback is returned for any locale
// whose base language is not supported.
func NewLocaleMatcher(fallback string, supported ...string) *LocaleMatcher {
	m := &LocaleMatcher{
		supported: make(map[language.Base]string, len(supported)),
		fallback:  fallback,
	}
	for _, code := range append([]string{fallback}, supported...) {
		tag, err := language.Parse(code)
		if err != nil {
			continue
		}
		base, _ := tag.Base()
		m.supported[base] = strings.ToLower(code)
	}
	return m
}

// Match returns the supported code for locale. "fr-CA" and "fr_FR" become
// "fr"; "ko", "" and malformed tags become the fallback.
func (m *LocaleMatcher) Match(locale string) string {
	locale = strings.TrimSpace(locale)
	if locale == "" {
		return m.fallback
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return m.fallback
	}
	base, conf := tag.Base()
	if conf == language.No {
		return m.fallback
	}
	if code, ok := m.supported[base]; ok {
		return code
	}
	return m.fallback
}
