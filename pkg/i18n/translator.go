package i18n

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"
)

// Translator resolves dot-separated keys into localized strings with
// %{name} placeholder substitution. It is immutable after construction and
// safe for concurrent use.
type Translator struct {
	translations map[string]map[string]any
	defaultLang  string
	logMissing   bool
	logger       *slog.Logger
}

// NewTranslator loads translations through adapter and validates them.
func NewTranslator(ctx context.Context, adapter TranslationAdapter, options ...Option) (*Translator, error) {
	if adapter == nil {
		return nil, ErrNilAdapter
	}

	t := &Translator{
		defaultLang: DefaultLanguage,
		logger:      slog.Default(),
	}
	for _, option := range options {
		option(t)
	}

	translations, err := adapter.Load(ctx)
	if err != nil {
		return nil, err
	}
	for lang, keys := range translations {
		if lang == "" {
			return nil, fmt.Errorf("%w: empty language code", ErrInvalidTranslations)
		}
		if keys == nil {
			return nil, fmt.Errorf("%w: nil translations for language %q", ErrInvalidTranslations, lang)
		}
	}
	if _, ok := translations[t.defaultLang]; !ok {
		return nil, fmt.Errorf("%w: default language %q", ErrLanguageNotSupported, t.defaultLang)
	}

	t.translations = translations
	return t, nil
}

// Languages returns the loaded language codes, sorted.
func (t *Translator) Languages() []string {
	langs := make([]string, 0, len(t.translations))
	for lang := range t.translations {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

// DefaultLanguage returns the language used when a key is missing.
func (t *Translator) DefaultLanguage() string {
	return t.defaultLang
}

// Has reports whether lang defines key as a string.
func (t *Translator) Has(lang, key string) bool {
	_, ok := t.lookup(lang, key)
	return ok
}

// Lookup translates key for lang, falling back to the default language.
// The boolean is false when neither defines the key.
//
//	// en.yaml: rsvp.title: "You're going to \"%{event}\"!"
//	title, ok := tr.Lookup("en", "rsvp.title", "event", "Jazz Night")
func (t *Translator) Lookup(lang, key string, args ...string) (string, bool) {
	if tmpl, ok := t.lookup(lang, key); ok {
		return substitute(tmpl, args), true
	}
	if lang != t.defaultLang {
		if tmpl, ok := t.lookup(t.defaultLang, key); ok {
			if t.logMissing {
				t.logger.Warn("translation missing, using default language", "lang", lang, "key", key)
			}
			return substitute(tmpl, args), true
		}
	}
	if t.logMissing {
		t.logger.Warn("translation not found", "lang", lang, "key", key)
	}
	return "", false
}

// T is Lookup that returns key itself when no translation exists.
func (t *Translator) T(lang, key string, args ...string) string {
	if s, ok := t.Lookup(lang, key, args...); ok {
		return s
	}
	return key
}

func (t *Translator) lookup(lang, key string) (string, bool) {
	current, ok := t.translations[lang]
	if !ok {
		return "", false
	}

	parts := strings.Split(key, ".")
	for i, part := range parts {
		val, ok := current[part]
		if !ok {
			return "", false
		}
		if i == len(parts)-1 {
			s, ok := val.(string)
			return s, ok
		}
		next, ok := asStringMap(val)
		if !ok {
			return "", false
		}
		current = next
	}
	return "", false
}

// asStringMap accepts both map shapes produced by YAML decoders.
func asStringMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			if ks, ok := k.(string); ok {
				out[ks] = val
			}
		}
		return out, true
	default:
		return nil, false
	}
}

var paramRegex = regexp.MustCompile(`%\{([^}]+)\}`)

// substitute replaces %{name} placeholders using args as key, value pairs.
// Unknown placeholders are kept as is; a trailing odd argument is ignored.
func substitute(tmpl string, args []string) string {
	if len(args) < 2 || !strings.Contains(tmpl, "%{") {
		return tmpl
	}
	params := make(map[string]string, len(args)/2)
	for i := 0; i+1 < len(args); i += 2 {
		params[args[i]] = args[i+1]
	}
	return paramRegex.ReplaceAllStringFunc(tmpl, func(match string) string {
		if val, ok := params[match[2:len(match)-1]]; ok {
			return val
		}
		return match
	})
}
