package i18n_test

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tribehub/notify/pkg/i18n"
)

func newTestTranslator(t *testing.T) *i18n.Translator {
	t.Helper()
	tr, err := i18n.NewTranslator(context.Background(), &i18n.MapAdapter{
		Data: map[string]map[string]any{
			"en": {
				"greeting": "Hello, %{name}!",
				"rsvp": map[string]any{
					"title": "You're going to \"%{event}\"!",
					"body":  "Remember: %{description}",
				},
				"only_en": "English only",
			},
			"fr": {
				"greeting": "Bonjour, %{name} !",
				"rsvp": map[string]any{
					"title": "Vous participez à « %{event} » !",
				},
			},
		},
	})
	require.NoError(t, err)
	return tr
}

func TestTranslator_T(t *testing.T) {
	t.Parallel()
	tr := newTestTranslator(t)

	tests := []struct {
		name string
		lang string
		key  string
		args []string
		want string
	}{
		{"simple substitution", "en", "greeting", []string{"name", "Ana"}, "Hello, Ana!"},
		{"other language", "fr", "greeting", []string{"name", "Ana"}, "Bonjour, Ana !"},
		{"nested key", "en", "rsvp.title", []string{"event", "Jazz Night"}, `You're going to "Jazz Night"!`},
		{"falls back to default language", "fr", "rsvp.body", []string{"description", "Bring a friend"}, "Remember: Bring a friend"},
		{"unknown language falls back", "ko", "greeting", []string{"name", "Min"}, "Hello, Min!"},
		{"missing key returns key", "en", "nope.missing", nil, "nope.missing"},
		{"unknown placeholder kept", "en", "greeting", nil, "Hello, %{name}!"},
		{"odd argument ignored", "en", "greeting", []string{"name", "Ana", "extra"}, "Hello, Ana!"},
		{"non-leaf key is missing", "en", "rsvp", nil, "rsvp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tr.T(tt.lang, tt.key, tt.args...))
		})
	}
}

func TestTranslator_Lookup(t *testing.T) {
	t.Parallel()
	tr := newTestTranslator(t)

	s, ok := tr.Lookup("fr", "only_en")
	assert.True(t, ok)
	assert.Equal(t, "English only", s)

	_, ok = tr.Lookup("fr", "missing")
	assert.False(t, ok)

	assert.True(t, tr.Has("fr", "rsvp.title"))
	assert.False(t, tr.Has("fr", "rsvp.body"))
	assert.Equal(t, []string{"en", "fr"}, tr.Languages())
	assert.Equal(t, "en", tr.DefaultLanguage())
}

func TestNewTranslator_Errors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	_, err := i18n.NewTranslator(ctx, nil)
	assert.ErrorIs(t, err, i18n.ErrNilAdapter)

	_, err = i18n.NewTranslator(ctx, &i18n.MapAdapter{Data: map[string]map[string]any{"fr": {"a": "b"}}})
	assert.ErrorIs(t, err, i18n.ErrLanguageNotSupported)

	_, err = i18n.NewTranslator(ctx, &i18n.MapAdapter{Data: map[string]map[string]any{"en": nil}})
	assert.ErrorIs(t, err, i18n.ErrInvalidTranslations)
}

func TestFSAdapter(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	fsys := fstest.MapFS{
		"translations/en.yaml":   {Data: []byte("en:\n  rsvp:\n    title: \"Going to %{event}\"\n")},
		"translations/nl.yml":    {Data: []byte("nl:\n  rsvp:\n    title: \"Je gaat naar %{event}\"\n")},
		"translations/README.md": {Data: []byte("ignored")},
	}

	tr, err := i18n.NewTranslator(ctx, i18n.NewFSAdapter(i18n.NewYAMLParser(), fsys, "translations"))
	require.NoError(t, err)
	assert.Equal(t, []string{"en", "nl"}, tr.Languages())
	assert.Equal(t, "Je gaat naar Hike", tr.T("nl", "rsvp.title", "event", "Hike"))
}

func TestFSAdapter_Errors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("invalid yaml", func(t *testing.T) {
		fsys := fstest.MapFS{"t/en.yaml": {Data: []byte("en: [unterminated")}}
		_, err := i18n.NewFSAdapter(i18n.NewYAMLParser(), fsys, "t").Load(ctx)
		assert.ErrorIs(t, err, i18n.ErrFailedToParse)
	})

	t.Run("no files", func(t *testing.T) {
		fsys := fstest.MapFS{"t/notes.txt": {Data: []byte("x")}}
		_, err := i18n.NewFSAdapter(i18n.NewYAMLParser(), fsys, "t").Load(ctx)
		assert.ErrorIs(t, err, i18n.ErrNoTranslations)
	})

	t.Run("missing dir", func(t *testing.T) {
		_, err := i18n.NewFSAdapter(i18n.NewYAMLParser(), fstest.MapFS{}, "nope").Load(ctx)
		assert.ErrorIs(t, err, i18n.ErrFailedToReadDir)
	})

	t.Run("cancelled", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := i18n.NewFSAdapter(i18n.NewYAMLParser(), fstest.MapFS{}, "t").Load(cctx)
		assert.ErrorIs(t, err, i18n.ErrLoadingCancelled)
	})
}

func TestYAMLParser_RejectsNonMapLanguage(t *testing.T) {
	t.Parallel()
	_, err := i18n.NewYAMLParser().Parse(context.Background(), "en: just a string\n")
	assert.ErrorIs(t, err, i18n.ErrFailedToParseYAML)
	assert.True(t, i18n.NewYAMLParser().SupportsFileExtension(".YML"))
	assert.False(t, i18n.NewYAMLParser().SupportsFileExtension("json"))
}
