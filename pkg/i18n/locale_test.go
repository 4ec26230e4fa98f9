package i18n_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tribehub/notify/pkg/i18n"
)

func TestLocaleMatcher(t *testing.T) {
	t.Parallel()
	m := i18n.NewLocaleMatcher("en", "fr", "nl")

	tests := map[string]string{
		"en":      "en",
		"fr":      "fr",
		"nl":      "nl",
		"fr-CA":   "fr",
		"fr_FR":   "fr",
		"NL-be":   "nl",
		"en-GB":   "en",
		"ko":      "en",
		"de":      "en",
		"":        "en",
		"not a ☃": "en",
	}
	for in, want := range tests {
		assert.Equal(t, want, m.Match(in), "locale %q", in)
	}
}
