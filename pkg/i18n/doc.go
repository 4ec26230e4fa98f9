// Package i18n loads translation tables and renders localized strings.
//
// Translations are nested maps keyed by language code, typically shipped as
// YAML files embedded in the binary:
//
//	//go:embed translations
//	var files embed.FS
//
//	tr, err := i18n.NewTranslator(ctx,
//	    i18n.NewFSAdapter(i18n.NewYAMLParser(), files, "translations"),
//	    i18n.WithDefaultLanguage("en"),
//	)
//	title := tr.T("fr", "rsvp.title", "event", "Jazz Night")
//
// Keys are dot-separated paths into the nested map and values may contain
// %{name} placeholders filled from key/value argument pairs. A key missing in
// the requested language falls back to the default language.
//
// LocaleMatcher maps any BCP 47 tag onto the small set of languages a
// translation table actually covers.
package i18n
