package i18n

import "errors"

var (
	ErrNilAdapter           = errors.New("i18n: translation adapter is nil")
	ErrInvalidTranslations  = errors.New("i18n: invalid translations")
	ErrLanguageNotSupported = errors.New("i18n: language not supported")

	ErrYAMLParsingCancelled = errors.New("i18n: yaml parsing cancelled")
	ErrFailedToParseYAML    = errors.New("i18n: failed to parse YAML content")

	ErrLoadingCancelled = errors.New("i18n: loading translations cancelled")
	ErrFailedToReadDir  = errors.New("i18n: failed to read translations directory")
	ErrFailedToReadFile = errors.New("i18n: failed to read translation file")
	ErrFailedToParse    = errors.New("i18n: failed to parse translation file")
	ErrNoTranslations   = errors.New("i18n: no translation files found")
)
