package domain

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

type Language string

const (
	LanguageEnglish Language = "en"
	LanguageHindi   Language = "hi"
	LanguageKannada Language = "kn"

	DefaultLanguage = LanguageEnglish
)

var supportedLanguages = []Language{LanguageEnglish, LanguageHindi, LanguageKannada}

func SupportedLanguages() []Language {
	return append([]Language(nil), supportedLanguages...)
}

// ParseLanguage accepts bare codes and BCP 47 tags ("hi", "hi-IN", "KN").
// Anything outside the supported set resolves to DefaultLanguage.
func ParseLanguage(code string) Language {
	code = strings.TrimSpace(code)
	if code == "" {
		return DefaultLanguage
	}

	tag, err := language.Parse(code)
	if err != nil {
		return DefaultLanguage
	}

	base, conf := tag.Base()
	if conf == language.No {
		return DefaultLanguage
	}

	candidate := Language(base.String())
	if candidate.Supported() {
		return candidate
	}
	return DefaultLanguage
}

func (l Language) Supported() bool {
	for _, s := range supportedLanguages {
		if l == s {
			return true
		}
	}
	return false
}

func (l Language) Tag() language.Tag {
	return language.Make(string(l))
}

// Locale is the regional tag sent to speech recognizers.
func (l Language) Locale() string {
	return string(l) + "-IN"
}

func (l Language) DisplayName() string {
	return display.Languages(language.English).Name(l.Tag())
}
