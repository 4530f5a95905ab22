package dto

import "strings"

type Language struct {
	Code string
	Name string
}

// Languages lists the interface languages a user can pick, in menu order.
var Languages = []Language{
	{Code: "en", Name: "English"},
	{Code: "es", Name: "Español"},
	{Code: "fr", Name: "Français"},
	{Code: "de", Name: "Deutsch"},
	{Code: "it", Name: "Italiano"},
	{Code: "ru", Name: "Русский"},
	{Code: "zh", Name: "中文"},
}

// LanguageName returns the display name for code, or code itself.
func LanguageName(code string) string {
	for _, l := range Languages {
		if l.Code == code {
			return l.Name
		}
	}
	return code
}

// FindLanguage matches a code or a display name, case-insensitively.
func FindLanguage(input string) (Language, bool) {
	for _, l := range Languages {
		if strings.EqualFold(l.Code, input) || strings.EqualFold(l.Name, input) {
			return l, true
		}
	}
	return Language{}, false
}
