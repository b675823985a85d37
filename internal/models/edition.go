package models

import "strings"

// Edition is a locale/region partition of content.
type Edition string

const (
	EditionGlobal     Edition = "global"
	EditionBangladesh Edition = "bd"
)

// Language of a post.
type Language string

const (
	LangEnglish Language = "en"
	LangBangla  Language = "bn"
)

var editionAliases = map[string]Edition{
	"global":        EditionGlobal,
	"intl":          EditionGlobal,
	"international": EditionGlobal,
	"world":         EditionGlobal,
	"www":           EditionGlobal,
	"bd":            EditionBangladesh,
	"bangladesh":    EditionBangladesh,
	"bn-bd":         EditionBangladesh,
	"dhaka":         EditionBangladesh,
}

var languageAliases = map[string]Language{
	"en":      LangEnglish,
	"eng":     LangEnglish,
	"english": LangEnglish,
	"en-us":   LangEnglish,
	"en-gb":   LangEnglish,
	"bn":      LangBangla,
	"ben":     LangBangla,
	"bangla":  LangBangla,
	"bengali": LangBangla,
	"bn-bd":   LangBangla,
}

func key(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-")
}

// ParseEdition resolves an edition name or alias.
func ParseEdition(s string) (Edition, bool) {
	e, ok := editionAliases[key(s)]
	return e, ok
}

// EditionOrDefault resolves s, falling back to the global edition.
func EditionOrDefault(s string) Edition {
	if e, ok := ParseEdition(s); ok {
		return e
	}
	return EditionGlobal
}

// ParseLanguage resolves a language code or alias.
func ParseLanguage(s string) (Language, bool) {
	l, ok := languageAliases[key(s)]
	return l, ok
}

// EditionInfo describes an edition for clients.
type EditionInfo struct {
	ID        Edition    `json:"id"`
	Name      string     `json:"name"`
	Languages []Language `json:"languages"`
	Default   Language   `json:"defaultLanguage"`
}

// Editions lists every supported edition.
func Editions() []EditionInfo {
	return []EditionInfo{
		{ID: EditionGlobal, Name: "Global", Languages: []Language{LangEnglish}, Default: LangEnglish},
		{ID: EditionBangladesh, Name: "Bangladesh", Languages: []Language{LangBangla, LangEnglish}, Default: LangBangla},
	}
}

// DefaultLanguage returns the default language of an edition.
func DefaultLanguage(e Edition) Language {
	for _, info := range Editions() {
		if info.ID == e {
			return info.Default
		}
	}
	return LangEnglish
}
