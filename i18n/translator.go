package i18n

import "strings"

// Translator retrieves localized messages for data error codes.
// data provides optional parameters substituted into {name} placeholders
// (for example "field", "expected" or "actual").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

var catalogs = map[string]map[string]string{
	"en": {
		"schema_inference": "cannot infer schema of {what}",
		"schema_merge":     "cannot merge schema {left} with {right}",
		"field_not_found":  "field '{field}' does not exist",
		"type_mismatch":    "field '{field}' is not of type {expected}, actual type is {actual}",
		"conversion":       "cannot convert value '{value}' to type {type}",
		"struct_mutation":  "invalid struct mutation on field '{field}': {reason}",
	},
	"ja": {
		"schema_inference": "{what} のスキーマを推論できません",
		"schema_merge":     "スキーマ {left} と {right} をマージできません",
		"field_not_found":  "フィールド '{field}' が存在しません",
		"type_mismatch":    "フィールド '{field}' は {expected} 型ではありません (実際の型: {actual})",
		"conversion":       "値 '{value}' を {type} 型に変換できません",
		"struct_mutation":  "フィールド '{field}' への不正な構造体操作です: {reason}",
	},
}

func (t dictTranslator) Message(code string, data map[string]string) string {
	tmpl, ok := catalogs[t.lang][code]
	if !ok {
		tmpl, ok = catalogs["en"][code]
	}
	if !ok {
		return code
	}
	if len(data) == 0 || !strings.Contains(tmpl, "{") {
		return tmpl
	}
	pairs := make([]string, 0, len(data)*2)
	for k, v := range data {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}

var currentTranslator Translator = dictTranslator{lang: "en"}

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	currentTranslator = dictTranslator{lang: lang}
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		currentTranslator = dictTranslator{lang: "en"}
		return
	}
	currentTranslator = tr
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string { return currentTranslator.Message(code, data) }
