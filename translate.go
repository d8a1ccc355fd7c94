package vaila

import (
	"fmt"
	"log"
	"regexp"
	"sort"

	"github.com/cloudfoundry/jibber_jabber"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v2"
)

// DefaultLanguage is the fallback for missing translations and unknown
// locales.
const DefaultLanguage = "en"

var languageFilePattern = regexp.MustCompile(`\.ya?ml$`)

// Translator resolves message keys against the embedded per-language
// YAML string maps (resources/languages/<tag>.yaml). The initial
// language comes from the system locale, matched against the available
// tags.
type Translator struct {
	language    string
	langStrings map[string]StringMap
	variables   StringMap
}

// NewTranslator returns a Translator without config variables.
func NewTranslator() *Translator {
	return NewTranslatorVar(StringMap{})
}

// NewTranslatorVar returns a Translator whose strings may reference the
// given config variables (and those variables may reference strings;
// one round of each lookup is expanded).
func NewTranslatorVar(variables StringMap) *Translator {
	languages := make(map[string]StringMap)
	for filename, content := range MustGetResourceFiltered("languages", languageFilePattern) {
		tag := regexp.MustCompile(`.*/([^/]+)\.ya?ml`).ReplaceAllString(filename, "$1")
		strings := make(StringMap)
		if err := yaml.Unmarshal([]byte(content), strings); err != nil {
			log.Printf("Unable to parse language file %s", filename)
			continue
		}
		languages[tag] = strings
	}
	t := Translator{langStrings: languages, variables: variables}
	if err := t.SetLanguage(t.matchLocale()); err != nil {
		if err := t.SetLanguage(DefaultLanguage); err != nil {
			return nil
		}
	}
	return &t
}

// Get returns the localized string for a key in the current language,
// with variable templates expanded. Keys missing from the current
// language fall back to the default language, then to "".
func (t *Translator) Get(key string) string {
	if value, ok := t.langStrings[t.language][key]; ok {
		return t.expand(value)
	}
	if value, ok := t.langStrings[DefaultLanguage][key]; ok {
		return t.expand(value)
	}
	return ""
}

// GetLanguage returns the current language tag (e.g. "pt_br").
func (t *Translator) GetLanguage() string { return t.language }

// GetLanguages lists the available language tags, default first, rest
// alphabetical.
func (t *Translator) GetLanguages() []string {
	var languages []string
	hasDefault := false
	for lang := range t.langStrings {
		if lang == DefaultLanguage {
			hasDefault = true
			continue
		}
		languages = append(languages, lang)
	}
	sort.Strings(languages)
	if hasDefault {
		languages = append([]string{DefaultLanguage}, languages...)
	}
	return languages
}

// SetLanguage switches the translator to a language tag.
func (t *Translator) SetLanguage(language string) error {
	if _, ok := t.langStrings[language]; !ok {
		return fmt.Errorf("no language '%s'", language)
	}
	t.language = language
	return nil
}

// matchLocale maps the system locale onto the closest available
// language tag.
func (t *Translator) matchLocale() string {
	tags := []language.Tag{language.Raw.Make(DefaultLanguage)}
	for tag := range t.langStrings {
		if tag != DefaultLanguage && tag != "" {
			tags = append(tags, language.Raw.Make(tag))
		}
	}
	locale, _ := jibber_jabber.DetectIETF()
	match, _, _ := language.NewMatcher(tags).Match(language.Make(locale))
	return match.String()
}

// expand renders a localized string: config variables are expanded with
// the language's strings first, then the string with the variables.
func (t *Translator) expand(str string) string {
	variables := make(StringMap, len(t.variables))
	for key, value := range t.variables {
		variables[key] = ExpandVariables(value, t.langStrings[t.language])
	}
	return ExpandVariables(str, variables)
}
