// Package content holds the static tables for the pre-guidance confirmation
// flow: the per-language translation bundles, the Japanese reference text the
// translations mirror, and the explainer rosters. The tables are embedded as
// YAML and parsed once at startup.
package content

import (
	_ "embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// ReferenceLang is the language of the canonical reference text. Its
// explainers are always offered in addition to the selected language's.
const ReferenceLang = "jp"

//go:embed guidance.yaml
var guidanceYAML []byte

// Translation is one language's guidance bundle as shown to the signer.
type Translation struct {
	Title             string   `yaml:"title"`
	Items             []string `yaml:"items"`
	FinalConfirmation string   `yaml:"final_confirmation"`
	SignatureLabel    string   `yaml:"signature_label"`
	AgreeCheckbox     string   `yaml:"agree_checkbox"`
	SubmitButton      string   `yaml:"submit_button"`
}

// Clause is one numbered item of the Japanese reference text.
type Clause struct {
	Num  string `yaml:"num"`
	Text string `yaml:"text"`
}

// JapaneseText is the canonical reference text rendered alongside every
// translation and laid out on the generated document.
type JapaneseText struct {
	Title             string   `yaml:"title"`
	Clauses           []Clause `yaml:"clauses"`
	FinalConfirmation string   `yaml:"final_confirmation"`
}

type guidanceTables struct {
	Translations map[string]Translation `yaml:"translations"`
	Japanese     JapaneseText           `yaml:"japanese"`
	Explainers   map[string][]string    `yaml:"explainers"`
}

var tables guidanceTables

func init() {
	if err := yaml.Unmarshal(guidanceYAML, &tables); err != nil {
		panic(fmt.Sprintf("content: parse embedded guidance tables: %v", err))
	}
	if len(tables.Translations) == 0 || len(tables.Japanese.Clauses) == 0 {
		panic("content: embedded guidance tables are incomplete")
	}
}

// Supported reports whether a translation bundle exists for lang.
func Supported(lang string) bool {
	_, ok := tables.Translations[lang]
	return ok
}

// Languages returns the supported language codes in sorted order.
func Languages() []string {
	out := make([]string, 0, len(tables.Translations))
	for lang := range tables.Translations {
		out = append(out, lang)
	}
	sort.Strings(out)
	return out
}

// TranslationFor returns the bundle for lang.
func TranslationFor(lang string) (Translation, bool) {
	t, ok := tables.Translations[lang]
	return t, ok
}

// Japanese returns the canonical reference text.
func Japanese() JapaneseText {
	return tables.Japanese
}

// Clauses returns the numbered reference clauses laid out on the document.
func Clauses() []Clause {
	out := make([]Clause, len(tables.Japanese.Clauses))
	copy(out, tables.Japanese.Clauses)
	return out
}

// ExplainersFor returns the union of lang's explainer roster and the
// reference-language roster, deduplicated, in first-seen order.
func ExplainersFor(lang string) []string {
	seen := map[string]struct{}{}
	out := []string{}
	for _, name := range append(append([]string{}, tables.Explainers[lang]...), tables.Explainers[ReferenceLang]...) {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}
