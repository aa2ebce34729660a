// Package responses holds the spoken text for every conversational outcome.
// The table is swappable: a YAML file can override any scenario, for example
// to localize the skill.
package responses

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/template"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Scenario names one response in the table.
type Scenario string

const (
	Welcome          Scenario = "welcome"
	Help             Scenario = "help"
	Cancel           Scenario = "cancel"
	NoMovieSlot      Scenario = "no_movie_slot"
	NoShowSlot       Scenario = "no_show_slot"
	AlreadyWanted    Scenario = "already_wanted"
	NotQueued        Scenario = "not_queued"
	NoResults        Scenario = "no_results"
	AddNotFound      Scenario = "add_not_found"
	AddPrompt        Scenario = "add_prompt"
	NextPrompt       Scenario = "next_prompt"
	Added            Scenario = "added"
	NoMoreCandidates Scenario = "no_more_candidates"
	PleaseRepeat     Scenario = "please_repeat"
	Apology          Scenario = "apology"
	CardTitle        Scenario = "card_title"
)

// Data is the value templates render against.
type Data struct {
	Title string
	Year  string
	Query string
	Kind  string
}

var defaults = map[Scenario]string{
	Welcome:          "Welcome to Libby. I can tell you whether a movie or show is already queued for download, and add it if it isn't.",
	Help:             "You can ask things like, is Inception on the list, find the show Severance, or add the movie Dune from 2021.",
	Cancel:           "Okay, never mind.",
	NoMovieSlot:      "Which movie should I look for? Please tell me the title.",
	NoShowSlot:       "Which show should I look for? Please tell me the title.",
	AlreadyWanted:    "{{.Title}}{{if .Year}} ({{.Year}}){{end}} is already queued.",
	NotQueued:        "{{.Query}} isn't queued.",
	NoResults:        "I couldn't find any {{.Kind}} matching {{.Query}}.",
	AddNotFound:      "I couldn't find a {{.Kind}} called {{.Query}} to add.",
	AddPrompt:        "Would you like to add {{.Title}}{{if .Year}} from {{.Year}}{{end}}?",
	NextPrompt:       "How about {{.Title}}{{if .Year}} from {{.Year}}{{end}}? Should I add that one?",
	Added:            "Okay, {{.Title}} has been added and will start downloading soon.",
	NoMoreCandidates: "Okay. That was the last match I found, so I won't add anything.",
	PleaseRepeat:     "Sorry, I didn't catch that. Please say it again.",
	Apology:          "Sorry, I couldn't reach your {{if .Kind}}{{.Kind}} {{end}}server. Please try again later.",
	CardTitle:        "{{.Title}}{{if .Year}} ({{.Year}}){{end}}",
}

// Scenarios lists every known scenario in sorted order.
func Scenarios() []Scenario {
	out := make([]Scenario, 0, len(defaults))
	for s := range defaults {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Table renders scenarios to text.
type Table struct {
	templates map[Scenario]*template.Template
}

// Default returns the built-in English table.
func Default() *Table {
	t, err := Parse(nil)
	if err != nil {
		panic(fmt.Sprintf("responses: default table does not parse: %v", err))
	}
	return t
}

// Parse builds a table from overrides layered over the defaults.
func Parse(overrides map[string]string) (*Table, error) {
	t := &Table{templates: make(map[Scenario]*template.Template, len(defaults))}

	for scenario, text := range defaults {
		tmpl, err := newTemplate(scenario, text)
		if err != nil {
			return nil, err
		}
		t.templates[scenario] = tmpl
	}

	for key, text := range overrides {
		scenario := Scenario(strings.TrimSpace(key))
		if _, ok := defaults[scenario]; !ok {
			return nil, fmt.Errorf("unknown response scenario %q", key)
		}
		tmpl, err := newTemplate(scenario, text)
		if err != nil {
			return nil, err
		}
		t.templates[scenario] = tmpl
	}

	return t, nil
}

// Load reads YAML overrides from path. An empty path yields the defaults.
func Load(path string) (*Table, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read responses file: %w", err)
	}

	var overrides map[string]string
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("failed to parse responses file: %w", err)
	}
	return Parse(overrides)
}

// Render executes the template for s. A template that fails to execute
// falls back to the built-in text.
func (t *Table) Render(s Scenario, d Data) string {
	if tmpl, ok := t.templates[s]; ok {
		if out, err := execute(tmpl, d); err == nil {
			return out
		}
	}
	text, ok := defaults[s]
	if !ok {
		return ""
	}
	tmpl, err := newTemplate(s, text)
	if err != nil {
		return ""
	}
	out, _ := execute(tmpl, d)
	return out
}

func newTemplate(s Scenario, text string) (*template.Template, error) {
	tmpl, err := template.New(string(s)).Option("missingkey=zero").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("response %q: %w", s, err)
	}
	return tmpl, nil
}

func execute(tmpl *template.Template, d Data) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, d); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}

// Titleize capitalizes a spoken phrase for display ("the expanse" becomes
// "The Expanse"). A Caser keeps state between calls, so each call gets its own.
func Titleize(s string) string {
	return cases.Title(language.English).String(strings.TrimSpace(s))
}

// Join concatenates non-empty sentences with a single space.
func Join(parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}
