// Package locale holds the language-specific vocabulary of the assistant:
// intent keywords, date words, the shopping verb and every reply template.
package locale

import (
	"embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed packs/*.yaml
var packs embed.FS

// Default is the pack used when none is configured.
const Default = "en"

// Pack is one language's vocabulary.
type Pack struct {
	Name     string   `yaml:"name"`
	Keywords Keywords `yaml:"keywords"`
	Dates    Dates    `yaml:"dates"`
	Shopping Shopping `yaml:"shopping"`
	Replies  Replies  `yaml:"replies"`
}

// Keywords are matched by substring containment against the lower-cased utterance.
type Keywords struct {
	Exit       []string `yaml:"exit"`
	Help       []string `yaml:"help"`
	Profile    []string `yaml:"profile"`
	CreateTask []string `yaml:"create_task"`
	ListTasks  []string `yaml:"list_tasks"`
	DeleteTask []string `yaml:"delete_task"`
}

// Dates holds relative-day phrases (phrase -> day offset) and month names
// in every grammatical form (name -> month number).
type Dates struct {
	RelativeDays map[string]int `yaml:"relative_days"`
	Months       map[string]int `yaml:"months"`
}

// Shopping configures the shopping list extractor.
type Shopping struct {
	BuyVerb    string   `yaml:"buy_verb"`
	Separators []string `yaml:"separators"`
}

// Replies are response templates. Placeholders look like {date}.
type Replies struct {
	Goodbye               string `yaml:"goodbye"`
	Help                  string `yaml:"help"`
	Profile               string `yaml:"profile"`
	AskDate               string `yaml:"ask_date"`
	DateAccepted          string `yaml:"date_accepted"`
	DateNotUnderstood     string `yaml:"date_not_understood"`
	TaskCreated           string `yaml:"task_created"`
	ShoppingCreated       string `yaml:"shopping_created"`
	TaskEmpty             string `yaml:"task_empty"`
	TaskListHeader        string `yaml:"task_list_header"`
	TaskListEmpty         string `yaml:"task_list_empty"`
	TaskLine              string `yaml:"task_line"`
	ShoppingGroup         string `yaml:"shopping_group"`
	NothingToDelete       string `yaml:"nothing_to_delete"`
	AskDeletion           string `yaml:"ask_deletion"`
	TaskDeleted           string `yaml:"task_deleted"`
	NoSuchTask            string `yaml:"no_such_task"`
	DeletionNotUnderstood string `yaml:"deletion_not_understood"`
	Fallback              string `yaml:"fallback"`
	Failure               string `yaml:"failure"`
}

// Load returns an embedded pack by name ("en", "ru").
func Load(name string) (*Pack, error) {
	if name == "" {
		name = Default
	}
	data, err := packs.ReadFile("packs/" + name + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("unknown locale %q: %w", name, err)
	}
	return parse(data)
}

// LoadFile reads a custom pack from disk.
func LoadFile(path string) (*Pack, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read locale file: %w", err)
	}
	return parse(data)
}

// Available lists the embedded pack names.
func Available() []string {
	entries, err := packs.ReadDir("packs")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	sort.Strings(names)
	return names
}

func parse(data []byte) (*Pack, error) {
	var p Pack
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse locale yaml: %w", err)
	}
	p.normalize()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// normalize lower-cases every matchable word so lookups stay case-insensitive.
func (p *Pack) normalize() {
	lower := func(in []string) []string {
		out := make([]string, 0, len(in))
		for _, s := range in {
			if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	p.Keywords.Exit = lower(p.Keywords.Exit)
	p.Keywords.Help = lower(p.Keywords.Help)
	p.Keywords.Profile = lower(p.Keywords.Profile)
	p.Keywords.CreateTask = lower(p.Keywords.CreateTask)
	p.Keywords.ListTasks = lower(p.Keywords.ListTasks)
	p.Keywords.DeleteTask = lower(p.Keywords.DeleteTask)
	p.Shopping.Separators = lower(p.Shopping.Separators)
	p.Shopping.BuyVerb = strings.ToLower(strings.TrimSpace(p.Shopping.BuyVerb))

	p.Dates.RelativeDays = lowerKeys(p.Dates.RelativeDays)
	p.Dates.Months = lowerKeys(p.Dates.Months)
}

func lowerKeys(in map[string]int) map[string]int {
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[strings.ToLower(strings.TrimSpace(k))] = v
	}
	return out
}

// Validate checks that every keyword list and reply template is present.
func (p *Pack) Validate() error {
	lists := map[string][]string{
		"keywords.exit":        p.Keywords.Exit,
		"keywords.help":        p.Keywords.Help,
		"keywords.profile":     p.Keywords.Profile,
		"keywords.create_task": p.Keywords.CreateTask,
		"keywords.list_tasks":  p.Keywords.ListTasks,
		"keywords.delete_task": p.Keywords.DeleteTask,
	}
	for name, l := range lists {
		if len(l) == 0 {
			return fmt.Errorf("locale %q: %s is empty", p.Name, name)
		}
	}
	if p.Shopping.BuyVerb == "" {
		return fmt.Errorf("locale %q: shopping.buy_verb is empty", p.Name)
	}
	if len(p.Dates.Months) == 0 {
		return fmt.Errorf("locale %q: dates.months is empty", p.Name)
	}
	for m, n := range p.Dates.Months {
		if n < 1 || n > 12 {
			return fmt.Errorf("locale %q: month %q maps to %d", p.Name, m, n)
		}
	}

	r := p.Replies
	templates := map[string]string{
		"goodbye": r.Goodbye, "help": r.Help, "profile": r.Profile,
		"ask_date": r.AskDate, "date_accepted": r.DateAccepted,
		"date_not_understood": r.DateNotUnderstood, "task_created": r.TaskCreated,
		"shopping_created": r.ShoppingCreated, "task_empty": r.TaskEmpty,
		"task_list_header": r.TaskListHeader, "task_list_empty": r.TaskListEmpty,
		"task_line": r.TaskLine, "shopping_group": r.ShoppingGroup,
		"nothing_to_delete": r.NothingToDelete, "ask_deletion": r.AskDeletion,
		"task_deleted": r.TaskDeleted, "no_such_task": r.NoSuchTask,
		"deletion_not_understood": r.DeletionNotUnderstood,
		"fallback":                r.Fallback, "failure": r.Failure,
	}
	for name, tmpl := range templates {
		if strings.TrimSpace(tmpl) == "" {
			return fmt.Errorf("locale %q: replies.%s is empty", p.Name, name)
		}
	}
	return nil
}

// Fill substitutes {key} placeholders in tmpl with the given key/value pairs.
//
//	Fill("Task '{text}' created for {date}.", "text", "call mom", "date", "01.01.2026")
func Fill(tmpl string, kv ...string) string {
	if len(kv) < 2 {
		return tmpl
	}
	pairs := make([]string, 0, len(kv))
	for i := 0; i+1 < len(kv); i += 2 {
		pairs = append(pairs, "{"+kv[i]+"}", kv[i+1])
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}

// ContainsAny reports whether text contains any of the keywords.
func ContainsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}
