package highlight

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Registry is the compiled set of highlighting rules. Build it once and pass
// it to whatever renders text; it is read-only after construction and safe
// to share.
type Registry struct {
	specs  []Spec
	colors map[string]string
}

// Rule is the uncompiled form of a Spec as it appears in a rules file.
type Rule struct {
	Name     string `toml:"name"`
	Pattern  string `toml:"pattern"`
	Priority int    `toml:"priority"`
	Groups   *[]int `toml:"groups"` // absent: whole match; []: all groups
	Color    string `toml:"color"`
}

type rulesFile struct {
	Rules []Rule `toml:"rule"`
}

// NewRegistry builds a registry from already-compiled specs.
func NewRegistry(specs ...Spec) *Registry {
	return &Registry{specs: specs, colors: make(map[string]string)}
}

// Compile validates and compiles rules. A bad pattern fails the whole set so
// it never reaches Search.
func Compile(rules []Rule) (*Registry, error) {
	reg := NewRegistry()
	for i, rule := range rules {
		name := strings.TrimSpace(rule.Name)
		if name == "" {
			return nil, fmt.Errorf("rule %d: name is empty", i)
		}
		if rule.Priority < 0 {
			return nil, fmt.Errorf("rule %q: priority must not be negative", name)
		}
		re, err := regexp.Compile(rule.Pattern)
		if err != nil {
			return nil, fmt.Errorf("rule %q: compile pattern: %w", name, err)
		}
		groups := WholeMatch()
		if rule.Groups != nil {
			for _, g := range *rule.Groups {
				if g < 0 || g > re.NumSubexp() {
					return nil, fmt.Errorf("rule %q: group %d out of range", name, g)
				}
			}
			groups = Only(*rule.Groups...)
		}
		reg.specs = append(reg.specs, Spec{Name: name, Pattern: re, Priority: rule.Priority, Groups: groups})
		if color := strings.TrimSpace(rule.Color); color != "" {
			reg.colors[name] = color
		}
	}
	return reg, nil
}

// LoadRules reads a TOML rules file:
//
//	[[rule]]
//	name = "url"
//	pattern = 'https?://\S+'
//	priority = 10
//	color = "#38bdf8"
//
// A missing file yields the default rules.
func LoadRules(path string) (*Registry, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("read rules: %w", err)
	}
	var raw rulesFile
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse rules: %w", err)
	}
	return Compile(raw.Rules)
}

// Specs returns a copy of the compiled specs in rule order.
func (r *Registry) Specs() []Spec {
	if r == nil {
		return nil
	}
	out := make([]Spec, len(r.specs))
	copy(out, r.specs)
	return out
}

// Color returns the configured color for a rule name, if any.
func (r *Registry) Color(name string) string {
	if r == nil {
		return ""
	}
	return r.colors[name]
}

// Search runs the registry's specs over text.
func (r *Registry) Search(text string) []Match {
	if r == nil {
		return nil
	}
	return Search(text, r.specs)
}

func groupsPtr(g ...int) *[]int {
	return &g
}

var defaultRules = []Rule{
	{Name: "number", Pattern: `\b\d+(?:\.\d+)?\b`, Priority: 0},
	{Name: "keyvalue", Pattern: `\b(\w+)=(\S+)`, Priority: 2, Groups: groupsPtr(1)},
	{Name: "quoted", Pattern: `"[^"]*"`, Priority: 5},
	{Name: "url", Pattern: `https?://\S+`, Priority: 10},
	{Name: "frame", Pattern: `^\s*at ([\w$.<>]+)\(([^)]*)\)`, Priority: 15, Groups: groupsPtr()},
	{Name: "exception", Pattern: `\b(?:[a-z][\w$]*\.)+[A-Z]\w*(?:Exception|Error)\b`, Priority: 20},
}

// Default returns the built-in rules.
func Default() *Registry {
	reg, err := Compile(defaultRules)
	if err != nil {
		panic(fmt.Sprintf("default highlight rules: %v", err))
	}
	return reg
}
