// Package catalog holds the fixed set of accessibility tools the miner looks
// for and the rules that map aliases and raw names onto canonical tool names.
// It is loaded once and read-only afterwards.
package catalog

import (
	_ "embed"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

type Tool struct {
	Name    string   `yaml:"name"`
	Aliases []string `yaml:"aliases"`
}

type file struct {
	Tools    []Tool            `yaml:"tools"`
	Mappings map[string]string `yaml:"mappings"`
	Generic  []string          `yaml:"generic"`
}

// minReverseLen is the shortest dependency name matched inside an alias.
const minReverseLen = 4

type Catalog struct {
	tools   []Tool
	byKey   map[string]string // folded tool name -> canonical
	aliases map[string]string // folded alias or mapping -> canonical
	generic map[string]bool
	folder  cases.Caser
}

// Result maps every canonical tool name to whether it was detected.
type Result map[string]bool

// Parse builds a catalog from YAML.
func Parse(data []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse tool catalog: %w", err)
	}
	if len(f.Tools) == 0 {
		return nil, fmt.Errorf("tool catalog is empty")
	}

	c := &Catalog{
		tools:   f.Tools,
		byKey:   make(map[string]string, len(f.Tools)),
		aliases: make(map[string]string),
		generic: make(map[string]bool, len(f.Generic)),
		folder:  cases.Fold(),
	}
	for _, g := range f.Generic {
		c.generic[c.fold(g)] = true
	}
	for _, t := range f.Tools {
		key := c.fold(t.Name)
		if _, dup := c.byKey[key]; dup {
			return nil, fmt.Errorf("duplicate tool %q in catalog", t.Name)
		}
		c.byKey[key] = t.Name
		for _, a := range t.Aliases {
			c.aliases[c.fold(a)] = t.Name
		}
	}
	for raw, canonical := range f.Mappings {
		if _, ok := c.byKey[c.fold(canonical)]; !ok {
			return nil, fmt.Errorf("mapping %q points to unknown tool %q", raw, canonical)
		}
		c.aliases[c.fold(raw)] = c.byKey[c.fold(canonical)]
	}
	return c, nil
}

// Default returns the embedded catalog.
func Default() *Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Catalog) fold(s string) string {
	return c.folder.String(strings.TrimSpace(s))
}

// Names returns canonical tool names in catalog order.
func (c *Catalog) Names() []string {
	out := make([]string, len(c.tools))
	for i, t := range c.tools {
		out[i] = t.Name
	}
	return out
}

// NewResult returns an all-false result over the catalog.
func (c *Catalog) NewResult() Result {
	r := make(Result, len(c.tools))
	for _, t := range c.tools {
		r[t.Name] = false
	}
	return r
}

// Canonical resolves a raw tool name: a catalog key first, then the alias table.
func (c *Catalog) Canonical(name string) (string, bool) {
	key := c.fold(name)
	if canonical, ok := c.byKey[key]; ok {
		return canonical, true
	}
	canonical, ok := c.aliases[key]
	return canonical, ok
}

// Mark sets the tool named name to true and reports whether the name resolved.
// Unknown names are discarded.
func (c *Catalog) Mark(r Result, name string) bool {
	canonical, ok := c.Canonical(name)
	if !ok {
		return false
	}
	r[canonical] = true
	return true
}

// MatchContent returns the tools with at least one alias occurring in content.
func (c *Catalog) MatchContent(content string) []string {
	folded := c.folder.String(content)
	var out []string
	for _, t := range c.tools {
		for _, a := range t.Aliases {
			if strings.Contains(folded, c.fold(a)) {
				out = append(out, t.Name)
				break
			}
		}
	}
	return out
}

// MatchDependency matches a declared dependency name against aliases in both
// directions. Forward: the dependency contains an alias. Reverse: the
// dependency resolves through the alias table (e.g. "axe"), or occurs inside an
// alias between separators ("codesniffer" in "html_codesniffer"). The
// substring reverse match needs minReverseLen characters and skips generic
// tokens, so "react" or "jest" do not match "react-axe" or "jest-axe".
func (c *Catalog) MatchDependency(dep string) []string {
	d := strings.TrimPrefix(c.fold(dep), "@")
	if d == "" {
		return nil
	}
	var out []string
	short, resolved := c.Canonical(d)
	reverse := len(d) >= minReverseLen && !c.generic[d]
	for _, t := range c.tools {
		if resolved && short == t.Name {
			out = append(out, t.Name)
			continue
		}
		for _, a := range t.Aliases {
			alias := strings.TrimPrefix(c.fold(a), "@")
			if strings.Contains(d, alias) || (reverse && containsToken(alias, d)) {
				out = append(out, t.Name)
				break
			}
		}
	}
	return out
}

// containsToken reports whether sub occurs in s bounded by separators or the
// ends of s.
func containsToken(s, sub string) bool {
	for from := 0; from+len(sub) <= len(s); {
		i := strings.Index(s[from:], sub)
		if i < 0 {
			return false
		}
		start := from + i
		end := start + len(sub)
		if (start == 0 || isSeparator(s[start-1])) && (end == len(s) || isSeparator(s[end])) {
			return true
		}
		from = start + 1
	}
	return false
}

func isSeparator(b byte) bool {
	return strings.IndexByte("-_/@.", b) >= 0
}

// Detected returns the true entries of r in catalog order.
func (c *Catalog) Detected(r Result) []string {
	var out []string
	for _, t := range c.tools {
		if r[t.Name] {
			out = append(out, t.Name)
		}
	}
	return out
}
