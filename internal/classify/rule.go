// Package classify decides whether a repository is a library and whether it is
// a web application. Each question is an ordered table of rules; the first
// rule that returns a verdict wins.
package classify

import (
	"context"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/thep200/a11y-miner/internal/model"
	"github.com/thep200/a11y-miner/internal/probe"
	"golang.org/x/text/cases"
)

type Verdict int

const (
	Undecided Verdict = iota
	Yes
	No
)

func (v Verdict) String() string {
	switch v {
	case Yes:
		return "yes"
	case No:
		return "no"
	default:
		return "undecided"
	}
}

// Rule looks at the input and either decides or passes.
type Rule struct {
	Name string
	Eval func(ctx context.Context, in *Input) (Verdict, error)
}

// static wraps a rule that only needs the record fields.
func static(name string, f func(in *Input) Verdict) Rule {
	return Rule{Name: name, Eval: func(_ context.Context, in *Input) (Verdict, error) {
		return f(in), nil
	}}
}

func verdictIf(cond bool, v Verdict) Verdict {
	if cond {
		return v
	}
	return Undecided
}

// Evaluate runs rules in order and returns the first verdict together with the
// name of the rule that gave it.
func Evaluate(ctx context.Context, rules []Rule, in *Input) (Verdict, string, error) {
	for _, r := range rules {
		v, err := r.Eval(ctx, in)
		if err != nil {
			return Undecided, r.Name, fmt.Errorf("rule %s: %w", r.Name, err)
		}
		if v != Undecided {
			return v, r.Name, nil
		}
	}
	return Undecided, "", nil
}

// Input is what the rules see: the record, its normalized text, and a probe for
// lazily fetched content. Probe may be nil, which reads as "nothing found".
type Input struct {
	Repo  *model.Repository
	Probe *probe.Probe

	text        string
	description string
	name        string
	fullName    string
	topics      []string
}

func NewInput(repo *model.Repository, p *probe.Probe) *Input {
	in := &Input{
		Repo:        repo,
		Probe:       p,
		description: normalize(repo.Description),
		name:        fold(repo.Name()),
		fullName:    fold(repo.FullName),
	}
	parts := []string{in.description, normalize(repo.Name())}
	for _, t := range repo.Topics {
		topic := fold(t)
		in.topics = append(in.topics, topic)
		parts = append(parts, normalize(topic))
	}
	in.text = strings.Join(parts, " ")
	return in
}

func (in *Input) file(ctx context.Context, path string) (string, bool, error) {
	if in.Probe == nil {
		return "", false, nil
	}
	return in.Probe.File(ctx, path)
}

func fold(s string) string {
	return cases.Fold().String(s)
}

// normalize folds case and turns '-' and '_' into spaces so "todo-app" and
// "todo app" read the same.
func normalize(s string) string {
	return strings.NewReplacer("-", " ", "_", " ").Replace(fold(s))
}

// phraseSet matches whole-word phrases against normalized text.
type phraseSet []string

func phrases(list ...string) phraseSet {
	out := make(phraseSet, len(list))
	for i, p := range list {
		out[i] = normalize(p)
	}
	return out
}

// Match returns the first phrase found in text.
func (s phraseSet) Match(text string) (string, bool) {
	for _, p := range s {
		if containsPhrase(text, p) {
			return p, true
		}
	}
	return "", false
}

func (s phraseSet) Any(text string) bool {
	_, ok := s.Match(text)
	return ok
}

func containsPhrase(text, phrase string) bool {
	if phrase == "" {
		return false
	}
	for from := 0; from < len(text); {
		i := strings.Index(text[from:], phrase)
		if i < 0 {
			return false
		}
		start := from + i
		end := start + len(phrase)
		if wordEdge(text, start, end) {
			return true
		}
		from = start + 1
	}
	return false
}

func wordEdge(text string, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(text[:start])
		if isWordRune(r) {
			return false
		}
	}
	if end < len(text) {
		r, _ := utf8.DecodeRuneInString(text[end:])
		if isWordRune(r) {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
