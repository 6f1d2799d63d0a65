// Package suggest recommends NIST 800-53 controls for a block of source
// text. Detection is purely lexical: an ordered rule table of security
// domain patterns plus an independent keyword-extraction pass over the
// text, with the union of both returned. The engine holds no mutable
// state beyond a compiled-pattern cache and is safe for concurrent use.
package suggest

import (
	"regexp"
	"strings"
	"sync"

	"github.com/ctlscan-hq/ctlscan/core/catalog"
)

// Engine evaluates suggestion rules and keywords against context text.
// Rule tables and keyword lists are fixed at construction so tests can
// substitute reduced sets.
type Engine struct {
	rules    []Rule
	keywords []string

	mu    sync.Mutex
	cache map[string]*regexp.Regexp
}

// NewEngine returns an Engine with the built-in rule table and keyword list.
func NewEngine() *Engine {
	return NewEngineWith(DefaultRules(), DefaultKeywords())
}

// NewEngineWith returns an Engine with a custom rule table and keyword list.
func NewEngineWith(rules []Rule, keywords []string) *Engine {
	return &Engine{
		rules:    rules,
		keywords: keywords,
		cache:    make(map[string]*regexp.Regexp),
	}
}

// Rules returns the engine's rule table.
func (e *Engine) Rules() []Rule { return e.rules }

// Suggest returns the controls whose patterns or keywords match contextText,
// resolved through the catalog and deduplicated by control id. Discovery
// order is preserved: rule matches first (rule order, then id order within a
// rule), then keyword matches in token order. No match yields an empty
// result, never an error; identical inputs always yield identical output.
func (e *Engine) Suggest(contextText string, cat *catalog.Catalog) []catalog.Control {
	var out []catalog.Control
	seen := make(map[string]struct{})

	add := func(ctrl catalog.Control) {
		if _, dup := seen[ctrl.ID]; dup {
			return
		}
		seen[ctrl.ID] = struct{}{}
		out = append(out, ctrl)
	}

	// Pass 1: domain pattern rules.
	for _, rule := range e.rules {
		re := e.compile(rule.Pattern)
		if re == nil || !re.MatchString(contextText) {
			continue
		}
		for _, id := range rule.ControlIDs {
			if ctrl, ok := cat.Get(id); ok {
				add(ctrl)
			}
		}
	}

	// Pass 2: keyword extraction against catalog related patterns.
	for _, token := range tokenize(contextText) {
		for _, kw := range e.keywords {
			if !strings.Contains(token, kw) {
				continue
			}
			for _, ctrl := range cat.ByPattern(kw) {
				add(ctrl)
			}
		}
	}

	if out == nil {
		return []catalog.Control{}
	}
	return out
}

// compile returns the compiled regexp for pattern, using the cache when
// possible. Invalid patterns return nil and the rule simply never matches.
func (e *Engine) compile(pattern string) *regexp.Regexp {
	e.mu.Lock()
	defer e.mu.Unlock()

	if re, ok := e.cache[pattern]; ok {
		return re
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil
	}
	e.cache[pattern] = re
	return re
}

// tokenize splits text into lowercase word tokens. A token is a maximal run
// of letters, digits, and underscores.
func tokenize(text string) []string {
	var tokens []string
	var b strings.Builder
	flush := func() {
		if b.Len() > 0 {
			tokens = append(tokens, b.String())
			b.Reset()
		}
	}
	for _, r := range strings.ToLower(text) {
		if r == '_' || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			continue
		}
		flush()
	}
	flush()
	return tokens
}
