// Package catalog defines the NIST 800-53 control catalog consumed by the
// ctlscan engine. The catalog is loaded once (built-in data, optionally
// merged with user YAML files) and is read-only afterwards; every other
// component resolves control identifiers through it.
package catalog

import (
	"regexp"
	"strings"
)

// Baseline selects one of the three predefined control baselines.
type Baseline string

// Recognised baseline selectors.
const (
	BaselineLow      Baseline = "low"
	BaselineModerate Baseline = "moderate"
	BaselineHigh     Baseline = "high"
)

// ValidBaseline reports whether s is a recognised baseline selector.
func ValidBaseline(s string) bool {
	switch Baseline(s) {
	case BaselineLow, BaselineModerate, BaselineHigh:
		return true
	}
	return false
}

// Baselines records under which baselines a control is required.
type Baselines struct {
	Low      bool `yaml:"low" json:"low"`
	Moderate bool `yaml:"moderate" json:"moderate"`
	High     bool `yaml:"high" json:"high"`
}

// Includes reports whether the control is required under the given baseline.
func (b Baselines) Includes(bl Baseline) bool {
	switch bl {
	case BaselineLow:
		return b.Low
	case BaselineModerate:
		return b.Moderate
	case BaselineHigh:
		return b.High
	}
	return false
}

// Control is a single NIST 800-53 security control.
type Control struct {
	ID              string    `yaml:"id" json:"id"`
	Title           string    `yaml:"title" json:"title"`
	Description     string    `yaml:"description" json:"description"`
	Family          string    `yaml:"family" json:"family"`
	Baselines       Baselines `yaml:"baselines" json:"baselines"`
	Examples        []string  `yaml:"examples" json:"examples,omitempty"`
	RelatedPatterns []string  `yaml:"related_patterns" json:"related_patterns,omitempty"`
}

// controlIDRE is the canonical control identifier form, e.g. "ia-2" or "ac-12".
var controlIDRE = regexp.MustCompile(`^[a-z]{2}-[0-9]+$`)

// ValidControlID reports whether id is in canonical lowercase form.
func ValidControlID(id string) bool {
	return controlIDRE.MatchString(id)
}

// NormalizeID lowercases a control identifier as written in source text.
func NormalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// Catalog is an ordered, immutable collection of controls with O(1) lookup
// by ID. Order is definition order (built-in data first, then user files),
// which downstream components treat as "catalog order".
type Catalog struct {
	controls []Control
	byID     map[string]int
}

// New returns an empty catalog.
func New() *Catalog {
	return &Catalog{byID: make(map[string]int)}
}

// Add appends a control to the catalog. A control whose ID is already present
// replaces the existing entry in place, keeping its original position.
func (c *Catalog) Add(ctrl Control) {
	ctrl.ID = NormalizeID(ctrl.ID)
	if idx, ok := c.byID[ctrl.ID]; ok {
		c.controls[idx] = ctrl
		return
	}
	c.byID[ctrl.ID] = len(c.controls)
	c.controls = append(c.controls, ctrl)
}

// Get looks up a control by its identifier. The id is normalized before
// lookup, so "IA-2" and "ia-2" resolve to the same entry.
func (c *Catalog) Get(id string) (Control, bool) {
	idx, ok := c.byID[NormalizeID(id)]
	if !ok {
		return Control{}, false
	}
	return c.controls[idx], true
}

// Has reports whether the catalog contains a control with the given id.
func (c *Catalog) Has(id string) bool {
	_, ok := c.byID[NormalizeID(id)]
	return ok
}

// Controls returns all controls in catalog order. The caller must not modify
// the returned slice.
func (c *Catalog) Controls() []Control {
	return c.controls
}

// Len returns the number of controls in the catalog.
func (c *Catalog) Len() int {
	return len(c.controls)
}

// RequiredFor returns, in catalog order, every control required under the
// given baseline.
func (c *Catalog) RequiredFor(bl Baseline) []Control {
	var out []Control
	for _, ctrl := range c.controls {
		if ctrl.Baselines.Includes(bl) {
			out = append(out, ctrl)
		}
	}
	return out
}

// ByPattern returns, in catalog order, every control whose RelatedPatterns
// mention the given keyword. Matching is case-insensitive substring in either
// direction so that the token "authentication" finds the pattern "auth" and
// the token "auth" finds the pattern "authentication".
func (c *Catalog) ByPattern(keyword string) []Control {
	kw := strings.ToLower(keyword)
	if kw == "" {
		return nil
	}
	var out []Control
	for _, ctrl := range c.controls {
		for _, p := range ctrl.RelatedPatterns {
			pl := strings.ToLower(p)
			if strings.Contains(kw, pl) || strings.Contains(pl, kw) {
				out = append(out, ctrl)
				break
			}
		}
	}
	return out
}
