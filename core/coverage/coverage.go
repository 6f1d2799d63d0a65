// Package coverage aggregates parsed control tags across a file set into
// per-control counts, per-control file lists, and baseline coverage
// statistics. Per-file aggregation is associative and commutative, so
// partial results computed in parallel merge into the same report as a
// sequential pass.
package coverage

import (
	"sort"

	"github.com/ctlscan-hq/ctlscan/core/catalog"
	"github.com/ctlscan-hq/ctlscan/core/tags"
)

// Report is the aggregate compliance result for one baseline.
type Report struct {
	// TaggedControls maps control id to total tag occurrence count. Unknown
	// ids are counted too; the aggregator does not validate against the
	// catalog.
	TaggedControls map[string]int `json:"tagged_controls"`
	// FilesByControl maps control id to the sorted, deduplicated list of
	// files that tag it.
	FilesByControl map[string][]string `json:"files_by_control"`
	// ControlTitles maps tagged control ids to their catalog titles. Ids
	// absent from the catalog map to the empty string.
	ControlTitles map[string]string `json:"control_titles,omitempty"`
	// Baseline is the baseline the coverage was computed against.
	Baseline catalog.Baseline `json:"baseline"`
	// RequiredControls are the catalog controls required under Baseline, in
	// catalog order.
	RequiredControls []catalog.Control `json:"required_controls"`
	// CoveredControls is the subset of RequiredControls with at least one
	// tag, in catalog order.
	CoveredControls []catalog.Control `json:"covered_controls"`
	// MissingControls is RequiredControls minus CoveredControls, in catalog
	// order.
	MissingControls []catalog.Control `json:"missing_controls"`
	// CoveragePercentage is covered/required*100, or 0 when nothing is
	// required.
	CoveragePercentage float64 `json:"coverage_percentage"`
}

// TagCount returns the total number of tag occurrences across all controls.
func (r *Report) TagCount() int {
	total := 0
	for _, n := range r.TaggedControls {
		total += n
	}
	return total
}

// FileCount returns the number of distinct files contributing tags.
func (r *Report) FileCount() int {
	seen := make(map[string]struct{})
	for _, files := range r.FilesByControl {
		for _, f := range files {
			seen[f] = struct{}{}
		}
	}
	return len(seen)
}

// Partial holds per-file tag counts before baseline resolution. Partials
// from independent workers merge commutatively; only the final merge needs
// to run single-threaded.
type Partial struct {
	TaggedControls map[string]int
	filesByControl map[string]map[string]struct{}
}

// NewPartial returns an empty partial result.
func NewPartial() *Partial {
	return &Partial{
		TaggedControls: make(map[string]int),
		filesByControl: make(map[string]map[string]struct{}),
	}
}

// AddFile folds one file's parsed tags into the partial. A file tagging the
// same control twice contributes once to the file list but twice to the
// occurrence count.
func (p *Partial) AddFile(file string, tt []tags.Tag) {
	for _, tag := range tt {
		p.TaggedControls[tag.ControlID]++
		set, ok := p.filesByControl[tag.ControlID]
		if !ok {
			set = make(map[string]struct{})
			p.filesByControl[tag.ControlID] = set
		}
		set[file] = struct{}{}
	}
}

// Merge folds other into p. Merging is associative and commutative over
// per-file inputs.
func (p *Partial) Merge(other *Partial) {
	for id, n := range other.TaggedControls {
		p.TaggedControls[id] += n
	}
	for id, files := range other.filesByControl {
		set, ok := p.filesByControl[id]
		if !ok {
			set = make(map[string]struct{}, len(files))
			p.filesByControl[id] = set
		}
		for f := range files {
			set[f] = struct{}{}
		}
	}
}

// Resolve computes the final report for the given catalog and baseline.
func (p *Partial) Resolve(cat *catalog.Catalog, baseline catalog.Baseline) *Report {
	r := &Report{
		TaggedControls: p.TaggedControls,
		FilesByControl: make(map[string][]string, len(p.filesByControl)),
		ControlTitles:  make(map[string]string, len(p.TaggedControls)),
		Baseline:       baseline,
	}

	for id := range p.TaggedControls {
		if ctrl, ok := cat.Get(id); ok {
			r.ControlTitles[id] = ctrl.Title
		} else {
			r.ControlTitles[id] = ""
		}
	}

	for id, files := range p.filesByControl {
		list := make([]string, 0, len(files))
		for f := range files {
			list = append(list, f)
		}
		sort.Strings(list)
		r.FilesByControl[id] = list
	}

	r.RequiredControls = cat.RequiredFor(baseline)
	for _, ctrl := range r.RequiredControls {
		if _, tagged := r.TaggedControls[ctrl.ID]; tagged {
			r.CoveredControls = append(r.CoveredControls, ctrl)
		} else {
			r.MissingControls = append(r.MissingControls, ctrl)
		}
	}

	if len(r.RequiredControls) > 0 {
		r.CoveragePercentage = float64(len(r.CoveredControls)) / float64(len(r.RequiredControls)) * 100
	}
	return r
}

// Aggregate combines parsed tags from many files into a compliance report
// against the given baseline. Equivalent to folding every file into one
// Partial and resolving it.
func Aggregate(perFileTags map[string][]tags.Tag, cat *catalog.Catalog, baseline catalog.Baseline) *Report {
	p := NewPartial()
	for file, tt := range perFileTags {
		p.AddFile(file, tt)
	}
	return p.Resolve(cat, baseline)
}
