package coverage

import (
	"math"
	"reflect"
	"testing"

	"github.com/ctlscan-hq/ctlscan/core/catalog"
	"github.com/ctlscan-hq/ctlscan/core/tags"
)

// tenControlCatalog returns a catalog where the moderate baseline requires
// exactly ten controls, including ia-2 and au-2.
func tenControlCatalog() *catalog.Catalog {
	c := catalog.New()
	ids := []string{"ia-2", "au-2", "ac-2", "ac-3", "ac-7", "ia-5", "sc-8", "sc-13", "si-10", "cm-6"}
	for _, id := range ids {
		c.Add(catalog.Control{
			ID: id, Title: "Control " + id,
			Baselines: catalog.Baselines{Moderate: true, High: true},
		})
	}
	return c
}

func tag(id, file string) tags.Tag {
	return tags.Tag{ControlID: id, SourceFile: file}
}

func TestAggregate_countsAndFiles(t *testing.T) {
	perFile := map[string][]tags.Tag{
		"a.go": {tag("ia-2", "a.go"), tag("ia-2", "a.go")},
		"b.go": {tag("ia-2", "b.go"), tag("au-2", "b.go")},
	}

	r := Aggregate(perFile, tenControlCatalog(), catalog.BaselineModerate)

	if r.TaggedControls["ia-2"] != 3 {
		t.Fatalf("expected 3 ia-2 occurrences, got %d", r.TaggedControls["ia-2"])
	}
	if r.TaggedControls["au-2"] != 1 {
		t.Fatalf("expected 1 au-2 occurrence, got %d", r.TaggedControls["au-2"])
	}

	t.Run("file lists deduplicated and sorted", func(t *testing.T) {
		want := []string{"a.go", "b.go"}
		if !reflect.DeepEqual(r.FilesByControl["ia-2"], want) {
			t.Fatalf("expected %v, got %v", want, r.FilesByControl["ia-2"])
		}
	})

	t.Run("tag and file counts", func(t *testing.T) {
		if r.TagCount() != 4 {
			t.Fatalf("expected 4 total tags, got %d", r.TagCount())
		}
		if r.FileCount() != 2 {
			t.Fatalf("expected 2 files, got %d", r.FileCount())
		}
	})
}

func TestAggregate_coverageScenario(t *testing.T) {
	// ia-2 tagged in 2 files, au-2 in 1; moderate baseline requires 10
	// controls including both: 2 covered of 10 = 20.0%.
	perFile := map[string][]tags.Tag{
		"a.go": {tag("ia-2", "a.go")},
		"b.go": {tag("ia-2", "b.go")},
		"c.go": {tag("au-2", "c.go")},
	}

	r := Aggregate(perFile, tenControlCatalog(), catalog.BaselineModerate)

	if len(r.RequiredControls) != 10 {
		t.Fatalf("expected 10 required controls, got %d", len(r.RequiredControls))
	}
	if len(r.CoveredControls) != 2 {
		t.Fatalf("expected 2 covered controls, got %d", len(r.CoveredControls))
	}
	if len(r.MissingControls) != 8 {
		t.Fatalf("expected 8 missing controls, got %d", len(r.MissingControls))
	}
	if math.Abs(r.CoveragePercentage-20.0) > 1e-9 {
		t.Fatalf("expected 20.0%% coverage, got %v", r.CoveragePercentage)
	}
}

func TestAggregate_unknownControlsCountedNotCovered(t *testing.T) {
	perFile := map[string][]tags.Tag{
		"a.go": {tag("zz-99", "a.go")},
	}

	r := Aggregate(perFile, tenControlCatalog(), catalog.BaselineModerate)

	if r.TaggedControls["zz-99"] != 1 {
		t.Fatal("expected unknown id to be counted")
	}
	if len(r.CoveredControls) != 0 {
		t.Fatalf("expected no covered controls, got %v", r.CoveredControls)
	}
}

func TestAggregate_emptyInputs(t *testing.T) {
	t.Run("no files", func(t *testing.T) {
		r := Aggregate(nil, tenControlCatalog(), catalog.BaselineModerate)
		if r.TagCount() != 0 || r.FileCount() != 0 {
			t.Fatal("expected zero counts")
		}
		if len(r.MissingControls) != 10 {
			t.Fatalf("expected all 10 controls missing, got %d", len(r.MissingControls))
		}
		if r.CoveragePercentage != 0 {
			t.Fatalf("expected 0%% coverage, got %v", r.CoveragePercentage)
		}
	})

	t.Run("empty catalog yields zero not division error", func(t *testing.T) {
		r := Aggregate(map[string][]tags.Tag{"a.go": {tag("ia-2", "a.go")}}, catalog.New(), catalog.BaselineModerate)
		if r.CoveragePercentage != 0 {
			t.Fatalf("expected 0%% coverage for empty catalog, got %v", r.CoveragePercentage)
		}
	})
}

func TestAggregate_missingControlsInCatalogOrder(t *testing.T) {
	c := catalog.New()
	for _, id := range []string{"aa-1", "bb-1", "cc-1"} {
		c.Add(catalog.Control{ID: id, Title: id, Baselines: catalog.Baselines{Low: true}})
	}

	r := Aggregate(map[string][]tags.Tag{"f": {tag("bb-1", "f")}}, c, catalog.BaselineLow)

	if len(r.MissingControls) != 2 {
		t.Fatalf("expected 2 missing, got %d", len(r.MissingControls))
	}
	if r.MissingControls[0].ID != "aa-1" || r.MissingControls[1].ID != "cc-1" {
		t.Fatalf("expected catalog order aa-1, cc-1; got %s, %s",
			r.MissingControls[0].ID, r.MissingControls[1].ID)
	}
}

func TestPartial_mergeMatchesSequentialAggregation(t *testing.T) {
	cat := tenControlCatalog()
	perFile := map[string][]tags.Tag{
		"a.go": {tag("ia-2", "a.go"), tag("sc-8", "a.go")},
		"b.go": {tag("ia-2", "b.go")},
		"c.go": {tag("au-2", "c.go"), tag("zz-99", "c.go")},
	}

	sequential := Aggregate(perFile, cat, catalog.BaselineModerate)

	// Simulate per-worker partials merged in a different order.
	p1 := NewPartial()
	p1.AddFile("c.go", perFile["c.go"])
	p2 := NewPartial()
	p2.AddFile("a.go", perFile["a.go"])
	p3 := NewPartial()
	p3.AddFile("b.go", perFile["b.go"])

	merged := NewPartial()
	merged.Merge(p3)
	merged.Merge(p1)
	merged.Merge(p2)
	parallel := merged.Resolve(cat, catalog.BaselineModerate)

	if !reflect.DeepEqual(sequential, parallel) {
		t.Fatalf("merge order changed the report:\nsequential %+v\nparallel %+v", sequential, parallel)
	}
}

func TestAggregate_monotonicity(t *testing.T) {
	cat := tenControlCatalog()
	base := map[string][]tags.Tag{
		"a.go": {tag("ia-2", "a.go")},
	}
	before := Aggregate(base, cat, catalog.BaselineModerate).CoveragePercentage

	t.Run("new required control never decreases coverage", func(t *testing.T) {
		withNew := map[string][]tags.Tag{
			"a.go": base["a.go"],
			"b.go": {tag("au-2", "b.go")},
		}
		after := Aggregate(withNew, cat, catalog.BaselineModerate).CoveragePercentage
		if after < before {
			t.Fatalf("coverage decreased: %v -> %v", before, after)
		}
	})

	t.Run("non-required control leaves coverage unchanged", func(t *testing.T) {
		withUnrequired := map[string][]tags.Tag{
			"a.go": base["a.go"],
			"b.go": {tag("zz-99", "b.go")},
		}
		after := Aggregate(withUnrequired, cat, catalog.BaselineModerate).CoveragePercentage
		if after != before {
			t.Fatalf("coverage changed: %v -> %v", before, after)
		}
	})
}
