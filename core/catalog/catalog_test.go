package catalog

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCatalog_Add_and_Get(t *testing.T) {
	c := New()
	c.Add(Control{ID: "ia-2", Title: "Identification and Authentication"})
	c.Add(Control{ID: "au-2", Title: "Event Logging"})

	t.Run("existing", func(t *testing.T) {
		ctrl, ok := c.Get("ia-2")
		if !ok {
			t.Fatal("expected to find ia-2")
		}
		if ctrl.Title != "Identification and Authentication" {
			t.Fatalf("unexpected title %q", ctrl.Title)
		}
	})

	t.Run("case-insensitive lookup", func(t *testing.T) {
		if _, ok := c.Get("IA-2"); !ok {
			t.Fatal("expected IA-2 to resolve to ia-2")
		}
	})

	t.Run("missing", func(t *testing.T) {
		if _, ok := c.Get("zz-99"); ok {
			t.Fatal("expected zz-99 to not be found")
		}
	})
}

func TestCatalog_Add_replacesExistingInPlace(t *testing.T) {
	c := New()
	c.Add(Control{ID: "ac-3", Title: "old"})
	c.Add(Control{ID: "au-2", Title: "Event Logging"})
	c.Add(Control{ID: "AC-3", Title: "Access Enforcement"})

	if c.Len() != 2 {
		t.Fatalf("expected 2 controls after replace, got %d", c.Len())
	}
	if c.Controls()[0].Title != "Access Enforcement" {
		t.Fatalf("expected ac-3 replaced in place, got %q first", c.Controls()[0].Title)
	}
}

func TestCatalog_RequiredFor(t *testing.T) {
	c := New()
	c.Add(Control{ID: "aa-1", Title: "a", Baselines: Baselines{Low: true, Moderate: true, High: true}})
	c.Add(Control{ID: "bb-1", Title: "b", Baselines: Baselines{Moderate: true, High: true}})
	c.Add(Control{ID: "cc-1", Title: "c", Baselines: Baselines{High: true}})

	cases := []struct {
		baseline Baseline
		want     int
	}{
		{BaselineLow, 1},
		{BaselineModerate, 2},
		{BaselineHigh, 3},
	}
	for _, tc := range cases {
		got := c.RequiredFor(tc.baseline)
		if len(got) != tc.want {
			t.Fatalf("baseline %s: expected %d required controls, got %d", tc.baseline, tc.want, len(got))
		}
	}

	t.Run("catalog order preserved", func(t *testing.T) {
		got := c.RequiredFor(BaselineHigh)
		if got[0].ID != "aa-1" || got[2].ID != "cc-1" {
			t.Fatalf("expected catalog order aa-1..cc-1, got %s..%s", got[0].ID, got[2].ID)
		}
	})
}

func TestCatalog_ByPattern(t *testing.T) {
	c := New()
	c.Add(Control{ID: "ia-2", Title: "auth", RelatedPatterns: []string{"authentication", "login"}})
	c.Add(Control{ID: "ia-5", Title: "creds", RelatedPatterns: []string{"password", "credential"}})

	t.Run("token contains pattern", func(t *testing.T) {
		got := c.ByPattern("authentication")
		if len(got) != 1 || got[0].ID != "ia-2" {
			t.Fatalf("expected [ia-2], got %v", got)
		}
	})

	t.Run("pattern contains token", func(t *testing.T) {
		got := c.ByPattern("auth")
		if len(got) != 1 || got[0].ID != "ia-2" {
			t.Fatalf("expected [ia-2], got %v", got)
		}
	})

	t.Run("no match", func(t *testing.T) {
		if got := c.ByPattern("kubernetes"); len(got) != 0 {
			t.Fatalf("expected no matches, got %v", got)
		}
	})

	t.Run("empty keyword", func(t *testing.T) {
		if got := c.ByPattern(""); got != nil {
			t.Fatalf("expected nil for empty keyword, got %v", got)
		}
	})
}

func TestValidControlID(t *testing.T) {
	valid := []string{"ia-2", "ac-12", "sc-8"}
	invalid := []string{"IA-2", "ia2", "i-2", "abc-2", "ia-", "ia-2x", ""}

	for _, id := range valid {
		if !ValidControlID(id) {
			t.Fatalf("expected %q to be valid", id)
		}
	}
	for _, id := range invalid {
		if ValidControlID(id) {
			t.Fatalf("expected %q to be invalid", id)
		}
	}
}

func TestBuiltin(t *testing.T) {
	c := Builtin()
	if c.Len() == 0 {
		t.Fatal("expected built-in catalog to be non-empty")
	}

	t.Run("canonical IDs", func(t *testing.T) {
		for _, ctrl := range c.Controls() {
			if !ValidControlID(ctrl.ID) {
				t.Fatalf("built-in control %q has non-canonical ID", ctrl.ID)
			}
			if ctrl.Title == "" {
				t.Fatalf("built-in control %s has empty title", ctrl.ID)
			}
		}
	})

	t.Run("core controls present", func(t *testing.T) {
		for _, id := range []string{"ia-2", "ia-5", "au-2", "ac-3", "si-10", "sc-13"} {
			if !c.Has(id) {
				t.Fatalf("expected built-in catalog to contain %s", id)
			}
		}
	})

	t.Run("moderate baseline is superset of low", func(t *testing.T) {
		low := c.RequiredFor(BaselineLow)
		for _, ctrl := range low {
			if !ctrl.Baselines.Moderate {
				t.Fatalf("control %s is in low but not moderate baseline", ctrl.ID)
			}
		}
	})
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "controls.yaml")
	content := `controls:
  - id: zz-1
    title: Custom Control
    family: Custom
    baselines:
      low: true
      moderate: true
      high: true
    related_patterns:
      - custom
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	c := New()
	if err := LoadFile(c, path); err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	ctrl, ok := c.Get("zz-1")
	if !ok {
		t.Fatal("expected zz-1 to be loaded")
	}
	if ctrl.Title != "Custom Control" {
		t.Fatalf("unexpected title %q", ctrl.Title)
	}
	if !ctrl.Baselines.Includes(BaselineLow) {
		t.Fatal("expected zz-1 in low baseline")
	}
}

func TestLoadFile_invalidControl(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(path, []byte("controls:\n  - id: notanid\n    title: x\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := LoadFile(New(), path); err == nil {
		t.Fatal("expected error for invalid control ID")
	}
}

func TestLoad_mergesOverBuiltin(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "extra.yaml")
	content := `controls:
  - id: ia-2
    title: Overridden Title
    family: Identification and Authentication
    baselines:
      low: true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	ctrl, _ := c.Get("ia-2")
	if ctrl.Title != "Overridden Title" {
		t.Fatalf("expected user file to override built-in entry, got %q", ctrl.Title)
	}
	if c.Len() != Builtin().Len() {
		t.Fatalf("expected override to keep catalog size, got %d vs %d", c.Len(), Builtin().Len())
	}
}

func TestLoad_emptyPathReturnsBuiltin(t *testing.T) {
	c, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if c.Len() != Builtin().Len() {
		t.Fatal("expected built-in catalog for empty path")
	}
}
