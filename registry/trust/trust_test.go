package trust

import "testing"

func TestLevelString(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{LevelUnverified, "unverified"},
		{LevelCommunity, "community"},
		{LevelVerified, "verified"},
		{Level(99), "Level(99)"},
	}
	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("Level(%d).String() = %q, want %q", int(tt.level), got, tt.want)
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"unverified", LevelUnverified, false},
		{"community", LevelCommunity, false},
		{"verified", LevelVerified, false},
		{"VERIFIED", LevelVerified, false},
		{"bogus", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseLevel(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseLevel(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLevelOrdering(t *testing.T) {
	if !(LevelUnverified < LevelCommunity && LevelCommunity < LevelVerified) {
		t.Error("trust levels must be ordered unverified < community < verified")
	}
}

func TestResultOK(t *testing.T) {
	r := Result{DigestMatch: true}
	if !r.OK() {
		t.Error("result with matching digest and no violations should be OK")
	}

	r.Violations = append(r.Violations, Violation{Field: "signature", Message: "bad"})
	if r.OK() {
		t.Error("result with violations should not be OK")
	}

	r2 := Result{DigestMatch: false}
	if r2.OK() {
		t.Error("result without digest match should not be OK")
	}
}

func TestViolationError(t *testing.T) {
	v := Violation{Field: "digest", Message: "mismatch"}
	want := "trust violation on digest: mismatch"
	if v.Error() != want {
		t.Errorf("Error() = %q, want %q", v.Error(), want)
	}
}
