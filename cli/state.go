package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/ctlscan-hq/ctlscan/registry"
)

// InstalledCatalog records metadata for a locally installed catalog bundle.
type InstalledCatalog struct {
	Name        string    `json:"name"`
	Version     string    `json:"version"`
	Digest      string    `json:"digest"`
	Path        string    `json:"path"`
	InstalledAt time.Time `json:"installed_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// State persists registry sources and installed catalogs across CLI invocations.
type State struct {
	Sources  []registry.Source  `json:"sources"`
	Catalogs []InstalledCatalog `json:"catalogs"`
}

// FindCatalog returns the installed catalog with the given name, or nil.
func (s *State) FindCatalog(name string) *InstalledCatalog {
	for i := range s.Catalogs {
		if s.Catalogs[i].Name == name {
			return &s.Catalogs[i]
		}
	}
	return nil
}

// AddCatalog adds or updates an installed catalog by name.
func (s *State) AddCatalog(c InstalledCatalog) {
	for i := range s.Catalogs {
		if s.Catalogs[i].Name == c.Name {
			s.Catalogs[i] = c
			return
		}
	}
	s.Catalogs = append(s.Catalogs, c)
}

// RemoveCatalog removes an installed catalog by name. Returns true if found.
func (s *State) RemoveCatalog(name string) bool {
	for i := range s.Catalogs {
		if s.Catalogs[i].Name == name {
			s.Catalogs = append(s.Catalogs[:i], s.Catalogs[i+1:]...)
			return true
		}
	}
	return false
}

// LoadState reads state from the given path. Returns a zero State if the file
// does not exist.
func LoadState(path string) (*State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &State{}, nil
		}
		return nil, err
	}

	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// SaveState writes state to path atomically (temp file + rename).
func SaveState(path string, s *State) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}

	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

// DefaultStatePath returns the default state file path, respecting CTLSCAN_HOME.
func DefaultStatePath() string {
	return filepath.Join(ctlscanHome(), "state.json")
}

// ctlscanHome returns the ctlscan home directory, respecting CTLSCAN_HOME.
func ctlscanHome() string {
	if h := os.Getenv("CTLSCAN_HOME"); h != "" {
		return h
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".ctlscan")
}
