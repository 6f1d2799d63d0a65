package core

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ctlscan-hq/ctlscan/core/catalog"
)

// ScanConfig holds project-level configuration loaded from .ctlscan.yaml.
type ScanConfig struct {
	Scan     ScanSettings     `yaml:"scan"`
	Catalog  CatalogSettings  `yaml:"catalog"`
	Output   OutputSettings   `yaml:"output"`
	Policy   PolicySettings   `yaml:"policy"`
	Describe DescribeSettings `yaml:"describe"`
}

// ScanSettings controls which files are scanned and against which baseline.
type ScanSettings struct {
	Baseline string   `yaml:"baseline"`
	Exclude  []string `yaml:"exclude"`
}

// CatalogSettings points at supplementary control catalogs merged over the
// built-in one.
type CatalogSettings struct {
	Path string `yaml:"path"` // a YAML file or a directory of YAML files
}

// OutputSettings controls default output format and directory.
type OutputSettings struct {
	Format    string `yaml:"format"`
	Directory string `yaml:"directory"`
}

// PolicySettings controls pass/fail thresholds.
type PolicySettings struct {
	FailOn      string  `yaml:"fail_on"`
	WarnOn      string  `yaml:"warn_on"`
	MinCoverage float64 `yaml:"min_coverage"`
}

// DescribeSettings controls defaults for the describe command.
type DescribeSettings struct {
	APIKeyEnv string `yaml:"api_key_env"` // env var name to read API key from (default: OPENAI_API_KEY)
	Model     string `yaml:"model"`       // LLM model name (default: gpt-4o)
	BaseURL   string `yaml:"base_url"`    // custom OpenAI-compatible API base URL
	Timeout   string `yaml:"timeout"`     // per-request timeout (e.g., "2m", "30s")
}

// LoadScanConfig reads .ctlscan.yaml from root and returns the parsed config.
// If the file does not exist, a zero-value ScanConfig is returned with no error.
func LoadScanConfig(root string) (*ScanConfig, error) {
	path := filepath.Join(root, ".ctlscan.yaml")

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &ScanConfig{}, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var cfg ScanConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	if cfg.Scan.Baseline != "" && !catalog.ValidBaseline(cfg.Scan.Baseline) {
		return nil, fmt.Errorf("parsing %s: unknown baseline %q", path, cfg.Scan.Baseline)
	}

	return &cfg, nil
}
