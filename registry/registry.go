// Package registry fetches, caches, and queries remote control catalog
// indexes. Organizations publish versioned catalog bundles (YAML files
// loadable by core/catalog) behind a JSON index; the client resolves a
// named catalog at a version constraint and downloads it for local use.
package registry

import "time"

// Framework identifies the compliance framework a catalog covers.
type Framework string

const (
	FrameworkNIST80053  Framework = "nist-800-53"
	FrameworkNIST800171 Framework = "nist-800-171"
	FrameworkCSF        Framework = "nist-csf"
	FrameworkISO27001   Framework = "iso-27001"
	FrameworkSOC2       Framework = "soc2"
)

// AllFrameworks returns all defined framework values.
func AllFrameworks() []Framework {
	return []Framework{
		FrameworkNIST80053,
		FrameworkNIST800171,
		FrameworkCSF,
		FrameworkISO27001,
		FrameworkSOC2,
	}
}

// ValidFramework reports whether f is a recognized framework value.
func ValidFramework(f Framework) bool {
	for _, valid := range AllFrameworks() {
		if f == valid {
			return true
		}
	}
	return false
}

// Source represents a registry endpoint that serves catalog indexes.
type Source struct {
	Name string `json:"name"` // e.g. "official", "enterprise"
	URL  string `json:"url"`  // e.g. "https://registry.ctlscan.dev/index.json"
}

// Index is the top-level registry index document served by a Source.
type Index struct {
	SchemaVersion string         `json:"schema_version"`
	GeneratedAt   time.Time      `json:"generated_at"`
	Catalogs      []CatalogEntry `json:"catalogs"`
}

// CatalogEntry describes a catalog bundle available in the registry.
type CatalogEntry struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Framework   Framework      `json:"framework,omitempty"`
	Homepage    string         `json:"homepage,omitempty"`
	Maintainers []string       `json:"maintainers,omitempty"`
	License     string         `json:"license,omitempty"`
	Versions    []VersionEntry `json:"versions"`
}

// VersionEntry describes a specific version of a catalog bundle.
type VersionEntry struct {
	Version      string    `json:"version"`
	PublishedAt  time.Time `json:"published_at"`
	URL          string    `json:"url"`
	Size         int64     `json:"size"`
	Digest       string    `json:"digest"`                   // sha256:<hex> of the bundle
	Signature    string    `json:"signature,omitempty"`      // base64 Ed25519 signature over the bundle bytes
	SignerKeyPEM string    `json:"signer_key_pem,omitempty"` // PEM public key of the publisher
	ControlCount int       `json:"control_count,omitempty"`
	Baselines    []string  `json:"baselines,omitempty"`
}
