package main

import (
	"context"
	"flag"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/ctlscan-hq/ctlscan/registry"
	"github.com/ctlscan-hq/ctlscan/registry/trust"
)

// runCatalog dispatches catalog registry subcommands.
func runCatalog(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: ctlscan catalog <add-source|list-sources|remove-source|search|install|list|trust>")
		return 2
	}

	switch args[0] {
	case "add-source":
		return runCatalogAddSource(args[1:])
	case "list-sources":
		return runCatalogListSources(args[1:])
	case "remove-source":
		return runCatalogRemoveSource(args[1:])
	case "search":
		return runCatalogSearch(args[1:])
	case "install":
		return runCatalogInstall(args[1:])
	case "list":
		return runCatalogList(args[1:])
	case "trust":
		return runCatalogTrust(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown catalog command: %s\n", args[0])
		fmt.Fprintln(os.Stderr, "Usage: ctlscan catalog <add-source|list-sources|remove-source|search|install|list|trust>")
		return 2
	}
}

// runCatalogAddSource adds a catalog registry source.
func runCatalogAddSource(args []string) int {
	fs := flag.NewFlagSet("catalog add-source", flag.ContinueOnError)
	var name string
	fs.StringVar(&name, "name", "", "source name (default: derived from URL hostname)")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: ctlscan catalog add-source [--name <name>] <url>")
		return 2
	}

	rawURL := fs.Arg(0)

	if name == "" {
		u, err := url.Parse(rawURL)
		if err != nil || u.Host == "" {
			fmt.Fprintf(os.Stderr, "error: cannot derive name from URL %q; use --name\n", rawURL)
			return 2
		}
		name = u.Hostname()
	}

	statePath := DefaultStatePath()
	st, err := LoadState(statePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: loading state: %v\n", err)
		return 2
	}

	for _, s := range st.Sources {
		if s.Name == name {
			fmt.Fprintf(os.Stderr, "error: source %q already exists\n", name)
			return 2
		}
	}

	st.Sources = append(st.Sources, registry.Source{Name: name, URL: rawURL})

	if err := SaveState(statePath, st); err != nil {
		fmt.Fprintf(os.Stderr, "error: saving state: %v\n", err)
		return 2
	}

	fmt.Printf("Source %q added: %s\n", name, rawURL)
	return 0
}

// runCatalogListSources lists all configured registry sources.
func runCatalogListSources(args []string) int {
	st, err := LoadState(DefaultStatePath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: loading state: %v\n", err)
		return 2
	}

	if len(st.Sources) == 0 {
		fmt.Println("No sources configured.")
		return 0
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tURL")
	for _, s := range st.Sources {
		fmt.Fprintf(w, "%s\t%s\n", s.Name, s.URL)
	}
	w.Flush()
	return 0
}

// runCatalogRemoveSource removes a registry source by name.
func runCatalogRemoveSource(args []string) int {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: ctlscan catalog remove-source <name>")
		return 2
	}

	name := args[0]
	statePath := DefaultStatePath()
	st, err := LoadState(statePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: loading state: %v\n", err)
		return 2
	}

	found := false
	for i, s := range st.Sources {
		if s.Name == name {
			st.Sources = append(st.Sources[:i], st.Sources[i+1:]...)
			found = true
			break
		}
	}

	if !found {
		fmt.Fprintf(os.Stderr, "error: source %q not found\n", name)
		return 2
	}

	if err := SaveState(statePath, st); err != nil {
		fmt.Fprintf(os.Stderr, "error: saving state: %v\n", err)
		return 2
	}

	fmt.Printf("Source %q removed.\n", name)
	return 0
}

// runCatalogSearch queries all configured sources for catalogs.
func runCatalogSearch(args []string) int {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: ctlscan catalog search <query>")
		return 2
	}
	query := args[0]

	client, code := registryClient()
	if code != 0 {
		return code
	}

	results, err := client.Search(context.Background(), query)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: searching registries: %v\n", err)
		return 2
	}

	if len(results) == 0 {
		fmt.Printf("No catalogs matching %q.\n", query)
		return 0
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tFRAMEWORK\tLATEST\tDESCRIPTION")
	for _, entry := range results {
		latest := ""
		if len(entry.Versions) > 0 {
			latest = entry.Versions[len(entry.Versions)-1].Version
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", entry.Name, entry.Framework, latest, entry.Description)
	}
	w.Flush()
	return 0
}

// runCatalogInstall resolves and downloads a catalog bundle.
func runCatalogInstall(args []string) int {
	fs := flag.NewFlagSet("catalog install", flag.ContinueOnError)
	var (
		constraint string
		trustLevel string
	)
	fs.StringVar(&constraint, "version", "*", "version constraint (e.g., ^1.0.0, >=2.1.0)")
	fs.StringVar(&trustLevel, "trust", "", "minimum signature trust: community, verified")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: ctlscan catalog install [--version <constraint>] [--trust <level>] <name>")
		return 2
	}
	name := fs.Arg(0)

	var clientOpts []registry.ClientOption
	if trustLevel != "" {
		level, err := trust.ParseLevel(trustLevel)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 2
		}
		keyring, err := trust.LoadKeyring(trust.DefaultKeyringPath())
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: loading keyring: %v\n", err)
			return 2
		}
		verifier := trust.NewVerifier(trust.WithKeyring(keyring), trust.WithPolicy(trust.PolicyForLevel(level)))
		clientOpts = append(clientOpts, registry.WithVerifier(verifier))
	}

	client, code := registryClient(clientOpts...)
	if code != 0 {
		return code
	}

	ctx := context.Background()
	ve, err := client.Resolve(ctx, name, constraint)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: resolving %s: %v\n", name, err)
		return 2
	}

	dest := filepath.Join(ctlscanHome(), "catalogs", catalogFileName(name, ve.Version))
	if err := client.Download(ctx, ve, dest); err != nil {
		fmt.Fprintf(os.Stderr, "error: downloading %s@%s: %v\n", name, ve.Version, err)
		return 2
	}

	statePath := DefaultStatePath()
	st, err := LoadState(statePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: loading state: %v\n", err)
		return 2
	}

	now := time.Now().UTC()
	installed := InstalledCatalog{
		Name:        name,
		Version:     ve.Version,
		Digest:      ve.Digest,
		Path:        dest,
		InstalledAt: now,
		UpdatedAt:   now,
	}
	if prev := st.FindCatalog(name); prev != nil {
		installed.InstalledAt = prev.InstalledAt
	}
	st.AddCatalog(installed)

	if err := SaveState(statePath, st); err != nil {
		fmt.Fprintf(os.Stderr, "error: saving state: %v\n", err)
		return 2
	}

	fmt.Printf("Installed %s@%s to %s\n", name, ve.Version, dest)
	fmt.Printf("Point catalog.path at it in .ctlscan.yaml, or pass --catalog %s\n", dest)
	return 0
}

// runCatalogList lists installed catalogs.
func runCatalogList(args []string) int {
	st, err := LoadState(DefaultStatePath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: loading state: %v\n", err)
		return 2
	}

	if len(st.Catalogs) == 0 {
		fmt.Println("No catalogs installed.")
		return 0
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tVERSION\tPATH")
	for _, c := range st.Catalogs {
		fmt.Fprintf(w, "%s\t%s\t%s\n", c.Name, c.Version, c.Path)
	}
	w.Flush()
	return 0
}

// registryClient builds a registry client from the configured sources.
// Returns a non-zero exit code on failure.
func registryClient(opts ...registry.ClientOption) (*registry.Client, int) {
	st, err := LoadState(DefaultStatePath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: loading state: %v\n", err)
		return nil, 2
	}
	if len(st.Sources) == 0 {
		fmt.Fprintln(os.Stderr, "error: no sources configured; run: ctlscan catalog add-source <url>")
		return nil, 2
	}

	opts = append([]registry.ClientOption{registry.WithCacheDir(filepath.Join(ctlscanHome(), "cache", "registry"))}, opts...)
	client := registry.NewClient(opts...)
	for _, s := range st.Sources {
		if err := client.AddSource(s); err != nil {
			fmt.Fprintf(os.Stderr, "error: adding source %q: %v\n", s.Name, err)
			return nil, 2
		}
	}
	return client, 0
}

// runCatalogTrust manages the publisher keyring used to verify signed bundles.
func runCatalogTrust(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: ctlscan catalog trust <add-key|list-keys|remove-key>")
		return 2
	}

	keyringPath := trust.DefaultKeyringPath()

	switch args[0] {
	case "add-key":
		if len(args) < 3 {
			fmt.Fprintln(os.Stderr, "Usage: ctlscan catalog trust add-key <name> <public-key.pem>")
			return 2
		}
		pemData, err := os.ReadFile(args[2])
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: reading key file: %v\n", err)
			return 2
		}
		key, err := trust.NewKey(args[1], pemData)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 2
		}
		keyring, err := trust.LoadKeyring(keyringPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: loading keyring: %v\n", err)
			return 2
		}
		keyring.Add(key)
		if err := trust.SaveKeyring(keyringPath, keyring); err != nil {
			fmt.Fprintf(os.Stderr, "error: saving keyring: %v\n", err)
			return 2
		}
		fmt.Printf("Key %q added (fingerprint %s)\n", key.Name, key.Fingerprint)
		return 0

	case "list-keys":
		keyring, err := trust.LoadKeyring(keyringPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: loading keyring: %v\n", err)
			return 2
		}
		if len(keyring.Keys) == 0 {
			fmt.Println("No trusted keys.")
			return 0
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tFINGERPRINT")
		for _, k := range keyring.Keys {
			fmt.Fprintf(w, "%s\t%s\n", k.Name, k.Fingerprint)
		}
		w.Flush()
		return 0

	case "remove-key":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "Usage: ctlscan catalog trust remove-key <fingerprint>")
			return 2
		}
		keyring, err := trust.LoadKeyring(keyringPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: loading keyring: %v\n", err)
			return 2
		}
		if err := keyring.Remove(args[1]); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 2
		}
		if err := trust.SaveKeyring(keyringPath, keyring); err != nil {
			fmt.Fprintf(os.Stderr, "error: saving keyring: %v\n", err)
			return 2
		}
		fmt.Println("Key removed.")
		return 0

	default:
		fmt.Fprintf(os.Stderr, "unknown trust command: %s\n", args[0])
		fmt.Fprintln(os.Stderr, "Usage: ctlscan catalog trust <add-key|list-keys|remove-key>")
		return 2
	}
}

// catalogFileName derives a filesystem-safe bundle file name.
func catalogFileName(name, version string) string {
	safe := strings.NewReplacer("/", "-", ":", "-").Replace(name)
	return fmt.Sprintf("%s-%s.yaml", safe, version)
}
