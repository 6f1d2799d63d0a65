package suggest

// Rule associates a case-insensitive lexical pattern with the controls it
// suggests. Rules are evaluated in order; every matching rule contributes
// all of its controls to the result.
type Rule struct {
	// Name identifies the security domain the rule covers.
	Name string
	// Pattern is a regular expression applied case-insensitively to the
	// context text.
	Pattern string
	// ControlIDs are suggested, in order, when the pattern matches. IDs are
	// resolved through the catalog; unknown ids are silently dropped.
	ControlIDs []string
}

// DefaultRules returns the built-in suggestion rule table. One rule per
// security domain, ordered from identity concerns outward.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:       "authentication",
			Pattern:    `(?i)\b(authenticat\w*|login|log[ _-]?in|sign[ _-]?in|mfa|2fa|sso)\b`,
			ControlIDs: []string{"ia-2", "ia-8"},
		},
		{
			Name:       "credentials",
			Pattern:    `(?i)password|credential|passphrase|api[ _-]?key|secret[ _-]?key`,
			ControlIDs: []string{"ia-5"},
		},
		{
			Name:       "session",
			Pattern:    `(?i)\bsession\b|\btimeout\b|\bexpir\w+\b|\blogout\b`,
			ControlIDs: []string{"ac-12", "sc-23"},
		},
		{
			Name:       "encryption",
			Pattern:    `(?i)\bencrypt\w*\b|\bdecrypt\w*\b|\bcipher\b|\baes\b|\bhash\w*\b|\bsha-?\d+\b|\bbcrypt\b|\bargon2\b`,
			ControlIDs: []string{"sc-13", "sc-28"},
		},
		{
			Name:       "transport",
			Pattern:    `(?i)\btls\b|\bssl\b|\bhttps\b|\bcertificate\b|x\.?509`,
			ControlIDs: []string{"sc-8"},
		},
		{
			Name:       "logging",
			Pattern:    `(?i)\baudit\w*\b|\blog(?:ger|ging)?\b|\bsyslog\b`,
			ControlIDs: []string{"au-2", "au-3"},
		},
		{
			Name:       "input-validation",
			Pattern:    `(?i)\bvalidat\w*\b|\bsanitiz\w*\b|\bescap\w+\b|\binjection\b|\bxss\b`,
			ControlIDs: []string{"si-10"},
		},
		{
			Name:       "error-handling",
			Pattern:    `(?i)\btry\b|\bcatch\b|\bexcept\w*\b|\bpanic\b|\brecover\b|\berror[ _-]?handl\w+\b`,
			ControlIDs: []string{"si-11"},
		},
		{
			Name:       "access-control",
			Pattern:    `(?i)\bauthoriz\w*\b|\bpermission\w*\b|\brbac\b|\bacl\b|\brole\b|\bprivilege\w*\b`,
			ControlIDs: []string{"ac-3", "ac-6"},
		},
		{
			Name:       "account-management",
			Pattern:    `(?i)\buser[ _-]?account\b|\bcreate[ _-]?user\b|\bdelete[ _-]?user\b|\bdeactivat\w*\b|\bprovision\w*\b`,
			ControlIDs: []string{"ac-2"},
		},
	}
}

// DefaultKeywords returns the security keyword list used by the independent
// keyword-extraction pass. A word token containing one of these as a
// substring is looked up against catalog RelatedPatterns.
func DefaultKeywords() []string {
	return []string{
		"auth",
		"password",
		"credential",
		"secret",
		"token",
		"session",
		"encrypt",
		"crypto",
		"hash",
		"tls",
		"audit",
		"log",
		"validate",
		"sanitize",
		"permission",
		"role",
		"privilege",
		"account",
	}
}
