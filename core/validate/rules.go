package validate

// AdvisoryRule is a lexical pattern that marks a line as security-relevant
// and therefore worth annotating. The rule set is independent from the
// suggestion rule table, though the domains overlap.
type AdvisoryRule struct {
	// Name identifies the security domain the rule covers.
	Name string
	// Pattern is a regular expression applied case-insensitively per line.
	Pattern string
	// Message is the advisory text attached to missing-tag diagnostics.
	Message string
}

// DefaultAdvisoryRules returns the built-in advisory rule table, evaluated
// in order with at most one match reported per line.
func DefaultAdvisoryRules() []AdvisoryRule {
	return []AdvisoryRule{
		{
			Name:    "authentication",
			Pattern: `(?i)\b(authenticat\w*|login|sign[ _-]?in|mfa)\b`,
			Message: "Authentication code detected — consider tagging with ia-2",
		},
		{
			Name:    "credentials",
			Pattern: `(?i)password|credential|api[ _-]?key|secret`,
			Message: "Credential handling detected — consider tagging with ia-5",
		},
		{
			Name:    "encryption",
			Pattern: `(?i)\bencrypt\w*\b|\bdecrypt\w*\b|\bcipher\b|\bhash\w*\b`,
			Message: "Cryptographic operation detected — consider tagging with sc-13",
		},
		{
			Name:    "transport",
			Pattern: `(?i)\btls\b|\bssl\b|\bhttps\b`,
			Message: "Transport security detected — consider tagging with sc-8",
		},
		{
			Name:    "logging",
			Pattern: `(?i)\baudit\w*\b|\blog(?:ger|ging)\b`,
			Message: "Audit logging detected — consider tagging with au-2",
		},
		{
			Name:    "input-validation",
			Pattern: `(?i)\bvalidat\w*\b|\bsanitiz\w*\b`,
			Message: "Input validation detected — consider tagging with si-10",
		},
		{
			Name:    "session",
			Pattern: `(?i)\bsession\b`,
			Message: "Session management detected — consider tagging with ac-12",
		},
		{
			Name:    "access-control",
			Pattern: `(?i)\bauthoriz\w*\b|\bpermission\w*\b|\brbac\b`,
			Message: "Access control detected — consider tagging with ac-3",
		},
	}
}
