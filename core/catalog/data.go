package catalog

// Builtin returns the embedded control catalog. It covers the NIST 800-53
// controls referenced by the built-in suggestion and advisory rules; baseline
// membership follows the 800-53B control baselines. Projects with broader
// needs merge additional controls from YAML files on top of this set.
func Builtin() *Catalog {
	c := New()
	for _, ctrl := range builtinControls() {
		c.Add(ctrl)
	}
	return c
}

func builtinControls() []Control {
	return []Control{

		// =================================================================
		// AC: Access Control
		// =================================================================
		{
			ID:     "ac-2",
			Title:  "Account Management",
			Family: "Access Control",
			Description: "Manage system accounts: creation, enabling, modification, " +
				"disabling, and removal, with approvals and periodic review.",
			Baselines: Baselines{Low: true, Moderate: true, High: true},
			Examples: []string{
				"Disable accounts after a defined period of inactivity",
				"Route account creation through an approval workflow",
			},
			RelatedPatterns: []string{"account", "user management", "provisioning", "deactivate"},
		},
		{
			ID:     "ac-3",
			Title:  "Access Enforcement",
			Family: "Access Control",
			Description: "Enforce approved authorizations for logical access to " +
				"information and system resources.",
			Baselines: Baselines{Low: true, Moderate: true, High: true},
			Examples: []string{
				"Check permissions before serving a resource",
				"Deny by default when no matching policy exists",
			},
			RelatedPatterns: []string{"access control", "authorization", "permission", "rbac", "acl"},
		},
		{
			ID:     "ac-6",
			Title:  "Least Privilege",
			Family: "Access Control",
			Description: "Employ the principle of least privilege, allowing only " +
				"authorized accesses necessary to accomplish assigned tasks.",
			Baselines: Baselines{Moderate: true, High: true},
			Examples: []string{
				"Run services under dedicated low-privilege accounts",
				"Separate admin interfaces from user-facing endpoints",
			},
			RelatedPatterns: []string{"privilege", "role", "admin", "sudo"},
		},
		{
			ID:     "ac-7",
			Title:  "Unsuccessful Logon Attempts",
			Family: "Access Control",
			Description: "Enforce a limit of consecutive invalid logon attempts and " +
				"lock the account or delay further attempts when exceeded.",
			Baselines: Baselines{Low: true, Moderate: true, High: true},
			Examples: []string{
				"Lock accounts after five failed logins",
				"Apply exponential backoff to repeated authentication failures",
			},
			RelatedPatterns: []string{"lockout", "failed login", "rate limit", "brute force"},
		},
		{
			ID:     "ac-12",
			Title:  "Session Termination",
			Family: "Access Control",
			Description: "Automatically terminate a user session after defined " +
				"conditions such as inactivity timeouts.",
			Baselines: Baselines{Moderate: true, High: true},
			Examples: []string{
				"Expire idle sessions after 15 minutes",
				"Invalidate server-side session state on logout",
			},
			RelatedPatterns: []string{"session", "timeout", "logout", "expire"},
		},

		// =================================================================
		// AU: Audit and Accountability
		// =================================================================
		{
			ID:     "au-2",
			Title:  "Event Logging",
			Family: "Audit and Accountability",
			Description: "Identify the event types the system is capable of logging " +
				"and log the events selected for auditing.",
			Baselines: Baselines{Low: true, Moderate: true, High: true},
			Examples: []string{
				"Log authentication successes and failures",
				"Log privileged operations with the acting identity",
			},
			RelatedPatterns: []string{"audit", "logging", "event log", "syslog"},
		},
		{
			ID:     "au-3",
			Title:  "Content of Audit Records",
			Family: "Audit and Accountability",
			Description: "Ensure audit records contain what happened, when, where, " +
				"the source, the outcome, and the identity involved.",
			Baselines: Baselines{Low: true, Moderate: true, High: true},
			Examples: []string{
				"Include timestamp, actor, action, and outcome in every audit entry",
			},
			RelatedPatterns: []string{"audit record", "structured log", "log format"},
		},
		{
			ID:     "au-9",
			Title:  "Protection of Audit Information",
			Family: "Audit and Accountability",
			Description: "Protect audit information and audit logging tools from " +
				"unauthorized access, modification, and deletion.",
			Baselines: Baselines{Low: true, Moderate: true, High: true},
			Examples: []string{
				"Restrict log file permissions to the logging service account",
				"Ship audit logs to append-only storage",
			},
			RelatedPatterns: []string{"log protection", "tamper", "append-only"},
		},

		// =================================================================
		// IA: Identification and Authentication
		// =================================================================
		{
			ID:     "ia-2",
			Title:  "Identification and Authentication (Organizational Users)",
			Family: "Identification and Authentication",
			Description: "Uniquely identify and authenticate organizational users " +
				"and associate that identity with processes acting on their behalf.",
			Baselines: Baselines{Low: true, Moderate: true, High: true},
			Examples: []string{
				"Require MFA for privileged accounts",
				"Authenticate before establishing any session",
			},
			RelatedPatterns: []string{"authentication", "login", "signin", "mfa", "sso"},
		},
		{
			ID:     "ia-5",
			Title:  "Authenticator Management",
			Family: "Identification and Authentication",
			Description: "Manage system authenticators: initial distribution, " +
				"strength requirements, rotation, and protection from disclosure.",
			Baselines: Baselines{Low: true, Moderate: true, High: true},
			Examples: []string{
				"Hash passwords with a memory-hard function",
				"Rotate API keys on a fixed schedule",
			},
			RelatedPatterns: []string{"password", "credential", "secret", "api key", "token"},
		},
		{
			ID:     "ia-8",
			Title:  "Identification and Authentication (Non-Organizational Users)",
			Family: "Identification and Authentication",
			Description: "Uniquely identify and authenticate non-organizational " +
				"users or processes acting on their behalf.",
			Baselines: Baselines{Low: true, Moderate: true, High: true},
			Examples: []string{
				"Federate external identities through OpenID Connect",
			},
			RelatedPatterns: []string{"oauth", "oidc", "federation", "external user"},
		},
		{
			ID:     "ia-11",
			Title:  "Re-authentication",
			Family: "Identification and Authentication",
			Description: "Require users to re-authenticate when roles, " +
				"authenticators, or circumstances change.",
			Baselines: Baselines{Low: true, Moderate: true, High: true},
			Examples: []string{
				"Re-prompt for credentials before sensitive operations",
			},
			RelatedPatterns: []string{"reauthenticate", "step-up", "sudo mode"},
		},

		// =================================================================
		// SC: System and Communications Protection
		// =================================================================
		{
			ID:     "sc-8",
			Title:  "Transmission Confidentiality and Integrity",
			Family: "System and Communications Protection",
			Description: "Protect the confidentiality and integrity of transmitted " +
				"information, typically via TLS.",
			Baselines: Baselines{Moderate: true, High: true},
			Examples: []string{
				"Serve all endpoints over HTTPS",
				"Pin minimum TLS version to 1.2",
			},
			RelatedPatterns: []string{"tls", "https", "ssl", "transport security"},
		},
		{
			ID:     "sc-12",
			Title:  "Cryptographic Key Establishment and Management",
			Family: "System and Communications Protection",
			Description: "Establish and manage cryptographic keys when cryptography " +
				"is employed within the system.",
			Baselines: Baselines{Low: true, Moderate: true, High: true},
			Examples: []string{
				"Store keys in a managed KMS rather than source or config",
			},
			RelatedPatterns: []string{"key management", "kms", "key rotation", "keystore"},
		},
		{
			ID:     "sc-13",
			Title:  "Cryptographic Protection",
			Family: "System and Communications Protection",
			Description: "Implement required cryptographic protections using " +
				"validated cryptographic mechanisms.",
			Baselines: Baselines{Low: true, Moderate: true, High: true},
			Examples: []string{
				"Use AES-256-GCM for data encryption",
				"Prefer SHA-256 or stronger for digests",
			},
			RelatedPatterns: []string{"encryption", "crypto", "cipher", "hash", "aes"},
		},
		{
			ID:     "sc-23",
			Title:  "Session Authenticity",
			Family: "System and Communications Protection",
			Description: "Protect the authenticity of communications sessions, " +
				"including session identifiers and cookies.",
			Baselines: Baselines{Moderate: true, High: true},
			Examples: []string{
				"Regenerate session identifiers after login",
				"Mark cookies Secure and HttpOnly",
			},
			RelatedPatterns: []string{"session token", "cookie", "csrf", "session hijack"},
		},
		{
			ID:     "sc-28",
			Title:  "Protection of Information at Rest",
			Family: "System and Communications Protection",
			Description: "Protect the confidentiality and integrity of information " +
				"at rest.",
			Baselines: Baselines{Moderate: true, High: true},
			Examples: []string{
				"Encrypt database volumes and backups",
			},
			RelatedPatterns: []string{"at rest", "disk encryption", "encrypted storage"},
		},

		// =================================================================
		// SI: System and Information Integrity
		// =================================================================
		{
			ID:     "si-10",
			Title:  "Information Input Validation",
			Family: "System and Information Integrity",
			Description: "Check the validity of information inputs for syntax and " +
				"semantics before use.",
			Baselines: Baselines{Moderate: true, High: true},
			Examples: []string{
				"Validate request bodies against a schema",
				"Use parameterized queries instead of string concatenation",
			},
			RelatedPatterns: []string{"input validation", "sanitize", "escape", "injection"},
		},
		{
			ID:     "si-11",
			Title:  "Error Handling",
			Family: "System and Information Integrity",
			Description: "Generate error messages that provide necessary corrective " +
				"information without revealing exploitable detail.",
			Baselines: Baselines{Moderate: true, High: true},
			Examples: []string{
				"Return generic error messages to clients; log detail server-side",
			},
			RelatedPatterns: []string{"error handling", "exception", "stack trace", "panic"},
		},

		// =================================================================
		// CM / RA / SA: configuration and assurance
		// =================================================================
		{
			ID:     "cm-6",
			Title:  "Configuration Settings",
			Family: "Configuration Management",
			Description: "Establish, document, and enforce secure configuration " +
				"settings for system components.",
			Baselines: Baselines{Low: true, Moderate: true, High: true},
			Examples: []string{
				"Disable debug endpoints in production builds",
			},
			RelatedPatterns: []string{"configuration", "hardening", "settings"},
		},
		{
			ID:     "ra-5",
			Title:  "Vulnerability Monitoring and Scanning",
			Family: "Risk Assessment",
			Description: "Monitor and scan for system vulnerabilities and remediate " +
				"legitimate findings.",
			Baselines: Baselines{Low: true, Moderate: true, High: true},
			Examples: []string{
				"Run dependency and container scans in CI",
			},
			RelatedPatterns: []string{"vulnerability", "scanning", "cve"},
		},
		{
			ID:     "sa-11",
			Title:  "Developer Testing and Evaluation",
			Family: "System and Services Acquisition",
			Description: "Require developers to create and execute a security " +
				"assessment plan with unit, integration, and regression testing.",
			Baselines: Baselines{Moderate: true, High: true},
			Examples: []string{
				"Gate merges on the security test suite",
			},
			RelatedPatterns: []string{"security testing", "sast", "regression"},
		},
	}
}
