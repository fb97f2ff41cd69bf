package redis

const (
	// KeyPrefixSeen is the prefix for per-session seen-recommendation sets
	KeyPrefixSeen = "bazar:seen:"
	// KeyPrefixCrumb is the prefix for per-surface rate-limit breadcrumbs
	KeyPrefixCrumb = "bazar:crumb:"
)

// SeenKey returns the Redis key for a session's seen-recommendation set
func SeenKey(session string) string {
	return KeyPrefixSeen + session
}

// CrumbKey returns the Redis key for a session's breadcrumb on a surface
func CrumbKey(session, surface string) string {
	return KeyPrefixCrumb + session + ":" + surface
}

// CrumbPattern returns the SCAN pattern matching every breadcrumb of a session
func CrumbPattern(session string) string {
	return KeyPrefixCrumb + session + ":*"
}
