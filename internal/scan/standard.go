package scan

import "strings"

// standardBranchNames is the fixed allowlist of conventional branch names that
// are always excluded from orphan classification and destructive actions.
// Matching is case-insensitive. The set is deliberately not runtime-configurable.
var standardBranchNames = map[string]bool{
	"main":        true,
	"master":      true,
	"develop":     true,
	"development": true,
	"dev":         true,
	"staging":     true,
	"stage":       true,
	"prod":        true,
	"production":  true,
	"test":        true,
	"testing":     true,
	"qa":          true,
	"uat":         true,
	"preprod":     true,
	"pre-prod":    true,
	"release":     true,
	"hotfix":      true,
	"stable":      true,
}

// IsStandardBranch reports whether name matches the conventional branch name
// allowlist, ignoring case.
func IsStandardBranch(name string) bool {
	return standardBranchNames[strings.ToLower(name)]
}

// StandardBranchNames returns a copy of the allowlist for callers that need to
// enumerate it (e.g. help text). The returned map is the caller's to mutate.
func StandardBranchNames() map[string]bool {
	out := make(map[string]bool, len(standardBranchNames))
	for k := range standardBranchNames {
		out[k] = true
	}
	return out
}
