// Package version holds build information, set with -ldflags "-X github.com/pitabwire/i18nutils/version.Version=...".
package version //nolint:revive // package name matches the build-info convention

import "strings"

//nolint:gochecknoglobals // set at build time
var (
	Repository string
	Version    string
	Commit     string
	Date       string
)

// String renders the build information, "dev" when none was set.
func String() string {
	if Version == "" && Commit == "" {
		return "dev"
	}

	var b strings.Builder
	b.WriteString(Version)
	var details []string
	for _, d := range []string{Commit, Date} {
		if d != "" {
			details = append(details, d)
		}
	}
	if len(details) > 0 {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString("(" + strings.Join(details, ", ") + ")")
	}
	return b.String()
}
