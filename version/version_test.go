package version //nolint:revive // package name matches the build-info convention

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	testCases := []struct {
		name    string
		version string
		commit  string
		date    string
		want    string
	}{
		{name: "unset", want: "dev"},
		{name: "version only", version: "v1.2.0", want: "v1.2.0"},
		{name: "full", version: "v1.2.0", commit: "3e56fb9", date: "2026-04-03", want: "v1.2.0 (3e56fb9, 2026-04-03)"},
		{name: "commit only", commit: "3e56fb9", want: "(3e56fb9)"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			Version, Commit, Date = tc.version, tc.commit, tc.date
			t.Cleanup(func() { Version, Commit, Date = "", "", "" })

			assert.Equal(t, tc.want, String())
		})
	}
}
