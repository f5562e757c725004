package version

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewVersion(t *testing.T) {
	testCases := []struct {
		name      string
		version   string
		commit    string
		treeState string
		expected  string
	}{
		{
			name:      "release build",
			version:   "v1.2.0",
			commit:    "0123456789abcdef",
			treeState: "clean",
			expected:  "v1.2.0",
		},
		{
			name:      "no version injected",
			commit:    "0123456789abcdef",
			treeState: "clean",
			expected:  "devel+0123456",
		},
		{
			name:      "dirty tree",
			version:   "v1.2.0",
			commit:    "0123456789abcdef",
			treeState: "dirty",
			expected:  "devel+0123456.dirty",
		},
		{
			name:     "nothing injected",
			expected: "devel+unknown.dirty",
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			v := newVersion(
				testCase.version,
				"2025-03-01T00:00:00Z",
				testCase.commit,
				testCase.treeState,
			)
			require.Equal(t, testCase.expected, v.Version)
			require.Equal(t, 2025, v.BuildDate.Year())
			require.NotEmpty(t, v.GoVersion)
			require.NotEmpty(t, v.Platform)
		})
	}
}

func TestAppID(t *testing.T) {
	require.Equal(t, "redeployer/"+GetVersion().Version, AppID())
}
