package platform

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindRoot(t *testing.T) {
	base := t.TempDir()
	marked := filepath.Join(base, "marked")
	configured := filepath.Join(base, "configured")
	bare := filepath.Join(base, "bare")

	require.NoError(t, os.MkdirAll(filepath.Join(marked, ".mirror"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(marked, "a", "b"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(configured, "notes"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(configured, ConfigFileName), nil, 0644))
	require.NoError(t, os.MkdirAll(bare, 0755))

	cases := map[string]struct {
		start string
		want  string
	}{
		"system dir at start": {start: marked, want: marked},
		"system dir above":    {start: filepath.Join(marked, "a", "b"), want: marked},
		"config file above":   {start: filepath.Join(configured, "notes"), want: configured},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got, err := FindRoot(tc.start)
			require.NoError(t, err)
			assert.Equal(t, filepath.Clean(tc.want), got)
		})
	}

	t.Run("no marker", func(t *testing.T) {
		_, err := FindRoot(bare)
		assert.Error(t, err)
	})

	t.Run("marker file named like the system dir is ignored", func(t *testing.T) {
		odd := filepath.Join(base, "odd")
		require.NoError(t, os.MkdirAll(odd, 0755))
		require.NoError(t, os.WriteFile(filepath.Join(odd, ".mirror"), nil, 0644))
		_, err := FindRoot(odd)
		assert.Error(t, err)
	})
}
