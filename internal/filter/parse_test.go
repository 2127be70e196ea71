package filter

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const backupRules = `# keep sources, drop build output
+ /src/**

- *.o
   - dist/
scratch.txt
`

func TestLoadFileFromAfero(t *testing.T) {
	mem := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(mem, "/etc/kopeer.rules", []byte(backupRules), 0o644))

	c := NewChain()
	require.NoError(t, c.LoadFile(mem, "/etc/kopeer.rules"))

	got := make([]string, len(c.rules))
	for i, r := range c.rules {
		sign := "-"
		if r.Include {
			sign = "+"
		}
		got[i] = sign + " " + r.Pattern.String()
	}
	assert.Equal(t, []string{"+ /src/**", "- *.o", "- dist/", "- scratch.txt"}, got)

	assert.True(t, c.Match("src/lib/util.o", false, 1), "include wins over *.o")
	assert.False(t, c.Match("lib/util.o", false, 1))
	assert.False(t, c.Match("dist", true, 0))
	assert.False(t, c.Match("notes/scratch.txt", false, 1))
	assert.True(t, c.Match("README", false, 1))
}

func TestLoadFileMissing(t *testing.T) {
	err := NewChain().LoadFile(afero.NewMemMapFs(), "/nope")
	require.ErrorIs(t, err, fs.ErrNotExist)
	assert.Contains(t, err.Error(), "open filter file")
}

func TestLoadSkipsBlankAndComments(t *testing.T) {
	c := NewChain()
	require.NoError(t, c.Load(strings.NewReader("\n# a\n   \n#b\n")))
	assert.True(t, c.Empty())
}

func TestLoadNamesTheBadLine(t *testing.T) {
	err := NewChain().Load(strings.NewReader("- *.bak\n\n+ [ab\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 3")
}
