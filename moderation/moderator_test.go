package moderation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestModerator_CensorMasksMatches(t *testing.T) {
	req := require.New(t)

	m, err := NewModerator([]string{"badword"}, '*')
	req.NoError(err)

	req.Equal("finish the ******* report", m.Censor("finish the badword report"))
	req.Equal("finish the ******* report", m.Censor("finish the BadWord report"))
	req.Equal("nothing to hide", m.Censor("nothing to hide"))
}

func TestModerator_NilAndEmptyAreNoOps(t *testing.T) {
	req := require.New(t)

	var m *Moderator
	req.Equal("hello", m.Censor("hello"))

	empty, err := NewModerator(nil, '*')
	req.NoError(err)
	req.Equal("hello", empty.Censor("hello"))
}

func TestLoadWords_SkipsBlanksAndComments(t *testing.T) {
	req := require.New(t)

	path := filepath.Join(t.TempDir(), "blocked.txt")
	req.NoError(os.WriteFile(path, []byte("# header\n\nfirst\n  second  \n"), 0o600))

	words, err := LoadWords(path)
	req.NoError(err)
	req.Equal([]string{"first", "second"}, words)
}
