package viewer

import (
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/muesli/reflow/ansi"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestViewer(configured string, env map[string]string, onPath ...string) *Viewer {
	v := New(afero.NewMemMapFs(), configured)
	v.getenv = func(k string) string { return env[k] }
	v.lookPath = func(name string) (string, error) {
		for _, p := range onPath {
			if p == name {
				return "/usr/bin/" + name, nil
			}
		}
		return "", errors.Newf("%s: not found", name)
	}
	return v
}

func TestResolve(t *testing.T) {
	t.Run("config wins", func(t *testing.T) {
		v := newTestViewer("bat --paging=always", map[string]string{"PAGER": "less"}, "bat", "less")
		argv, err := v.Resolve()
		require.NoError(t, err)
		assert.Equal(t, []string{"/usr/bin/bat", "--paging=always"}, argv)
	})

	t.Run("environment order", func(t *testing.T) {
		v := newTestViewer("", map[string]string{"PAGER": "less -R", "EDITOR": "nano"}, "less", "nano")
		argv, err := v.Resolve()
		require.NoError(t, err)
		assert.Equal(t, []string{"/usr/bin/less", "-R"}, argv)

		v = newTestViewer("", map[string]string{"EVMCLI_VIEWER": "jless", "PAGER": "less"}, "jless", "less")
		argv, err = v.Resolve()
		require.NoError(t, err)
		assert.Equal(t, "/usr/bin/jless", argv[0])
	})

	t.Run("nothing configured", func(t *testing.T) {
		v := newTestViewer("", nil)
		_, err := v.Resolve()
		assert.ErrorIs(t, err, ErrNoViewer)
	})

	t.Run("missing binary", func(t *testing.T) {
		v := newTestViewer("", map[string]string{"PAGER": "most"})
		_, err := v.Resolve()
		assert.ErrorIs(t, err, ErrNoViewer)
		assert.Contains(t, err.Error(), "most")
	})
}

func TestOpenWithoutViewer(t *testing.T) {
	v := newTestViewer("", nil)
	msg := v.Open("receipt", ".json", `{"status":"0x1"}`)()

	closedMsg, ok := msg.(ClosedMsg)
	require.True(t, ok)
	assert.Equal(t, "receipt", closedMsg.Title)
	assert.ErrorIs(t, closedMsg.Err, ErrNoViewer)

	files, err := afero.ReadDir(v.fs, afero.GetTempDir(v.fs, ""))
	require.NoError(t, err)
	assert.Empty(t, files, "no temp file is left behind")
}

func TestCopy(t *testing.T) {
	var got string
	writeAll = func(s string) error {
		got = s
		return nil
	}
	t.Cleanup(func() { writeAll = clipboardWriteAll })

	msg := Copy("transaction hash", "0xabc")()
	assert.Equal(t, CopiedMsg{What: "transaction hash"}, msg)
	assert.Equal(t, "0xabc", got)

	writeAll = func(string) error { return errors.New("no clipboard utility") }
	msg = Copy("result", "1")()
	copied := msg.(CopiedMsg)
	assert.Error(t, copied.Err)
}

func TestHighlightJSON(t *testing.T) {
	src := `{"type":"CALL","from":"0x1111111111111111111111111111111111111111","gasUsed":"0x5208"}`
	out := HighlightJSON(src, 0)
	assert.Contains(t, out, "\x1b[")
	assert.Contains(t, out, "gasUsed")

	wrapped := HighlightJSON(src, 20)
	for _, line := range strings.Split(wrapped, "\n") {
		assert.LessOrEqual(t, ansi.PrintableRuneWidth(line), 20)
	}
}
