// Package viewer hands formatted output to programs outside the TUI: the
// user's pager or editor, and the system clipboard.
package viewer

import (
	"os"
	"os/exec"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"
)

// ErrNoViewer is returned when no viewer is configured or the configured
// one cannot be found on PATH.
var ErrNoViewer = errors.New("no viewer available")

// ClosedMsg is sent when the external viewer exits.
type ClosedMsg struct {
	Title string
	Err   error
}

// Viewer opens text in an external program.
type Viewer struct {
	fs         afero.Fs
	configured string
	lookPath   func(string) (string, error)
	getenv     func(string) string
}

// New creates a Viewer. configured is the viewer config value and takes
// precedence over the environment.
func New(fs afero.Fs, configured string) *Viewer {
	return &Viewer{
		fs:         fs,
		configured: configured,
		lookPath:   exec.LookPath,
		getenv:     os.Getenv,
	}
}

// Resolve returns the viewer command line. The lookup order is the viewer
// setting, $EVMCLI_VIEWER, $PAGER, then $EDITOR.
func (v *Viewer) Resolve() ([]string, error) {
	candidates := []string{
		v.configured,
		v.getenv("EVMCLI_VIEWER"),
		v.getenv("PAGER"),
		v.getenv("EDITOR"),
	}
	for _, c := range candidates {
		parts := strings.Fields(c)
		if len(parts) == 0 {
			continue
		}
		path, err := v.lookPath(parts[0])
		if err != nil {
			return nil, errors.Wrapf(ErrNoViewer, "%s not found", parts[0])
		}
		parts[0] = path
		return parts, nil
	}
	return nil, errors.Wrap(ErrNoViewer, "set viewer in the config or $PAGER")
}

// Open writes content to a temp file and suspends the TUI while the viewer
// shows it. The temp file is removed when the viewer exits. ext picks the
// file extension so editors choose a syntax mode.
func (v *Viewer) Open(title, ext, content string) tea.Cmd {
	argv, err := v.Resolve()
	if err != nil {
		return closed(title, err)
	}

	f, err := afero.TempFile(v.fs, "", "evmcli-*"+ext)
	if err != nil {
		return closed(title, errors.Wrap(err, "create temp file"))
	}
	name := f.Name()
	if _, err := f.WriteString(content); err != nil {
		_ = f.Close()
		_ = v.fs.Remove(name)
		return closed(title, errors.Wrap(err, "write temp file"))
	}
	if err := f.Close(); err != nil {
		_ = v.fs.Remove(name)
		return closed(title, errors.Wrap(err, "close temp file"))
	}

	cmd := exec.Command(argv[0], append(argv[1:], name)...) //nolint:gosec // user-configured viewer
	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		_ = v.fs.Remove(name)
		if err != nil {
			err = errors.Wrapf(err, "viewer %s", argv[0])
		}
		return ClosedMsg{Title: title, Err: err}
	})
}

func closed(title string, err error) tea.Cmd {
	return func() tea.Msg {
		return ClosedMsg{Title: title, Err: err}
	}
}

// EditorCommand builds the command that edits path with $EDITOR, falling
// back to $VISUAL and then vi.
func EditorCommand(path string) *exec.Cmd {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = os.Getenv("VISUAL")
	}
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	cmd := exec.Command(parts[0], append(parts[1:], path)...) //nolint:gosec // user-configured editor
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd
}
