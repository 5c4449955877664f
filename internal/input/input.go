// Package input contains identifiers used in getting TunaMUD command input
// from CLI or other sources of input.
package input

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/dekarrin/tunamud/internal/history"
)

// DirectCommandReader implements command.Reader and reads commands from any
// generic input stream directly. It can be used generically with any io.Reader
// but does not sanitize the input of control and escape sequences.
//
// DirectCommandReader should not be used directly; instead, create one with
// [NewDirectReader].
type DirectCommandReader struct {
	r             *bufio.Reader
	hist          *history.Ring
	blanksAllowed bool
	noHistory     bool
}

// InteractiveCommandReader implements command.Reader and reads commands from
// stdin using a go implementation of the GNU Readline library. This keeps input
// clear of all typing and editing escape sequences. Readline's own history is
// turned off; the up and down keys instead browse a history.Ring.
//
// InteractiveCommandReader should not be used directly; instead, create one
// with [NewInteractiveReader].
type InteractiveCommandReader struct {
	rl            *readline.Instance
	hist          *history.Ring
	blanksAllowed bool
	noHistory     bool
}

// Create a new DirectCommandReader and initialize a buffered reader on the
// provided reader. Every line it returns from ReadCommand is recorded in
// hist; if hist is nil, a new Ring is used.
func NewDirectReader(r io.Reader, hist *history.Ring) *DirectCommandReader {
	if hist == nil {
		hist = history.NewRing(0)
	}
	return &DirectCommandReader{
		r:    bufio.NewReader(r),
		hist: hist,
	}
}

// Create a new InteractiveCommandReader and initialize readline. The returned
// InteractiveCommandReader must have Close() called on it before disposal to
// properly teardown readline resources. Submitted lines are recorded in hist;
// if hist is nil, a new Ring is used.
func NewInteractiveReader(hist *history.Ring) (*InteractiveCommandReader, error) {
	if hist == nil {
		hist = history.NewRing(0)
	}
	rl, err := readline.NewEx(&readline.Config{
		Prompt:                 "> ",
		HistoryLimit:           -1,
		DisableAutoSaveHistory: true,
		Listener:               historyListener{hist},
	})
	if err != nil {
		return nil, fmt.Errorf("create readline config: %w", err)
	}

	return &InteractiveCommandReader{
		rl:   rl,
		hist: hist,
	}, nil
}

// historyListener swaps the line being edited for one from the Ring when the
// up or down key is pressed.
type historyListener struct {
	hist *history.Ring
}

func (hl historyListener) OnChange(line []rune, pos int, key rune) ([]rune, int, bool) {
	var dir history.Direction
	switch key {
	case readline.CharPrev:
		dir = history.Older
	case readline.CharNext:
		dir = history.Newer
	default:
		return nil, 0, false
	}

	recalled := []rune(hl.hist.Navigate(dir))
	return recalled, len(recalled), true
}

// Close cleans up resources associated with the DirectCommandReader.
func (dcr *DirectCommandReader) Close() error {
	// this function is here so DirectCommandReader implements
	// command.Reader. For now it doesn't really do anything as the
	// DirectCommandReader does not create resources but it may in the future
	// and callers should treat it as though it must have Close called on it.

	return nil
}

// Close cleans up readline resources and other resources associated with the
// InteractiveCommandReader.
func (icr *InteractiveCommandReader) Close() error {
	return icr.rl.Close()
}

// ReadCommand reads the next line from stdin. The returned string will only
// be empty if there is an error reading input, otherwise this function is
// blocked on until a line containing non-space characters is read.
//
// If at end of input, the returned string will be empty and error will be
// io.EOF. If any other error occurs, the returned string will be empty and
// error will be that error.
func (dcr *DirectCommandReader) ReadCommand() (string, error) {
	line, err := dcr.readLine()
	if err != nil {
		return "", err
	}
	record(dcr.hist, line, !dcr.noHistory)
	return line, nil
}

// ReadPassword reads the next line. The input stream cannot be masked, so
// this is the same as ReadCommand except the line is not recorded in history.
func (dcr *DirectCommandReader) ReadPassword(prompt string) (string, error) {
	return dcr.readLine()
}

func (dcr *DirectCommandReader) readLine() (string, error) {
	var line string
	var err error

	for line == "" {
		line, err = dcr.r.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			return "", err
		}

		line = strings.TrimSpace(line)

		if line == "" && dcr.blanksAllowed {
			return line, nil
		}
	}

	return line, nil
}

// ReadCommand reads the next command from stdin. The returned string will only
// be empty if there is an error, otherwise this function is blocked on until a
// line consisting of more than empty or whitespace-only input is read.
//
// If at end of input, the returned string will be empty and error will be
// io.EOF. If any other error occurs, the returned string will be empty and
// error will be that error.
func (icr *InteractiveCommandReader) ReadCommand() (string, error) {
	var line string
	var err error

	for line == "" {
		line, err = icr.rl.Readline()
		if err != nil && (err != io.EOF || line == "") {
			return "", err
		}

		line = strings.TrimSpace(line)
		record(icr.hist, line, !icr.noHistory)

		if line == "" && icr.blanksAllowed {
			return line, nil
		}
	}

	return line, nil
}

// ReadPassword reads a line with the typed characters masked. It is never
// recorded in history.
func (icr *InteractiveCommandReader) ReadPassword(prompt string) (string, error) {
	pw, err := icr.rl.ReadPassword(prompt)
	if err != nil {
		return "", err
	}
	return string(pw), nil
}

func record(hist *history.Ring, line string, keep bool) {
	if keep {
		hist.Record(line)
	} else {
		hist.Rewind()
	}
}

// AllowBlank sets whether blank output is allowed. By default it is not.
func (dcr *DirectCommandReader) AllowBlank(allow bool) {
	dcr.blanksAllowed = allow
}

// AllowBlank sets whether blank output is allowed. By default it is not.
func (icr *InteractiveCommandReader) AllowBlank(allow bool) {
	icr.blanksAllowed = allow
}

// KeepHistory sets whether lines read by ReadCommand are recorded. By
// default they are.
func (dcr *DirectCommandReader) KeepHistory(keep bool) {
	dcr.noHistory = !keep
}

// KeepHistory sets whether lines read by ReadCommand are recorded. By
// default they are.
func (icr *InteractiveCommandReader) KeepHistory(keep bool) {
	icr.noHistory = !keep
}

// SetPrompt does nothing; a DirectCommandReader never shows a prompt.
func (dcr *DirectCommandReader) SetPrompt(p string) {}

// SetPrompt updates the prompt to the given text.
func (icr *InteractiveCommandReader) SetPrompt(p string) {
	icr.rl.SetPrompt(p)
}

// Output returns a writer for printing while a line is being read. The prompt
// and the partly typed line are redrawn below anything written to it.
func (icr *InteractiveCommandReader) Output() io.Writer {
	return icr.rl.Stdout()
}

// Output returns where a DirectCommandReader's output should go, which is
// always stdout.
func (dcr *DirectCommandReader) Output() io.Writer {
	return os.Stdout
}
