// Package console writes game output to the terminal. Server text is cleaned
// of any escape sequences it carries, wrapped to the console width, and
// styled according to its kind.
package console

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/acarl005/stripansi"
	"github.com/charmbracelet/lipgloss"
	"github.com/dekarrin/rosed"
	"github.com/dekarrin/tunamud/internal/dispatch"
	"github.com/dekarrin/tunamud/internal/protocol"
	"github.com/dekarrin/tunamud/internal/tmerrors"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

// DefaultWidth is the width output is wrapped to if none is given.
const DefaultWidth = 80

var textFormatOptions = rosed.Options{
	PreserveParagraphs: true,
	ParagraphSeparator: "\n",
}

// Options configures a Console.
type Options struct {
	// Width is the column output is wrapped at. Zero or less means
	// DefaultWidth.
	Width int

	// NoColor turns off styling.
	NoColor bool
}

// Console is the terminal UI. It is not safe for concurrent use; all output
// comes from the event loop.
type Console struct {
	out    io.Writer
	width  int
	color  bool
	styles map[dispatch.Tag]lipgloss.Style
	log    *zap.Logger

	// lastState is the most recently rendered player state.
	lastState string
}

// New creates a Console that writes to out. If log is nil, nothing is
// logged.
func New(out io.Writer, opts Options, log *zap.Logger) *Console {
	if log == nil {
		log = zap.NewNop()
	}
	width := opts.Width
	if width <= 0 {
		width = DefaultWidth
	}
	return &Console{
		out:    out,
		width:  width,
		color:  !opts.NoColor,
		styles: buildStyles(lipgloss.NewRenderer(out)),
		log:    log,
	}
}

// Width returns the column output is wrapped at.
func (c *Console) Width() int {
	return c.width
}

// Show displays server text.
func (c *Console) Show(tag dispatch.Tag, content string) {
	c.write(tag, stripansi.Strip(content))
}

// Notice displays a message from the client.
func (c *Console) Notice(msg string) {
	c.write(clientTag, msg)
}

// Problem displays an error to the player.
func (c *Console) Problem(err error) {
	c.log.Debug("showing error", zap.Error(err))
	c.write(dispatch.TagError, tmerrors.GameMessage(err))
}

// Prompt writes p with no newline after it, for input sources that do not
// show prompts themselves.
func (c *Console) Prompt(p string) {
	if _, err := io.WriteString(c.out, p); err != nil {
		c.log.Error("could not write to console", zap.Error(err))
	}
}

// Table displays rows of cells. The first row is the header.
func (c *Console) Table(data [][]string) {
	if len(data) < 1 {
		return
	}
	tbl := rosed.Edit("").
		InsertTableOpts(0, data, c.width, rosed.Options{
			TableHeaders:             true,
			NoTrailingLineSeparators: true,
		}).
		String()
	c.println(tbl)
}

// ApplyState shows the player's state. Applying a state identical to the
// last one shown does nothing.
func (c *Console) ApplyState(st protocol.PlayerState) {
	rendered := renderState(st, c.width)
	if rendered == c.lastState {
		c.log.Debug("suppressing unchanged player state")
		return
	}
	c.lastState = rendered
	c.println(rendered)
}

func (c *Console) write(tag dispatch.Tag, text string) {
	text = strings.TrimRight(text, "\n")
	if text == "" {
		return
	}
	wrapped := rosed.Edit(text).WrapOpts(c.width, textFormatOptions).String()
	if c.color {
		wrapped = c.styles[tag].Render(wrapped)
	}
	c.println(wrapped)
}

func (c *Console) println(text string) {
	if _, err := fmt.Fprintln(c.out, text); err != nil {
		c.log.Error("could not write to console", zap.Error(err))
	}
}

// renderState gives the player state as a two-column table sorted by field.
func renderState(st protocol.PlayerState, width int) string {
	keys := make([]string, 0, len(st))
	for k := range st {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	data := [][]string{{"Status", ""}}
	for _, k := range keys {
		data = append(data, []string{k, formatValue(st[k])})
	}

	return rosed.Edit("").
		InsertTableOpts(0, data, width, rosed.Options{
			TableHeaders:             true,
			NoTrailingLineSeparators: true,
		}).
		String()
}

func formatValue(v interface{}) string {
	switch v := v.(type) {
	case nil:
		return "-"
	case string:
		return stripansi.Strip(v)
	case map[string]interface{}, []interface{}:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(data)
	default:
		return fmt.Sprint(v)
	}
}
