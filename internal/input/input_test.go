package input

import (
	"io"
	"strings"
	"testing"

	"github.com/chzyer/readline"
	"github.com/dekarrin/tunamud/internal/history"
	"github.com/stretchr/testify/assert"
)

func Test_DirectCommandReader_ReadCommand(t *testing.T) {
	testCases := []struct {
		name        string
		input       string
		allowBlank  bool
		expect      []string
		expectFinal error
	}{
		{name: "lines", input: "get sword\nn\n", expect: []string{"get sword", "n"}, expectFinal: io.EOF},
		{name: "trimmed", input: "   look   \n", expect: []string{"look"}, expectFinal: io.EOF},
		{name: "blanks skipped", input: "\n  \nsit\n", expect: []string{"sit"}, expectFinal: io.EOF},
		{name: "blanks allowed", input: "\nsit\n", allowBlank: true, expect: []string{"", "sit"}, expectFinal: io.EOF},
		{name: "no final newline", input: "wake", expect: []string{"wake"}, expectFinal: io.EOF},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)
			r := NewDirectReader(strings.NewReader(tc.input), nil)
			r.AllowBlank(tc.allowBlank)

			for _, want := range tc.expect {
				got, err := r.ReadCommand()
				if !assert.NoError(err) {
					return
				}
				assert.Equal(want, got)
			}

			got, err := r.ReadCommand()
			assert.Equal("", got)
			assert.ErrorIs(err, tc.expectFinal)
		})
	}
}

func Test_DirectCommandReader_recordsHistory(t *testing.T) {
	assert := assert.New(t)
	hist := history.NewRing(0)
	r := NewDirectReader(strings.NewReader("get all\nhunter2\nkill rat\n"), hist)

	_, _ = r.ReadCommand()
	_, _ = r.ReadPassword("Password: ")
	_, _ = r.ReadCommand()

	assert.Equal([]string{"kill rat", "get all"}, hist.Lines())
}

func Test_DirectCommandReader_KeepHistory(t *testing.T) {
	assert := assert.New(t)
	hist := history.NewRing(0)
	hist.Record("look")
	r := NewDirectReader(strings.NewReader("Brill\nbrill@example.com\nsit\n"), hist)

	hist.Navigate(history.Older)
	r.KeepHistory(false)
	_, _ = r.ReadCommand()
	assert.Equal(-1, hist.Cursor(), "browsing stops even when not recorded")
	_, _ = r.ReadCommand()
	r.KeepHistory(true)
	_, _ = r.ReadCommand()

	assert.Equal([]string{"sit", "look"}, hist.Lines())
}

func Test_historyListener(t *testing.T) {
	assert := assert.New(t)
	hist := history.NewRing(0)
	hist.Record("first")
	hist.Record("second")
	hl := historyListener{hist}

	line, pos, ok := hl.OnChange([]rune("typ"), 3, readline.CharPrev)
	assert.True(ok)
	assert.Equal("second", string(line))
	assert.Equal(6, pos)

	line, _, _ = hl.OnChange(nil, 0, readline.CharPrev)
	assert.Equal("first", string(line))

	line, _, _ = hl.OnChange(nil, 0, readline.CharPrev)
	assert.Equal("first", string(line), "no wraparound")

	hl.OnChange(nil, 0, readline.CharNext)
	line, pos, _ = hl.OnChange(nil, 0, readline.CharNext)
	assert.Equal("", string(line))
	assert.Equal(0, pos)
	assert.Equal(-1, hist.Cursor())

	_, _, ok = hl.OnChange([]rune("x"), 1, 'x')
	assert.False(ok, "ordinary keys are left alone")
}
