package console

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/dekarrin/tunamud/internal/dispatch"
)

// Colors are ANSI 256 codes so they survive terminals with limited palettes.
var tagColors = map[dispatch.Tag]lipgloss.Color{
	dispatch.TagError:    lipgloss.Color("9"),
	dispatch.TagInfo:     lipgloss.Color("12"),
	dispatch.TagCombat:   lipgloss.Color("208"),
	dispatch.TagNPC:      lipgloss.Color("11"),
	dispatch.TagEmote:    lipgloss.Color("13"),
	dispatch.TagTell:     lipgloss.Color("10"),
	dispatch.TagTellAll:  lipgloss.Color("14"),
	dispatch.TagTellRoom: lipgloss.Color("6"),
}

// clientTag is used for messages from the client itself rather than the
// server. It is not a dispatch.Tag any server message can have.
const clientTag = dispatch.Tag(-1)

func buildStyles(r *lipgloss.Renderer) map[dispatch.Tag]lipgloss.Style {
	styles := map[dispatch.Tag]lipgloss.Style{
		dispatch.TagPlain: r.NewStyle(),
		clientTag:         r.NewStyle().Faint(true),
	}
	for tag, c := range tagColors {
		st := r.NewStyle().Foreground(c)
		switch tag {
		case dispatch.TagError, dispatch.TagCombat:
			st = st.Bold(true)
		case dispatch.TagEmote:
			st = st.Italic(true)
		}
		styles[tag] = st
	}
	return styles
}
