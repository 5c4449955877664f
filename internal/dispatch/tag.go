package dispatch

// Tag is how a piece of server text is presented.
type Tag int

const (
	TagPlain Tag = iota
	TagError
	TagInfo
	TagCombat
	TagNPC
	TagEmote
	TagTell
	TagTellAll
	TagTellRoom
)

var tagNames = map[Tag]string{
	TagPlain:    "plain",
	TagError:    "error",
	TagInfo:     "info",
	TagCombat:   "combat",
	TagNPC:      "npc",
	TagEmote:    "emote",
	TagTell:     "tell",
	TagTellAll:  "tell-all",
	TagTellRoom: "tell-room",
}

var tagsByKind = map[string]Tag{}

func init() {
	for t, name := range tagNames {
		if t != TagPlain {
			tagsByKind[name] = t
		}
	}
}

func (t Tag) String() string {
	if name, ok := tagNames[t]; ok {
		return name
	}
	return tagNames[TagPlain]
}

// TagFor gives the Tag for a display message kind. Kinds that are not known
// are shown plain.
func TagFor(kind string) Tag {
	if t, ok := tagsByKind[kind]; ok {
		return t
	}
	return TagPlain
}
