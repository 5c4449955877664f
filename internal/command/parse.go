package command

import (
	"strings"

	"github.com/dekarrin/tunamud/internal/tmerrors"
)

// allMarker is the quantifier word, and allPrefix the form that names a
// specific kind of item, as in "all.sword".
const (
	allMarker = "all"
	allPrefix = "all."
)

// quantified gives the actions a verb that takes "all" quantifiers turns
// into. An empty Action means the verb has no such form.
type quantified struct {
	single                   Action
	all                      Action
	allSpecific              Action
	allFromContainer         Action
	allSpecificFromContainer Action

	// needsContainer is set for verbs where the container is not optional.
	// For these, the container forms use the all/allSpecific actions and the
	// single form takes the last token as the container.
	needsContainer bool
}

var quantifiedVerbs = map[Verb]quantified{
	VerbGet: {
		single:                   GetSingle,
		all:                      GetAll,
		allSpecific:              GetAllSpecific,
		allFromContainer:         GetAllFromContainer,
		allSpecificFromContainer: GetAllSpecificFromContainer,
	},
	VerbDrop: {
		single:      DropSingle,
		all:         DropAll,
		allSpecific: DropAllSpecific,
	},
	VerbPut: {
		single:         PutSingle,
		all:            PutAll,
		allSpecific:    PutAllSpecific,
		needsContainer: true,
	},
	VerbLoot: {
		single: LootSingle,
		all:    LootAll,
	},
}

// bareVerbs are verbs that take no arguments at all.
var bareVerbs = map[Verb]Action{
	VerbInventory: ShowInventory,
	VerbMeditate:  Meditate,
	VerbSit:       Sit,
	VerbSleep:     Sleep,
	VerbStand:     Stand,
	VerbStop:      Stop,
	VerbWake:      Wake,
	VerbAutoloot:  ToggleAutoloot,
}

// Tokenize splits a line of input into its whitespace-separated tokens,
// collapsing all runs of whitespace.
func Tokenize(line string) []string {
	return strings.Fields(line)
}

// ParseLine is a shortcut for calling Parse on the tokens of a line.
func ParseLine(line string) (Command, error) {
	return Parse(Tokenize(line))
}

// Parse parses a command from the given tokens. If it cannot, the returned
// error is a *tmerrors.ParseFailure. Parse never guesses; input whose shape
// does not match exactly one form is a failure.
//
// Arguments keep the case they were typed in; only verbs and the "all"
// quantifier are matched case-insensitively.
func Parse(tokens []string) (Command, error) {
	cmd, err := parse(tokens)
	if err != nil {
		return Command{}, err
	}
	if cmd.Args == nil {
		cmd.Args = []string{}
	}
	return cmd, nil
}

func parse(tokens []string) (Command, error) {
	if len(tokens) < 1 {
		return Command{}, tmerrors.Parse(tmerrors.Empty, tokens, "")
	}

	verb := Resolve(tokens[0])
	rest := tokens[1:]

	if !verb.Known() {
		// typing an action identifier would get around the grammar
		if !Action(strings.ToUpper(tokens[0])).Passthrough() {
			return Command{}, unrecognized(tokens, "%s is not a command word", tokens[0])
		}

		// not something we have a grammar for; let the server have it as typed
		return Command{Action: Action(tokens[0]), Args: append([]string{}, rest...)}, nil
	}

	if q, ok := quantifiedVerbs[verb]; ok {
		return parseQuantified(tokens, q)
	}
	if act, ok := bareVerbs[verb]; ok {
		if len(rest) > 0 {
			return Command{}, unrecognized(tokens, "%s takes nothing after it", tokens[0])
		}
		return Command{Action: act}, nil
	}

	switch verb {
	case VerbMove:
		// a direction by itself
		if len(rest) > 0 {
			return Command{}, unrecognized(tokens, "%s takes nothing after it", tokens[0])
		}
		dir, _ := Direction(tokens[0])
		return Command{Action: Move, Args: []string{dir}}, nil
	case VerbGo:
		if len(rest) != 1 {
			return Command{}, unrecognized(tokens, "need exactly one direction")
		}
		dir, ok := Direction(rest[0])
		if !ok {
			return Command{}, unrecognized(tokens, "%q is not a direction", rest[0])
		}
		return Command{Action: Move, Args: []string{dir}}, nil
	case VerbAttack:
		if len(rest) < 1 {
			return Command{}, unrecognized(tokens, "need a target")
		}
		return Command{Action: Attack, Args: []string{strings.Join(rest, " ")}}, nil
	case VerbLook:
		return parseLook(tokens)
	case VerbTell:
		return parseTell(tokens)
	}

	return Command{}, unrecognized(tokens, "no grammar for %s", verb)
}

// parseQuantified handles the verbs that take the "all" and "all.ITEM"
// quantifiers. Which form is meant is decided purely by token positions and
// counts. When a quantifier is present, any single remaining token names a
// container; more than one is not a recognized form.
func parseQuantified(tokens []string, q quantified) (Command, error) {
	rest := tokens[1:]

	if len(rest) < 1 {
		return Command{}, unrecognized(tokens, "%s what?", tokens[0])
	}

	first := rest[0]
	trailing := rest[1:]

	switch {
	case strings.EqualFold(first, allMarker):
		if len(trailing) == 0 {
			if q.needsContainer || q.all == "" {
				return Command{}, unrecognized(tokens, "need a container")
			}
			return Command{Action: q.all}, nil
		}
		if len(trailing) > 1 {
			return Command{}, unrecognized(tokens, "container must be one word")
		}
		if hasAllPrefix(trailing[0]) {
			return Command{}, unrecognized(tokens, "%q must be its own word", allPrefix)
		}
		if q.needsContainer {
			return Command{Action: q.all, Args: []string{trailing[0]}}, nil
		}
		if q.allFromContainer == "" {
			return Command{}, unrecognized(tokens, "%s does not take a container", tokens[0])
		}
		return Command{Action: q.allFromContainer, Args: []string{trailing[0]}}, nil

	case hasAllPrefix(first):
		item := first[len(allPrefix):]
		if item == "" || q.allSpecific == "" {
			return Command{}, unrecognized(tokens, "bad %q form", allPrefix)
		}
		if len(trailing) == 0 {
			if q.needsContainer {
				return Command{}, unrecognized(tokens, "need a container")
			}
			return Command{Action: q.allSpecific, Args: []string{item}}, nil
		}
		if len(trailing) > 1 {
			return Command{}, unrecognized(tokens, "container must be one word")
		}
		if q.needsContainer {
			return Command{Action: q.allSpecific, Args: []string{item, trailing[0]}}, nil
		}
		if q.allSpecificFromContainer == "" {
			return Command{}, unrecognized(tokens, "%s does not take a container", tokens[0])
		}
		return Command{Action: q.allSpecificFromContainer, Args: []string{item, trailing[0]}}, nil
	}

	// no quantifier, so it's one object with a possibly multi-word name
	if q.needsContainer {
		if len(rest) < 2 {
			return Command{}, unrecognized(tokens, "need a container")
		}
		last := len(rest) - 1
		return Command{Action: q.single, Args: []string{strings.Join(rest[:last], " "), rest[last]}}, nil
	}
	return Command{Action: q.single, Args: []string{strings.Join(rest, " ")}}, nil
}

func parseLook(tokens []string) (Command, error) {
	rest := tokens[1:]

	if len(rest) == 0 {
		return Command{Action: DescribeLocation}, nil
	}

	var act Action
	switch strings.ToLower(rest[0]) {
	case "at":
		act = LookAt
	case "in":
		act = LookIn
	default:
		return Command{Action: LookAtItem, Args: []string{strings.Join(rest, " ")}}, nil
	}

	if len(rest) < 2 {
		return Command{}, unrecognized(tokens, "look %s what?", rest[0])
	}
	return Command{Action: act, Args: []string{strings.Join(rest[1:], " ")}}, nil
}

// parseTell handles the TELL family. Whether the first word after TELL is a
// player is not decided here; the server checks it against who is online and
// falls back to telling the room.
func parseTell(tokens []string) (Command, error) {
	rest := tokens[1:]

	switch {
	case len(rest) == 0:
		return Command{}, unrecognized(tokens, "tell what?")
	case strings.EqualFold(rest[0], allMarker):
		if len(rest) < 2 {
			return Command{}, unrecognized(tokens, "tell all what?")
		}
		return Command{Action: TellAll, Args: []string{strings.Join(rest[1:], " ")}}, nil
	case len(rest) == 1:
		return Command{Action: TellRoom, Args: []string{rest[0]}}, nil
	default:
		return Command{Action: Tell, Args: []string{rest[0], strings.Join(rest[1:], " ")}}, nil
	}
}

func hasAllPrefix(tok string) bool {
	return len(tok) >= len(allPrefix) && strings.EqualFold(tok[:len(allPrefix)], allPrefix)
}

func unrecognized(tokens []string, detailFormat string, a ...interface{}) error {
	return tmerrors.Parse(tmerrors.UnrecognizedForm, tokens, detailFormat, a...)
}
