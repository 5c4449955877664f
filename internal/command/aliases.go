package command

import (
	"sort"

	"golang.org/x/text/cases"
)

// Verb is the canonical form that an input token resolves to. A token that is
// not in the alias table resolves to a Verb holding the token unchanged.
type Verb string

const (
	VerbAttack    Verb = "ATTACK"
	VerbGet       Verb = "GET"
	VerbDrop      Verb = "DROP"
	VerbPut       Verb = "PUT"
	VerbLoot      Verb = "LOOT"
	VerbLook      Verb = "LOOK"
	VerbTell      Verb = "TELL"
	VerbMove      Verb = "MOVE"
	VerbGo        Verb = "GO"
	VerbInventory Verb = "INVENTORY"
	VerbMeditate  Verb = "MEDITATE"
	VerbSit       Verb = "SIT"
	VerbSleep     Verb = "SLEEP"
	VerbStand     Verb = "STAND"
	VerbStop      Verb = "STOP"
	VerbWake      Verb = "WAKE"
	VerbAutoloot  Verb = "AUTOLOOT"
)

var (
	// verbAliases maps input tokens to their canonical verbs. Keys are case
	// folded. It is filled once at init and never written to afterwards.
	verbAliases = map[string]Verb{}

	// directions maps direction tokens to the canonical direction name sent
	// as the argument of a MOVE.
	directions = map[string]string{}
)

func init() {
	aliases := map[Verb][]string{
		VerbAttack:    {"attack", "att", "a", "kill", "k"},
		VerbGet:       {"get", "take", "g", "pick"},
		VerbDrop:      {"drop", "dr"},
		VerbPut:       {"put", "place", "stash"},
		VerbLoot:      {"loot", "lo"},
		VerbLook:      {"look", "l", "examine", "exa", "x"},
		VerbTell:      {"tell", "t"},
		VerbGo:        {"go", "move", "walk"},
		VerbInventory: {"inventory", "inv", "i"},
		VerbMeditate:  {"meditate", "med"},
		VerbSit:       {"sit", "rest"},
		VerbSleep:     {"sleep", "sl"},
		VerbStand:     {"stand", "st"},
		VerbStop:      {"stop"},
		VerbWake:      {"wake"},
		VerbAutoloot:  {"autoloot", "al"},
	}
	for verb, toks := range aliases {
		for _, tok := range toks {
			verbAliases[fold(tok)] = verb
		}
	}

	dirs := map[string][]string{
		"north": {"n", "north"},
		"south": {"s", "south"},
		"east":  {"e", "east"},
		"west":  {"w", "west"},
		"up":    {"u", "up"},
		"down":  {"d", "down"},
	}
	for canon, toks := range dirs {
		for _, tok := range toks {
			directions[fold(tok)] = canon
			verbAliases[fold(tok)] = VerbMove
		}
	}
}

func fold(s string) string {
	return cases.Fold().String(s)
}

// Resolve returns the canonical verb for the given token. Matching is case
// insensitive and exact; there is no prefix matching. A token that is not an
// alias comes back unchanged so free-text verbs still reach the server.
func Resolve(token string) Verb {
	if v, ok := verbAliases[fold(token)]; ok {
		return v
	}
	return Verb(token)
}

// Known returns whether the verb is one from the alias table rather than a
// passed-through token.
func (v Verb) Known() bool {
	switch v {
	case VerbAttack, VerbGet, VerbDrop, VerbPut, VerbLoot, VerbLook, VerbTell,
		VerbMove, VerbGo, VerbInventory, VerbMeditate, VerbSit, VerbSleep,
		VerbStand, VerbStop, VerbWake, VerbAutoloot:
		return true
	default:
		return false
	}
}

// Direction returns the canonical direction for the token, if it is one.
func Direction(token string) (string, bool) {
	d, ok := directions[fold(token)]
	return d, ok
}

// Aliases returns every alias token grouped by the verb it resolves to, with
// each group sorted. The returned map is a copy.
func Aliases() map[Verb][]string {
	grouped := map[Verb][]string{}
	for tok, v := range verbAliases {
		grouped[v] = append(grouped[v], tok)
	}
	for v := range grouped {
		sort.Strings(grouped[v])
	}
	return grouped
}
