// Package command defines game command data types and handles parsing of
// commands from player input.
package command

// Action is the identifier of a server-side gameplay operation. Its string
// value is what is sent to the server. Free-text verbs that match no grammar
// rule, such as social emotes, are passed through as an Action whose value is
// the verb exactly as typed.
type Action string

const (
	Move                        Action = "MOVE"
	Attack                      Action = "ATTACK"
	DropSingle                  Action = "DROP_SINGLE"
	DropAll                     Action = "DROP_ALL"
	DropAllSpecific             Action = "DROP_ALL_SPECIFIC"
	GetSingle                   Action = "GET_SINGLE"
	GetAll                      Action = "GET_ALL"
	GetAllSpecific              Action = "GET_ALL_SPECIFIC"
	GetAllFromContainer         Action = "GET_ALL_FROM_CONTAINER"
	GetAllSpecificFromContainer Action = "GET_ALL_SPECIFIC_FROM_CONTAINER"
	PutSingle                   Action = "PUT_SINGLE"
	PutAll                      Action = "PUT_ALL"
	PutAllSpecific              Action = "PUT_ALL_SPECIFIC"
	ShowInventory               Action = "SHOW_INVENTORY"
	DescribeLocation            Action = "DESCRIBE_LOCATION"
	LookAtItem                  Action = "LOOK_AT_ITEM"
	LookAt                      Action = "LOOK_AT"
	LookIn                      Action = "LOOK_IN"
	LootSingle                  Action = "LOOT_SINGLE"
	LootAll                     Action = "LOOT_ALL"
	ToggleAutoloot              Action = "TOGGLE_AUTOLOOT"
	Meditate                    Action = "MEDITATE"
	Sit                         Action = "SIT"
	Sleep                       Action = "SLEEP"
	Stand                       Action = "STAND"
	Stop                        Action = "STOP"
	Wake                        Action = "WAKE"
	Tell                        Action = "TELL"
	TellAll                     Action = "TELL_ALL"
	TellRoom                    Action = "TELL_ROOM"
)

var knownActions = map[Action]bool{
	Move: true, Attack: true,
	DropSingle: true, DropAll: true, DropAllSpecific: true,
	GetSingle: true, GetAll: true, GetAllSpecific: true, GetAllFromContainer: true, GetAllSpecificFromContainer: true,
	PutSingle: true, PutAll: true, PutAllSpecific: true,
	ShowInventory: true, DescribeLocation: true, LookAtItem: true, LookAt: true, LookIn: true,
	LootSingle: true, LootAll: true, ToggleAutoloot: true,
	Meditate: true, Sit: true, Sleep: true, Stand: true, Stop: true, Wake: true,
	Tell: true, TellAll: true, TellRoom: true,
}

func (a Action) String() string {
	return string(a)
}

// Passthrough returns whether the Action is a free-text verb rather than one
// of the fixed identifiers.
func (a Action) Passthrough() bool {
	return !knownActions[a]
}

// Command is a valid command received from the player.
type Command struct {

	// Action is the operation the server is asked to perform.
	Action Action

	// Args is the arguments to the action, in order. For a FROM_CONTAINER
	// action the container is always the last one.
	Args []string
}

// String gives the command as it would be typed with the canonical action.
func (c Command) String() string {
	s := c.Action.String()
	for _, a := range c.Args {
		s += " " + a
	}
	return s
}
