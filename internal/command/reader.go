package command

// Reader is a type that can be used for getting command input.
type Reader interface {
	// ReadCommand reads a single line of user input. It will block until one
	// is ready. If there is an error or input is at end (EOF), the returned
	// string will be empty.
	//
	// When error is io.EOF, string will always be empty. If EOF was encountered
	// on a call but some input was received, the input will be returned and
	// error will be nil, and the next call to ReadCommand will return "",
	// io.EOF.
	ReadCommand() (string, error)

	// ReadPassword reads a single line without echoing it, showing the given
	// prompt first. Readers that cannot mask input read it as a normal line.
	ReadPassword(prompt string) (string, error)

	// SetPrompt updates the prompt shown before the next line is read.
	SetPrompt(p string)

	// AllowBlank sets whether blank lines are returned rather than skipped.
	AllowBlank(allow bool)

	// KeepHistory sets whether lines returned by ReadCommand are recorded in
	// the command history. By default they are.
	KeepHistory(keep bool)

	// Close performs any operations required to clean the resources created by
	// the Reader. It should be called at least once when the Reader is no
	// longer needed.
	Close() error
}
