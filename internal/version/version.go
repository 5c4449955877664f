// Package version contains information on the current version of the program.
// It is split from the main program for easy use.
package version

// Current is the string representing the current version of the TunaMUD
// client.
const Current = "0.4.0"

// Protocol is the version of the server envelope protocol the client speaks.
const Protocol = "1"
