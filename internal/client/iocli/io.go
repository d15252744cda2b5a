// Package iocli abstracts terminal input and output of the CLI.
package iocli

// IO is what commands use to talk to the user
type IO interface {
	Println(a ...any)
	Printf(format string, a ...any)
	ReadInput(prompt string) (string, error)
	ReadPassword(prompt string) (string, error)
	Write(p []byte) (n int, err error)
}
