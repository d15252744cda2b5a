package iocli

import (
	"bytes"
	"fmt"
	"io"
)

// Buffer is a scripted IO: reads pop lines from Inputs, output is collected in Out.
type Buffer struct {
	Out    bytes.Buffer
	Inputs []string
}

var _ IO = (*Buffer)(nil)

// NewBuffer returns a Buffer answering prompts with inputs in order
func NewBuffer(inputs ...string) *Buffer {
	return &Buffer{Inputs: inputs}
}

func (b *Buffer) Println(a ...any) {
	_, _ = fmt.Fprintln(&b.Out, a...)
}

func (b *Buffer) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(&b.Out, format, a...)
}

func (b *Buffer) Write(p []byte) (int, error) {
	return b.Out.Write(p)
}

func (b *Buffer) ReadInput(prompt string) (string, error) {
	b.Out.WriteString(prompt)
	if len(b.Inputs) == 0 {
		return "", io.EOF
	}
	line := b.Inputs[0]
	b.Inputs = b.Inputs[1:]
	return line, nil
}

func (b *Buffer) ReadPassword(prompt string) (string, error) {
	return b.ReadInput(prompt)
}

// String returns everything written so far
func (b *Buffer) String() string {
	return b.Out.String()
}
