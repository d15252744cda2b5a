package iocli

import (
	"bytes"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pipeStdio возвращает Stdio, читающий из pipe с заданным вводом
func pipeStdio(t *testing.T, input string) (*Stdio, *bytes.Buffer) {
	t.Helper()

	r, w, err := os.Pipe()
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })

	// Пишем в pipe в отдельной горутине, имитируя ввод пользователя
	go func() {
		_, _ = w.Write([]byte(input))
		_ = w.Close()
	}()

	var out bytes.Buffer
	return newStdio(r, &out), &out
}

func TestNewStdio(t *testing.T) {
	assert.NotNil(t, NewStdio())
}

func TestStdio_Print(t *testing.T) {
	s, out := pipeStdio(t, "")

	s.Println("hello", "world")
	s.Printf("test %d %s\n", 1, "abc")
	_, err := s.Write([]byte("raw"))
	require.NoError(t, err)

	assert.Equal(t, "hello world\ntest 1 abc\nraw", out.String())
}

func TestStdio_ReadInput(t *testing.T) {
	s, out := pipeStdio(t, "  first line \nsecond")

	got, err := s.ReadInput("Prompt: ")
	require.NoError(t, err)
	assert.Equal(t, "first line", got)

	// Буфер общий между вызовами, вторая строка не теряется
	got, err = s.ReadInput("Again: ")
	require.NoError(t, err)
	assert.Equal(t, "second", got)

	_, err = s.ReadInput("Empty: ")
	assert.ErrorIs(t, err, io.EOF)

	assert.Equal(t, "Prompt: Again: Empty: ", out.String())
}

// pipe не терминал, поэтому пароль читается как обычная строка
func TestStdio_ReadPassword_NotTerminal(t *testing.T) {
	s, _ := pipeStdio(t, "secret\n")

	got, err := s.ReadPassword("Password: ")
	require.NoError(t, err)
	assert.Equal(t, "secret", got)
}

func TestBuffer(t *testing.T) {
	b := NewBuffer("one", "two")

	got, err := b.ReadInput("a: ")
	require.NoError(t, err)
	assert.Equal(t, "one", got)

	got, err = b.ReadPassword("b: ")
	require.NoError(t, err)
	assert.Equal(t, "two", got)

	_, err = b.ReadInput("c: ")
	assert.ErrorIs(t, err, io.EOF)

	b.Printf("%s", "done")
	assert.Equal(t, "a: b: c: done", b.String())
}
