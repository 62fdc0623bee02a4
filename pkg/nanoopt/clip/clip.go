// Package clip copies text, typically the JVM command line, to the user's
// clipboard. It falls back from the native clipboard to the terminal's
// OSC52 sequence and finally to a temp file.
package clip

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	atotto "github.com/atotto/clipboard"
	osc52 "github.com/aymanbagabas/go-osc52/v2"
	"golang.org/x/term"
)

// Method is the mechanism that made the text available.
type Method string

const (
	MethodNative Method = "native"
	MethodOSC52  Method = "osc52"
	MethodFile   Method = "file" // FilePath holds the text
)

// Result reports how Copy delivered the text.
type Result struct {
	Method   Method
	FilePath string
}

// Errors from the OSC52 path.
var (
	ErrEmpty       = errors.New("empty clipboard text")
	ErrNotTerminal = errors.New("not a terminal")
	ErrTooLarge    = errors.New("text too large for OSC52")
)

// osc52LimitBytes stays under the limit of strict terminals.
const osc52LimitBytes = 100_000

// Clipboard copies text through the first mechanism that works.
type Clipboard struct {
	native     func(string) error
	terminal   io.Writer
	isTerminal func() bool
	getenv     func(string) string
	tempDir    string
}

// New returns a Clipboard using the system clipboard and stderr.
func New() *Clipboard {
	return &Clipboard{
		native:     atotto.WriteAll,
		terminal:   os.Stderr,
		isTerminal: func() bool { return term.IsTerminal(int(os.Stderr.Fd())) },
		getenv:     os.Getenv,
	}
}

// Copy places text on the clipboard.
func (c *Clipboard) Copy(text string) (Result, error) {
	if err := c.native(text); err == nil {
		return Result{Method: MethodNative}, nil
	}

	if err := c.writeOSC52(text); err == nil {
		return Result{Method: MethodOSC52}, nil
	}

	path, err := c.writeTempFile(text)
	if err != nil {
		return Result{}, err
	}
	return Result{Method: MethodFile, FilePath: path}, nil
}

func (c *Clipboard) writeOSC52(text string) error {
	if text == "" {
		return ErrEmpty
	}
	if !c.isTerminal() {
		return ErrNotTerminal
	}
	if len(text) > osc52LimitBytes {
		return fmt.Errorf("%w (%d bytes > %d)", ErrTooLarge, len(text), osc52LimitBytes)
	}

	seq := osc52.New(text).Limit(osc52LimitBytes)
	if c.getenv("TMUX") != "" {
		seq = seq.Tmux()
	} else if c.getenv("STY") != "" {
		seq = seq.Screen()
	}

	_, err := seq.WriteTo(c.terminal)
	return err
}

func (c *Clipboard) writeTempFile(text string) (path string, err error) {
	f, err := os.CreateTemp(c.tempDir, "nanoopt-cmdline-*.txt")
	if err != nil {
		return "", err
	}
	path = f.Name()
	defer func() {
		_ = f.Close()
		if err != nil {
			_ = os.Remove(path)
		}
	}()

	if _, err = f.WriteString(text); err != nil {
		return "", err
	}
	if err = f.Close(); err != nil {
		return "", err
	}
	return filepath.Clean(path), nil
}
