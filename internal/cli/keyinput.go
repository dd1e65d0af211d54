package cli

import (
	"bufio"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"
)

// ErrTitleKeyLength is returned when a supplied Title Key does not decode
// to exactly 16 bytes (spec.md §4.1: the plain Title Key is always a
// single AES-128 key).
var ErrTitleKeyLength = errors.New("title key must be exactly 32 hex characters (16 bytes)")

// isTerminal reports whether stdin is a terminal, not a pipe/redirect.
func isTerminal() bool {
	return term.IsTerminal(int(syscall.Stdin))
}

// ReadTitleKeyInteractive prompts for a Title Key with echo disabled; a
// raw Title Key is as sensitive as a password.
func ReadTitleKeyInteractive() ([]byte, error) {
	fmt.Fprint(os.Stderr, "Title Key (hex): ")

	var raw string
	if !isTerminal() {
		reader := bufio.NewReader(os.Stdin)
		line, err := reader.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("reading title key: %w", err)
		}
		raw = line
	} else {
		bytes, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return nil, fmt.Errorf("reading title key: %w", err)
		}
		raw = string(bytes)
	}

	return ParseTitleKeyHex(raw)
}

// ParseTitleKeyHex decodes a 32-hex-character Title Key, trimming
// surrounding whitespace/newlines from terminal or piped input.
func ParseTitleKeyHex(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	key, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTitleKeyLength, err)
	}
	if len(key) != 16 {
		return nil, ErrTitleKeyLength
	}
	return key, nil
}
