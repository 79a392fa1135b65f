package main

import (
	"bufio"
	"io"
	"os"
	"strings"
)

// readInput returns args[0] if present, otherwise the full contents of
// stdin, mirroring cmd/devcmd/main.go's "positional arg else read a
// stream" convention (there a file path, here the raw text itself).
func readInput(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	data, err := io.ReadAll(bufio.NewReader(os.Stdin))
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(data), "\n"), nil
}
