package view

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Confirm prints prompt and requires the literal word "yes" before a
// destructive action proceeds. Anything else, including EOF, declines.
func Confirm(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprintln(out, prompt)
	fmt.Fprint(out, "Type 'yes' to confirm: ")

	scanner := bufio.NewScanner(in)
	if !scanner.Scan() {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(scanner.Text()), "yes")
}
