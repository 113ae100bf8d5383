package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// PromptResult contains the result of a user prompt interaction.
type PromptResult struct {
	// Accepted is true if the user typed "y" or "yes".
	Accepted bool
	// Cancelled is true if reading input failed.
	Cancelled bool
}

// ConfirmDelete asks the user to confirm deleting count entities of kind.
// Empty input declines.
func ConfirmDelete(writer io.Writer, reader io.Reader, count int, kind string) PromptResult {
	fmt.Fprintf(writer, "? Delete %d %s? This cannot be undone. [y/N] ", count, kind)

	scanner := bufio.NewScanner(reader)
	if !scanner.Scan() {
		if scanner.Err() != nil {
			return PromptResult{Cancelled: true}
		}
		// EOF (Ctrl+D) declines.
		return PromptResult{}
	}

	switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
	case "y", "yes":
		return PromptResult{Accepted: true}
	default:
		return PromptResult{}
	}
}
