package utils

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/meysamhadeli/talos/constants/lipgloss"
)

// ConfirmPrompt asks a yes/no question on w and reads the answer from reader.
// Anything other than "y" or "yes" (including EOF) counts as no.
func ConfirmPrompt(reader *bufio.Reader, w io.Writer, question string) (bool, error) {
	fmt.Fprint(w, lipgloss.BlueSky.Render(question+" (y/N): "))

	answer, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("error reading input: %w", err)
	}

	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes", nil
}
