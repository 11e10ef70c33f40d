package editor

import (
	"errors"
	"fmt"
	"os"
	"strings"

	internalstrings "github.com/amonks/todomvc/internal/strings"
)

// ErrEmptyTitle is returned when the edited file holds no title.
var ErrEmptyTitle = errors.New("empty title, aborting")

const titleInstructions = `
# Enter the todo title above. Lines starting with '#' are ignored.
# Save an empty title to abort.
`

// RenderTitle returns the file content used to edit title.
func RenderTitle(title string) string {
	return title + "\n" + titleInstructions
}

// ParseTitle reads a title back from edited content, joining the
// remaining lines with spaces.
func ParseTitle(content string) (string, error) {
	var kept []string
	for _, line := range strings.Split(internalstrings.NormalizeNewlines(content), "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		kept = append(kept, line)
	}
	title := internalstrings.NormalizeWhitespace(strings.Join(kept, " "))
	if title == "" {
		return "", ErrEmptyTitle
	}
	return title, nil
}

// EditTitle opens title in $EDITOR and returns the edited title.
func EditTitle(title string) (string, error) {
	tmpfile, err := os.CreateTemp("", "todomvc-title-*.txt")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpfile.Name()
	defer os.Remove(tmpPath)

	if _, err := tmpfile.WriteString(RenderTitle(title)); err != nil {
		tmpfile.Close()
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := tmpfile.Close(); err != nil {
		return "", fmt.Errorf("close temp file: %w", err)
	}

	if err := Edit(tmpPath); err != nil {
		return "", err
	}

	edited, err := os.ReadFile(tmpPath)
	if err != nil {
		return "", fmt.Errorf("read edited file: %w", err)
	}
	return ParseTitle(string(edited))
}
