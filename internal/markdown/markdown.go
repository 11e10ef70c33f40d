// Package markdown renders todo lists as terminal markdown.
package markdown

import (
	"strings"
	"sync"

	internalstrings "github.com/amonks/todomvc/internal/strings"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
)

type renderer interface {
	Render(string) (string, error)
}

var (
	rendererMu sync.Mutex
	renderers  = map[int]renderer{}
)

// Item is one line of a checklist.
type Item struct {
	Title    string
	Complete bool
	Note     string
}

// Checklist builds a GitHub-style task list with an optional heading.
func Checklist(heading string, items []Item) string {
	var builder strings.Builder
	if heading = internalstrings.NormalizeWhitespace(heading); heading != "" {
		builder.WriteString("## ")
		builder.WriteString(heading)
		builder.WriteString("\n\n")
	}
	for _, item := range items {
		if item.Complete {
			builder.WriteString("- [x] ")
		} else {
			builder.WriteString("- [ ] ")
		}
		builder.WriteString(escape(internalstrings.NormalizeWhitespace(item.Title)))
		if item.Note != "" {
			builder.WriteString(" _")
			builder.WriteString(escape(item.Note))
			builder.WriteString("_")
		}
		builder.WriteByte('\n')
	}
	return builder.String()
}

var escaper = strings.NewReplacer(
	`\`, `\\`,
	"*", `\*`,
	"_", `\_`,
	"`", "\\`",
	"[", `\[`,
	"]", `\]`,
	"<", `\<`,
	"#", `\#`,
)

func escape(value string) string {
	return escaper.Replace(value)
}

// Render formats markdown text for terminal output.
func Render(width, indent int, input []byte) []byte {
	return SafeRender(width, indent, input)
}

// SafeRender formats markdown, falling back to the input text if the
// renderer fails or panics.
func SafeRender(width, indent int, input []byte) []byte {
	if len(input) == 0 {
		return nil
	}
	value := internalstrings.NormalizeNewlines(string(input))
	value = internalstrings.TrimTrailingNewlines(value)
	if strings.TrimSpace(value) == "" {
		return nil
	}
	if width < 1 {
		width = 1
	}
	if indent < 0 {
		indent = 0
	}
	renderWidth := width - indent
	if renderWidth < 1 {
		renderWidth = 1
	}

	rendered := value
	if r := markdownRenderer(renderWidth); r != nil {
		if formatted, ok := tryRender(r, value); ok {
			rendered = formatted
		}
	}
	rendered = internalstrings.TrimTrailingNewlines(rendered)
	if strings.TrimSpace(rendered) == "" {
		return nil
	}
	if indent <= 0 {
		return []byte(rendered)
	}
	return []byte(indentBlock(rendered, indent))
}

func tryRender(r renderer, value string) (out string, ok bool) {
	defer func() {
		if recover() != nil {
			out, ok = "", false
		}
	}()
	formatted, err := r.Render(value)
	if err != nil {
		return "", false
	}
	return formatted, true
}

func markdownRenderer(width int) renderer {
	rendererMu.Lock()
	defer rendererMu.Unlock()
	if cached, ok := renderers[width]; ok {
		return cached
	}
	style := styles.ASCIIStyleConfig
	style.Item.BlockPrefix = "- "
	style.Task.Ticked = "[x] "
	style.Task.Unticked = "[ ] "
	created, err := glamour.NewTermRenderer(
		glamour.WithStyles(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil
	}
	renderers[width] = created
	return created
}

func indentBlock(value string, spaces int) string {
	prefix := strings.Repeat(" ", spaces)
	lines := strings.Split(value, "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}
