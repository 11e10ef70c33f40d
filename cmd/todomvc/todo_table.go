package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/amonks/todomvc/internal/ids"
	"github.com/amonks/todomvc/internal/markdown"
	"github.com/amonks/todomvc/internal/ui"
	"github.com/amonks/todomvc/optimistic"
	"github.com/amonks/todomvc/todo"
)

const markdownWidth = 80

// printTodoTable prints todos in a table format with the footer count.
func printTodoTable(out io.Writer, todos []todo.Todo, counts optimistic.Counts) {
	if len(todos) == 0 {
		fmt.Fprintln(out, "No todos found.")
	} else {
		fmt.Fprint(out, formatTodoTable(todos, nil, ui.HighlightID, time.Now()))
	}
	fmt.Fprintln(out, ui.Muted(counts.ItemsLeft()))
}

func formatTodoTable(todos []todo.Todo, prefixLengths map[string]int, highlight func(string, int) string, now time.Time) string {
	builder := ui.NewTableBuilder([]string{"ID", "DONE", "AGE", "TITLE"}, len(todos))

	if prefixLengths == nil {
		prefixLengths = todoIDPrefixLengths(todos)
	}

	for _, t := range todos {
		builder.AddRow([]string{
			highlight(t.ID, prefixLengths[strings.ToLower(t.ID)]),
			ui.Checkbox(t.Complete),
			ui.FormatTimeAgo(t.CreatedAt, now),
			ui.TruncateTableCell(t.Title),
		})
	}

	return builder.String()
}

func todoIDPrefixLengths(todos []todo.Todo) map[string]int {
	todoIDs := make([]string, len(todos))
	for i, t := range todos {
		todoIDs[i] = t.ID
	}
	return ids.UniquePrefixLengths(todoIDs)
}

func formatTodoMarkdown(heading string, todos []todo.Todo, counts optimistic.Counts) string {
	items := make([]markdown.Item, len(todos))
	for i, t := range todos {
		items[i] = markdown.Item{Title: t.Title, Complete: t.Complete}
	}
	source := markdown.Checklist(heading, items) + "\n" + counts.ItemsLeft() + "\n"
	return string(markdown.Render(markdownWidth, 0, []byte(source)))
}
