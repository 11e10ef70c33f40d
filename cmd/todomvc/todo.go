package main

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amonks/todomvc/action"
	"github.com/amonks/todomvc/internal/editor"
	"github.com/amonks/todomvc/internal/ids"
	"github.com/amonks/todomvc/optimistic"
	"github.com/amonks/todomvc/todo"
)

var todoCmd = &cobra.Command{
	Use:   "todo",
	Short: "Manage a user's todos",
	Long: `Manage a user's todos.

Every subcommand acts on the account named by --email, or by $` + emailEnvVar + `.
Todo IDs may be abbreviated to any unique prefix.`,
}

var todoListCmd = &cobra.Command{
	Use:     "list",
	Short:   "List todos, newest first",
	Aliases: []string{"ls"},
	Args:    cobra.NoArgs,
	RunE:    runTodoList,
}

var todoAddCmd = &cobra.Command{
	Use:   "add <title>...",
	Short: "Add a todo",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTodoAdd,
}

var todoDoneCmd = &cobra.Command{
	Use:   "done <id>...",
	Short: "Mark todos as complete",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTodoToggle(cmd, args, true)
	},
}

var todoUndoCmd = &cobra.Command{
	Use:   "undo <id>...",
	Short: "Mark todos as active",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTodoToggle(cmd, args, false)
	},
}

var todoRenameCmd = &cobra.Command{
	Use:   "rename <id> [title...]",
	Short: "Change a todo's title",
	Long: `Change a todo's title.

Without a title, opens $EDITOR on the current one.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runTodoRename,
}

var todoRemoveCmd = &cobra.Command{
	Use:     "rm <id>...",
	Short:   "Delete todos",
	Aliases: []string{"delete"},
	Args:    cobra.MinimumNArgs(1),
	RunE:    runTodoRemove,
}

var todoClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all completed todos",
	Args:  cobra.NoArgs,
	RunE:  runTodoClear,
}

var todoToggleAllCmd = &cobra.Command{
	Use:   "toggle-all",
	Short: "Mark every todo as complete, or as active with --active",
	Args:  cobra.NoArgs,
	RunE:  runTodoToggleAll,
}

var (
	todoEmail             string
	todoListFilter        string
	todoListJSON          bool
	todoListMarkdown      bool
	todoToggleAllToActive bool
)

func init() {
	rootCmd.AddCommand(todoCmd)
	todoCmd.AddCommand(todoListCmd, todoAddCmd, todoDoneCmd, todoUndoCmd, todoRenameCmd, todoRemoveCmd, todoClearCmd, todoToggleAllCmd)
	addTodoFlagAliases(todoCmd.Commands()...)

	todoCmd.PersistentFlags().StringVar(&todoEmail, "email", "", "Email of the account to act on")

	todoListCmd.Flags().StringVar(&todoListFilter, "filter", string(optimistic.FilterAll), "Filter todos (all, active, complete)")
	todoListCmd.Flags().BoolVar(&todoListJSON, "json", false, "Output as JSON")
	todoListCmd.Flags().BoolVar(&todoListMarkdown, "markdown", false, "Output as a markdown checklist")
	todoListCmd.MarkFlagsMutuallyExclusive("json", "markdown")

	todoToggleAllCmd.Flags().BoolVar(&todoToggleAllToActive, "active", false, "Mark every todo as active")
}

// todoSession is a store opened for one account.
type todoSession struct {
	store *todo.Store
	user  todo.User
}

func withTodoSession(fn func(todoSession) error) error {
	email, err := resolveEmail(todoEmail)
	if err != nil {
		return err
	}
	return withStore(func(store *todo.Store) error {
		user, err := store.UserByEmail(email)
		if err != nil {
			if errors.Is(err, todo.ErrUserNotFound) {
				return fmt.Errorf("no account for %s", email)
			}
			return err
		}
		return fn(todoSession{store: store, user: user})
	})
}

func (s todoSession) todos() ([]todo.Todo, error) {
	todos, _, err := s.store.SelectTodos(s.user.ID)
	return todos, err
}

// resolveID expands an ID prefix against the account's todos.
func (s todoSession) resolveID(prefix string) (string, error) {
	todos, err := s.todos()
	if err != nil {
		return "", err
	}
	todoIDs := make([]string, len(todos))
	for i, t := range todos {
		todoIDs[i] = t.ID
	}
	return ids.MatchPrefix(todoIDs, prefix)
}

func (s todoSession) editTitle(id string) (string, error) {
	todos, err := s.todos()
	if err != nil {
		return "", err
	}
	for _, t := range todos {
		if t.ID == id {
			return editor.EditTitle(t.Title)
		}
	}
	return "", fmt.Errorf("%w: %s", todo.ErrTodoNotFound, id)
}

func (s todoSession) act(form url.Values) error {
	if action.FormKind(form) == action.KindNewTodo {
		_, err := action.NewTodo(s.store, s.user.ID, form)
		return actionError(err)
	}
	_, err := action.TodoAction(s.store, s.user.ID, form)
	return actionError(err)
}

// actionError turns action failures into the messages the web app shows.
func actionError(err error) error {
	if err == nil {
		return nil
	}
	var formErr *action.FormError
	if errors.As(err, &formErr) {
		return errors.New(formErr.DisplayMessage())
	}
	var serverErr *action.ServerError
	if errors.As(err, &serverErr) {
		return errors.New(serverErr.Message)
	}
	return err
}

func runTodoList(cmd *cobra.Command, _ []string) error {
	filter, err := optimistic.ParseFilter(todoListFilter)
	if err != nil {
		return err
	}

	return withTodoSession(func(s todoSession) error {
		todos, err := s.todos()
		if err != nil {
			return err
		}

		counts, items, _ := optimistic.NewMaterializer().Make(filter, optimistic.FromTodos(todos))
		listed := listedTodos(todos, items)

		out := cmd.OutOrStdout()
		switch {
		case todoListJSON:
			return encodeJSON(out, listed)
		case todoListMarkdown:
			fmt.Fprintln(out, formatTodoMarkdown(s.user.Email, listed, counts))
			return nil
		default:
			printTodoTable(out, listed, counts)
			return nil
		}
	})
}

// listedTodos returns the persisted todos in the order of items.
func listedTodos(todos []todo.Todo, items []*optimistic.View) []todo.Todo {
	byID := make(map[string]todo.Todo, len(todos))
	for _, t := range todos {
		byID[t.ID] = t
	}
	listed := make([]todo.Todo, 0, len(items))
	for _, item := range items {
		if t, ok := byID[item.ID]; ok {
			listed = append(listed, t)
		}
	}
	return listed
}

func runTodoAdd(cmd *cobra.Command, args []string) error {
	title := strings.Join(args, " ")
	return withTodoSession(func(s todoSession) error {
		err := s.act(url.Values{
			action.FieldKind:  {string(action.KindNewTodo)},
			action.FieldID:    {ids.FormatNewID(1)},
			action.FieldTitle: {title},
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added %q\n", title)
		return nil
	})
}

func runTodoToggle(cmd *cobra.Command, args []string, complete bool) error {
	verb := "Completed"
	if !complete {
		verb = "Reopened"
	}
	return withTodoSession(func(s todoSession) error {
		for _, prefix := range args {
			id, err := s.resolveID(prefix)
			if err != nil {
				return err
			}
			err = s.act(url.Values{
				action.FieldKind:     {string(action.KindToggleTodo)},
				action.FieldID:       {id},
				action.FieldComplete: {action.FormatComplete(complete)},
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", verb, id)
		}
		return nil
	})
}

func runTodoRename(cmd *cobra.Command, args []string) error {
	return withTodoSession(func(s todoSession) error {
		id, err := s.resolveID(args[0])
		if err != nil {
			return err
		}
		title := strings.Join(args[1:], " ")
		if len(args) == 1 {
			title, err = s.editTitle(id)
			if err != nil {
				return err
			}
		}
		err = s.act(url.Values{
			action.FieldKind:  {string(action.KindUpdateTodo)},
			action.FieldID:    {id},
			action.FieldTitle: {title},
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Renamed %s to %q\n", id, title)
		return nil
	})
}

func runTodoRemove(cmd *cobra.Command, args []string) error {
	return withTodoSession(func(s todoSession) error {
		for _, prefix := range args {
			id, err := s.resolveID(prefix)
			if err != nil {
				return err
			}
			err = s.act(url.Values{
				action.FieldKind: {string(action.KindDeleteTodo)},
				action.FieldID:   {id},
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", id)
		}
		return nil
	})
}

func runTodoClear(cmd *cobra.Command, _ []string) error {
	return withTodoSession(func(s todoSession) error {
		before, err := s.todos()
		if err != nil {
			return err
		}
		if err := s.act(url.Values{action.FieldKind: {string(action.KindClearTodos)}}); err != nil {
			return err
		}
		after, err := s.todos()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d completed todos\n", len(before)-len(after))
		return nil
	})
}

func runTodoToggleAll(cmd *cobra.Command, _ []string) error {
	complete := !todoToggleAllToActive
	return withTodoSession(func(s todoSession) error {
		err := s.act(url.Values{
			action.FieldKind:     {string(action.KindToggleAllTodos)},
			action.FieldComplete: {action.FormatComplete(complete)},
		})
		if err != nil {
			return err
		}
		if complete {
			fmt.Fprintln(cmd.OutOrStdout(), "Marked all todos as complete")
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "Marked all todos as active")
		}
		return nil
	})
}
