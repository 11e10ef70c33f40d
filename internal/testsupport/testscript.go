package testsupport

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sync"
	"testing"

	"github.com/amonks/todomvc/todo"
	"github.com/rogpeppe/go-internal/testscript"
)

var (
	buildOnce sync.Once
	binary    string
	buildErr  error
)

// Binary builds cmd/todomvc once per test process and returns its path.
func Binary(t testing.TB) string {
	t.Helper()

	buildOnce.Do(func() {
		binary, buildErr = buildBinary()
	})
	if buildErr != nil {
		t.Fatal(buildErr)
	}
	return binary
}

func buildBinary() (string, error) {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		return "", errors.New("locate module root: no caller information")
	}
	root := filepath.Join(filepath.Dir(file), "..", "..")

	dir, err := os.MkdirTemp("", "todomvc-bin-")
	if err != nil {
		return "", fmt.Errorf("create bin dir: %w", err)
	}
	path := filepath.Join(dir, "todomvc")

	cmd := exec.Command("go", "build", "-o", path, "./cmd/todomvc")
	cmd.Dir = root
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("build todomvc: %w: %s", err, bytes.TrimSpace(out))
	}
	return path, nil
}

// ScriptParams runs the scripts in dir against a freshly built binary.
//
// Each script gets $TODOMVC, a private $HOME with the todomvc state and
// config directories, NO_COLOR, and two commands:
//
//	todoid TITLE VAR
//	    set VAR to the ID of the todo titled TITLE in the JSON printed
//	    by the previous `todo list --json`
//	[!] stored [-done] STORE EMAIL TITLE
//	    assert that the store file holds TITLE for EMAIL, complete
//	    when -done is given
func ScriptParams(t testing.TB, dir string) testscript.Params {
	return testscript.Params{
		Dir: dir,
		Setup: func(env *testscript.Env) error {
			home := filepath.Join(env.WorkDir, "home")
			if err := EnsureHomeDirs(home); err != nil {
				return err
			}
			env.Setenv("HOME", home)
			env.Setenv("NO_COLOR", "1")
			env.Setenv("TODOMVC", Binary(t))
			return nil
		},
		Cmds: map[string]func(ts *testscript.TestScript, neg bool, args []string){
			"todoid": cmdTodoID,
			"stored": cmdStored,
		},
	}
}

func cmdTodoID(ts *testscript.TestScript, neg bool, args []string) {
	if neg {
		ts.Fatalf("unsupported: ! todoid")
	}
	if len(args) != 2 {
		ts.Fatalf("usage: todoid TITLE VAR")
	}

	var listed []todo.Todo
	if err := json.Unmarshal([]byte(ts.ReadFile("stdout")), &listed); err != nil {
		ts.Fatalf("todoid: stdout is not a todo list: %v", err)
	}
	for _, item := range listed {
		if item.Title == args[0] {
			ts.Setenv(args[1], item.ID)
			return
		}
	}
	ts.Fatalf("todoid: no todo titled %q", args[0])
}

func cmdStored(ts *testscript.TestScript, neg bool, args []string) {
	done := len(args) > 0 && args[0] == "-done"
	if done {
		args = args[1:]
	}
	if len(args) != 3 {
		ts.Fatalf("usage: stored [-done] STORE EMAIL TITLE")
	}

	path := ts.MkAbs(args[0])
	if _, err := os.Stat(path); err != nil {
		ts.Fatalf("stored: %v", err)
	}
	store, err := todo.Open(path, todo.OpenOptions{NoSeed: true})
	ts.Check(err)
	defer func() {
		ts.Check(store.Close())
	}()

	user, err := store.UserByEmail(args[1])
	ts.Check(err)
	todos, _, err := store.SelectTodos(user.ID)
	ts.Check(err)

	found := false
	for _, item := range todos {
		if item.Title == args[2] && (!done || item.Complete) {
			found = true
			break
		}
	}
	switch {
	case found && neg:
		ts.Fatalf("stored: %s has %q", args[1], args[2])
	case !found && !neg:
		ts.Fatalf("stored: %s has no %q", args[1], args[2])
	}
}
