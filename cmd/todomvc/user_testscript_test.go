package main

import (
	"testing"

	"github.com/amonks/todomvc/internal/testsupport"
	"github.com/rogpeppe/go-internal/testscript"
)

func TestUserScripts(t *testing.T) {
	testscript.Run(t, testsupport.ScriptParams(t, "testdata/user"))
}
