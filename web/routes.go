package web

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/mux"

	"github.com/amonks/todomvc/optimistic"
)

const (
	homeHref   = "/"
	loginPath  = "/login"
	logoutHref = "/logout"
	todosHref  = "/todos"

	redirectToParam = "redirect-to"
	failedParam     = "failed"
)

// loginHref links to the login page, returning to redirectTo afterwards.
func loginHref(redirectTo string) string {
	if redirectTo == "" || redirectTo == homeHref {
		return loginPath
	}
	return loginPath + "?" + url.Values{redirectToParam: {redirectTo}}.Encode()
}

func filterHref(filter optimistic.Filter) string {
	return todosHref + "/" + string(filter)
}

// safeRedirect keeps post-login redirects on this site.
func safeRedirect(target string) string {
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return todosHref
	}
	return target
}

// requestFilter resolves the todos filter from the path. A path without
// a filter segment lists everything.
func requestFilter(r *http.Request) (optimistic.Filter, bool) {
	filter, err := optimistic.ParseFilter(mux.Vars(r)["filter"])
	if err != nil {
		return "", false
	}
	return filter, true
}
