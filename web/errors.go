package web

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/amonks/todomvc/action"
	"github.com/amonks/todomvc/optimistic"
)

type errorData struct {
	Message string
	Back    string
}

// boundaryMessage describes err the way the todos page reports failures
// nothing else handled.
func boundaryMessage(err error) (int, string) {
	cause := err
	var unhandled *optimistic.UnhandledError
	if errors.As(err, &unhandled) {
		cause = unhandled.Err
	}

	var formErr *action.FormError
	var serverErr *action.ServerError
	switch {
	case errors.As(cause, &formErr):
		return http.StatusBadRequest, "Unhandled (action) FormError: " + formErr.Message
	case errors.As(cause, &serverErr):
		switch serverErr.Status {
		case http.StatusBadRequest:
			return serverErr.Status, "You did something wrong: " + serverErr.Message
		case http.StatusNotFound:
			return serverErr.Status, "Not found"
		default:
			return serverErr.Status, fmt.Sprintf("Unexpected server error with status: %d (%s)", serverErr.Status, serverErr.Message)
		}
	case cause != nil:
		return http.StatusInternalServerError, "An unexpected error occurred: " + cause.Error()
	default:
		return http.StatusInternalServerError, "An unexpected error occurred"
	}
}

func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := boundaryMessage(err)
	if status < 400 || status > 599 {
		status = http.StatusInternalServerError
	}
	h.logf("request %s %s failed (%d): %v", r.Method, r.URL.Path, status, err)

	back := todosHref
	if r.Method == http.MethodPost && r.URL.Path != loginPath {
		back = r.URL.Path
	}
	h.render(w, status, "error", errorData{Message: message, Back: back})
}
