package web

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/amonks/todomvc/todo"
)

const (
	intentLogin  = "login"
	intentSignup = "signup"
)

var errUnknownIntent = errors.New("unknown intent")

type loginData struct {
	Email         string
	RedirectTo    string
	EmailError    string
	PasswordError string
	Message       string
}

// FocusPassword reports whether the password field should take focus.
func (d loginData) FocusPassword() bool {
	return d.PasswordError != ""
}

var loginMessages = map[error]string{
	todo.ErrEmailInvalid:     "Email is invalid",
	todo.ErrUserExists:       "A user already exists with this email",
	todo.ErrInvalidLogin:     "Invalid email or password",
	todo.ErrPasswordRequired: "Password is required",
	todo.ErrPasswordTooShort: "Password is too short",
}

// currentUser returns the user the request's session belongs to.
func (h *Handler) currentUser(r *http.Request) (todo.User, bool) {
	userID, err := h.sessions.UserID(r)
	if err != nil {
		return todo.User{}, false
	}
	user, err := h.store.UserByID(userID)
	if err != nil {
		return todo.User{}, false
	}
	return user, true
}

func (h *Handler) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	redirectTo := safeRedirect(r.URL.Query().Get(redirectToParam))
	if _, ok := h.currentUser(r); ok {
		http.Redirect(w, r, redirectTo, http.StatusFound)
		return
	}
	h.render(w, http.StatusOK, "login", loginData{RedirectTo: redirectTo})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render(w, http.StatusBadRequest, "login", loginData{
			RedirectTo: todosHref,
			Message:    "Form not submitted correctly.",
		})
		return
	}

	email := r.PostForm.Get("email")
	password := r.PostForm.Get("password")
	intent := r.PostForm.Get("intent")
	data := loginData{
		Email:      email,
		RedirectTo: safeRedirect(r.PostForm.Get(redirectToParam)),
	}

	user, err := h.authenticate(email, password, intent)
	if err != nil {
		message, ok := loginMessage(err)
		switch {
		case errors.Is(err, errUnknownIntent):
			data.Message = "Unknown intent: " + intent
		case !ok:
			h.renderError(w, r, err)
			return
		case errors.Is(err, todo.ErrPasswordRequired), errors.Is(err, todo.ErrPasswordTooShort):
			data.PasswordError = message
		default:
			data.EmailError = message
		}
		h.render(w, http.StatusBadRequest, "login", data)
		return
	}

	if err := h.sessions.Login(w, user.ID, r.PostForm.Get("remember") == "on"); err != nil {
		h.renderError(w, r, err)
		return
	}
	http.Redirect(w, r, data.RedirectTo, http.StatusSeeOther)
}

// authenticate checks the form in the order the login page reports
// errors: email, password, then the account itself.
func (h *Handler) authenticate(email, password, intent string) (todo.User, error) {
	if err := todo.ValidateEmail(email); err != nil {
		return todo.User{}, err
	}
	if err := todo.ValidatePassword(password); err != nil {
		return todo.User{}, err
	}

	switch intent {
	case intentLogin:
		return h.store.VerifyLogin(email, password)
	case intentSignup:
		if _, err := h.store.UserByEmail(email); err == nil {
			return todo.User{}, todo.ErrUserExists
		}
		return h.store.InsertUser(email, password)
	default:
		return todo.User{}, fmt.Errorf("%w: %q", errUnknownIntent, intent)
	}
}

func loginMessage(err error) (string, bool) {
	for target, message := range loginMessages {
		if errors.Is(err, target) {
			return message, true
		}
	}
	return "", false
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Logout(w)
	if id := clientID(r); id != "" {
		h.clients.remove(id)
	}
	http.Redirect(w, r, loginHref(todosHref), http.StatusSeeOther)
}
