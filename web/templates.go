package web

import (
	"html/template"

	"github.com/amonks/todomvc/optimistic"
)

// refreshSeconds is how soon a page with pending submissions reloads.
const refreshSeconds = 1

type headData struct {
	Title   string
	Refresh bool
}

func newTemplates() *template.Template {
	funcs := template.FuncMap{
		"head":           func(title string, refresh bool) headData { return headData{Title: title, Refresh: refresh} },
		"refreshSeconds": func() int { return refreshSeconds },
		"errorID": func(v *optimistic.View) string {
			return "todo-item-error-" + v.ID
		},
	}
	return template.Must(template.New("pages").Funcs(funcs).Parse(pageTemplates))
}

const pageTemplates = `
{{define "head"}}<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  {{if .Refresh}}<meta http-equiv="refresh" content="{{refreshSeconds}}">{{end}}
  <title>{{.Title}}</title>
  <style>
    body {
      margin: 0 auto;
      max-width: 550px;
      padding: 0 16px;
      font: 16px/1.4 "Helvetica Neue", Helvetica, Arial, sans-serif;
      color: #111;
      background: #f5f5f5;
    }
    button {
      font: inherit;
      color: inherit;
      background: none;
      border: 0;
      cursor: pointer;
    }
    button:disabled {
      cursor: default;
      opacity: 0.4;
    }
    .c-todos {
      background: #fff;
      margin: 32px 0 24px;
      box-shadow: 0 2px 4px rgba(0, 0, 0, 0.2), 0 25px 50px rgba(0, 0, 0, 0.1);
    }
    .c-todos__header {
      margin: 0;
      padding-top: 16px;
      text-align: center;
      font-size: 64px;
      font-weight: 200;
      color: #b83f45;
    }
    .c-new-todo, .c-todo-item__update {
      margin: 0;
    }
    .c-new-todo__title, .c-todo-item__title {
      box-sizing: border-box;
      width: 100%;
      padding: 16px;
      font: inherit;
      font-size: 22px;
      border: 0;
      border-bottom: 1px solid #ededed;
    }
    .c-todos--error {
      padding: 4px 16px;
      color: #b83f45;
      font-size: 14px;
    }
    .c-todos__main {
      position: relative;
      border-top: 1px solid #e6e6e6;
    }
    .c-todos__toggle-all {
      padding: 8px 16px;
      font-size: 14px;
      color: #777;
    }
    .c-todo-list {
      margin: 0;
      padding: 0;
      list-style: none;
    }
    .c-todo-item {
      display: flex;
      align-items: center;
      border-bottom: 1px solid #ededed;
    }
    .c-todo-item__update {
      flex: 1;
    }
    .c-todo-item__toggle, .c-todo-item__delete {
      width: 40px;
      height: 40px;
      font-size: 20px;
    }
    .c-todo-item__toggle::before {
      content: "\25CB";
    }
    .js-c-todo-item__toggle--complete::before {
      content: "\2713";
      color: #5dc2af;
    }
    .c-todo-item__delete::before {
      content: "\00D7";
      color: #af5b5e;
    }
    .js-c-todo-item--complete .c-todo-item__title {
      color: #949494;
      text-decoration: line-through;
    }
    .c-todos__footer {
      display: flex;
      flex-wrap: wrap;
      align-items: center;
      justify-content: space-between;
      padding: 10px 16px;
      font-size: 14px;
      color: #111;
    }
    .c-todos__filters {
      display: flex;
      gap: 6px;
      margin: 0;
      padding: 0;
      list-style: none;
    }
    .c-todos__filter-anchor {
      padding: 3px 7px;
      color: inherit;
      text-decoration: none;
      border: 1px solid transparent;
      border-radius: 3px;
    }
    .js-c-todos__filter-anchor--selected {
      border-color: #ce4646;
    }
    .c-info, .c-login {
      margin: 32px 0;
      font-size: 12px;
      color: #4d4d4d;
      text-align: center;
    }
    .c-info__logout {
      display: inline;
    }
    .c-info__pointer {
      color: inherit;
      text-decoration: underline;
    }
    .c-login {
      font-size: 16px;
      text-align: left;
    }
    .c-login__form > div {
      margin-bottom: 12px;
    }
    .c-login__error, .c-error {
      color: #b83f45;
    }
  </style>
</head>
<body>
{{end}}

{{define "foot"}}</body>
</html>
{{end}}

{{define "login"}}{{template "head" (head "Login" false)}}
<div class="c-login">
  <h1 class="c-login__header">TodoMVC Login</h1>
  {{if .Message}}<div class="c-login__error">{{.Message}}</div>{{end}}
  <form class="c-login__form" method="post" action="/login">
    <div>
      <label for="email">Email address</label>
      <input id="email" class="c-login__email" required name="email" type="email" autocomplete="email" value="{{.Email}}"{{if not .FocusPassword}} autofocus{{end}}{{if .EmailError}} aria-invalid="true" aria-errormessage="email-error"{{end}}>
      {{if .EmailError}}<div id="email-error" class="c-login__error">{{.EmailError}}</div>{{end}}
    </div>
    <div>
      <label for="password">Password</label>
      <input id="password" class="c-login__password" name="password" type="password" autocomplete="current-password"{{if .FocusPassword}} autofocus{{end}}{{if .PasswordError}} aria-invalid="true" aria-errormessage="password-error"{{end}}>
      {{if .PasswordError}}<div id="password-error" class="c-login__error">{{.PasswordError}}</div>{{end}}
    </div>
    <input type="hidden" name="redirect-to" value="{{.RedirectTo}}">
    <button type="submit" name="intent" value="login">Log in</button>
    <button type="submit" name="intent" value="signup">Sign Up</button>
    <div>
      <label for="remember">
        <input id="remember" class="c-login__remember" name="remember" type="checkbox"> Remember me
      </label>
    </div>
  </form>
</div>
{{template "foot"}}{{end}}

{{define "error"}}{{template "head" (head "Error" false)}}
<section class="c-todos">
  <div class="c-error">{{.Message}}</div>
  <p><a class="c-info__pointer" href="{{.Back}}">Back to todos</a></p>
</section>
{{template "foot"}}{{end}}

{{define "todos"}}{{template "head" (head "Todos" .Refresh)}}
<section class="c-todos">
  <div>
    <header>
      <h1 class="c-todos__header">todos</h1>
      <form class="c-new-todo" method="post" action="{{.Action}}">
        <input type="hidden" name="kind" value="newTodo">
        <input type="hidden" name="id" value="{{.Draft.ID}}">
        <input type="hidden" name="created-at" value="">
        <input class="c-new-todo__title" placeholder="What needs to be done?" name="title" value="{{.Draft.Title}}" autofocus{{if .Draft.Message}} aria-invalid="true" aria-errormessage="new-todo-error"{{end}}>
        {{if .Draft.Message}}<div id="new-todo-error" class="c-new-todo__error c-todos--error">{{.Draft.Message}}</div>{{end}}
      </form>
    </header>
    <section class="c-todos__main{{if eq .Counts.Visible 0}} js-c-todos__main--no-todos-visible{{end}}">
      <form method="post" action="{{.Action}}">
        <input type="hidden" name="complete" value="{{.Counts.ToggleAllTo}}">
        <button class="c-todos__toggle-all{{if eq .Counts.Active 0}}{{if gt .Counts.Complete 0}} js-c-todos__toggle-all--checked{{else}} js-c-todos__toggle-all--no-todos{{end}}{{end}}" name="kind" title="{{.Counts.ToggleAllTitle}}" type="submit" value="toggleAllTodos">{{.Counts.ToggleAllTitle}}</button>
      </form>
      <ul class="c-todo-list"{{if eq .Counts.Visible 0}} hidden{{end}}>
        {{range .Items}}
        <li class="c-todo-list__item"{{if .Hidden}} hidden{{end}}>
          <div class="c-todo-item {{if .Complete}}js-c-todo-item--complete{{else}}js-c-todo-item--active{{end}}">
            <form method="post" action="{{$.Action}}">
              <input type="hidden" name="id" value="{{.ID}}">
              <input type="hidden" name="complete" value="{{.ToggleTo}}">
              <button class="c-todo-item__toggle {{if .Complete}}js-c-todo-item__toggle--complete{{else}}js-c-todo-item__toggle--active{{end}}"{{if .ActionsDisabled}} disabled{{end}} name="kind" title="{{.ToggleTitle}}" type="submit" value="toggleTodo"></button>
            </form>
            <form class="c-todo-item__update" method="post" action="{{$.Action}}">
              <input type="hidden" name="kind" value="updateTodo">
              <input type="hidden" name="id" value="{{.ID}}">
              <input class="c-todo-item__title" data-title="{{.Title}}"{{if .ActionsDisabled}} disabled{{end}} name="title" value="{{.Title}}"{{if .Message}} aria-invalid="true" aria-errormessage="{{errorID .}}"{{end}}>
              {{if .Message}}<div id="{{errorID .}}" class="c-todo-item__error c-todos--error">{{.Message}}</div>{{end}}
            </form>
            <form method="post" action="{{$.Action}}">
              <input type="hidden" name="id" value="{{.ID}}">
              <button class="c-todo-item__delete"{{if .ActionsDisabled}} disabled{{end}} name="kind" title="Delete todo" type="submit" value="deleteTodo"></button>
            </form>
          </div>
        </li>
        {{end}}
      </ul>
    </section>
    <footer class="c-todos__footer">
      <span class="c-todos__count">{{.Counts.ItemsLeft}}</span>
      <ul class="c-todos__filters">
        {{range .Filters}}
        <li class="c-todos__filter-item"><a href="{{.Href}}" class="c-todos__filter-anchor{{if .Selected}} js-c-todos__filter-anchor--selected{{end}}">{{.Label}}</a></li>
        {{end}}
      </ul>
      {{if gt .Counts.Complete 0}}
      <form method="post" action="{{.Action}}">
        <button class="c-todos__clear-completed" name="kind" type="submit" value="clearTodos">Clear Completed</button>
      </form>
      {{end}}
    </footer>
  </div>
</section>
<footer class="c-info">
  <div>
    {{.Email}}
    <form method="post" action="/logout" class="c-info__logout">
      <button type="submit" class="c-info__pointer">Logout</button>
    </form>
  </div>
</footer>
{{template "foot"}}{{end}}
`
