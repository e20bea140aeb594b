// Package handlers provides HTTP handlers for the board.
package handlers

import (
	"html/template"
	"log"
	"net/http"
)

// Page templates are embedded so the binary and the test suite need no
// template directory on disk.
var pageTemplates = map[string]*template.Template{
	"home.html":       template.Must(template.New("home.html").Parse(homePage)),
	"login.html":      template.Must(template.New("login.html").Parse(loginPage)),
	"register.html":   template.Must(template.New("register.html").Parse(registerPage)),
	"main.html":       template.Must(template.New("main.html").Parse(mainPage)),
	"threads.html":    template.Must(template.New("threads.html").Parse(threadsPage)),
	"thread_new.html": template.Must(template.New("thread_new.html").Parse(threadNewPage)),
}

// render renders a template with the given data and status code.
func render(w http.ResponseWriter, name string, status int, data map[string]any) {
	if data == nil {
		data = make(map[string]any)
	}

	tmpl, ok := pageTemplates[name]
	if !ok {
		http.Error(w, "Template not found: "+name, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tmpl.Execute(w, data); err != nil {
		log.Printf("Error rendering template %s: %v", name, err)
	}
}

const pageHead = `<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body>
<nav><a href="/">Home</a> <a href="/threads">Threads</a> <a href="/login">Login</a> <a href="/register">Register</a></nav>
`

const homePage = pageHead + `
<h1>Threadboard</h1>
<p>A small discussion board.</p>
</body></html>`

const loginPage = pageHead + `
<h1>Login</h1>
{{if .Error}}<p class="error">{{.Error}}</p>{{end}}
<form method="post" action="/login">
  <input type="text" name="username" placeholder="Username" autocomplete="username">
  <input type="password" name="password" placeholder="Password" autocomplete="current-password">
  <button type="submit">Log in</button>
</form>
</body></html>`

const registerPage = pageHead + `
<h1>Register</h1>
{{if .Error}}<p class="error">{{.Error}}</p>{{end}}
<form method="post" action="/register">
  <input type="text" name="username" placeholder="Username" autocomplete="username">
  <input type="email" name="email" placeholder="Email" autocomplete="email">
  <input type="password" name="password" placeholder="Password" autocomplete="new-password">
  <button type="submit">Create account</button>
</form>
</body></html>`

const mainPage = pageHead + `
<h1>Welcome, {{.User.Username}}</h1>
<p><a href="/threads">Browse threads</a> or <a href="/threads/new">start a new one</a>.</p>
<form method="post" action="/logout">
  <input type="hidden" name="csrf_token" value="{{.CSRFToken}}">
  <button type="submit">Log out</button>
</form>
</body></html>`

const threadsPage = pageHead + `
<h1>Threads</h1>
<form method="get" action="/threads">
  <input type="text" name="q" value="{{.Query}}" placeholder="Search">
  <button type="submit">Search</button>
</form>
{{range .Threads}}
<article>
  <h2>{{.Title}}</h2>
  <div>{{.Body}}</div>
  <p>by {{.Author}}</p>
</article>
{{else}}
<p>No threads yet.</p>
{{end}}
{{if .HasMore}}<p><a href="/threads?q={{.Query}}&page={{.NextPage}}">Older threads</a></p>{{end}}
</body></html>`

const threadNewPage = pageHead + `
<h1>New thread</h1>
{{if .Error}}<p class="error">{{.Error}}</p>{{end}}
<form method="post" action="/threads">
  <input type="hidden" name="csrf_token" value="{{.CSRFToken}}">
  <input type="text" name="title" placeholder="Title">
  <textarea name="body" placeholder="Write something"></textarea>
  <button type="submit">Create</button>
</form>
</body></html>`
