package ui

import (
	"maragu.dev/gomponents"
	"maragu.dev/gomponents/html"
)

func loginPage(errMsg string) gomponents.Node {
	content := []gomponents.Node{
		html.H1(gomponents.Text("Data Dashboard")),
		html.P(gomponents.Text("Sign in with your email or username.")),
		html.Form(
			html.Method("post"),
			html.Action("/login"),
			html.Class("login-form"),
			html.Label(gomponents.Text("Email or username")),
			html.Input(html.Type("text"), html.Name("identifier"), html.Required(), html.AutoFocus()),
			html.Label(gomponents.Text("Password")),
			html.Input(html.Type("password"), html.Name("password"), html.Required()),
			html.Button(html.Type("submit"), html.Class("btn btn-primary"), gomponents.Text("Sign In")),
		),
		html.P(
			gomponents.Text("No account? "),
			html.A(html.Href("/register"), gomponents.Text("Register")),
		),
	}
	if errMsg != "" {
		content = append([]gomponents.Node{html.Div(html.Class("banner error"), gomponents.Text(errMsg))}, content...)
	}
	return authShell("Sign in", content)
}

func registerPage(errMsg string) gomponents.Node {
	content := []gomponents.Node{
		html.H1(gomponents.Text("Create account")),
		html.Form(
			html.Method("post"),
			html.Action("/register"),
			html.Class("login-form"),
			html.Label(gomponents.Text("Username")),
			html.Input(html.Type("text"), html.Name("username"), html.Required()),
			html.Label(gomponents.Text("Email")),
			html.Input(html.Type("email"), html.Name("email"), html.Required()),
			html.Label(gomponents.Text("Password")),
			html.Input(html.Type("password"), html.Name("password"), html.Required()),
			html.Button(html.Type("submit"), html.Class("btn btn-primary"), gomponents.Text("Register")),
		),
		html.P(
			gomponents.Text("Already registered? "),
			html.A(html.Href("/login"), gomponents.Text("Sign in")),
		),
	}
	if errMsg != "" {
		content = append([]gomponents.Node{html.Div(html.Class("banner error"), gomponents.Text(errMsg))}, content...)
	}
	return authShell("Register", content)
}

func authShell(title string, content []gomponents.Node) gomponents.Node {
	return html.HTML(
		html.Lang("en"),
		html.Head(
			html.Meta(html.Charset("utf-8")),
			html.Meta(html.Name("viewport"), html.Content("width=device-width, initial-scale=1")),
			html.TitleEl(gomponents.Text(title+" | Data Dashboard")),
			html.Link(html.Rel("stylesheet"), html.Href("/static/app.css")),
		),
		html.Body(
			html.Class("login-body"),
			html.Main(html.Class("login-wrap"), gomponents.Group(content)),
		),
	)
}
