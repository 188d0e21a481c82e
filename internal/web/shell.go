package web

import (
	"html/template"
	"log"
	"net/http"
)

// shellTmpl is the page chrome every handler renders into. Styling is
// out of scope; the classes exist for a stylesheet to hook into.
var shellTmpl = template.Must(template.New("shell").Parse(`<!doctype html>
<html>
<head><meta charset="utf-8"><title>{{.Title}} - taskdeck</title></head>
<body>
<nav>
{{range .Nav}}<a href="{{.HRef}}">{{.Label}}</a> {{end}}
</nav>
{{range .Alerts}}<div class="alert" role="alert">{{.}}</div>
{{end}}
<main>
<h1>{{.Title}}</h1>
{{.Body}}
</main>
</body>
</html>
`))

type navLink struct {
	Label string
	HRef  string
}

type page struct {
	Title  string
	Nav    []navLink
	Alerts []string
	Body   template.HTML
}

// renderPage writes the shell around a rendered body, draining any
// queued alerts into it.
func (s *Server) renderPage(w http.ResponseWriter, title string, body template.HTML) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	p := page{
		Title:  title,
		Nav:    s.nav,
		Alerts: s.flash.Drain(),
		Body:   body,
	}
	if err := shellTmpl.Execute(w, p); err != nil {
		log.Printf("web: rendering page %q: %v", title, err)
	}
}
