package presenter

import (
	"embed"
	"html/template"
	"io"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(template.New("page.html").ParseFS(templateFS, "templates/*.html"))

// View is everything the page renders for one session.
type View struct {
	Contexts []string
	Context  string
	Term     string
	Loading  bool
	Error    string
	Detail   *Display
	Heading  string
	Cards    []Display
	Notice   string
}

// RenderPage writes the full HTML page.
func RenderPage(w io.Writer, v View) error {
	return pageTemplate.ExecuteTemplate(w, "page.html", v)
}

// RenderResults writes only the results fragment.
func RenderResults(w io.Writer, v View) error {
	return pageTemplate.ExecuteTemplate(w, "results", v)
}
