package dashboard

import (
	"embed"
	"io"
	"io/fs"

	template "github.com/goliatone/go-template"
)

// Renderer executes a named template with data, writing to out when given.
type Renderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
}

//go:embed templates/*.html templates/widgets/*.html
var embeddedTemplates embed.FS

// TemplateFS exposes the bundled templates rooted at the templates directory,
// e.g. "dashboard.html" and "widgets/chart.html".
func TemplateFS() fs.FS {
	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		panic(err)
	}
	return sub
}

// NewTemplateRenderer builds a go-template renderer over the bundled
// templates. Nothing is read from the working directory.
func NewTemplateRenderer() (Renderer, error) {
	return template.NewRenderer(
		template.WithFS(TemplateFS()),
		template.WithExtension(".html"),
	)
}
