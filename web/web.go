// Package web bundles the HTML templates and static assets into the binary.
package web

import (
	"embed"
	"io/fs"
	"net/http"
	"strconv"

	html "github.com/gofiber/template/html/v2"

	"github.com/jms1308/kitobim/internal/catalog"
	"github.com/jms1308/kitobim/internal/domain"
)

//go:embed templates static
var files embed.FS

// Layout wraps every page.
const Layout = "layouts/main"

// Engine builds the template engine with the view helpers registered.
func Engine() *html.Engine {
	sub, err := fs.Sub(files, "templates")
	if err != nil {
		panic(err)
	}
	engine := html.NewFileSystem(http.FS(sub), ".html")
	engine.AddFuncMap(map[string]interface{}{
		"price":      domain.FormatPrice,
		"date":       domain.Date,
		"conditions": domain.Conditions,
		"categories": func() []string { return domain.Categories },
		"cities":     func() []string { return domain.Cities },
		"pageURL": func(f catalog.Filter, page int) string {
			return catalog.URL("/catalog", f, page)
		},
		"fieldErr": func(errs map[string]string, field string) string {
			return errs[field]
		},
		"int64": func(p *int64) string {
			if p == nil {
				return ""
			}
			return strconv.FormatInt(*p, 10)
		},
	})
	return engine
}

// Static serves the embedded assets; mount it under /static.
func Static() http.FileSystem {
	sub, err := fs.Sub(files, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}
