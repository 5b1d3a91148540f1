package web

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// IndexTemplate ім'я шаблону головної сторінки
const IndexTemplate = "index.tmpl"

// Templates парсить вбудовані HTML шаблони
func Templates() (*template.Template, error) {
	return template.ParseFS(templateFS, "templates/*.tmpl")
}

// Static повертає файлову систему зі статичними файлами
func Static() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		// static вбудовується під час компіляції, тому помилка тут неможлива
		panic(err)
	}
	return http.FS(sub)
}
