package report

import (
	"html/template"
	"io"
)

var page = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>WorkLog {{.Day.Format "2006-01-02"}}</title>
<style>
body { font-family: -apple-system, "Segoe UI", sans-serif; margin: 2rem; color: #222; }
header { border-bottom: 1px solid #ddd; margin-bottom: 1rem; }
nav a { margin-right: .75rem; }
section { margin-top: 2rem; }
.grid { display: flex; flex-wrap: wrap; gap: 1rem; }
figure { margin: 0; width: 320px; }
figure img { width: 100%; border: 1px solid #ccc; }
figcaption { font-size: .85rem; color: #666; }
</style>
</head>
<body>
<header>
<h1>WorkLog for {{.Day.Format "Monday, January 2, 2006"}}</h1>
<p class="summary">{{.Total}} screenshots in {{len .Buckets}} hours. Generated {{.GeneratedAt.Format "2006-01-02 15:04:05"}}.</p>
<nav>{{range .Buckets}}<a href="#{{.Anchor}}">{{.Label}}</a>{{end}}</nav>
</header>
{{range .Buckets}}
<section id="{{.Anchor}}">
<h2>{{.Label}} <small>({{len .Items}})</small></h2>
<div class="grid">
{{- range .Items}}
<figure><a href="{{.Href}}"><img src="{{.Href}}" alt="{{.Name}}" loading="lazy"></a><figcaption>{{.Time}}</figcaption></figure>
{{- end}}
</div>
</section>
{{end}}
</body>
</html>
`))

func render(w io.Writer, doc *Document) error {
	return page.Execute(w, doc)
}
