package view

import (
	"html/template"
	"io"
)

const printTemplateName = "print"

var printTmpl = template.Must(template.New(printTemplateName).Parse(`<!doctype html>
<html>
<head>
<meta charset="utf-8">
<title>Print Contact</title>
<style>
body { font-family: Arial, sans-serif; padding: 20px; background: white; color: black; }
.print-header { display: flex; justify-content: space-between; align-items: center; margin-bottom: 30px; }
.letterhead { font-size: 24px; font-weight: bold; }
.id-block { text-align: right; font-family: monospace; }
.id-number { font-size: 28px; letter-spacing: 6px; user-select: none; }
.bars { margin-top: 8px; display: flex; justify-content: flex-end; gap: 2px; }
.bar { width: 3px; background: black; height: 50px; }
.bar.tall { height: 90px; }
ul { list-style: none; padding: 0; }
li { margin-bottom: 8px; font-size: 16px; }
.footer { margin-top: 40px; text-align: center; font-size: 14px; color: gray; }
.page { page-break-after: always; }
.page:last-child { page-break-after: auto; }
</style>
</head>
<body>
{{- range .Pages }}
<div class="page">
  <div class="print-header">
    <div class="letterhead">{{ range $i, $l := $.Brand.Letterhead }}{{ if $i }}<br>{{ end }}{{ $l }}{{ end }}</div>
    {{- if .ShortID }}
    <div class="id-block" aria-label="Contact ID">
      <div class="id-number">{{ .ShortID }}</div>
      <div class="bars" aria-hidden="true">{{ range .Bars }}<div class="bar{{ if .Tall }} tall{{ end }}"></div>{{ end }}</div>
    </div>
    {{- end }}
  </div>
  <h2>Contact Details</h2>
  <ul>
  {{- range .Lines }}
    <li><strong>{{ .Label }}:</strong> {{ .Value }}</li>
  {{- end }}
  </ul>
  <div class="footer">{{ range $.Brand.Footer }}<p>{{ . }}</p>{{ end }}</div>
</div>
{{- end }}
{{- if .AutoPrint }}
<script>window.onload = () => window.print();</script>
{{- end }}
</body>
</html>
`))

// PrintData: данные шаблона печати.
type PrintData struct {
	Pages     []Printable
	Brand     Branding
	AutoPrint bool
}

// PrintTemplate отдаётся в gin (render.HTML).
func PrintTemplate() *template.Template { return printTmpl }

func WriteHTML(w io.Writer, data PrintData) error {
	return printTmpl.ExecuteTemplate(w, printTemplateName, data)
}
