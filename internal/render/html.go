package render

import (
	"fmt"
	"html/template"
	"io"

	"github.com/runnerr0/quipu/internal/sanitize"
	"github.com/runnerr0/quipu/internal/stats"
)

var pageTemplate = template.Must(template.New("page").Funcs(template.FuncMap{
	// Domains are escaped explicitly so the guarantee does not depend on
	// the template context they end up in.
	"text": func(s string) template.HTML { return template.HTML(sanitize.EscapeText(s)) },
	// Only allow-listed URLs reach here; html/template would otherwise
	// rewrite chrome-extension: URLs to #ZgotmplZ.
	"favicon":     func(s string) template.URL { return template.URL(s) },
	"placeholder": func() string { return sanitize.Placeholder },
	"isActive":    func(p Page, v stats.View) bool { return p.Active == v },
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>quipu</title>
<style>
body { font-family: -apple-system, BlinkMacSystemFont, sans-serif; margin: 0; width: 360px; }
header { padding: 12px 16px; border-bottom: 1px solid #ddd; }
.header-total { font-size: 28px; font-weight: 600; }
.segments { display: flex; gap: 4px; padding: 8px 16px; }
.segment-btn { flex: 1; text-align: center; padding: 4px; border-radius: 6px; text-decoration: none; color: inherit; }
.segment-btn.active { background: #eee; font-weight: 600; }
.tab-content { display: none; padding: 0 16px; }
.tab-content.active { display: block; }
.site-item { display: flex; align-items: center; gap: 8px; padding: 6px 0; }
.site-favicon { width: 16px; height: 16px; }
.site-favicon img { width: 16px; height: 16px; }
.site-info { flex: 1; overflow: hidden; text-overflow: ellipsis; }
.empty-state { text-align: center; color: #888; padding: 24px 0; }
.actions { display: flex; gap: 8px; padding: 12px 16px; }
</style>
</head>
<body>
<header>
<div id="current-date">{{text .DateLabel}}</div>
<div id="header-total" class="header-total">{{text .HeaderTotal}}</div>
</header>
<nav class="segments">
{{- range .Panels}}
<a class="segment-btn{{if isActive $ .View}} active{{end}}" data-tab="{{.View}}" href="?tab={{.View}}">{{text .Title}}</a>
{{- end}}
</nav>
{{- range .Panels}}
<section id="{{.View}}" class="tab-content{{if isActive $ .View}} active{{end}}">
<div id="{{.View}}-sites" class="site-count">{{text .CountLabel}}</div>
<div id="{{.View}}-list">
{{- if .Empty}}
<div class="empty-state">
<div class="empty-state-title">` + EmptyTitle + `</div>
<div class="empty-state-text">` + EmptyText + `</div>
</div>
{{- else}}
{{- range .Rows}}
<div class="site-item">
<div class="site-favicon">
{{- if .HasFavicon}}<img src="{{favicon .FaviconURL}}" alt="" onerror="this.style.display='none'; this.parentElement.textContent='{{placeholder}}'">{{else}}{{placeholder}}{{end -}}
</div>
<div class="site-info"><div class="site-name">{{text .Domain}}</div></div>
<div class="site-time">{{text .Time}}</div>
</div>
{{- end}}
{{- end}}
</div>
</section>
{{- end}}
<form class="actions" method="post" action="clear">
<a id="export-btn" href="export">Export</a>
<label><input type="checkbox" name="confirm" value="yes"> I understand this cannot be undone</label>
<button id="clear-btn" type="submit">Clear</button>
</form>
</body>
</html>
`))

// WriteHTML renders page as a standalone HTML document.
func WriteHTML(w io.Writer, page Page) error {
	if err := pageTemplate.Execute(w, page); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	return nil
}
