package markup

import (
	"fmt"
	"html"
	"strings"
)

// ReportOptions controls the styled document produced for PDF rendering.
type ReportOptions struct {
	Title             string
	RFPFileName       string
	IncludeBackground bool
}

const reportCSS = `
body { font-family: "Segoe UI", Helvetica, Arial, sans-serif; color: #1f2933; margin: 48px 56px; line-height: 1.55; }
h1 { font-size: 26px; border-bottom: 2px solid #2f5fa8; padding-bottom: 8px; }
h2 { font-size: 20px; color: #2f5fa8; margin-top: 28px; }
h3 { font-size: 16px; margin-top: 20px; }
table { border-collapse: collapse; width: 100%; margin: 12px 0; }
th, td { border: 1px solid #cbd2d9; padding: 6px 10px; text-align: left; font-size: 13px; }
th { background: #eef2f7; }
ul, ol { padding-left: 22px; }
code { background: #f1f3f5; padding: 1px 4px; border-radius: 3px; font-size: 12px; }
.report-meta { color: #52606d; font-size: 12px; margin-bottom: 24px; }
`

const reportBackgroundCSS = `
body { background: linear-gradient(180deg, #f8fafc 0%, #eef2f7 100%); }
`

// ReportHTML wraps a rendered report fragment in a complete styled document
// suitable for the PDF rendering service.
func ReportHTML(report string, opts ReportOptions) string {
	title := opts.Title
	if title == "" {
		title = "RFP Analysis Report"
	}

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&b, "<title>%s</title>\n", html.EscapeString(title))
	b.WriteString("<style>")
	b.WriteString(reportCSS)
	if opts.IncludeBackground {
		b.WriteString(reportBackgroundCSS)
	}
	b.WriteString("</style>\n</head>\n<body>\n")
	fmt.Fprintf(&b, "<h1>%s</h1>\n", html.EscapeString(title))
	if opts.RFPFileName != "" {
		fmt.Fprintf(&b, "<div class=\"report-meta\">Source document: %s</div>\n", html.EscapeString(opts.RFPFileName))
	}
	b.WriteString(ToHTML(report))
	b.WriteString("\n</body>\n</html>\n")
	return b.String()
}
