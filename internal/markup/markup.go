// Package markup converts the markdown-ish text produced by the analysis
// backend into HTML fragments. The conversion is deterministic and stateless.
package markup

import (
	"fmt"
	"html"
	"regexp"
	"strings"
)

var (
	boldRe   = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	italicRe = regexp.MustCompile(`\*([^*]+)\*`)
	codeRe   = regexp.MustCompile("`([^`]+)`")
	orderedRe = regexp.MustCompile(`^\d+\.\s+`)
)

// ToHTML renders a markdown-ish fragment as HTML. Supported syntax: headings
// (#..####), bold, italic, inline code, unordered and ordered lists, tables
// and paragraphs. Unknown constructs pass through as escaped text.
func ToHTML(text string) string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	var b strings.Builder
	var list string   // "ul", "ol" or ""
	var table [][]string

	closeList := func() {
		if list != "" {
			fmt.Fprintf(&b, "</%s>\n", list)
			list = ""
		}
	}
	flushTable := func() {
		if len(table) == 0 {
			return
		}
		b.WriteString("<table>\n<thead><tr>")
		for _, cell := range table[0] {
			b.WriteString("<th>" + inline(cell) + "</th>")
		}
		b.WriteString("</tr></thead>\n<tbody>\n")
		for _, row := range table[1:] {
			b.WriteString("<tr>")
			for _, cell := range row {
				b.WriteString("<td>" + inline(cell) + "</td>")
			}
			b.WriteString("</tr>\n")
		}
		b.WriteString("</tbody>\n</table>\n")
		table = nil
	}

	for _, raw := range lines {
		line := strings.TrimRight(raw, " \t")
		trimmed := strings.TrimSpace(line)

		if isTableRow(trimmed) {
			closeList()
			if isTableSeparator(trimmed) {
				continue
			}
			table = append(table, splitTableRow(trimmed))
			continue
		}
		flushTable()

		switch {
		case trimmed == "":
			closeList()
		case strings.HasPrefix(trimmed, "#"):
			closeList()
			level := 0
			for level < 4 && level < len(trimmed) && trimmed[level] == '#' {
				level++
			}
			content := strings.TrimSpace(trimmed[level:])
			fmt.Fprintf(&b, "<h%d>%s</h%d>\n", level, inline(content), level)
		case strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* "):
			if list != "ul" {
				closeList()
				b.WriteString("<ul>\n")
				list = "ul"
			}
			fmt.Fprintf(&b, "<li>%s</li>\n", inline(trimmed[2:]))
		case orderedRe.MatchString(trimmed):
			if list != "ol" {
				closeList()
				b.WriteString("<ol>\n")
				list = "ol"
			}
			item := orderedRe.ReplaceAllString(trimmed, "")
			fmt.Fprintf(&b, "<li>%s</li>\n", inline(item))
		default:
			closeList()
			fmt.Fprintf(&b, "<p>%s</p>\n", inline(trimmed))
		}
	}
	closeList()
	flushTable()

	return strings.TrimRight(b.String(), "\n")
}

// inline escapes a line and applies inline formatting.
func inline(s string) string {
	out := html.EscapeString(s)
	out = codeRe.ReplaceAllString(out, "<code>$1</code>")
	out = boldRe.ReplaceAllString(out, "<strong>$1</strong>")
	out = italicRe.ReplaceAllString(out, "<em>$1</em>")
	return out
}

func isTableRow(line string) bool {
	return strings.HasPrefix(line, "|") && strings.HasSuffix(line, "|") && strings.Count(line, "|") >= 2
}

func isTableSeparator(line string) bool {
	inner := strings.Trim(line, "|")
	for _, cell := range strings.Split(inner, "|") {
		c := strings.TrimSpace(cell)
		if c == "" || strings.Trim(c, ":-") != "" {
			return false
		}
	}
	return true
}

func splitTableRow(line string) []string {
	inner := strings.Trim(line, "|")
	cells := strings.Split(inner, "|")
	for i := range cells {
		cells[i] = strings.TrimSpace(cells[i])
	}
	return cells
}
