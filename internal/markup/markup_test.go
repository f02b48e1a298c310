package markup

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToHTML(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"heading 1", "# Title", "<h1>Title</h1>"},
		{"heading 2", "## Section", "<h2>Section</h2>"},
		{"heading 4", "#### Deep", "<h4>Deep</h4>"},
		{"paragraph", "Just text.", "<p>Just text.</p>"},
		{"bold", "a **bold** word", "<p>a <strong>bold</strong> word</p>"},
		{"italic", "an *italic* word", "<p>an <em>italic</em> word</p>"},
		{"inline code", "run `go test` now", "<p>run <code>go test</code> now</p>"},
		{"escaping", "1 < 2 & 3 > 2", "<p>1 &lt; 2 &amp; 3 &gt; 2</p>"},
		{
			"unordered list",
			"- one\n- two",
			"<ul>\n<li>one</li>\n<li>two</li>\n</ul>",
		},
		{
			"ordered list",
			"1. first\n2. second",
			"<ol>\n<li>first</li>\n<li>second</li>\n</ol>",
		},
		{
			"list terminated by blank line",
			"- one\n\ntext",
			"<ul>\n<li>one</li>\n</ul>\n<p>text</p>",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToHTML(tt.input))
		})
	}
}

func TestToHTMLTable(t *testing.T) {
	input := strings.Join([]string{
		"| Role | Count |",
		"| --- | --- |",
		"| Backend | 2 |",
		"| QA | 1 |",
	}, "\n")

	got := ToHTML(input)
	assert.Contains(t, got, "<thead><tr><th>Role</th><th>Count</th></tr></thead>")
	assert.Contains(t, got, "<tr><td>Backend</td><td>2</td></tr>")
	assert.Contains(t, got, "<tr><td>QA</td><td>1</td></tr>")
	assert.NotContains(t, got, "---")
}

func TestToHTMLIsDeterministic(t *testing.T) {
	input := "# T\n\n- a\n- b\n\n| x |\n| - |\n| 1 |"
	assert.Equal(t, ToHTML(input), ToHTML(input))
}

func TestToHTMLWindowsLineEndings(t *testing.T) {
	assert.Equal(t, "<h1>Title</h1>\n<p>Body</p>", ToHTML("# Title\r\nBody"))
}

func TestReportHTML(t *testing.T) {
	got := ReportHTML("## Summary\nAll good.", ReportOptions{
		Title:       "ACME Analysis",
		RFPFileName: "acme<rfp>.pdf",
	})

	assert.True(t, strings.HasPrefix(got, "<!DOCTYPE html>"))
	assert.Contains(t, got, "<title>ACME Analysis</title>")
	assert.Contains(t, got, "<h1>ACME Analysis</h1>")
	assert.Contains(t, got, "Source document: acme&lt;rfp&gt;.pdf")
	assert.Contains(t, got, "<h2>Summary</h2>")
	assert.NotContains(t, got, "linear-gradient")
}

func TestReportHTMLDefaults(t *testing.T) {
	got := ReportHTML("text", ReportOptions{IncludeBackground: true})
	assert.Contains(t, got, "<title>RFP Analysis Report</title>")
	assert.Contains(t, got, "linear-gradient")
}
