package output

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/acarl005/stripansi"

	"github.com/bgricker/testreport/internal/report"
)

//go:embed templates/*.html.tmpl
var templateFS embed.FS

const reportTemplate = "report.html.tmpl"

var (
	htmlTemplate *template.Template
	htmlOnce     sync.Once
	htmlErr      error
)

func loadTemplate() (*template.Template, error) {
	htmlOnce.Do(func() {
		htmlTemplate, htmlErr = template.New(reportTemplate).Funcs(templateFuncs()).ParseFS(templateFS, "templates/"+reportTemplate)
	})
	return htmlTemplate, htmlErr
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"statusClass": statusClass,
		"stripANSI": func(s string) string {
			return strings.TrimRight(stripansi.Strip(s), "\n")
		},
		"orNA": func(s string) string {
			if s == "" {
				return report.NotAvailable
			}
			return s
		},
		"percentWidth": percentWidth,
		"deref": func(p *int) int {
			if p == nil {
				return 0
			}
			return *p
		},
	}
}

// HTMLRenderer emits the styled human readable report.
type HTMLRenderer struct {
	out io.Writer
}

// NewHTML creates an HTML renderer writing to out.
func NewHTML(out io.Writer) *HTMLRenderer {
	return &HTMLRenderer{out: out}
}

type htmlData struct {
	Report    *report.Report
	Summary   report.Summary
	Tests     []report.TestOutcome
	Timestamp string
}

// Render executes the embedded template. Absent coverage or performance
// sections are left out of the page.
func (h *HTMLRenderer) Render(r *report.Report) error {
	tmpl, err := loadTemplate()
	if err != nil {
		return fmt.Errorf("load html template: %w", err)
	}
	data := htmlData{
		Report:    r,
		Summary:   report.Summarize(r),
		Tests:     r.Tests.All(),
		Timestamp: r.Timestamp.Format(time.RFC3339),
	}
	if err := tmpl.ExecuteTemplate(h.out, reportTemplate, data); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	return nil
}

func statusClass(status report.Status) string {
	switch status {
	case report.StatusPassed, report.StatusFailed, report.StatusTimeout, report.StatusError:
		return strings.ToLower(string(status))
	default:
		return "unknown"
	}
}

// percentWidth turns "87.3%" into a bar width clamped to [0, 100].
func percentWidth(pct string) string {
	v, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(pct), "%"), 64)
	if err != nil || v < 0 {
		return "0"
	}
	if v > 100 {
		v = 100
	}
	return strconv.FormatFloat(v, 'f', 1, 64)
}
