package restlog

import (
	"fmt"
	"html"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"github.com/jinzhu/now"
)

const (
	// DefaultCollapseThreshold is the body length, in code points, above which a
	// response body is shown collapsed.
	DefaultCollapseThreshold = 500

	entryStyle        = `<style type="text/css">div{margin: 10px 0;}</style>`
	divider           = `<hr style="margin: 20px 0">`
	documentStart     = `<html><head><meta charset="utf-8"></head><body>`
	documentEnd       = `</body></html>`
	displayTimeFormat = "2006-01-02 15:04:05"
)

// Renderer turns log entries into HTML. The zero value uses the default threshold
// and shows times in UTC.
type Renderer struct {
	CollapseThreshold int
	Location          *time.Location
}

func (r Renderer) threshold() int {
	if r.CollapseThreshold <= 0 {
		return DefaultCollapseThreshold
	}
	return r.CollapseThreshold
}

func (r Renderer) location() *time.Location {
	if r.Location == nil {
		return time.UTC
	}
	return r.Location
}

// RenderEntry returns the HTML fragment for one entry. It depends only on the entry
// and the Renderer settings.
func (r Renderer) RenderEntry(e LogEntry) string {
	body := FormatBody(e.ResponseBody)

	var b strings.Builder
	b.WriteString(entryStyle)
	fmt.Fprintf(&b, `<div style="color: grey">%s</div>`, html.EscapeString(r.formatDate(e.Date)))
	fmt.Fprintf(&b, `<div><b>%s</b></div>`, html.EscapeString(e.URL))
	fmt.Fprintf(&b, `<pre>%s</pre>`, html.EscapeString(e.Params.Text()))
	fmt.Fprintf(&b, `<div><b>Response: %s</b>`, html.EscapeString(StatusDescription(e.StatusCode)))
	if utf8.RuneCountInString(body) > r.threshold() {
		fmt.Fprintf(&b, `<details><summary>Response body (%s)</summary><pre>%s</pre></details>`,
			humanize.Bytes(uint64(len(e.ResponseBody))), body)
	} else {
		fmt.Fprintf(&b, `<pre>%s</pre>`, body)
	}
	b.WriteString(`</div>`)
	return b.String()
}

// RenderDocument builds the complete log: the header, one block per entry in order,
// and the failure message last, each followed by a divider.
func (r Renderer) RenderDocument(header string, entries []LogEntry, failure string) string {
	var b strings.Builder
	b.WriteString(documentStart)
	writeBlock := func(block string) {
		b.WriteString(block)
		b.WriteString(divider)
	}
	writeBlock(header)
	for _, e := range entries {
		writeBlock(r.RenderEntry(e))
	}
	writeBlock(RenderFailure(failure))
	b.WriteString(documentEnd)
	return b.String()
}

// RenderFailure returns the block for a test's failure message, escaped so that it
// reads exactly as it was reported.
func RenderFailure(message string) string {
	return "<pre>Fail:" + html.EscapeString(message) + "</pre>"
}

// StatusDescription returns the status code with its reason phrase, as in "404 (Not Found)".
func StatusDescription(code int) string {
	if text := http.StatusText(code); text != "" {
		return fmt.Sprintf("%d (%s)", code, text)
	}
	return strconv.Itoa(code)
}

func (r Renderer) formatDate(date string) string {
	t, ok := parseDate(date, r.location())
	if !ok {
		return date
	}
	return t.In(r.location()).Format(displayTimeFormat)
}

func parseDate(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := http.ParseTime(s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := now.ParseInLocation(loc, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}
