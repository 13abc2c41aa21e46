package restlog

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"html"
	"io"
	"strings"

	"github.com/tidwall/pretty"
)

// FormatBody prepares a response body for display: JSON is pretty-printed, XML is
// escaped so that its markup shows as text, and anything else is left as it is.
func FormatBody(body string) string {
	switch {
	case isJSON(body):
		return prettyJSON(body)
	case isXML(body):
		return html.EscapeString(body)
	default:
		return body
	}
}

func isJSON(s string) bool {
	return json.Valid([]byte(s))
}

func prettyJSON(s string) string {
	return strings.TrimRight(string(pretty.Pretty([]byte(s))), "\n")
}

// isXML reports whether s is a well-formed XML document with a single root element.
func isXML(s string) bool {
	if strings.TrimSpace(s) == "" {
		return false
	}
	d := xml.NewDecoder(strings.NewReader(s))
	depth, roots := 0, 0
	for {
		tok, err := d.Token()
		if err == io.EOF {
			return roots == 1 && depth == 0
		}
		if err != nil {
			return false
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if depth == 0 {
				roots++
				if roots > 1 {
					return false
				}
			}
			depth++
		case xml.EndElement:
			depth--
		case xml.CharData:
			if depth == 0 && len(bytes.TrimSpace(t)) > 0 {
				return false
			}
		}
	}
}
