package merge

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// xmlReplacer escapes markup and maps line structure onto ODF text elements.
var xmlReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
	"\r\n", "<text:line-break/>",
	"\n", "<text:line-break/>",
	"\t", "<text:tab/>",
)

func defaultFuncs() template.FuncMap {
	funcs := sprig.HermeticTxtFuncMap()
	funcs["xml"] = xmlText
	return funcs
}

// xmlText renders v as ODF text content.
func xmlText(v any) string {
	if v == nil {
		return ""
	}
	var s string
	switch t := v.(type) {
	case string:
		s = t
	case []byte:
		s = string(t)
	default:
		s = fmt.Sprint(v)
	}
	s = strings.Map(func(r rune) rune {
		// XML 1.0 forbids most C0 controls
		if r < 0x20 && r != '\n' && r != '\r' && r != '\t' {
			return -1
		}
		return r
	}, s)
	return xmlReplacer.Replace(s)
}
