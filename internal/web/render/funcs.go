package render

import (
	"html/template"
	"strings"
	"time"

	"github.com/edvin/swiftwheelz/internal/model"
	"github.com/edvin/swiftwheelz/internal/money"
)

var funcs = template.FuncMap{
	"money":    money.Format,
	"date":     formatDate,
	"roleName": func(r model.Role) string { return r.DisplayName() },
	"hasPrefix": func(s, prefix string) bool {
		return strings.HasPrefix(s, prefix)
	},
	"year": func() int { return time.Now().Year() },
}

// formatDate renders backend dates (YYYY-MM-DD) and timestamps as "2 Jan 2006".
func formatDate(v any) string {
	switch d := v.(type) {
	case time.Time:
		if d.IsZero() {
			return ""
		}
		return d.Format("2 Jan 2006")
	case string:
		if d == "" {
			return ""
		}
		if t, err := time.Parse(model.DateLayout, d); err == nil {
			return t.Format("2 Jan 2006")
		}
		if t, err := time.Parse(time.RFC3339, d); err == nil {
			return t.Format("2 Jan 2006")
		}
		return d
	default:
		return ""
	}
}
