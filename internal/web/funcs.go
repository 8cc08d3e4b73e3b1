package web

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/frahmantamala/hrms-portal/internal/core/datamodel"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

func funcMap() template.FuncMap {
	return template.FuncMap{
		"pct":    Percent,
		"date":   FormatDate,
		"title":  Title,
		"lower":  strings.ToLower,
		"join":   strings.Join,
		"ms":     func(d time.Duration) int64 { return d.Milliseconds() },
		"add":    func(a, b int) int { return a + b },
		"slug":   Slug,
		"bar":    Bar,
		"hasKey": func(m map[string]int, k string) bool { _, ok := m[k]; return ok },
	}
}

// Percent formats a ratio already expressed in percent with one decimal.
func Percent(v float64) string {
	return fmt.Sprintf("%.1f", v)
}

// Bar clamps a percentage into 0..100 for progress bar widths.
func Bar(v float64) string {
	switch {
	case v < 0:
		v = 0
	case v > 100:
		v = 100
	}
	return fmt.Sprintf("%.0f%%", v)
}

func FormatDate(v interface{}) string {
	switch t := v.(type) {
	case datamodel.Time:
		if t.IsZero() {
			return "-"
		}
		return t.UTC().Format("02 Jan 2006")
	case time.Time:
		if t.IsZero() {
			return "-"
		}
		return t.UTC().Format("02 Jan 2006")
	case string:
		if t == "" {
			return "-"
		}
		return t
	}
	return "-"
}

func Title(s string) string {
	return titleCaser.String(strings.ReplaceAll(s, "_", " "))
}

// Slug turns a label like "In Progress" into a css-friendly "in-progress".
func Slug(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "-")
}
