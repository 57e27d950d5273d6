package clientapp

import (
	"html/template"
	"net/url"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/phillip-england/hrms/internal/forms"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const emptyValue = "—"

var printer = message.NewPrinter(language.English)

var templateFuncs = template.FuncMap{
	"formatDate":     formatDate,
	"formatDateTime": formatDateTime,
	"initials":       initials,
	"plural":         plural,
	"number":         formatNumber,
	"truncate":       truncate,
	"pathEscape":     url.PathEscape,
	"fieldError":     func(errs forms.Errors, field string) string { return errs.Get(field) },
}

var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// formatDate renders an ISO date or timestamp as "Jan 2, 2006".
func formatDate(value string) string {
	if value == "" {
		return emptyValue
	}
	if day, err := time.Parse("2006-01-02", value); err == nil {
		return day.Format("Jan 2, 2006")
	}
	if ts, ok := parseTimestamp(value); ok {
		return ts.Format("Jan 2, 2006")
	}
	return value
}

func formatDateTime(value string) string {
	if value == "" {
		return emptyValue
	}
	ts, ok := parseTimestamp(value)
	if !ok {
		return value
	}
	return ts.Format("Jan 2, 2006, 03:04 PM")
}

func parseTimestamp(value string) (time.Time, bool) {
	for _, layout := range dateTimeLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// initials takes the first letter of at most two words.
func initials(name string) string {
	var b strings.Builder
	for _, word := range strings.Fields(name) {
		r, _ := utf8.DecodeRuneInString(word)
		b.WriteRune(unicode.ToUpper(r))
		if utf8.RuneCountInString(b.String()) == 2 {
			break
		}
	}
	return b.String()
}

func formatNumber(n int) string {
	return printer.Sprintf("%d", n)
}

func plural(n int, singular, pluralForm string) string {
	word := pluralForm
	if n == 1 {
		word = singular
	}
	return printer.Sprintf("%d %s", n, word)
}

func truncate(value string, max int) string {
	if max <= 0 || utf8.RuneCountInString(value) <= max {
		return value
	}
	runes := []rune(value)
	return string(runes[:max]) + "…"
}

func rateClass(rate int) string {
	switch {
	case rate >= 80:
		return "good"
	case rate >= 60:
		return "warn"
	default:
		return "bad"
	}
}
