// Package report renders plans and shopping lists as terminal tables, a summary panel
// and CSV files.
package report

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Numbers formats counts and costs with locale digit grouping
type Numbers struct {
	p *message.Printer
}

// NewNumbers returns a formatter for locale, falling back to English when the tag
// does not parse
func NewNumbers(locale string) *Numbers {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	return &Numbers{p: message.NewPrinter(tag)}
}

// Int formats a whole number
func (n *Numbers) Int(v int) string {
	return n.p.Sprintf("%d", v)
}

// Float formats v with one decimal place
func (n *Numbers) Float(v float64) string {
	return n.p.Sprintf("%.1f", v)
}
