package common

import (
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// Default separator widths
	DefaultWidth = 80
	WideWidth    = 100
)

// Report writes boxed plain-text output for the command-line tools
type Report struct {
	w     io.Writer
	width int
}

func NewReport(w io.Writer, width int) *Report {
	if width <= 0 {
		width = DefaultWidth
	}
	return &Report{w: w, width: width}
}

func (r *Report) line(s string) {
	fmt.Fprintln(r.w, s)
}

// Header prints the title between two rules
func (r *Report) Header(title string) {
	r.line("\n" + strings.Repeat("=", r.width))
	r.line(title)
	r.line(strings.Repeat("=", r.width))
}

func (r *Report) Footer(message string) {
	r.line("\n" + strings.Repeat("=", r.width))
	r.line(message)
	r.line(strings.Repeat("=", r.width) + "\n")
}

// Section opens a boxed sub-section for one subject, e.g. one user
func (r *Report) Section(title string) {
	r.line("┌─ " + title)
}

// Item prints one line of the current section. The last item closes the box.
func (r *Report) Item(isLast bool, format string, args ...any) {
	r.line(BoxPrefix(isLast) + fmt.Sprintf(format, args...))
}

// Detail prints an indented continuation of the preceding item
func (r *Report) Detail(isLast bool, format string, args ...any) {
	r.line(BoxDetailPrefix(isLast) + "   " + fmt.Sprintf(format, args...))
}

func (r *Report) Separator() {
	r.line("├" + strings.Repeat("─", r.width-1))
}

// BoxPrefix returns the box-drawing prefix for list items
func BoxPrefix(isLast bool) string {
	if isLast {
		return "└  "
	}
	return "│  "
}

// BoxDetailPrefix returns the prefix for detail lines under list items
func BoxDetailPrefix(isLast bool) string {
	if isLast {
		return "   "
	}
	return "│  "
}

// FormatAmount renders a balance the way the API does, with two places
func FormatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}

// FormatSigned renders an adjustment with an explicit sign
func FormatSigned(amount decimal.Decimal) string {
	if amount.IsPositive() {
		return "+" + amount.StringFixed(2)
	}
	return amount.StringFixed(2)
}
