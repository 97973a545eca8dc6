package export

import (
	"regexp"
	"strings"
	"time"

	"github.com/brightsupport/invoice-engine/calendar"
)

var (
	slugStrip = regexp.MustCompile(`[^a-z0-9\s]`)
	slugSpace = regexp.MustCompile(`\s+`)
)

// Filename builds "INV-2025-1126-0001_03Nov25-09Nov25_jane-citizen_150405.pdf".
// The range and client segments are left out when empty; now supplies the
// trailing time so repeated exports never collide within a second.
func Filename(invoiceNumber, ext string, start, end calendar.Date, clientName string, now time.Time) string {
	if ext == "" {
		ext = "pdf"
	}

	parts := []string{}
	if invoiceNumber != "" {
		parts = append(parts, invoiceNumber)
	}
	if !start.IsZero() && !end.IsZero() {
		parts = append(parts, start.Format(calendar.RangeLayout)+"-"+end.Format(calendar.RangeLayout))
	}
	if slug := Slug(clientName); slug != "" {
		parts = append(parts, slug)
	}
	parts = append(parts, now.Format("150405"))

	return strings.Join(parts, "_") + "." + strings.TrimPrefix(ext, ".")
}

// Slug lower-cases name, drops everything but letters, digits and spaces, and
// joins the words with hyphens.
func Slug(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = slugStrip.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	return slugSpace.ReplaceAllString(s, "-")
}
