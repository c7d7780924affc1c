package accounting

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Filename is deterministic in the salon name, the date range and the format.
func Filename(salonName string, start, end time.Time, format Format) string {
	kind := "factures"
	if format == FormatFEC {
		kind = "FEC"
	}
	return fmt.Sprintf("%s_%s_%s_%s.%s",
		Slug(salonName), kind, start.Format("20060102"), end.Format("20060102"), format.Extension())
}

// Slug transliterates s to lowercase ASCII words joined by hyphens.
func Slug(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	ascii, _, err := transform.String(t, s)
	if err != nil {
		ascii = s
	}

	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(ascii) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}

	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		return "salon"
	}
	return slug
}
