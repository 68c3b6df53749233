// Package export renders catalog records as CSV and optionally archives each
// rendered export to durable storage.
package export

import (
	"strings"

	"resourcebank/pkg/domain"
)

const (
	// Filename is the download name offered for an export.
	Filename = "banque_ressources.csv"
	// ContentType is the media type of ToCSV output.
	ContentType = "text/csv"

	competencyJoin = "; "
)

var header = []string{"Title", "Source", "Linked competencies", "Theme", "Type", "Format", "Link"}

// Header returns the CSV header cells.
func Header() []string {
	out := make([]string, len(header))
	copy(out, header)
	return out
}

// ToCSV renders records after a header row. Every cell is wrapped in double
// quotes verbatim: embedded quotes are not escaped, so the output is not
// RFC 4180 for such values. Rows are joined by "\n" with no trailing newline.
func ToCSV(records []domain.Resource) string {
	var b strings.Builder
	writeRow(&b, header)
	for _, r := range records {
		b.WriteByte('\n')
		writeRow(&b, []string{
			r.Title,
			r.Source,
			strings.Join(r.Competencies, competencyJoin),
			r.Theme,
			r.Type,
			r.Format,
			r.Link,
		})
	}
	return b.String()
}

func writeRow(b *strings.Builder, cells []string) {
	for i, c := range cells {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(c)
		b.WriteByte('"')
	}
}
