package export

import (
	"errors"
	"io"
	"regexp"
	"strings"
	"time"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/q6kkhvmy6s/rsvp/internal/models"
)

var ErrNothingToExport = errors.New("no reservations to export")

// DateLayout is how timestamps appear in exports.
const DateLayout = "Mon, Jan 2, 2006, 3:04 PM"

const (
	promoterHeader  = "Promoter"
	createdAtHeader = "Created At"
	directPromoter  = "Direct"
	unknownPromoter = "Unknown"
)

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9]`)

// WriteCSV writes one column per event field, in form order, followed by the
// promoter and creation time. The header row is written bare; every data
// cell is quoted with embedded quotes doubled.
func WriteCSV(w io.Writer, ev *models.Event, rs []models.Reservation, names map[string]string, loc *time.Location) error {
	if len(rs) == 0 {
		return ErrNothingToExport
	}
	if loc == nil {
		loc = time.UTC
	}

	headers := make([]string, 0, len(ev.Fields)+2)
	for _, f := range ev.Fields {
		headers = append(headers, f.Label)
	}
	headers = append(headers, promoterHeader, createdAtHeader)

	var b strings.Builder
	b.WriteString(strings.Join(headers, ","))

	row := make([]string, 0, len(headers))
	for _, r := range rs {
		row = row[:0]
		for _, f := range ev.Fields {
			row = append(row, quote(r.FormData[f.Label]))
		}
		row = append(row, quote(promoterName(r, names)))
		row = append(row, quote(r.CreatedAt.In(loc).Format(DateLayout)))
		b.WriteByte('\n')
		b.WriteString(strings.Join(row, ","))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func promoterName(r models.Reservation, names map[string]string) string {
	if n, ok := names[r.Promoter()]; ok && n != "" {
		return n
	}
	if r.Promoter() != "" {
		return unknownPromoter
	}
	return directPromoter
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// Filename is the download name for an event's export on the given day.
func Filename(title string, now time.Time) string {
	safe := unsafeFilenameChars.ReplaceAllStringFunc(title, func(m string) string {
		r, _ := utf8.DecodeRuneInString(m)
		// one underscore per UTF-16 unit, so astral runes such as emoji give two
		n := utf16.RuneLen(r)
		if n < 1 {
			n = 1
		}
		return strings.Repeat("_", n)
	})
	return safe + "_reservations_" + now.Format("2006-01-02") + ".csv"
}
