// Package format renders money and dates with id-ID conventions: the Rp
// symbol without decimals, "." as the thousands separator, and day-first
// dates in Asia/Jakarta.
package format

import (
	"strconv"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	jakartaOnce sync.Once
	jakarta     *time.Location
)

// Jakarta returns the Asia/Jakarta location, falling back to a fixed UTC+7
// zone when tzdata is unavailable.
func Jakarta() *time.Location {
	jakartaOnce.Do(func() {
		loc, err := time.LoadLocation("Asia/Jakarta")
		if err != nil {
			loc = time.FixedZone("WIB", 7*3600)
		}
		jakarta = loc
	})
	return jakarta
}

// Rupiah formats an amount as "Rp 1.250.000", rounded to whole rupiah.
func Rupiah(d decimal.Decimal) string {
	r := d.Round(0)
	p := message.NewPrinter(language.Indonesian)
	s := "Rp " + p.Sprintf("%d", r.Abs().IntPart())
	if r.IsNegative() {
		return "-" + s
	}
	return s
}

var monthNames = [...]string{
	"Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember",
}

// Date formats t as dd/mm/yyyy in Jakarta time. Zero times render as "-".
func Date(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.In(Jakarta()).Format("02/01/2006")
}

// LongDate formats t as "19 Oktober 2026".
func LongDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	t = t.In(Jakarta())
	return strconv.Itoa(t.Day()) + " " + monthNames[t.Month()-1] + " " + strconv.Itoa(t.Year())
}

// DateTime formats t as "19/10/2026 14.30".
func DateTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.In(Jakarta()).Format("02/01/2006 15.04")
}
