package screens

import (
	"strconv"
	"time"

	"github.com/rumahkopi/api/internal/csvexport"
	"github.com/rumahkopi/api/internal/domain"
	"github.com/rumahkopi/api/internal/enum"
	"github.com/rumahkopi/api/internal/format"
	"github.com/rumahkopi/api/internal/listview"
	"github.com/shopspring/decimal"
)

// scheduledAt combines the reservation date with its optional clock time.
func scheduledAt(r domain.Reservation) time.Time {
	return listview.WithClock(r.ReservationDate, r.ReservationTime)
}

// ReservationList filters by status and package. The "date" sort orders by
// the scheduled date and time, not by booking time.
func ReservationList() listview.Spec[domain.Reservation] {
	return listview.Spec[domain.Reservation]{
		Search: []func(domain.Reservation) string{
			func(r domain.Reservation) string { return r.Code },
			func(r domain.Reservation) string { return r.CustomerName },
			func(r domain.Reservation) string { return r.CustomerPhone },
			func(r domain.Reservation) string { return r.PackageName },
		},
		Filters: map[string]listview.Filter[domain.Reservation]{
			"status": {Field: func(r domain.Reservation) string { return r.Status }},
			"package": {Field: func(r domain.Reservation) string {
				if r.PackageID == nil {
					return ""
				}
				return r.PackageID.String()
			}},
		},
		Sorts: map[string]listview.Comparator[domain.Reservation]{
			"date":     listview.ByTime(scheduledAt),
			"created":  listview.ByTime(func(r domain.Reservation) time.Time { return r.CreatedAt }),
			"total":    listview.ByAmount(func(r domain.Reservation) decimal.Decimal { return r.Total }),
			"guests":   listview.ByInt(func(r domain.Reservation) int64 { return int64(r.Guests) }),
			"customer": listview.ByText(func(r domain.Reservation) string { return r.CustomerName }),
		},
		DateField:   func(r domain.Reservation) time.Time { return r.ReservationDate },
		DefaultSort: newestFirst,
	}
}

func ReservationColumns() []csvexport.Column[domain.Reservation] {
	return []csvexport.Column[domain.Reservation]{
		rowNumber[domain.Reservation](),
		{Header: "Kode", Value: func(_ int, r domain.Reservation) string { return r.Code }},
		{Header: "Pelanggan", Value: func(_ int, r domain.Reservation) string { return r.CustomerName }},
		{Header: "Telepon", Value: func(_ int, r domain.Reservation) string { return r.CustomerPhone }},
		{Header: "Paket", Value: func(_ int, r domain.Reservation) string { return r.PackageName }},
		{Header: "Tanggal", Value: func(_ int, r domain.Reservation) string { return format.Date(r.ReservationDate) }},
		{Header: "Jam", Value: func(_ int, r domain.Reservation) string { return r.ReservationTime }},
		{Header: "Tamu", Value: func(_ int, r domain.Reservation) string { return strconv.Itoa(int(r.Guests)) }},
		{Header: "Total", Value: func(_ int, r domain.Reservation) string { return format.Rupiah(r.Total) }},
		{Header: "Status", Value: func(_ int, r domain.Reservation) string { return enum.StatusLabel(r.Status) }},
	}
}
