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

// CustomerList sorts "total" by order spend plus reservation spend; either
// part may be missing.
func CustomerList() listview.Spec[domain.Customer] {
	return listview.Spec[domain.Customer]{
		Search: []func(domain.Customer) string{
			func(c domain.Customer) string { return c.Name },
			func(c domain.Customer) string { return c.Email },
			func(c domain.Customer) string { return c.Phone },
		},
		Filters: map[string]listview.Filter[domain.Customer]{
			"status": {Field: func(c domain.Customer) string { return blockedValue(c.IsBlocked) }},
		},
		Sorts: map[string]listview.Comparator[domain.Customer]{
			"date": listview.ByTime(func(c domain.Customer) time.Time { return c.CreatedAt }),
			"name": listview.ByText(func(c domain.Customer) string { return c.Name }),
			"total": listview.ByAmount(
				func(c domain.Customer) decimal.Decimal { return domain.Amount(c.OrdersTotal) },
				func(c domain.Customer) decimal.Decimal { return domain.Amount(c.ReservationsTotal) },
			),
			"orders": listview.ByInt(func(c domain.Customer) int64 { return c.OrderCount }),
		},
		DateField:   func(c domain.Customer) time.Time { return c.CreatedAt },
		DefaultSort: newestFirst,
	}
}

func CustomerColumns() []csvexport.Column[domain.Customer] {
	return []csvexport.Column[domain.Customer]{
		rowNumber[domain.Customer](),
		{Header: "Nama", Value: func(_ int, c domain.Customer) string { return c.Name }},
		{Header: "Email", Value: func(_ int, c domain.Customer) string { return c.Email }},
		{Header: "Telepon", Value: func(_ int, c domain.Customer) string { return c.Phone }},
		{Header: "Jumlah Pesanan", Value: func(_ int, c domain.Customer) string { return strconv.FormatInt(c.OrderCount, 10) }},
		{Header: "Total Belanja", Value: func(_ int, c domain.Customer) string { return format.Rupiah(c.TotalSpend()) }},
		{Header: "Status", Value: func(_ int, c domain.Customer) string { return enum.BlockedLabel(c.IsBlocked) }},
		{Header: "Bergabung", Value: func(_ int, c domain.Customer) string { return format.Date(c.CreatedAt) }},
	}
}

func StaffList() listview.Spec[domain.StaffMember] {
	return listview.Spec[domain.StaffMember]{
		Search: []func(domain.StaffMember) string{
			func(s domain.StaffMember) string { return s.Name },
			func(s domain.StaffMember) string { return s.Email },
			func(s domain.StaffMember) string { return s.Phone },
		},
		Filters: map[string]listview.Filter[domain.StaffMember]{
			"role":   {Field: func(s domain.StaffMember) string { return s.Role }},
			"status": {Field: func(s domain.StaffMember) string { return blockedValue(s.IsBlocked) }},
		},
		Sorts: map[string]listview.Comparator[domain.StaffMember]{
			"date": listview.ByTime(func(s domain.StaffMember) time.Time { return s.CreatedAt }),
			"name": listview.ByText(func(s domain.StaffMember) string { return s.Name }),
			"role": listview.ByText(func(s domain.StaffMember) string { return s.Role }),
		},
		DateField:   func(s domain.StaffMember) time.Time { return s.CreatedAt },
		DefaultSort: listview.Sort{Field: "name", Direction: listview.Asc},
	}
}

func StaffColumns() []csvexport.Column[domain.StaffMember] {
	return []csvexport.Column[domain.StaffMember]{
		rowNumber[domain.StaffMember](),
		{Header: "Nama", Value: func(_ int, s domain.StaffMember) string { return s.Name }},
		{Header: "Email", Value: func(_ int, s domain.StaffMember) string { return s.Email }},
		{Header: "Telepon", Value: func(_ int, s domain.StaffMember) string { return s.Phone }},
		{Header: "Peran", Value: func(_ int, s domain.StaffMember) string { return s.Role }},
		{Header: "Status", Value: func(_ int, s domain.StaffMember) string { return enum.BlockedLabel(s.IsBlocked) }},
		{Header: "Bergabung", Value: func(_ int, s domain.StaffMember) string { return format.Date(s.CreatedAt) }},
	}
}
