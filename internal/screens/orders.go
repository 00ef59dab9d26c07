package screens

import (
	"time"

	"github.com/rumahkopi/api/internal/csvexport"
	"github.com/rumahkopi/api/internal/domain"
	"github.com/rumahkopi/api/internal/enum"
	"github.com/rumahkopi/api/internal/format"
	"github.com/rumahkopi/api/internal/listview"
	"github.com/shopspring/decimal"
)

// OrderList searches code, customer and item summary, and filters by status
// and order type. Newest orders come first by default.
func OrderList() listview.Spec[domain.Order] {
	return listview.Spec[domain.Order]{
		Search: []func(domain.Order) string{
			func(o domain.Order) string { return o.Code },
			func(o domain.Order) string { return o.CustomerName },
			func(o domain.Order) string { return o.CustomerPhone },
			func(o domain.Order) string { return o.ItemsSummary },
		},
		Filters: map[string]listview.Filter[domain.Order]{
			"status":     {Field: func(o domain.Order) string { return o.Status }},
			"order_type": {Field: func(o domain.Order) string { return o.OrderType }},
		},
		Sorts: map[string]listview.Comparator[domain.Order]{
			"date":     listview.ByTime(func(o domain.Order) time.Time { return o.CreatedAt }),
			"total":    listview.ByAmount(func(o domain.Order) decimal.Decimal { return o.Total }),
			"customer": listview.ByText(func(o domain.Order) string { return o.CustomerName }),
			"code":     listview.ByText(func(o domain.Order) string { return o.Code }),
		},
		DateField:   func(o domain.Order) time.Time { return o.CreatedAt },
		DefaultSort: newestFirst,
	}
}

func OrderColumns() []csvexport.Column[domain.Order] {
	return []csvexport.Column[domain.Order]{
		rowNumber[domain.Order](),
		{Header: "Kode", Value: func(_ int, o domain.Order) string { return o.Code }},
		{Header: "Pelanggan", Value: func(_ int, o domain.Order) string { return o.CustomerName }},
		{Header: "Telepon", Value: func(_ int, o domain.Order) string { return o.CustomerPhone }},
		{Header: "Tipe", Value: func(_ int, o domain.Order) string { return enum.OrderTypeLabel(o.OrderType) }},
		{Header: "Meja", Value: func(_ int, o domain.Order) string { return domain.Text(o.TableNumber) }},
		{Header: "Item", Value: func(_ int, o domain.Order) string { return o.ItemsSummary }},
		{Header: "Total", Value: func(_ int, o domain.Order) string { return format.Rupiah(o.Total) }},
		{Header: "Status", Value: func(_ int, o domain.Order) string { return enum.StatusLabel(o.Status) }},
		{Header: "Tanggal", Value: func(_ int, o domain.Order) string { return format.DateTime(o.CreatedAt) }},
	}
}
