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

// Menu availability filter values.
const (
	Available   = "available"
	Unavailable = "unavailable"
)

// MenuList filters by category id. The id is resolved to a name through
// categories, so items whose category was deleted never match, and an id
// that is not in categories matches nothing.
func MenuList(categories []domain.Category) listview.Spec[domain.MenuItem] {
	names := make(map[string]string, len(categories))
	for _, c := range categories {
		names[c.ID.String()] = c.Name
	}
	return listview.Spec[domain.MenuItem]{
		Search: []func(domain.MenuItem) string{
			func(m domain.MenuItem) string { return m.Name },
			func(m domain.MenuItem) string { return m.Description },
			func(m domain.MenuItem) string { return m.CategoryName },
		},
		Filters: map[string]listview.Filter[domain.MenuItem]{
			"category": {
				Field: func(m domain.MenuItem) string { return m.CategoryName },
				Resolve: func(id string) (string, bool) {
					name, ok := names[id]
					return name, ok
				},
			},
			"availability": {Field: func(m domain.MenuItem) string {
				if m.IsAvailable {
					return Available
				}
				return Unavailable
			}},
		},
		Sorts: map[string]listview.Comparator[domain.MenuItem]{
			"date":     listview.ByTime(func(m domain.MenuItem) time.Time { return m.CreatedAt }),
			"name":     listview.ByText(func(m domain.MenuItem) string { return m.Name }),
			"price":    listview.ByAmount(func(m domain.MenuItem) decimal.Decimal { return m.Price }),
			"category": listview.ByText(func(m domain.MenuItem) string { return m.CategoryName }),
		},
		DateField:   func(m domain.MenuItem) time.Time { return m.CreatedAt },
		DefaultSort: listview.Sort{Field: "name", Direction: listview.Asc},
	}
}

func MenuColumns() []csvexport.Column[domain.MenuItem] {
	return []csvexport.Column[domain.MenuItem]{
		rowNumber[domain.MenuItem](),
		{Header: "Nama", Value: func(_ int, m domain.MenuItem) string { return m.Name }},
		{Header: "Kategori", Value: func(_ int, m domain.MenuItem) string { return m.CategoryName }},
		{Header: "Harga", Value: func(_ int, m domain.MenuItem) string { return format.Rupiah(m.Price) }},
		{Header: "Status", Value: func(_ int, m domain.MenuItem) string { return enum.ActiveLabel(m.IsAvailable) }},
	}
}

func PackageList() listview.Spec[domain.Package] {
	return listview.Spec[domain.Package]{
		Search: []func(domain.Package) string{
			func(p domain.Package) string { return p.Name },
			func(p domain.Package) string { return p.Description },
		},
		Filters: map[string]listview.Filter[domain.Package]{
			"status": {Field: func(p domain.Package) string { return activeValue(p.IsActive) }},
		},
		Sorts: map[string]listview.Comparator[domain.Package]{
			"date":   listview.ByTime(func(p domain.Package) time.Time { return p.CreatedAt }),
			"name":   listview.ByText(func(p domain.Package) string { return p.Name }),
			"price":  listview.ByAmount(func(p domain.Package) decimal.Decimal { return p.Price }),
			"guests": listview.ByInt(func(p domain.Package) int64 { return int64(p.MaxGuests) }),
		},
		DateField:   func(p domain.Package) time.Time { return p.CreatedAt },
		DefaultSort: listview.Sort{Field: "name", Direction: listview.Asc},
	}
}

func PackageColumns() []csvexport.Column[domain.Package] {
	return []csvexport.Column[domain.Package]{
		rowNumber[domain.Package](),
		{Header: "Nama", Value: func(_ int, p domain.Package) string { return p.Name }},
		{Header: "Harga per Orang", Value: func(_ int, p domain.Package) string { return format.Rupiah(p.Price) }},
		{Header: "Min Tamu", Value: func(_ int, p domain.Package) string { return strconv.Itoa(int(p.MinGuests)) }},
		{Header: "Maks Tamu", Value: func(_ int, p domain.Package) string { return strconv.Itoa(int(p.MaxGuests)) }},
		{Header: "Status", Value: func(_ int, p domain.Package) string { return enum.ActiveLabel(p.IsActive) }},
	}
}

// ReviewList filters by the exact star rating ("1".."5").
func ReviewList() listview.Spec[domain.Review] {
	return listview.Spec[domain.Review]{
		Search: []func(domain.Review) string{
			func(r domain.Review) string { return r.CustomerName },
			func(r domain.Review) string { return r.MenuItemName },
			func(r domain.Review) string { return r.Comment },
		},
		Filters: map[string]listview.Filter[domain.Review]{
			"rating": {Field: func(r domain.Review) string { return strconv.Itoa(int(r.Rating)) }},
		},
		Sorts: map[string]listview.Comparator[domain.Review]{
			"date":   listview.ByTime(func(r domain.Review) time.Time { return r.CreatedAt }),
			"rating": listview.ByInt(func(r domain.Review) int64 { return int64(r.Rating) }),
		},
		DateField:   func(r domain.Review) time.Time { return r.CreatedAt },
		DefaultSort: newestFirst,
	}
}

func ReviewColumns() []csvexport.Column[domain.Review] {
	return []csvexport.Column[domain.Review]{
		rowNumber[domain.Review](),
		{Header: "Pelanggan", Value: func(_ int, r domain.Review) string { return r.CustomerName }},
		{Header: "Menu", Value: func(_ int, r domain.Review) string { return r.MenuItemName }},
		{Header: "Rating", Value: func(_ int, r domain.Review) string { return strconv.Itoa(int(r.Rating)) }},
		{Header: "Komentar", Value: func(_ int, r domain.Review) string { return r.Comment }},
		{Header: "Tanggal", Value: func(_ int, r domain.Review) string { return format.Date(r.CreatedAt) }},
	}
}
