package screens_test

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rumahkopi/api/internal/csvexport"
	"github.com/rumahkopi/api/internal/domain"
	"github.com/rumahkopi/api/internal/listview"
	"github.com/rumahkopi/api/internal/screens"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func TestCustomerList_TotalSortSumsBothParts(t *testing.T) {
	customers := []domain.Customer{
		{Name: "Andi", OrdersTotal: dec(50000)},
		{Name: "Budi", OrdersTotal: dec(20000), ReservationsTotal: dec(40000)},
		{Name: "Citra"},
		{Name: "Dewi", ReservationsTotal: dec(55000)},
	}

	res := screens.CustomerList().Derive(customers, listview.Query{Sort: listview.ParseSort("total_desc")})

	var names []string
	for _, c := range res.Paged {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"Budi", "Dewi", "Andi", "Citra"}, names)
}

func TestCustomerList_StatusFilter(t *testing.T) {
	customers := []domain.Customer{
		{Name: "Andi"},
		{Name: "Budi", IsBlocked: true},
	}

	res := screens.CustomerList().Derive(customers, listview.Query{
		Filters: listview.Filters{"status": screens.StatusBlocked},
	})

	require.Len(t, res.Paged, 1)
	assert.Equal(t, "Budi", res.Paged[0].Name)
}

func TestMenuList_CategoryFilterResolvesByName(t *testing.T) {
	kopi := domain.Category{ID: uuid.New(), Name: "Kopi"}
	teh := domain.Category{ID: uuid.New(), Name: "Teh"}
	items := []domain.MenuItem{
		{Name: "Kopi Susu", CategoryName: "Kopi"},
		{Name: "Teh Tarik", CategoryName: "Teh"},
		{Name: "Roti Bakar", CategoryName: ""}, // category was deleted
	}
	spec := screens.MenuList([]domain.Category{kopi, teh})

	res := spec.Derive(items, listview.Query{Filters: listview.Filters{"category": kopi.ID.String()}})
	require.Len(t, res.Paged, 1)
	assert.Equal(t, "Kopi Susu", res.Paged[0].Name)

	res = spec.Derive(items, listview.Query{Filters: listview.Filters{"category": uuid.NewString()}})
	assert.Empty(t, res.Paged)
	assert.Equal(t, 0, res.TotalPages)

	res = spec.Derive(items, listview.Query{Filters: listview.Filters{"category": listview.All}})
	assert.Len(t, res.Paged, 3)
}

func TestReservationList_DateSortUsesClock(t *testing.T) {
	day := time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC)
	rs := []domain.Reservation{
		{Code: "A", ReservationDate: day, ReservationTime: "19:00"},
		{Code: "B", ReservationDate: day, ReservationTime: "10:30"},
		{Code: "C"}, // no date
		{Code: "D", ReservationDate: day.AddDate(0, 0, -1), ReservationTime: "21:00"},
	}

	res := screens.ReservationList().Derive(rs, listview.Query{Sort: listview.ParseSort("date_asc")})

	var codes []string
	for _, r := range res.Paged {
		codes = append(codes, r.Code)
	}
	assert.Equal(t, []string{"C", "D", "B", "A"}, codes)
}

func TestOrderList_SearchItemsSummary(t *testing.T) {
	orders := []domain.Order{
		{Code: "ORD-20261019-001", ItemsSummary: "2x Kopi Susu"},
		{Code: "ORD-20261019-002", ItemsSummary: "1x Teh Tarik"},
	}

	res := screens.OrderList().Derive(orders, listview.Query{Search: "KOPI"})

	require.Len(t, res.Paged, 1)
	assert.Equal(t, "ORD-20261019-001", res.Paged[0].Code)
}

func TestCustomerColumns_Export(t *testing.T) {
	customers := []domain.Customer{
		{Name: "Budi, S.Kom", Email: "budi@example.com", OrderCount: 3, OrdersTotal: dec(150000), ReservationsTotal: dec(100000)},
	}

	var buf bytes.Buffer
	require.NoError(t, csvexport.Write(&buf, screens.CustomerColumns(), customers))

	rows, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(buf.String(), csvexport.BOM))).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "No", rows[0][0])
	assert.Equal(t, "1", rows[1][0])
	assert.Equal(t, "Budi, S.Kom", rows[1][1])
	assert.Equal(t, "3", rows[1][4])
	assert.Equal(t, "Rp 250.000", rows[1][5])
	assert.Equal(t, "Aktif", rows[1][6])
}
