package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/rumahkopi/api/internal/csvexport"
	"github.com/rumahkopi/api/internal/format"
	"github.com/rumahkopi/api/internal/listview"
	"github.com/rumahkopi/api/internal/logger"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

// Query parameters with a fixed meaning; every other parameter is treated
// as a filter and ignored by lists that do not define it.
var reservedParams = map[string]bool{
	"search":     true,
	"sort":       true,
	"page":       true,
	"page_size":  true,
	"start_date": true,
	"end_date":   true,
}

const maxPageSize = 100

// parseListQuery reads a list screen's state from the URL:
// ?search=&sort=date_desc&page=2&page_size=10&status=pending&start_date=&end_date=
func parseListQuery(r *http.Request, now time.Time) (listview.Query, error) {
	v := r.URL.Query()
	q := listview.Query{
		Search:  v.Get("search"),
		Sort:    listview.ParseSort(v.Get("sort")),
		Filters: listview.Filters{},
	}
	for name := range v {
		if !reservedParams[name] {
			q.Filters[name] = v.Get(name)
		}
	}

	if s := v.Get("page"); s != "" {
		page, err := strconv.Atoi(s)
		if err != nil {
			return q, fmt.Errorf("invalid page")
		}
		q.Page = page
	}
	if s := v.Get("page_size"); s != "" {
		size, err := strconv.Atoi(s)
		if err != nil || size < 1 {
			return q, fmt.Errorf("invalid page_size")
		}
		q.PageSize = min(size, maxPageSize)
	}

	rng, err := parseDateRange(r, now)
	if err != nil {
		return q, err
	}
	q.Range = rng
	return q, nil
}

// parseDateRange reads start_date / end_date (YYYY-MM-DD, Asia/Jakarta).
// It returns nil when neither is set. A missing start means the end day; a
// missing end means today. The range is validated before any store call.
func parseDateRange(r *http.Request, now time.Time) (*listview.DateRange, error) {
	startStr := r.URL.Query().Get("start_date")
	endStr := r.URL.Query().Get("end_date")
	if startStr == "" && endStr == "" {
		return nil, nil
	}

	loc := format.Jakarta()
	today := now.In(loc)
	end := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, loc)
	if endStr != "" {
		t, err := time.ParseInLocation(dateLayout, endStr, loc)
		if err != nil {
			return nil, fmt.Errorf("invalid end_date format: %w", err)
		}
		end = t
	}
	start := end
	if startStr != "" {
		t, err := time.ParseInLocation(dateLayout, startStr, loc)
		if err != nil {
			return nil, fmt.Errorf("invalid start_date format: %w", err)
		}
		start = t
	}

	rng := listview.DateRange{Start: start, End: end}
	if err := rng.Validate(now); err != nil {
		return nil, err
	}
	return &rng, nil
}

// listResponse is the JSON shape of every admin list.
type listResponse[T any] struct {
	listview.Result[T]
	Sort  string         `json:"sort"`
	Pager listview.Pager `json:"pager"`
}

// serveList derives the requested page of rows and writes it.
func serveList[T any](w http.ResponseWriter, q listview.Query, spec listview.Spec[T], rows []T) {
	if rows == nil {
		rows = []T{}
	}
	res := spec.Derive(rows, q)
	sort := q.Sort
	if sort.Field == "" {
		sort = spec.DefaultSort
	}
	writeJSON(w, http.StatusOK, listResponse[T]{
		Result: res,
		Sort:   sort.String(),
		Pager:  listview.NewPager(res.Page, res.TotalPages, listview.DefaultMaxVisible),
	})
}

// serveExport writes every filtered and sorted row, ignoring pagination.
func serveExport[T any](w http.ResponseWriter, r *http.Request, entity string, now time.Time, q listview.Query, spec listview.Spec[T], cols []csvexport.Column[T], rows []T) {
	res := spec.Derive(rows, q)
	if err := csvexport.Serve(w, entity, now.In(format.Jakarta()), cols, res.Filtered); err != nil {
		// Headers are already sent; the client sees a truncated file.
		logger.Global().WithComponent("handler").Error("export failed",
			zap.String("entity", entity), zap.String("path", r.URL.Path), zap.Error(err))
	}
}
