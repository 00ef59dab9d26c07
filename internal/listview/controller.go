package listview

// Controller holds the list state of a single screen and re-derives the
// view on demand. It is owned by one view and is not safe for concurrent
// use.
type Controller[T any] struct {
	spec   Spec[T]
	source []T
	query  Query
}

// NewController starts on page 1 with no search, no filters and the
// spec's default sort.
func NewController[T any](spec Spec[T], source []T) *Controller[T] {
	return &Controller[T]{
		spec:   spec,
		source: source,
		query: Query{
			Filters:  Filters{},
			Sort:     spec.DefaultSort,
			Page:     1,
			PageSize: spec.PageSize,
		},
	}
}

// SetSource replaces the collection. The current page is kept and clamped
// on the next View.
func (c *Controller[T]) SetSource(source []T) {
	c.source = source
}

func (c *Controller[T]) SetSearch(term string) {
	c.query.Search = term
	c.query.Page = 1
}

func (c *Controller[T]) SetFilter(name, value string) {
	if c.query.Filters == nil {
		c.query.Filters = Filters{}
	}
	c.query.Filters[name] = value
	c.query.Page = 1
}

func (c *Controller[T]) SetRange(r *DateRange) {
	c.query.Range = r
	c.query.Page = 1
}

func (c *Controller[T]) SetSort(s Sort) {
	c.query.Sort = s
	c.query.Page = 1
}

func (c *Controller[T]) SetPage(page int) {
	c.query.Page = page
}

// Query returns a copy of the current state.
func (c *Controller[T]) Query() Query {
	q := c.query
	q.Filters = make(Filters, len(c.query.Filters))
	for k, v := range c.query.Filters {
		q.Filters[k] = v
	}
	return q
}

// View derives the current page and writes any page reset back into the
// controller state.
func (c *Controller[T]) View() Result[T] {
	res := c.spec.Derive(c.source, c.query)
	c.query.Page = res.Page
	return res
}

// Pager derives the view and returns its pagination window.
func (c *Controller[T]) Pager(maxVisible int) Pager {
	res := c.View()
	return NewPager(res.Page, res.TotalPages, maxVisible)
}
