package adminclient

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rumahkopi/api/internal/domain"
	"github.com/rumahkopi/api/internal/enum"
	"github.com/rumahkopi/api/internal/listview"
	"github.com/rumahkopi/api/internal/screens"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

// Dashboard owns the loaded collections of the admin screens and the
// mutating actions on them. Collections are safe to read from any
// goroutine; each control allows one request at a time.
type Dashboard struct {
	client    *Client
	mutations Mutations
	now       func() time.Time

	Customers    *Collection[domain.Customer]
	Staff        *Collection[domain.StaffMember]
	Menu         *Collection[domain.MenuItem]
	Categories   *Collection[domain.Category]
	Packages     *Collection[domain.Package]
	Orders       *Collection[domain.Order]
	Reservations *Collection[domain.Reservation]
}

func NewDashboard(c *Client) *Dashboard {
	return &Dashboard{
		client:       c,
		now:          time.Now,
		Customers:    NewCollection(func(r domain.Customer) uuid.UUID { return r.ID }),
		Staff:        NewCollection(func(r domain.StaffMember) uuid.UUID { return r.ID }),
		Menu:         NewCollection(func(r domain.MenuItem) uuid.UUID { return r.ID }),
		Categories:   NewCollection(func(r domain.Category) uuid.UUID { return r.ID }),
		Packages:     NewCollection(func(r domain.Package) uuid.UUID { return r.ID }),
		Orders:       NewCollection(func(r domain.Order) uuid.UUID { return r.ID }),
		Reservations: NewCollection(func(r domain.Reservation) uuid.UUID { return r.ID }),
	}
}

// State returns the mutation state of a control.
func (d *Dashboard) State(key string) State {
	return d.mutations.State(key)
}

// Control keys for the mutating actions.
func UserBlockKey(id uuid.UUID) string { return "user:" + id.String() + ":block" }
func MenuStatusKey(id uuid.UUID) string { return "menu:" + id.String() + ":status" }
func PackageStatusKey(id uuid.UUID) string { return "package:" + id.String() + ":status" }
func PackageDeleteKey(id uuid.UUID) string { return "package:" + id.String() + ":delete" }
func ReservationKey(id uuid.UUID) string { return "reservation:" + id.String() }
func ExportKey(entity string) string { return "export:" + entity }

// mutate runs a request for one control. optimistic, when set, is applied
// before the request and returns its undo. The request is detached from
// ctx cancellation: a caller that stops waiting does not abort it, and the
// mutation always settles.
func (d *Dashboard) mutate(ctx context.Context, key string, optimistic func() func(), send func(context.Context) error) error {
	if err := d.mutations.Begin(key); err != nil {
		return err
	}

	var undo func()
	if optimistic != nil {
		undo = optimistic()
	}

	err := send(context.WithoutCancel(ctx))
	if err != nil && undo != nil {
		undo()
	}
	d.mutations.Settle(key, err)

	if err != nil {
		d.client.log.Warn("dashboard action failed", zap.String("control", key), zap.Error(err))
	}
	return err
}

// --- Loading ---

func rangeParams(rng *listview.DateRange) map[string]string {
	if rng == nil {
		return nil
	}
	return map[string]string{
		"start_date": rng.Start.Format(dateLayout),
		"end_date":   rng.End.Format(dateLayout),
	}
}

func (d *Dashboard) checkRange(op Op, rng *listview.DateRange) error {
	if rng == nil {
		return nil
	}
	if err := rng.Validate(d.now()); err != nil {
		return &Error{Op: op, Err: err}
	}
	return nil
}

func (d *Dashboard) LoadCustomers(ctx context.Context) error {
	rows, err := fetchAll[domain.Customer](ctx, d.client, OpLoad, "/admin/customers", nil)
	if err != nil {
		return err
	}
	d.Customers.Replace(rows)
	return nil
}

func (d *Dashboard) LoadStaff(ctx context.Context) error {
	rows, err := fetchAll[domain.StaffMember](ctx, d.client, OpLoad, "/admin/staff", nil)
	if err != nil {
		return err
	}
	d.Staff.Replace(rows)
	return nil
}

// LoadMenu loads the menu together with the categories its filter
// resolves against.
func (d *Dashboard) LoadMenu(ctx context.Context) error {
	var cats []domain.Category
	if err := d.client.do(ctx, OpLoad, http.MethodGet, "/categories", nil, &cats); err != nil {
		return err
	}
	rows, err := fetchAll[domain.MenuItem](ctx, d.client, OpLoad, "/admin/menu", nil)
	if err != nil {
		return err
	}
	d.Categories.Replace(cats)
	d.Menu.Replace(rows)
	return nil
}

func (d *Dashboard) LoadPackages(ctx context.Context) error {
	rows, err := fetchAll[domain.Package](ctx, d.client, OpLoad, "/admin/packages", nil)
	if err != nil {
		return err
	}
	d.Packages.Replace(rows)
	return nil
}

// LoadOrders loads all orders, or those created within rng. The range is
// checked before any request is sent.
func (d *Dashboard) LoadOrders(ctx context.Context, rng *listview.DateRange) error {
	if err := d.checkRange(OpLoad, rng); err != nil {
		return err
	}
	rows, err := fetchAll[domain.Order](ctx, d.client, OpLoad, "/admin/orders", rangeParams(rng))
	if err != nil {
		return err
	}
	d.Orders.Replace(rows)
	return nil
}

func (d *Dashboard) LoadReservations(ctx context.Context, rng *listview.DateRange) error {
	if err := d.checkRange(OpLoad, rng); err != nil {
		return err
	}
	rows, err := fetchAll[domain.Reservation](ctx, d.client, OpLoad, "/admin/reservations", rangeParams(rng))
	if err != nil {
		return err
	}
	d.Reservations.Replace(rows)
	return nil
}

// LoadMyReservations loads the signed-in customer's own reservations.
func (d *Dashboard) LoadMyReservations(ctx context.Context) error {
	var rows []domain.Reservation
	if err := d.client.do(ctx, OpLoad, http.MethodGet, "/reservations/mine", nil, &rows); err != nil {
		return err
	}
	d.Reservations.Replace(rows)
	return nil
}

// --- Views ---

func (d *Dashboard) CustomerView() *listview.Controller[domain.Customer] {
	return listview.NewController(screens.CustomerList(), d.Customers.Snapshot())
}

func (d *Dashboard) StaffView() *listview.Controller[domain.StaffMember] {
	return listview.NewController(screens.StaffList(), d.Staff.Snapshot())
}

func (d *Dashboard) MenuView() *listview.Controller[domain.MenuItem] {
	return listview.NewController(screens.MenuList(d.Categories.Snapshot()), d.Menu.Snapshot())
}

func (d *Dashboard) PackageView() *listview.Controller[domain.Package] {
	return listview.NewController(screens.PackageList(), d.Packages.Snapshot())
}

func (d *Dashboard) OrderView() *listview.Controller[domain.Order] {
	return listview.NewController(screens.OrderList(), d.Orders.Snapshot())
}

func (d *Dashboard) ReservationView() *listview.Controller[domain.Reservation] {
	return listview.NewController(screens.ReservationList(), d.Reservations.Snapshot())
}

// --- Actions ---

// ToggleUserBlock flips a customer's or staff member's block flag. The
// loaded record is patched once the server confirms.
func (d *Dashboard) ToggleUserBlock(ctx context.Context, id uuid.UUID) error {
	return d.mutate(ctx, UserBlockKey(id), nil, func(ctx context.Context) error {
		var user domain.User
		path := fmt.Sprintf("/admin/users/%s/toggle-block", id)
		if err := d.client.do(ctx, OpToggleUserBlock, http.MethodPatch, path, nil, &user); err != nil {
			return err
		}
		d.Customers.Patch(id, func(c *domain.Customer) { c.IsBlocked = user.IsBlocked })
		d.Staff.Patch(id, func(s *domain.StaffMember) { s.IsBlocked = user.IsBlocked })
		return nil
	})
}

type menuToggleResponse struct {
	Item domain.MenuItem   `json:"item"`
	Menu []domain.MenuItem `json:"menu"`
}

// ToggleMenuStatus flips an item's availability and adopts the full menu
// the server returns.
func (d *Dashboard) ToggleMenuStatus(ctx context.Context, id uuid.UUID) error {
	item, ok := d.Menu.Get(id)
	if !ok {
		return ErrNotLoaded
	}
	return d.mutate(ctx, MenuStatusKey(id), nil, func(ctx context.Context) error {
		var res menuToggleResponse
		path := fmt.Sprintf("/admin/menu/%s/toggle-status", id)
		body := map[string]bool{"is_available": !item.IsAvailable}
		if err := d.client.do(ctx, OpToggleMenuStatus, http.MethodPatch, path, body, &res); err != nil {
			return err
		}
		d.Menu.Replace(res.Menu)
		return nil
	})
}

// TogglePackageStatus flips is_active locally at once and restores it if
// the server rejects the change.
func (d *Dashboard) TogglePackageStatus(ctx context.Context, id uuid.UUID) error {
	pkg, ok := d.Packages.Get(id)
	if !ok {
		return ErrNotLoaded
	}
	active := !pkg.IsActive

	optimistic := func() func() {
		prev, _ := d.Packages.Patch(id, func(p *domain.Package) { p.IsActive = active })
		return func() {
			d.Packages.Patch(id, func(p *domain.Package) { p.IsActive = prev.IsActive })
		}
	}
	return d.mutate(ctx, PackageStatusKey(id), optimistic, func(ctx context.Context) error {
		var updated domain.Package
		path := fmt.Sprintf("/admin/packages/%s/toggle-status", id)
		if err := d.client.do(ctx, OpTogglePackage, http.MethodPatch, path, map[string]bool{"is_active": active}, &updated); err != nil {
			return err
		}
		d.Packages.Put(updated)
		return nil
	})
}

// DeletePackage removes the package locally at once and puts it back at
// its old position if the server rejects the delete.
func (d *Dashboard) DeletePackage(ctx context.Context, id uuid.UUID) error {
	if _, ok := d.Packages.Get(id); !ok {
		return ErrNotLoaded
	}

	optimistic := func() func() {
		item, index, ok := d.Packages.Remove(id)
		if !ok {
			return nil
		}
		return func() { d.Packages.Insert(index, item) }
	}
	return d.mutate(ctx, PackageDeleteKey(id), optimistic, func(ctx context.Context) error {
		path := fmt.Sprintf("/admin/packages/%s/delete", id)
		return d.client.do(ctx, OpDeletePackage, http.MethodDelete, path, nil, nil)
	})
}

// CancelReservation cancels one of the signed-in customer's pending
// reservations and records the new status once the server confirms.
func (d *Dashboard) CancelReservation(ctx context.Context, id uuid.UUID) error {
	return d.mutate(ctx, ReservationKey(id), nil, func(ctx context.Context) error {
		var res domain.Reservation
		path := fmt.Sprintf("/reservations/%s", id)
		if err := d.client.do(ctx, OpCancelReservation, http.MethodDelete, path, nil, &res); err != nil {
			return err
		}
		status := res.Status
		if status == "" {
			status = enum.ReservationStatusCancelled
		}
		d.Reservations.Patch(id, func(r *domain.Reservation) { r.Status = status })
		return nil
	})
}

// ConfirmReservation confirms a pending reservation from the dashboard.
func (d *Dashboard) ConfirmReservation(ctx context.Context, id uuid.UUID) error {
	return d.mutate(ctx, ReservationKey(id), nil, func(ctx context.Context) error {
		var res domain.Reservation
		path := fmt.Sprintf("/admin/reservations/%s/confirm", id)
		if err := d.client.do(ctx, OpConfirmReserve, http.MethodPatch, path, nil, &res); err != nil {
			return err
		}
		d.Reservations.Patch(id, func(r *domain.Reservation) { r.Status = res.Status })
		return nil
	})
}

// ExportCustomers streams the server-rendered customer CSV into w and
// returns the file name the server suggested.
func (d *Dashboard) ExportCustomers(ctx context.Context, w io.Writer) (string, error) {
	var filename string
	err := d.mutate(ctx, ExportKey(screens.Customers), nil, func(ctx context.Context) error {
		resp, err := d.client.http.R().
			SetContext(ctx).
			SetHeader("Accept", "text/csv").
			SetDoNotParseResponse(true).
			Get("/admin/customers/export")
		if err != nil {
			return &Error{Op: OpExport, Err: err}
		}
		body := resp.RawBody()
		defer body.Close()

		if resp.StatusCode() >= http.StatusBadRequest {
			return &Error{Op: OpExport, Status: resp.StatusCode(), Detail: resp.Status()}
		}
		if _, err := io.Copy(w, body); err != nil {
			return &Error{Op: OpExport, Err: fmt.Errorf("copy export: %w", err)}
		}
		filename = attachmentName(resp.Header().Get("Content-Disposition"))
		return nil
	})
	return filename, err
}

func attachmentName(disposition string) string {
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil {
		return ""
	}
	return params["filename"]
}

// Summary is the dashboard's headline numbers for a date range.
type Summary struct {
	OrderCount              int64           `json:"order_count"`
	OrderRevenue            decimal.Decimal `json:"order_revenue"`
	CancelledOrders         int64           `json:"cancelled_orders"`
	ReservationCount        int64           `json:"reservation_count"`
	ReservationRevenue      decimal.Decimal `json:"reservation_revenue"`
	NewCustomers            int64           `json:"new_customers"`
	StartDate               string          `json:"start_date"`
	EndDate                 string          `json:"end_date"`
	OrderRevenueLabel       string          `json:"order_revenue_label"`
	ReservationRevenueLabel string          `json:"reservation_revenue_label"`
}

// Summary fetches the summary for rng. An invalid range fails before any
// request is sent.
func (d *Dashboard) Summary(ctx context.Context, rng listview.DateRange) (*Summary, error) {
	if err := d.checkRange(OpSummary, &rng); err != nil {
		return nil, err
	}
	var s Summary
	req := d.client.http.R().
		SetContext(ctx).
		SetError(&apiError{}).
		SetResult(&s).
		SetQueryParams(rangeParams(&rng))
	resp, err := req.Get("/admin/summary")
	if err != nil {
		return nil, &Error{Op: OpSummary, Err: err}
	}
	if resp.IsError() {
		return nil, responseError(OpSummary, resp)
	}
	return &s, nil
}
