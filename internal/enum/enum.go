package enum

// ── State machines (CHECK constrained in DB) ──

const (
	OrderStatusPending    = "pending"
	OrderStatusConfirmed  = "confirmed"
	OrderStatusProcessing = "processing"
	OrderStatusCompleted  = "completed"
	OrderStatusCancelled  = "cancelled"
)

const (
	ReservationStatusPending   = "pending"
	ReservationStatusConfirmed = "confirmed"
	ReservationStatusCompleted = "completed"
	ReservationStatusCancelled = "cancelled"
)

// ── Borderline (CHECK constrained in DB) ──

const (
	UserRoleAdmin    = "admin"
	UserRoleStaff    = "staff"
	UserRoleCustomer = "customer"
)

const (
	OrderTypeTakeaway = "takeaway"
	OrderTypeDineIn   = "dine_in"
)

// ── Presentation labels (id-ID) ──

var statusLabels = map[string]string{
	"pending":    "Menunggu",
	"confirmed":  "Dikonfirmasi",
	"processing": "Diproses",
	"completed":  "Selesai",
	"cancelled":  "Dibatalkan",
}

var orderTypeLabels = map[string]string{
	OrderTypeTakeaway: "Bawa Pulang",
	OrderTypeDineIn:   "Makan di Tempat",
}

// StatusLabel returns the Indonesian label for an order or reservation status.
// Unknown statuses are returned unchanged.
func StatusLabel(status string) string {
	if l, ok := statusLabels[status]; ok {
		return l
	}
	return status
}

// OrderTypeLabel returns the Indonesian label for an order type.
func OrderTypeLabel(t string) string {
	if l, ok := orderTypeLabels[t]; ok {
		return l
	}
	return t
}

// ActiveLabel renders availability / active flags.
func ActiveLabel(active bool) string {
	if active {
		return "Aktif"
	}
	return "Nonaktif"
}

// BlockedLabel renders the account block flag.
func BlockedLabel(blocked bool) string {
	if blocked {
		return "Diblokir"
	}
	return "Aktif"
}
