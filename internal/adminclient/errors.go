package adminclient

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/rumahkopi/api/internal/listview"
)

// ErrInFlight is returned when an action is triggered again on a control
// whose previous request has not settled.
var ErrInFlight = errors.New("adminclient: request already in progress")

// ErrNotLoaded is returned when an action targets a record that is not in
// the loaded collection.
var ErrNotLoaded = errors.New("adminclient: record not loaded")

// Op names a dashboard action for error reporting.
type Op string

const (
	OpLoad              Op = "load"
	OpToggleUserBlock   Op = "toggle_user_block"
	OpToggleMenuStatus  Op = "toggle_menu_status"
	OpTogglePackage     Op = "toggle_package_status"
	OpDeletePackage     Op = "delete_package"
	OpCancelReservation Op = "cancel_reservation"
	OpConfirmReserve    Op = "confirm_reservation"
	OpExport            Op = "export"
	OpSummary           Op = "summary"
)

// messages are the id-ID texts shown to the dashboard user.
var messages = map[Op]string{
	OpLoad:              "Gagal memuat data. Silakan muat ulang halaman.",
	OpToggleUserBlock:   "Gagal mengubah status blokir pengguna. Silakan coba lagi.",
	OpToggleMenuStatus:  "Gagal mengubah ketersediaan menu. Silakan coba lagi.",
	OpTogglePackage:     "Gagal mengubah status paket. Silakan coba lagi.",
	OpDeletePackage:     "Gagal menghapus paket. Silakan coba lagi.",
	OpCancelReservation: "Gagal membatalkan reservasi. Silakan coba lagi.",
	OpConfirmReserve:    "Gagal mengonfirmasi reservasi. Silakan coba lagi.",
	OpExport:            "Gagal mengekspor data. Silakan coba lagi.",
	OpSummary:           "Gagal memuat ringkasan. Silakan coba lagi.",
}

// rangeMessages localize date range checks done before a request.
var rangeMessages = map[error]string{
	listview.ErrRangeInverted: "Tanggal mulai tidak boleh setelah tanggal akhir.",
	listview.ErrRangeFuture:   "Tanggal akhir tidak boleh melewati hari ini.",
}

const fallbackMessage = "Terjadi kesalahan. Silakan coba lagi."

// Error is a failed dashboard action. Error() is the localized message for
// the user; Detail and Err keep what the server or transport reported.
type Error struct {
	Op     Op
	Status int
	Detail string
	Err    error
}

func (e *Error) Error() string {
	for target, msg := range rangeMessages {
		if errors.Is(e.Err, target) {
			return msg
		}
	}
	if msg, ok := messages[e.Op]; ok {
		return msg
	}
	return fallbackMessage
}

func (e *Error) Unwrap() error { return e.Err }

// Cause describes the underlying failure for logs.
func (e *Error) Cause() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.Status != 0:
		return fmt.Sprintf("%s: %d %s", e.Op, e.Status, e.Detail)
	default:
		return string(e.Op)
	}
}

// IsNotFound reports whether the server answered 404.
func IsNotFound(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Status == http.StatusNotFound
}

// IsConflict reports whether the server rejected the action as a conflict,
// e.g. cancelling a reservation that is no longer pending.
func IsConflict(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Status == http.StatusConflict
}
