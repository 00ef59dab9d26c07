// Package screens configures the admin list screens: which fields a search
// term matches, which filters and sort keys exist, and the CSV columns used
// when the filtered list is exported.
package screens

import (
	"strconv"

	"github.com/rumahkopi/api/internal/csvexport"
	"github.com/rumahkopi/api/internal/listview"
)

// Export entity names, also used as the CSV file name prefix.
const (
	Orders       = "orders"
	Reservations = "reservations"
	Customers    = "customers"
	Menu         = "menu"
	Staff        = "staff"
	Packages     = "packages"
	Reviews      = "reviews"
)

// Blocked/active filter values shared by the user and package screens.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
	StatusBlocked  = "blocked"
)

func rowNumber[T any]() csvexport.Column[T] {
	return csvexport.Column[T]{
		Header: "No",
		Value:  func(i int, _ T) string { return strconv.Itoa(i) },
	}
}

func activeValue(active bool) string {
	if active {
		return StatusActive
	}
	return StatusInactive
}

func blockedValue(blocked bool) string {
	if blocked {
		return StatusBlocked
	}
	return StatusActive
}

var newestFirst = listview.Sort{Field: "date", Direction: listview.Desc}
