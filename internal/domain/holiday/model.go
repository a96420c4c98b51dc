package holiday

import (
	"time"

	"github.com/tiffinly/tiffinly/internal/types"
)

// VendorHoliday is a vendor-declared no-service day. An empty slot
// means the whole day is off; otherwise only the named slot is.
type VendorHoliday struct {
	ID       string         `json:"id"`
	VendorID string         `json:"vendor_id"`
	Date     time.Time      `json:"date"`
	Slot     types.MealSlot `json:"slot,omitempty"`
	Reason   string         `json:"reason,omitempty"`
	types.BaseModel
}

// AppliesTo reports whether this holiday covers the given (date, slot).
func (h *VendorHoliday) AppliesTo(date time.Time, slot types.MealSlot) bool {
	if !types.SameDate(h.Date, date) {
		return false
	}
	return h.Slot == "" || h.Slot == slot
}

// Covered reports whether any holiday in the list covers (date, slot).
func Covered(holidays []*VendorHoliday, date time.Time, slot types.MealSlot) bool {
	for _, h := range holidays {
		if h.AppliesTo(date, slot) {
			return true
		}
	}
	return false
}
