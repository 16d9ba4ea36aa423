package main

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// RawRow is one spreadsheet row as handed over by the file reader:
// column header to loosely-typed cell value (string or number; empty
// cells are ""). Never mutated here; embedded by reference in canonical
// records for traceability.
type RawRow map[string]any

// Period is the inclusive reporting range of the statement under
// preparation, as ISO dates.
type Period struct {
	Start string `yaml:"start" json:"start"`
	End   string `yaml:"end" json:"end"`
}

// Category is the closed set of expense allocation buckets.
type Category string

const (
	OwnerOnly    Category = "OWNER_ONLY"
	ManagerOnly  Category = "MANAGER_ONLY"
	Reimbursable Category = "REIMBURSABLE"
	Shared       Category = "SHARED"
	Exclude      Category = "EXCLUDE"
	ReviewAlways Category = "REVIEW_ALWAYS"
)

var allCategories = []Category{
	OwnerOnly, ManagerOnly, Reimbursable, Shared, Exclude, ReviewAlways,
}

// parseCategory validates a free string against the closed enum.
func parseCategory(s string) (Category, bool) {
	c := Category(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range allCategories {
		if c == known {
			return c, true
		}
	}
	return "", false
}

// Booking is one normalized OTA reservation/payout event.
type Booking struct {
	ID            string  `json:"id"`
	ReservationID string  `json:"reservation_id"`
	CheckIn       string  `json:"check_in_date"`
	CheckOut      string  `json:"check_out_date,omitempty"`
	GuestName     string  `json:"guest_name"`
	GrossAmount   float64 `json:"gross_amount"`
	OTAFees       float64 `json:"ota_fees"`
	NetPayout     float64 `json:"net_payout"`
	PayoutDate    string  `json:"payout_date"`
	Raw           RawRow  `json:"-"`
}

// refDate is the date a booking is filed and matched under: check-in,
// falling back to the payout date.
func (b Booking) refDate() string {
	if len(b.CheckIn) > 0 {
		return b.CheckIn
	}
	return b.PayoutDate
}

// LedgerRow is one normalized GL transaction. After normalization at most
// one of Debit/Credit is positive; both are zero only when the source
// cell was unparseable.
type LedgerRow struct {
	ID              string   `json:"id"`
	Date            string   `json:"date"`
	Account         string   `json:"account"`
	Source          string   `json:"source"`
	Description     string   `json:"description"`
	Contact         string   `json:"contact"`
	Debit           float64  `json:"debit_amount"`
	Credit          float64  `json:"credit_amount"`
	DefaultCategory Category `json:"default_category,omitempty"`
	Category        Category `json:"assigned_category,omitempty"`
	SplitPercent    float64  `json:"split_percent,omitempty"`
	Include         bool     `json:"include_in_invoice"`
	ReconciledOTA   bool     `json:"is_reconciled_ota"`
	Note            string   `json:"note,omitempty"`
	Raw             RawRow   `json:"-"`
}

func freshID() string {
	return uuid.New().String()
}

func cellString(row RawRow, header string) string {
	if len(header) == 0 {
		return ""
	}
	v, ok := row[header]
	if !ok || v == nil {
		return ""
	}
	if s, isStr := v.(string); isStr {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

func cell(row RawRow, header string) any {
	if len(header) == 0 {
		return nil
	}
	return row[header]
}

// normalizeBookings converts raw OTA rows into Bookings, keeping only
// those whose reference date parses and falls inside the period. Rows
// with no resolvable date are dropped, not defaulted.
func normalizeBookings(rows []RawRow, m map[string]string, period Period) []Booking {
	out := make([]Booking, 0, len(rows))
	for _, row := range rows {
		b := Booking{
			ID:            freshID(),
			ReservationID: cellString(row, m["reservation_id"]),
			CheckIn:       parseDate(cell(row, m["check_in_date"])),
			CheckOut:      parseDate(cell(row, m["check_out_date"])),
			GuestName:     cellString(row, m["guest_name"]),
			GrossAmount:   parseNumber(cell(row, m["gross_amount"])),
			OTAFees:       parseNumber(cell(row, m["ota_fees"])),
			NetPayout:     parseNumber(cell(row, m["net_payout"])),
			PayoutDate:    parseDate(cell(row, m["payout_date"])),
			Raw:           row,
		}
		if withinPeriod(b.refDate(), period) {
			out = append(out, b)
		}
	}
	return out
}

// normalizeLedger converts raw GL rows into LedgerRows.
//
// Single-column mode fires when debit and credit map to the same header:
// a positive value is a credit, a negative one a debit of the absolute
// value. In two-column mode a negative debit is folded into credit and
// vice versa (reversal convention), so no negative amount survives in
// either field.
func normalizeLedger(rows []RawRow, m map[string]string, table ClassificationTable, period Period) []LedgerRow {
	singleColumn := len(m["debit_amount"]) > 0 && m["debit_amount"] == m["credit_amount"]

	out := make([]LedgerRow, 0, len(rows))
	for _, row := range rows {
		r := LedgerRow{
			ID:          freshID(),
			Date:        parseDate(cell(row, m["date"])),
			Account:     cellString(row, m["account_name"]),
			Source:      cellString(row, m["source"]),
			Description: cellString(row, m["description"]),
			Contact:     cellString(row, m["contact"]),
			Raw:         row,
		}
		if singleColumn {
			amount := parseNumber(cell(row, m["debit_amount"]))
			if amount >= 0 {
				r.Credit = amount
			} else {
				r.Debit = -amount
			}
		} else {
			debit := parseNumber(cell(row, m["debit_amount"]))
			credit := parseNumber(cell(row, m["credit_amount"]))
			r.Debit = positive(debit) + negative(credit)
			r.Credit = positive(credit) + negative(debit)
			// Exports that populate both sides are netted so at most one
			// side stays positive.
			if r.Debit > 0 && r.Credit > 0 {
				if r.Debit >= r.Credit {
					r.Debit -= r.Credit
					r.Credit = 0
				} else {
					r.Credit -= r.Debit
					r.Debit = 0
				}
			}
		}
		r.DefaultCategory = table.Lookup(r.Account)
		if withinPeriod(r.Date, period) {
			out = append(out, r)
		}
	}
	return out
}

func positive(f float64) float64 {
	if f > 0 {
		return f
	}
	return 0
}

func negative(f float64) float64 {
	if f < 0 {
		return -f
	}
	return 0
}
