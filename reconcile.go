package main

import (
	"fmt"
	"math"
	"strings"
)

const (
	// Window and tolerance for matching an OTA payout to its GL deposit:
	// up to 3 whole days apart, amounts within 2.00 of each other.
	matchWindowDays = 3
	matchTolerance  = 2.0
)

// payoutRef is the date a payout is expected to land under: the payout
// date when the export carries one, otherwise check-in.
func (b Booking) payoutRef() string {
	if len(b.PayoutDate) > 0 {
		return b.PayoutDate
	}
	return b.CheckIn
}

// reconcile matches each booking's net payout against the unreconciled GL
// income rows, in booking order. The first row satisfying the date
// window, amount tolerance and text heuristic is claimed: flag and note
// are set in place, and a claimed row is never matched again. Bookings
// with no candidate stay unreconciled; that is a statistic, not an error.
func reconcile(bookings []Booking, income []*LedgerRow) int {
	var matched int
	for _, b := range bookings {
		ref := b.payoutRef()
		if len(ref) == 0 {
			continue
		}
		for _, r := range income {
			if r.ReconciledOTA {
				continue
			}
			days, ok := daysApart(ref, r.Date)
			if !ok || days > matchWindowDays {
				continue
			}
			if math.Abs(r.Credit-b.NetPayout) > matchTolerance {
				continue
			}
			if !looksLikePayout(r, b) {
				continue
			}
			r.ReconciledOTA = true
			r.Note = fmt.Sprintf("Auto-matched to OTA payout %s", b.matchRef())
			matched++
			break
		}
	}
	return matched
}

// matchRef identifies a booking in reconciliation notes: the reservation
// reference, or the generated id when the export carries none, so the
// note is never empty.
func (b Booking) matchRef() string {
	if len(b.ReservationID) > 0 {
		return b.ReservationID
	}
	return b.ID
}

// looksLikePayout applies the text heuristic: the row's description and
// contact, case-insensitively, must mention "booking", "payout", the
// guest or the reservation reference.
func looksLikePayout(r *LedgerRow, b Booking) bool {
	hay := strings.ToLower(r.Description + " " + r.Contact)
	if strings.Contains(hay, "booking") || strings.Contains(hay, "payout") {
		return true
	}
	if guest := strings.ToLower(b.GuestName); len(guest) > 0 && strings.Contains(hay, guest) {
		return true
	}
	if res := strings.ToLower(b.ReservationID); len(res) > 0 && strings.Contains(hay, res) {
		return true
	}
	return false
}

// Stats are the aggregate figures the owner statement is derived from.
type Stats struct {
	TotalGross   float64 `json:"total_gross_revenue"`
	TotalNet     float64 `json:"total_net_payout"`
	Reconciled   int     `json:"reconciled_count"`
	Unreconciled int     `json:"unreconciled_count"`
}

func computeStats(bookings []Booking, matched int) Stats {
	s := Stats{Reconciled: matched, Unreconciled: len(bookings) - matched}
	for _, b := range bookings {
		s.TotalGross += b.GrossAmount
		s.TotalNet += b.NetPayout
	}
	return s
}

// FeeBase selects which revenue figure the management fee applies to.
type FeeBase string

const (
	FeeBaseGross FeeBase = "gross"
	FeeBaseNet   FeeBase = "net"
)

func parseFeeBase(s string) (FeeBase, bool) {
	switch FeeBase(strings.ToLower(strings.TrimSpace(s))) {
	case FeeBaseGross:
		return FeeBaseGross, true
	case FeeBaseNet:
		return FeeBaseNet, true
	}
	return "", false
}

// managementFee derives the fee from the statistics: pct percent of the
// gross revenue or of the net payout, per base.
func managementFee(s Stats, pct float64, base FeeBase) float64 {
	amount := s.TotalGross
	if base == FeeBaseNet {
		amount = s.TotalNet
	}
	return amount * pct / 100
}
