package main

import (
	"strings"
	"testing"
)

func incomeRow(date, desc, contact string, credit float64) *LedgerRow {
	return &LedgerRow{
		ID: freshID(), Date: date, Account: "Rental Income",
		Description: desc, Contact: contact, Credit: credit,
	}
}

func booking(res, checkin, payout, guest string, net float64) Booking {
	return Booking{
		ID: freshID(), ReservationID: res, CheckIn: checkin,
		PayoutDate: payout, GuestName: guest, NetPayout: net,
	}
}

func TestReconcileEndToEnd(t *testing.T) {
	bookings := []Booking{booking("HM123", "2024-01-15", "2024-01-18", "Alice", 500)}
	income := []*LedgerRow{incomeRow("2024-01-18", "Airbnb booking payout", "", 500)}

	matched := reconcile(bookings, income)
	if matched != 1 {
		t.Fatalf("expected 1 match, got %d", matched)
	}
	if !income[0].ReconciledOTA {
		t.Errorf("expected GL row flagged reconciled")
	}
	if !strings.Contains(income[0].Note, "HM123") {
		t.Errorf("note should identify the reservation: %q", income[0].Note)
	}
	stats := computeStats(bookings, matched)
	if stats.Reconciled != 1 || stats.Unreconciled != 0 {
		t.Errorf("stats = %+v, want reconciled=1 unreconciled=0", stats)
	}
}

func TestReconcileAmountToleranceBoundary(t *testing.T) {
	bookings := []Booking{booking("HM1", "", "2024-01-18", "", 500)}

	exact := []*LedgerRow{incomeRow("2024-01-18", "payout", "", 502.00)} // differs by exactly 2.00
	if got := reconcile(bookings, exact); got != 1 {
		t.Errorf("difference of exactly 2.00 should match, got %d", got)
	}

	over := []*LedgerRow{incomeRow("2024-01-18", "payout", "", 502.01)}
	if got := reconcile(bookings, over); got != 0 {
		t.Errorf("difference of 2.01 should not match, got %d", got)
	}
}

func TestReconcileDateWindowBoundary(t *testing.T) {
	bookings := []Booking{booking("HM1", "", "2024-01-18", "", 500)}

	edge := []*LedgerRow{incomeRow("2024-01-21", "payout", "", 500)} // 3 days out
	if got := reconcile(bookings, edge); got != 1 {
		t.Errorf("3 days out should match, got %d", got)
	}

	outside := []*LedgerRow{incomeRow("2024-01-22", "payout", "", 500)} // 4 days out
	if got := reconcile(bookings, outside); got != 0 {
		t.Errorf("4 days out should not match, got %d", got)
	}
}

func TestReconcileTextHeuristics(t *testing.T) {
	cases := []struct {
		name    string
		desc    string
		contact string
		want    int
	}{
		{"bookingKeyword", "Booking.com deposit", "", 1},
		{"payoutKeyword", "weekly payout", "", 1},
		{"guestName", "transfer", "ALICE SMITH", 1},
		{"reservationID", "ref HM99 deposit", "", 1},
		{"noSignal", "misc deposit", "", 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			bookings := []Booking{booking("HM99", "", "2024-01-18", "Alice", 500)}
			income := []*LedgerRow{incomeRow("2024-01-18", c.desc, c.contact, 500)}
			if got := reconcile(bookings, income); got != c.want {
				t.Errorf("got %d matches, want %d", got, c.want)
			}
		})
	}
}

func TestReconcileAtMostOnce(t *testing.T) {
	// Two bookings with the same payout profile, one candidate row: the
	// row is claimed once, the second booking stays unreconciled.
	bookings := []Booking{
		booking("HM1", "", "2024-01-18", "", 500),
		booking("HM2", "", "2024-01-18", "", 500),
	}
	income := []*LedgerRow{incomeRow("2024-01-18", "payout", "", 500)}

	matched := reconcile(bookings, income)
	if matched != 1 {
		t.Errorf("single row should be claimed exactly once, got %d matches", matched)
	}
	if !strings.Contains(income[0].Note, "HM1") {
		t.Errorf("first booking in input order should win: %q", income[0].Note)
	}
}

func TestReconcileFirstCandidateWins(t *testing.T) {
	bookings := []Booking{booking("HM1", "", "2024-01-18", "", 500)}
	income := []*LedgerRow{
		incomeRow("2024-01-17", "payout a", "", 500),
		incomeRow("2024-01-18", "payout b", "", 500), // closer, but later in ledger order
	}
	if got := reconcile(bookings, income); got != 1 {
		t.Fatalf("expected a match, got %d", got)
	}
	if !income[0].ReconciledOTA || income[1].ReconciledOTA {
		t.Errorf("first candidate in ledger order should be taken, no scoring")
	}
}

func TestReconcileChecksInDateFallback(t *testing.T) {
	// No payout date: the check-in date anchors the window.
	bookings := []Booking{booking("HM1", "2024-01-15", "", "", 500)}
	income := []*LedgerRow{incomeRow("2024-01-17", "payout", "", 500)}
	if got := reconcile(bookings, income); got != 1 {
		t.Errorf("check-in fallback should anchor the window, got %d", got)
	}
}

func TestReconcileSkipsAlreadyReconciled(t *testing.T) {
	row := incomeRow("2024-01-18", "payout", "", 500)
	row.ReconciledOTA = true
	row.Note = "Auto-matched to OTA payout HM0"
	bookings := []Booking{booking("HM1", "", "2024-01-18", "", 500)}
	if got := reconcile(bookings, []*LedgerRow{row}); got != 0 {
		t.Errorf("already-claimed row must never be matched again, got %d", got)
	}
}

func TestManagementFee(t *testing.T) {
	s := Stats{TotalGross: 1000, TotalNet: 800}
	if fee := managementFee(s, 20, FeeBaseGross); fee != 200 {
		t.Errorf("gross base: got %v, want 200", fee)
	}
	if fee := managementFee(s, 20, FeeBaseNet); fee != 160 {
		t.Errorf("net base: got %v, want 160", fee)
	}
}
