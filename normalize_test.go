package main

import "testing"

var testOTAMapping = map[string]string{
	"reservation_id": "Code",
	"check_in_date":  "Check-In",
	"check_out_date": "Check-Out",
	"guest_name":     "Guest",
	"gross_amount":   "Gross",
	"ota_fees":       "Fee",
	"net_payout":     "Net",
	"payout_date":    "Paid",
}

var testGLMapping = map[string]string{
	"date":          "Date",
	"account_name":  "Account",
	"source":        "Type",
	"description":   "Description",
	"contact":       "Contact",
	"debit_amount":  "Debit",
	"credit_amount": "Credit",
}

func otaRow(code, checkin, guest, gross, fee, net, paid string) RawRow {
	return RawRow{
		"Code": code, "Check-In": checkin, "Check-Out": "",
		"Guest": guest, "Gross": gross, "Fee": fee, "Net": net, "Paid": paid,
	}
}

func glRow(date, account, desc, contact, debit, credit string) RawRow {
	return RawRow{
		"Date": date, "Account": account, "Type": "", "Description": desc,
		"Contact": contact, "Debit": debit, "Credit": credit,
	}
}

var jan = Period{Start: "2024-01-01", End: "2024-01-31"}

func TestNormalizeBookings(t *testing.T) {
	rows := []RawRow{
		otaRow("HM1", "2024-01-15", "Alice", "$600.00", "$100.00", "$500.00", "2024-01-18"),
		otaRow("HM2", "2023-12-31", "Bob", "300", "50", "250", ""),   // day before period
		otaRow("HM3", "2024-02-01", "Cara", "300", "50", "250", ""),  // day after period
		otaRow("HM4", "", "Dan", "300", "50", "250", "2024-01-20"),   // payout date fallback
		otaRow("HM5", "", "Eve", "300", "50", "250", ""),             // no resolvable date: dropped
	}
	bookings := normalizeBookings(rows, testOTAMapping, jan)
	if len(bookings) != 2 {
		t.Fatalf("expected 2 bookings, got %d", len(bookings))
	}
	b := bookings[0]
	if b.ReservationID != "HM1" || b.GrossAmount != 600 || b.OTAFees != 100 || b.NetPayout != 500 {
		t.Errorf("unexpected booking: %+v", b)
	}
	if len(b.ID) == 0 || b.ID == bookings[1].ID {
		t.Errorf("expected fresh unique ids, got %q and %q", b.ID, bookings[1].ID)
	}
	if bookings[1].ReservationID != "HM4" {
		t.Errorf("expected payout-date fallback to keep HM4, got %v", bookings[1].ReservationID)
	}
}

func TestNormalizeLedgerSignFolding(t *testing.T) {
	rows := []RawRow{
		glRow("2024-01-05", "Repairs", "fix sink", "", "120.00", ""),
		glRow("2024-01-06", "Repairs", "refund", "", "-30.00", ""),  // negative debit folds to credit
		glRow("2024-01-07", "Rent", "reversal", "", "", "(45.00)"),  // negative credit folds to debit
	}
	out := normalizeLedger(rows, testGLMapping, nil, jan)
	if len(out) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(out))
	}
	for _, r := range out {
		if r.Debit < 0 || r.Credit < 0 {
			t.Errorf("negative amount survived folding: %+v", r)
		}
		if r.Debit > 0 && r.Credit > 0 {
			t.Errorf("both debit and credit positive: %+v", r)
		}
	}
	if out[0].Debit != 120 || out[0].Credit != 0 {
		t.Errorf("row 0: got debit=%v credit=%v", out[0].Debit, out[0].Credit)
	}
	if out[1].Credit != 30 || out[1].Debit != 0 {
		t.Errorf("negative debit should fold into credit: %+v", out[1])
	}
	if out[2].Debit != 45 || out[2].Credit != 0 {
		t.Errorf("negative credit should fold into debit: %+v", out[2])
	}
}

func TestNormalizeLedgerNetsBothSides(t *testing.T) {
	rows := []RawRow{glRow("2024-01-08", "Odd", "both populated", "", "100", "30")}
	out := normalizeLedger(rows, testGLMapping, nil, jan)
	if len(out) != 1 {
		t.Fatalf("expected 1 row, got %d", len(out))
	}
	if out[0].Debit != 70 || out[0].Credit != 0 {
		t.Errorf("expected netted debit 70, got %+v", out[0])
	}
}

func TestNormalizeLedgerSingleColumnMode(t *testing.T) {
	m := map[string]string{}
	for k, v := range testGLMapping {
		m[k] = v
	}
	m["debit_amount"] = "Amount"
	m["credit_amount"] = "Amount"

	rows := []RawRow{
		{"Date": "2024-01-05", "Account": "a", "Type": "", "Description": "", "Contact": "", "Amount": "100"},
		{"Date": "2024-01-06", "Account": "a", "Type": "", "Description": "", "Contact": "", "Amount": "-50"},
	}
	out := normalizeLedger(rows, m, nil, jan)
	if len(out) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(out))
	}
	if out[0].Credit != 100 || out[0].Debit != 0 {
		t.Errorf("positive amount should be a credit: %+v", out[0])
	}
	if out[1].Debit != 50 || out[1].Credit != 0 {
		t.Errorf("negative amount should be a debit of the absolute value: %+v", out[1])
	}
}

func TestNormalizeLedgerPeriodAndCategory(t *testing.T) {
	table := ClassificationTable{"repairs & maintenance": Reimbursable}
	rows := []RawRow{
		glRow("2024-01-05", "Repairs & Maintenance", "", "", "10", ""),
		glRow("2024-01-05", "REPAIRS & MAINTENANCE", "", "", "10", ""),
		glRow("2023-12-30", "Repairs & Maintenance", "", "", "10", ""), // outside period
		glRow("no date", "Repairs & Maintenance", "", "", "10", ""),    // unparseable date
	}
	out := normalizeLedger(rows, testGLMapping, table, jan)
	if len(out) != 2 {
		t.Fatalf("expected 2 rows in period, got %d", len(out))
	}
	for _, r := range out {
		if r.DefaultCategory != Reimbursable {
			t.Errorf("expected case-insensitive table lookup, got %q", r.DefaultCategory)
		}
	}
}
