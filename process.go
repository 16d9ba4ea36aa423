package main

// Result is the processed state handed to the report, review loop and
// session snapshot. Income, Expenses, AutoApproved and NeedsReview alias
// rows in Ledger; mutations through any of them are visible everywhere.
type Result struct {
	Bookings     []Booking
	Ledger       []*LedgerRow
	Income       []*LedgerRow
	Expenses     []*LedgerRow
	AutoApproved []*LedgerRow
	NeedsReview  []*LedgerRow
	Stats        Stats
}

// process runs the whole pipeline in one synchronous pass: normalize both
// sources, reconcile OTA payouts against GL income, partition GL expenses
// by classification, then compute the statement statistics. Given the
// same inputs it produces the same outputs.
func process(otaRows, glRows []RawRow, mapping FieldMapping, table ClassificationTable, period Period) *Result {
	bookings := normalizeBookings(otaRows, mapping.OTA, period)
	rows := normalizeLedger(glRows, mapping.GL, table, period)

	res := &Result{Bookings: bookings}
	res.Ledger = make([]*LedgerRow, len(rows))
	for i := range rows {
		r := &rows[i]
		res.Ledger[i] = r
		switch {
		case r.Credit > 0:
			res.Income = append(res.Income, r)
		case r.Debit > 0:
			res.Expenses = append(res.Expenses, r)
		}
	}

	matched := reconcile(bookings, res.Income)
	res.AutoApproved, res.NeedsReview = classify(res.Expenses)
	res.Stats = computeStats(bookings, matched)
	return res
}
