package main

import (
	"flag"
	"fmt"
	"os"
	"path"
	"time"

	"github.com/fatih/color"
	"github.com/manishrjain/keys"
)

var (
	otaFile   = flag.String("ota", "", "CSV export of OTA bookings/payouts.")
	glFile    = flag.String("gl", "", "CSV export of general-ledger transactions.")
	accFile   = flag.String("accounts", "", "Account classification table (CSV or YAML).")
	startDate = flag.String("start", "", "Reporting period start (YYYY-MM-DD).")
	endDate   = flag.String("end", "", "Reporting period end (YYYY-MM-DD).")
	feePct    = flag.Float64("fee", 20.0, "Management fee percentage (0-100).")
	feeBase   = flag.String("feebase", "gross", "Fee base: 'gross' revenue or 'net' payout.")
	currency  = flag.String("currency", "$", "Set currency if any.")
	configDir = flag.String("conf", os.Getenv("HOME")+"/.into-statement",
		"Config directory to store mapping, shortcuts and review decisions in.")
	shortcuts   = flag.String("short", "shortcuts.yaml", "Name of shortcuts file.")
	sessionFile = flag.String("session", "", "Write the processed session to this JSON file.")
	loadFile    = flag.String("load", "", "Restore a previously saved session JSON instead of processing CSVs.")
	review      = flag.Bool("review", true, "Interactively review uncategorized expenses.")
)

func confirmedMapping(otaHeaders, glHeaders []string) (FieldMapping, bool) {
	mappingPath := path.Join(*configDir, "mapping.yaml")
	if _, err := os.Stat(mappingPath); err == nil {
		m, err := loadMapping(mappingPath)
		checkf(err, "Unable to load mapping from: %v", mappingPath)
		checkf(validateMapping(m), "Mapping at %v is incomplete", mappingPath)
		return m, true
	}

	m := inferMapping(otaHeaders, glHeaders)
	checkf(saveMapping(mappingPath, m), "Unable to write inferred mapping")
	fmt.Println("No confirmed column mapping found. Inferred one from the headers:")
	fmt.Println()
	printMapping("OTA", m.OTA, otaFields)
	printMapping("GL", m.GL, glFields)
	fmt.Println()
	fmt.Printf("Suggestion written to %s.\n", mappingPath)
	fmt.Println("Review it, fill in any blanks, and run again.")
	return m, false
}

func printMapping(label string, m map[string]string, fields []fieldKeywords) {
	color.New(color.BgBlue, color.FgWhite).Printf(" %s ", label)
	fmt.Println()
	for _, fk := range fields {
		header := m[fk.field]
		if len(header) == 0 {
			color.New(color.FgRed).Printf("  %-16s -> (unmapped)\n", fk.field)
			continue
		}
		fmt.Printf("  %-16s -> %s\n", fk.field, header)
	}
}

func report(res *Result, base FeeBase) {
	fee := managementFee(res.Stats, *feePct, base)

	var reimbursed float64
	for _, r := range res.Expenses {
		if !r.Include {
			continue
		}
		amount := r.Debit
		if r.Category == Shared {
			amount = r.Debit * r.SplitPercent / 100
		}
		reimbursed += amount
	}
	netToOwner := res.Stats.TotalNet - fee - reimbursed

	fmt.Println()
	color.New(color.BgBlue, color.FgWhite).Printf(" OWNER STATEMENT ")
	fmt.Printf(" %s to %s\n\n", *startDate, *endDate)

	fmt.Printf("  Bookings               %6d\n", len(res.Bookings))
	fmt.Printf("  Gross revenue      %s%12.2f\n", *currency, res.Stats.TotalGross)
	fmt.Printf("  Net payouts        %s%12.2f\n", *currency, res.Stats.TotalNet)
	fmt.Println()

	color.New(color.BgGreen, color.FgBlack).Printf(" RECONCILED %d ", res.Stats.Reconciled)
	if res.Stats.Unreconciled > 0 {
		fmt.Printf(" ")
		color.New(color.BgRed, color.FgWhite).Printf(" UNRECONCILED %d ", res.Stats.Unreconciled)
	}
	fmt.Println()
	fmt.Println()

	fmt.Printf("  Ledger rows in period  %6d (income %d, expenses %d)\n",
		len(res.Ledger), len(res.Income), len(res.Expenses))
	fmt.Printf("  Auto-approved          %6d\n", len(res.AutoApproved))
	fmt.Printf("  Needs review           %6d\n", len(res.NeedsReview))
	fmt.Println()

	fmt.Printf("  Management fee (%.1f%% of %s)  %s%12.2f\n", *feePct, base, *currency, fee)
	fmt.Printf("  Reimbursable expenses         %s%12.2f\n", *currency, reimbursed)
	fmt.Printf("  Net to owner                  %s%12.2f\n", *currency, netToOwner)
	fmt.Println()
}

func main() {
	flag.Parse()

	base, ok := parseFeeBase(*feeBase)
	if !ok {
		oerr("-feebase must be 'gross' or 'net'")
		return
	}
	if *feePct < 0 || *feePct > 100 {
		oerr("-fee must be between 0 and 100")
		return
	}
	checkf(os.MkdirAll(*configDir, 0o755), "Unable to create directory: %v", *configDir)

	keyfile := path.Join(*configDir, *shortcuts)
	short := keys.ParseConfig(keyfile)
	setDefaultMappings(short)
	defer short.Persist(keyfile)

	store, err := openDecisionStore(path.Join(*configDir, "decisions.db"))
	checkf(err, "Unable to open decision store")
	defer store.Close()

	var res *Result
	var mapping FieldMapping
	period := Period{Start: *startDate, End: *endDate}

	if len(*loadFile) > 0 {
		s, err := loadSession(*loadFile)
		checkf(err, "Unable to restore session from: %v", *loadFile)
		res = s.restore()
		mapping = s.Mapping
		period = s.Period
		*startDate, *endDate = s.Period.Start, s.Period.End
		*feePct, base = s.FeePercent, s.FeeBase
	} else {
		if len(*otaFile) == 0 || len(*glFile) == 0 {
			oerr("Please specify both -ota and -gl CSV files")
			return
		}
		for _, d := range []string{*startDate, *endDate} {
			if _, err := time.Parse(isoStamp, d); err != nil {
				oerr("Please specify -start and -end as YYYY-MM-DD")
				return
			}
		}
		if *endDate < *startDate {
			oerr("-end must not be before -start")
			return
		}

		otaRows, otaHeaders, err := readRawRows(*otaFile)
		checkf(err, "Unable to read OTA csv: %v", *otaFile)
		glRows, glHeaders, err := readRawRows(*glFile)
		checkf(err, "Unable to read GL csv: %v", *glFile)

		var confirmed bool
		mapping, confirmed = confirmedMapping(otaHeaders, glHeaders)
		if !confirmed {
			return
		}

		var table ClassificationTable
		if len(*accFile) > 0 {
			table, err = loadClassificationTable(*accFile)
			checkf(err, "Unable to load classification table: %v", *accFile)
		}

		res = process(otaRows, glRows, mapping, table, period)

		if applied := store.apply(res.Expenses); applied > 0 {
			fmt.Printf("Reapplied %d stored review decisions.\n", applied)
		}
	}

	report(res, base)

	if *review && len(res.NeedsReview) > 0 {
		defer saneMode()
		singleCharMode()
		reviewExpenses(res, store, short)
		saneMode()
		report(res, base)
	}

	if len(*sessionFile) > 0 {
		s := newSession(res, period, *feePct, base, mapping)
		checkf(saveSession(*sessionFile, s), "Unable to save session to: %v", *sessionFile)
		fmt.Printf("Session written to file: %s\n", *sessionFile)
	}
}
