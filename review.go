package main

import (
	"bufio"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/fatih/color"
	"github.com/manishrjain/keys"
)

const descLength = 40

func singleCharMode() {
	// disable input buffering
	exec.Command("stty", "-F", "/dev/tty", "cbreak", "min", "1").Run()
	// do not display entered characters on the screen
	exec.Command("stty", "-F", "/dev/tty", "-echo").Run()
}

func saneMode() {
	exec.Command("stty", "-F", "/dev/tty", "sane").Run()
}

func clear() {
	cmd := exec.Command("clear")
	cmd.Stdout = os.Stdout
	cmd.Run()
	fmt.Println()
}

func printRow(r LedgerRow, idx, total int) {
	if r.Include {
		color.New(color.BgGreen, color.FgBlack).Printf(" I ")
	} else {
		color.New(color.BgRed, color.FgWhite).Printf(" - ")
	}
	color.New(color.BgBlue, color.FgWhite).Printf(" [%3d of %3d] ", idx, total)
	color.New(color.BgYellow, color.FgBlack).Printf(" %10s ", r.Date)

	desc := r.Description
	if len(desc) > descLength {
		desc = desc[:descLength]
	}
	color.New(color.BgWhite, color.FgBlack).Printf(" %-40s", desc)
	if len(r.Category) > 0 {
		color.New(color.BgGreen, color.FgBlack).Printf(" %-13s ", r.Category)
	}
	color.New(color.BgRed, color.FgWhite).Printf(" %9.2f ", r.Debit)
	fmt.Println()
}

func setDefaultMappings(ks *keys.Shortcuts) {
	ks.BestEffortAssign('b', ".back", "default")
	ks.BestEffortAssign('q', ".quit", "default")
	ks.BestEffortAssign('s', ".skip", "default")
	ks.BestEffortAssign('n', ".note", "default")
}

// readLine temporarily restores line input for free-text entry.
func readLine(prompt string) string {
	saneMode()
	defer singleCharMode()
	fmt.Print(prompt)
	line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	return strings.TrimSpace(line)
}

// reviewRow shows one needs-review expense and applies the selected
// category through the reassignment contract. Returns the index delta:
// 1 forward, -1 back, 0 stay.
func reviewRow(r *LedgerRow, idx, total int, store *decisionStore, short *keys.Shortcuts) (int, bool) {
	clear()
	printRow(*r, idx, total)
	fmt.Println()
	if len(r.Description) > descLength {
		color.New(color.BgWhite, color.FgBlack).Printf("%6s %s ", "[DESC]", r.Description)
		fmt.Println()
	}
	if len(r.Account) > 0 {
		color.New(color.BgGreen, color.FgBlack).Printf("%6s %s", "[ACCT]", r.Account)
		fmt.Println()
	}
	if len(r.Note) > 0 {
		color.New(color.BgCyan, color.FgBlack).Printf("[NOTE] %s", r.Note)
		fmt.Println()
	}
	fmt.Println()

	var ks keys.Shortcuts
	setDefaultMappings(&ks)
	for _, cat := range allCategories {
		ks.AutoAssign(string(cat), "default")
	}
	ks.Print("default", false)

	b := make([]byte, 1)
	os.Stdin.Read(b)
	ch := rune(b[0])

	opt, has := short.MapsTo(ch, "default")
	if !has {
		opt, has = ks.MapsTo(ch, "default")
	}
	if !has {
		return 0, false
	}
	switch opt {
	case ".back":
		return -1, false
	case ".skip":
		return 1, false
	case ".quit":
		return 0, true
	case ".note":
		r.Note = readLine("Note: ")
		checkf(store.saveDecision(r), "Unable to persist note for row: %v", r.ID)
		return 0, false
	}

	cat, ok := parseCategory(opt)
	if !ok {
		return 0, false
	}
	if cat == Shared {
		if pct := parseNumber(readLine("Split percent [50]: ")); pct > 0 && pct <= 100 {
			r.SplitPercent = pct
		}
	}
	applyCategory(r, cat)
	checkf(store.saveDecision(r), "Unable to persist decision for row: %v", r.ID)
	return 1, false
}

// reviewExpenses walks the needs-review rows the way into-ledger walks
// uncategorized transactions: one keystroke per decision, persisted
// immediately so an interrupted session resumes where it left off.
func reviewExpenses(res *Result, store *decisionStore, short *keys.Shortcuts) {
	rows := res.NeedsReview
	if len(rows) == 0 {
		fmt.Println("Nothing to review.")
		return
	}
	for i, r := range rows {
		printRow(*r, i, len(rows))
	}
	fmt.Println()
	fmt.Printf("Found %d expenses to review. Review (Y/n)? ", len(rows))
	b := make([]byte, 1)
	os.Stdin.Read(b)
	if b[0] == 'n' || b[0] == 'q' {
		return
	}

	for i := 0; i < len(rows) && i >= 0; {
		delta, quit := reviewRow(rows[i], i, len(rows), store, short)
		if quit {
			return
		}
		i += delta
	}
}
