package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v2"
)

// ClassificationTable maps account names (lowercased) to their default
// category. Read-only input to classification.
type ClassificationTable map[string]Category

func (t ClassificationTable) Lookup(account string) Category {
	if t == nil {
		return ""
	}
	return t[strings.ToLower(strings.TrimSpace(account))]
}

// loadClassificationTable reads an account-to-category table from a YAML
// map or a two-column CSV whose headers contain "account" and "category".
// Unrecognized category strings are warned about and skipped rather than
// trusted downstream.
func loadClassificationTable(fpath string) (ClassificationTable, error) {
	data, err := os.ReadFile(fpath)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read classification table: %v", fpath)
	}
	switch strings.ToLower(path.Ext(fpath)) {
	case ".yaml", ".yml":
		return parseYAMLTable(data)
	default:
		return parseCSVTable(data)
	}
}

func parseYAMLTable(data []byte) (ClassificationTable, error) {
	raw := make(map[string]string)
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "unable to parse classification yaml")
	}
	table := make(ClassificationTable, len(raw))
	for account, catName := range raw {
		cat, ok := parseCategory(catName)
		if !ok {
			owarn(fmt.Sprintf("Unknown category %q for account %q, skipping.", catName, account))
			continue
		}
		table[strings.ToLower(strings.TrimSpace(account))] = cat
	}
	return table, nil
}

func parseCSVTable(data []byte) (ClassificationTable, error) {
	r := csv.NewReader(strings.NewReader(string(data)))
	r.TrimLeadingSpace = true
	headers, err := r.Read()
	if err != nil {
		return nil, errors.Wrap(err, "unable to read classification table header")
	}
	accountCol, categoryCol := -1, -1
	for i, h := range headers {
		lh := strings.ToLower(h)
		if accountCol < 0 && strings.Contains(lh, "account") {
			accountCol = i
		}
		if categoryCol < 0 && strings.Contains(lh, "category") {
			categoryCol = i
		}
	}
	if accountCol < 0 || categoryCol < 0 {
		return nil, errors.Errorf("classification table needs 'account' and 'category' columns, got: %v",
			strings.Join(headers, ", "))
	}

	table := make(ClassificationTable)
	for {
		cols, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "unable to read classification table row")
		}
		if accountCol >= len(cols) || categoryCol >= len(cols) {
			continue
		}
		account := strings.TrimSpace(cols[accountCol])
		if len(account) == 0 {
			continue
		}
		cat, ok := parseCategory(cols[categoryCol])
		if !ok {
			owarn(fmt.Sprintf("Unknown category %q for account %q, skipping.", cols[categoryCol], account))
			continue
		}
		table[strings.ToLower(account)] = cat
	}
	return table, nil
}

// classify partitions expense rows (debit > 0) into auto-approved and
// needs-review sets, mutating category and include flags in place. Only
// REIMBURSABLE defaults are auto-trusted; everything else, including rows
// with informative owner/manager defaults, is surfaced for human
// confirmation. Every expense row lands in exactly one partition.
func classify(rows []*LedgerRow) (auto, review []*LedgerRow) {
	for _, r := range rows {
		if r.Debit <= 0 {
			continue
		}
		if r.DefaultCategory == Reimbursable {
			applyCategory(r, Reimbursable)
			auto = append(auto, r)
			continue
		}
		if len(r.DefaultCategory) > 0 {
			r.Category = r.DefaultCategory
		} else {
			r.Category = ReviewAlways
		}
		r.Include = false
		review = append(review, r)
	}
	return auto, review
}

// applyCategory is the single reassignment contract, enforced identically
// whether a category comes from the classification table or a manual
// review decision.
func applyCategory(r *LedgerRow, cat Category) {
	r.Category = cat
	switch cat {
	case Shared:
		if r.SplitPercent <= 0 || r.SplitPercent > 100 {
			r.SplitPercent = 50
		}
		r.Include = true
	case Reimbursable:
		r.Include = true
	default:
		// OWNER_ONLY, MANAGER_ONLY, EXCLUDE and REVIEW_ALWAYS stay off
		// the invoice.
		r.Include = false
	}
}
