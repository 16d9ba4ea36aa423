package main

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v2"
)

// FieldMapping maps canonical field names to the raw column headers
// supplying them, separately for the OTA and GL schemas. An empty header
// means the field is unmapped. Immutable once handed to the normalizer.
type FieldMapping struct {
	OTA map[string]string `yaml:"ota" json:"ota"`
	GL  map[string]string `yaml:"gl" json:"gl"`
}

type fieldKeywords struct {
	field    string
	keywords []string
}

// Ordered keyword tables for header inference. For each field the header
// list is scanned in column order and the first header containing any of
// the keywords wins, so suggestions are reproducible.
var otaFields = []fieldKeywords{
	{"reservation_id", []string{"reservation", "confirmation", "booking code", "code"}},
	{"check_in_date", []string{"check-in", "check in", "checkin", "arrival", "start date"}},
	{"check_out_date", []string{"check-out", "check out", "checkout", "departure", "end date"}},
	{"guest_name", []string{"guest", "name"}},
	{"gross_amount", []string{"gross", "earnings", "amount"}},
	{"ota_fees", []string{"fee", "commission", "service charge"}},
	{"net_payout", []string{"net", "payout"}},
	{"payout_date", []string{"payout date", "date paid", "paid date"}},
}

var glFields = []fieldKeywords{
	{"date", []string{"date"}},
	{"account_name", []string{"account", "code"}},
	{"source", []string{"source", "type"}},
	{"description", []string{"description", "memo", "details", "narration"}},
	{"contact", []string{"contact", "payee", "vendor", "name"}},
	{"debit_amount", []string{"debit", "money out", "spent", "withdrawal"}},
	{"credit_amount", []string{"credit", "money in", "received", "deposit"}},
}

var requiredGLFields = []string{"date", "account_name", "debit_amount", "credit_amount"}
var requiredOTAFields = []string{"gross_amount", "net_payout"}

// inferMapping guesses a FieldMapping from the raw header lists. It is a
// pure suggestion; the caller confirms (or edits) it before normalizing.
func inferMapping(otaHeaders, glHeaders []string) FieldMapping {
	return FieldMapping{
		OTA: inferFields(otaHeaders, otaFields),
		GL:  inferFields(glHeaders, glFields),
	}
}

func inferFields(headers []string, fields []fieldKeywords) map[string]string {
	m := make(map[string]string, len(fields))
	for _, fk := range fields {
		m[fk.field] = ""
		for _, h := range headers {
			if containsAny(strings.ToLower(h), fk.keywords) {
				m[fk.field] = h
				break
			}
		}
	}
	return m
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

// validateMapping enforces the precondition the normalizer assumes: all
// required fields mapped, and at least one OTA date column so the period
// filter has something to work with.
func validateMapping(m FieldMapping) error {
	var missing []string
	for _, f := range requiredOTAFields {
		if len(m.OTA[f]) == 0 {
			missing = append(missing, "ota."+f)
		}
	}
	if len(m.OTA["check_in_date"]) == 0 && len(m.OTA["payout_date"]) == 0 {
		missing = append(missing, "ota.check_in_date or ota.payout_date")
	}
	for _, f := range requiredGLFields {
		if len(m.GL[f]) == 0 {
			missing = append(missing, "gl."+f)
		}
	}
	if len(missing) > 0 {
		return errors.Errorf("mapping incomplete, unmapped fields: %s", strings.Join(missing, ", "))
	}
	return nil
}

func loadMapping(fpath string) (FieldMapping, error) {
	var m FieldMapping
	data, err := os.ReadFile(fpath)
	if err != nil {
		return m, errors.Wrapf(err, "unable to read mapping file: %v", fpath)
	}
	if err := yaml.Unmarshal(data, &m); err != nil {
		return m, errors.Wrapf(err, "unable to parse mapping file: %v", fpath)
	}
	return m, nil
}

func saveMapping(fpath string, m FieldMapping) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return errors.Wrap(err, "unable to marshal mapping")
	}
	return errors.Wrapf(os.WriteFile(fpath, data, 0o644), "unable to write mapping file: %v", fpath)
}
