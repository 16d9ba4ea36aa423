package main

import "testing"

func TestInferMapping(t *testing.T) {
	otaHeaders := []string{
		"Confirmation Code", "Guest Name", "Check-In", "Checkout Date",
		"Gross Earnings", "Host Service Fee", "Net Payout", "Payout Date",
	}
	glHeaders := []string{"Date", "Account Code", "Type", "Description", "Contact", "Debit", "Credit"}

	m := inferMapping(otaHeaders, glHeaders)

	otaWant := map[string]string{
		"reservation_id": "Confirmation Code",
		"guest_name":     "Guest Name",
		"check_in_date":  "Check-In",
		"check_out_date": "Checkout Date",
		"gross_amount":   "Gross Earnings",
		"ota_fees":       "Host Service Fee",
		"net_payout":     "Net Payout",
		"payout_date":    "Payout Date",
	}
	for field, want := range otaWant {
		if got := m.OTA[field]; got != want {
			t.Errorf("OTA %s = %q, want %q", field, got, want)
		}
	}
	glWant := map[string]string{
		"date":          "Date",
		"account_name":  "Account Code",
		"source":        "Type",
		"description":   "Description",
		"contact":       "Contact",
		"debit_amount":  "Debit",
		"credit_amount": "Credit",
	}
	for field, want := range glWant {
		if got := m.GL[field]; got != want {
			t.Errorf("GL %s = %q, want %q", field, got, want)
		}
	}
}

// First matching header in column order wins, deterministically.
func TestInferMappingFirstMatchWins(t *testing.T) {
	m := inferFields([]string{"Guest First Name", "Guest Surname"}, otaFields)
	if m["guest_name"] != "Guest First Name" {
		t.Errorf("guest_name = %q, want first header", m["guest_name"])
	}
}

func TestInferMappingUnmapped(t *testing.T) {
	m := inferMapping([]string{"Mystery Column"}, []string{"Another"})
	if m.OTA["net_payout"] != "" {
		t.Errorf("expected net_payout unmapped, got %q", m.OTA["net_payout"])
	}
	if err := validateMapping(m); err == nil {
		t.Errorf("expected validation failure for unmapped required fields")
	}
}

func TestValidateMappingComplete(t *testing.T) {
	m := FieldMapping{
		OTA: map[string]string{
			"check_in_date": "Check-In",
			"gross_amount":  "Gross",
			"net_payout":    "Net",
		},
		GL: map[string]string{
			"date":          "Date",
			"account_name":  "Account",
			"debit_amount":  "Debit",
			"credit_amount": "Credit",
		},
	}
	if err := validateMapping(m); err != nil {
		t.Errorf("expected complete mapping to validate, got: %v", err)
	}
}
