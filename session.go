package main

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/boltdb/bolt"
	"github.com/pkg/errors"
)

// Session is the JSON-serializable snapshot of a processing run: the
// whole result plus the configuration and mapping that produced it.
// Dates stay ISO strings and categories stay their string literals, so a
// restored session is semantically identical to the saved one.
type Session struct {
	SavedAt      string       `json:"saved_at"`
	Period       Period       `json:"period"`
	FeePercent   float64      `json:"fee_percent"`
	FeeBase      FeeBase      `json:"fee_base"`
	Mapping      FieldMapping `json:"mapping"`
	Bookings     []Booking    `json:"bookings"`
	Ledger       []LedgerRow  `json:"ledger"`
	AutoApproved []string     `json:"auto_approved"`
	NeedsReview  []string     `json:"needs_review"`
	Stats        Stats        `json:"stats"`
}

func newSession(res *Result, period Period, feePct float64, base FeeBase, mapping FieldMapping) Session {
	s := Session{
		SavedAt:    time.Now().UTC().Format(time.RFC3339),
		Period:     period,
		FeePercent: feePct,
		FeeBase:    base,
		Mapping:    mapping,
		Bookings:   res.Bookings,
		Stats:      res.Stats,
	}
	s.Ledger = make([]LedgerRow, 0, len(res.Ledger))
	for _, r := range res.Ledger {
		s.Ledger = append(s.Ledger, *r)
	}
	for _, r := range res.AutoApproved {
		s.AutoApproved = append(s.AutoApproved, r.ID)
	}
	for _, r := range res.NeedsReview {
		s.NeedsReview = append(s.NeedsReview, r.ID)
	}
	return s
}

// restore rebuilds the aliased Result partitions from the flat ledger
// list and the persisted id sets.
func (s Session) restore() *Result {
	res := &Result{Bookings: s.Bookings, Stats: s.Stats}
	byID := make(map[string]*LedgerRow, len(s.Ledger))
	res.Ledger = make([]*LedgerRow, len(s.Ledger))
	for i := range s.Ledger {
		r := &s.Ledger[i]
		res.Ledger[i] = r
		byID[r.ID] = r
		switch {
		case r.Credit > 0:
			res.Income = append(res.Income, r)
		case r.Debit > 0:
			res.Expenses = append(res.Expenses, r)
		}
	}
	for _, id := range s.AutoApproved {
		if r, ok := byID[id]; ok {
			res.AutoApproved = append(res.AutoApproved, r)
		}
	}
	for _, id := range s.NeedsReview {
		if r, ok := byID[id]; ok {
			res.NeedsReview = append(res.NeedsReview, r)
		}
	}
	return res
}

func saveSession(fpath string, s Session) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return errors.Wrap(err, "unable to marshal session")
	}
	return errors.Wrapf(os.WriteFile(fpath, data, 0o644), "unable to write session: %v", fpath)
}

func loadSession(fpath string) (Session, error) {
	var s Session
	data, err := os.ReadFile(fpath)
	if err != nil {
		return s, errors.Wrapf(err, "unable to read session: %v", fpath)
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return s, errors.Wrapf(err, "unable to parse session: %v", fpath)
	}
	if err := validateSession(s); err != nil {
		return s, errors.Wrapf(err, "session is corrupt: %v", fpath)
	}
	return s, nil
}

// validateSession structurally checks a restored snapshot before any of
// the pipeline touches it: period dates, the debit/credit sign invariant,
// closed-enum categories, the reconciled-implies-note invariant, and
// partition ids that actually resolve.
func validateSession(s Session) error {
	for _, d := range []string{s.Period.Start, s.Period.End} {
		if _, err := time.Parse(isoStamp, d); err != nil {
			return errors.Errorf("bad period date: %q", d)
		}
	}
	if s.Period.End < s.Period.Start {
		return errors.Errorf("period end %s before start %s", s.Period.End, s.Period.Start)
	}

	ids := make(map[string]bool, len(s.Ledger))
	for _, r := range s.Ledger {
		if len(r.ID) == 0 || ids[r.ID] {
			return errors.Errorf("missing or duplicate ledger row id: %q", r.ID)
		}
		ids[r.ID] = true
		if r.Debit < 0 || r.Credit < 0 {
			return errors.Errorf("row %s has a negative amount", r.ID)
		}
		if r.Debit > 0 && r.Credit > 0 {
			return errors.Errorf("row %s has both debit and credit set", r.ID)
		}
		for _, c := range []Category{r.DefaultCategory, r.Category} {
			if len(c) > 0 {
				if _, ok := parseCategory(string(c)); !ok {
					return errors.Errorf("row %s has unknown category %q", r.ID, c)
				}
			}
		}
		if r.SplitPercent < 0 || r.SplitPercent > 100 {
			return errors.Errorf("row %s has split percent %v out of range", r.ID, r.SplitPercent)
		}
		if r.ReconciledOTA && len(strings.TrimSpace(r.Note)) == 0 {
			return errors.Errorf("row %s is reconciled but carries no note", r.ID)
		}
	}
	for _, id := range append(append([]string{}, s.AutoApproved...), s.NeedsReview...) {
		if !ids[id] {
			return errors.Errorf("partition references unknown row id %q", id)
		}
	}
	return nil
}

// The decision store keeps review outcomes across runs, keyed by a stable
// row fingerprint since ids are regenerated on every normalization.
var decisionsBucket = []byte("decisions")

type decision struct {
	Category     Category
	SplitPercent float64
	Note         string
}

type decisionStore struct {
	db *bolt.DB
}

func openDecisionStore(fpath string) (*decisionStore, error) {
	db, err := bolt.Open(fpath, 0o600, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open boltdb at %v", fpath)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(decisionsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "unable to create decisions bucket")
	}
	return &decisionStore{db: db}, nil
}

func (s *decisionStore) Close() error {
	return s.db.Close()
}

func (r LedgerRow) fingerprint() []byte {
	return []byte(fmt.Sprintf("%s|%s|%s|%.2f|%.2f", r.Date, r.Account, r.Description, r.Debit, r.Credit))
}

func (s *decisionStore) saveDecision(r *LedgerRow) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(decisionsBucket)
		var val bytes.Buffer
		d := decision{Category: r.Category, SplitPercent: r.SplitPercent, Note: r.Note}
		if err := gob.NewEncoder(&val).Encode(d); err != nil {
			return errors.Wrapf(err, "unable to encode decision for row: %v", r.ID)
		}
		return b.Put(r.fingerprint(), val.Bytes())
	})
}

// apply replays stored decisions onto freshly normalized rows, through
// the same reassignment contract as live review. Returns how many rows
// were updated.
func (s *decisionStore) apply(rows []*LedgerRow) int {
	var applied int
	s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(decisionsBucket)
		for _, r := range rows {
			val := b.Get(r.fingerprint())
			if val == nil {
				continue
			}
			var d decision
			if err := gob.NewDecoder(bytes.NewBuffer(val)).Decode(&d); err != nil {
				continue
			}
			r.SplitPercent = d.SplitPercent
			r.Note = d.Note
			applyCategory(r, d.Category)
			applied++
		}
		return nil
	})
	return applied
}
