// Package pilot meters a client's free pilot signing credits.
//
// RecordCompletion and ConvertToFullClient are pure transitions over an Entry.
// The Ledger applies them to a Store as a single optimistic read-modify-write
// per client, so concurrent completions for the same client can never skip
// zero or go negative.
package pilot

import (
	"fmt"

	apperr "signwise/internal/errors"
	"signwise/internal/validation"
)

// DefaultAllotment is the number of free signings a new pilot client gets.
const DefaultAllotment = 10

// Entry is a client's pilot ledger state.
type Entry struct {
	ClientID         string `json:"client_id"`
	PilotMode        bool   `json:"pilot_mode"`
	CreditsRemaining int    `json:"credits_remaining"`
	// Version increases on every stored write and keys the conditional update.
	Version int64 `json:"version"`
}

// NewEntry provisions a client in pilot mode with the given allotment.
func NewEntry(clientID string, allotment int) (Entry, error) {
	v := validation.New()
	v.Required("client_id", clientID)
	v.MaxLength("client_id", clientID, validation.MaxClientIDLength)
	v.Positive("pilot.allotment", int64(allotment))
	if err := v.Err(); err != nil {
		return Entry{}, err
	}
	return Entry{ClientID: clientID, PilotMode: true, CreditsRemaining: allotment}, nil
}

// Outcome is the result of recording one completed signing.
type Outcome struct {
	Entry    Entry `json:"entry"`
	Billable bool  `json:"billable"`
	// Anomaly is set when the entry was found inconsistent. The completion is
	// still usable: it is billed, and the caller must log the anomaly.
	Anomaly error `json:"-"`
}

// RecordCompletion consumes one pilot credit if the client has one.
//
// A client that is not in pilot mode is billed and left unchanged. A pilot
// client with credits gets the signing free; the credit that brings the
// balance to zero also ends pilot mode in the same returned entry. A pilot
// client already at zero is billed, pilot mode is cleared and an
// InvariantViolation is reported.
func RecordCompletion(e Entry) Outcome {
	if !e.PilotMode {
		return Outcome{Entry: e, Billable: true}
	}

	if e.CreditsRemaining <= 0 {
		anomaly := apperr.Invariant(fmt.Sprintf(
			"client %s is in pilot mode with %d credits remaining", e.ClientID, e.CreditsRemaining))
		next := e
		next.PilotMode = false
		next.CreditsRemaining = 0
		return Outcome{Entry: next, Billable: true, Anomaly: anomaly}
	}

	next := e
	next.CreditsRemaining--
	if next.CreditsRemaining == 0 {
		next.PilotMode = false
	}
	return Outcome{Entry: next, Billable: false}
}

// ConvertToFullClient ends pilot mode early. Remaining credits are kept on the
// entry for reporting but can no longer be spent.
func ConvertToFullClient(e Entry) Entry {
	e.PilotMode = false
	return e
}

// sameState reports whether two entries hold the same ledger values,
// ignoring the version.
func sameState(a, b Entry) bool {
	return a.PilotMode == b.PilotMode && a.CreditsRemaining == b.CreditsRemaining
}
