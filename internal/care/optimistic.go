package care

import (
	"fmt"
	"time"

	dom "nekocare/internal/domain"
)

// Phase is the lifecycle of a locally recorded value awaiting the backend.
type Phase int

const (
	// PhaseConfirmed: the backend accepted the write; the value is shown until
	// the next reconciliation drops the entry.
	PhaseConfirmed Phase = iota
	// PhasePending: the write is in flight; the value wins over backend state.
	PhasePending
	// PhaseReverting: the write failed; backend state is shown again.
	PhaseReverting
)

func (p Phase) String() string {
	switch p {
	case PhaseConfirmed:
		return "confirmed"
	case PhasePending:
		return "pending"
	case PhaseReverting:
		return "reverting"
	default:
		return "unknown"
	}
}

// ParsePhase is the inverse of Phase.String.
func ParsePhase(s string) (Phase, bool) {
	switch s {
	case "confirmed":
		return PhaseConfirmed, true
	case "pending", "":
		return PhasePending, true
	case "reverting":
		return PhaseReverting, true
	}
	return 0, false
}

// Pending is one optimistic entry keyed by item in an Overlay.
type Pending struct {
	Phase Phase
	Value string
	Since time.Time
}

// Overlay holds optimistic values keyed by TaskKey / NoticeKey. Methods never
// mutate the receiver; they return an updated copy.
type Overlay map[string]Pending

// TaskValueDone is the overlay value marking a task occurrence as done.
const TaskValueDone = "done"

// TaskKey identifies a task occurrence in an Overlay. catID is 0 for
// household-wide completion.
func TaskKey(defID int64, slot dom.MealSlot, catID int64) string {
	return fmt.Sprintf("task:%s:%d", dom.LogType(defID, slot), catID)
}

// NoticeKey identifies a cat's notice in an Overlay.
func NoticeKey(catID, defID int64) string {
	return fmt.Sprintf("notice:%d:%d", catID, defID)
}

// Lookup returns the value that should be shown for key. Reverting entries
// and missing keys report false so that backend state is used.
func (o Overlay) Lookup(key string) (string, bool) {
	p, ok := o[key]
	if !ok || p.Phase == PhaseReverting {
		return "", false
	}
	return p.Value, true
}

// IsPending reports whether key has a write still in flight.
func (o Overlay) IsPending(key string) bool {
	p, ok := o[key]
	return ok && p.Phase == PhasePending
}

func (o Overlay) clone() Overlay {
	out := make(Overlay, len(o)+1)
	for k, v := range o {
		out[k] = v
	}
	return out
}

// Begin records value as the optimistic state of key.
func (o Overlay) Begin(key, value string, at time.Time) Overlay {
	out := o.clone()
	out[key] = Pending{Phase: PhasePending, Value: value, Since: at}
	return out
}

// Confirm marks key as accepted by the backend with value.
func (o Overlay) Confirm(key, value string) Overlay {
	out := o.clone()
	p := out[key]
	out[key] = Pending{Phase: PhaseConfirmed, Value: value, Since: p.Since}
	return out
}

// Fail marks the write for key as rejected. Backend state shows through.
func (o Overlay) Fail(key string) Overlay {
	p, ok := o[key]
	if !ok {
		return o
	}
	out := o.clone()
	p.Phase = PhaseReverting
	out[key] = p
	return out
}

// Authoritative is the backend-confirmed value of an item.
type Authoritative struct {
	Value string
	At    time.Time
}

// ReconcileSkew tolerates clock drift between the device that started a
// pending write and the backend that timestamped it.
const ReconcileSkew = 2 * time.Minute

// Reconcile drops every entry whose outcome is known: confirmed and
// reverting entries, and pending entries whose real counterpart has arrived.
// A pending entry is matched by an authoritative record with the same value
// written no earlier than Since-ReconcileSkew, or superseded by any record
// written after Since.
func Reconcile(o Overlay, auth map[string]Authoritative) Overlay {
	out := make(Overlay, len(o))
	for k, p := range o {
		if p.Phase != PhasePending {
			continue
		}
		a, ok := auth[k]
		if ok {
			if a.Value == p.Value && !a.At.Before(p.Since.Add(-ReconcileSkew)) {
				continue
			}
			if a.At.After(p.Since) {
				continue
			}
		}
		out[k] = p
	}
	return out
}
