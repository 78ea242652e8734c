package status

import (
	"context"
	"net/url"
)

// Phase is the state of one status-check session.
type Phase int

const (
	Idle Phase = iota
	AwaitingInput
	Navigating
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "Idle"
	case AwaitingInput:
		return "AwaitingInput"
	case Navigating:
		return "Navigating"
	default:
		return "Unknown"
	}
}

// Check walks one status-check session through its phases:
// Idle -> AwaitingInput -> Navigating, or back to AwaitingInput with an
// error message when a submitted code is rejected. There is no terminal
// failure; the user may retry any number of times.
type Check struct {
	store    CodeStore
	phase    Phase
	entry    Entry
	errMsg   string
	redirect string
}

// NewCheck starts an idle check over store.
func NewCheck(store CodeStore) *Check {
	return &Check{store: store}
}

// Resolve determines the entry and moves the check to AwaitingInput.
func (c *Check) Resolve(ctx context.Context, nav NavState, query url.Values) Entry {
	c.entry = ResolveEntry(ctx, c.store, nav, query)
	c.phase = AwaitingInput
	c.errMsg = ""
	c.redirect = ""
	return c.entry
}

// Submit validates code under the resolved hint. An idle check is resolved
// with no context first.
func (c *Check) Submit(ctx context.Context, code string) Outcome {
	if c.phase == Idle {
		c.Resolve(ctx, NavState{}, nil)
	}

	out := Submit(ctx, c.store, c.entry.Hint, code)
	if !out.OK {
		c.phase = AwaitingInput
		c.errMsg = out.Message
		c.redirect = ""
		return out
	}

	c.entry.Code = out.Code
	c.entry.CanProceed = true
	c.phase = Navigating
	c.errMsg = ""
	c.redirect = out.RedirectURL
	return out
}

// Phase returns the current phase.
func (c *Check) Phase() Phase { return c.phase }

// Entry returns the resolved entry, updated with the last accepted code.
func (c *Check) Entry() Entry { return c.entry }

// ErrorMessage returns the message of the last rejected code, if any.
func (c *Check) ErrorMessage() string { return c.errMsg }

// RedirectURL returns the results URL once the check is Navigating.
func (c *Check) RedirectURL() string { return c.redirect }
