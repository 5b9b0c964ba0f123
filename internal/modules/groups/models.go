// Package groups owns the user-defined categories and the assignment
// engine that moves tickers between them. A ticker belongs to at most one
// group at any time; the store enforces that by construction.
package groups

import "time"

// Group is a user-defined named category holding a unique-namespace set of
// tickers. Ticker order is value-derived (re-ranked after every mutation),
// not user-controlled.
type Group struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Tickers   []string  `json:"tickers"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (g Group) clone() Group {
	out := g
	out.Tickers = make([]string, len(g.Tickers))
	copy(out.Tickers, g.Tickers)
	return out
}

// AssignResult reports what an Assign call actually did.
type AssignResult struct {
	Ticker       string // normalized ticker
	FromGroupID  string // previous owner, empty if unassigned
	ToGroupID    string // new owner, empty if unassigned
	Changed      bool   // membership moved between rows
	BecameManual bool   // ticker entered the manually-tracked set
}

// RemoveResult reports what a RemoveFromWorkspace call actually did.
type RemoveResult struct {
	Ticker      string
	FromGroupID string // group that held the ticker, empty if none
	WasManual   bool
	Changed     bool
}
