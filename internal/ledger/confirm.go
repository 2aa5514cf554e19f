package ledger

import "context"

// Confirmer asks the user to approve a destructive action.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// Answer is a Confirmer with a predetermined reply, used when the
// confirmation already happened on the client side.
type Answer bool

func (a Answer) Confirm(context.Context, string) bool { return bool(a) }
