package payment

import (
	"context"
	"strings"

	"campbook/internal/domain/money"
	"campbook/internal/pkg/errs"
)

// PrefixVerifier accepts any intent reference carrying the configured
// prefix. It stands in for a payment processor, which stays out of scope.
type PrefixVerifier struct {
	prefix string
}

func NewPrefixVerifier(prefix string) *PrefixVerifier {
	return &PrefixVerifier{prefix: prefix}
}

func (v *PrefixVerifier) Verify(ctx context.Context, intentRef string, amount money.Cents) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ref := strings.TrimSpace(intentRef)
	if len(ref) <= len(v.prefix) || !strings.HasPrefix(ref, v.prefix) {
		return errs.Wrapf(errs.ErrPaymentIntentInvalid, "intent %q does not match prefix %q", intentRef, v.prefix)
	}
	if amount < 0 {
		return errs.Wrapf(errs.ErrPaymentIntentInvalid, "negative amount %s", amount)
	}
	return nil
}
