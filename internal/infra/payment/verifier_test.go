package payment_test

import (
	"context"
	"testing"

	"campbook/internal/domain/money"
	"campbook/internal/infra/payment"
	"campbook/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
)

func TestPrefixVerifier(t *testing.T) {
	v := payment.NewPrefixVerifier("pi_")
	tests := []struct {
		name    string
		ref     string
		amount  money.Cents
		wantErr bool
	}{
		{name: "valid", ref: "pi_3Nx", amount: 5700},
		{name: "zero deposit", ref: "pi_3Nx", amount: 0},
		{name: "wrong prefix", ref: "ch_3Nx", amount: 5700, wantErr: true},
		{name: "prefix only", ref: "pi_", amount: 5700, wantErr: true},
		{name: "negative amount", ref: "pi_3Nx", amount: -1, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Verify(context.Background(), tt.ref, tt.amount)
			if tt.wantErr {
				assert.True(t, errs.Is(err, errs.ErrPaymentIntentInvalid))
				return
			}
			assert.NoError(t, err)
		})
	}
}
