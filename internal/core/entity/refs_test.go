package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"taxiledger/internal/core/apperror"
	"taxiledger/internal/core/id"
)

func TestAccountRef_Validate(t *testing.T) {
	tests := []struct {
		name    string
		ref     AccountRef
		wantErr bool
	}{
		{"none", NoAccount(), false},
		{"member", MemberAccount(id.New()), false},
		{"vehicle", VehicleAccount(id.New()), false},
		{"kind without id", AccountRef{Kind: AccountSubscriber}, true},
		{"id without kind", AccountRef{ID: id.New()}, true},
		{"unknown kind", AccountRef{Kind: "BUS", ID: id.New()}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ref.Validate()
			if tt.wantErr {
				assert.True(t, apperror.IsValidation(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAccountRef_Require(t *testing.T) {
	assert.True(t, apperror.IsValidation(NoAccount().Require()))
	assert.NoError(t, MemberAccount(id.New()).Require())
}

func TestPayerRef(t *testing.T) {
	assert.True(t, MovementPayer(id.New()).Mutable())
	assert.False(t, ReceiptPayer(id.New()).Mutable())
	assert.False(t, SettlementPayer(id.New()).Mutable())

	assert.True(t, apperror.IsValidation(PayerRef{}.Validate()))
	assert.True(t, apperror.IsValidation(PayerRef{Kind: PayerReceipt}.Validate()))
	assert.NoError(t, SettlementPayer(id.New()).Validate())
}
