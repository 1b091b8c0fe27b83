package movementtype

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taxiledger/internal/core/apperror"
	"taxiledger/internal/core/types"
)

func TestType_Validate(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		typ     *Type
		wantErr bool
	}{
		{
			name: "valid",
			typ:  NewType(KindExpense, "Cuota de radio", true),
		},
		{
			name:    "unknown kind",
			typ:     NewType("TRANSFER", "Cuota", false),
			wantErr: true,
		},
		{
			name:    "blank name",
			typ:     NewType(KindIncome, "   ", false),
			wantErr: true,
		},
		{
			name: "accented name at the limit",
			typ:  NewType(KindExpense, strings.Repeat("ñ", maxNameLength), false),
		},
		{
			name:    "accented name over the limit",
			typ:     NewType(KindExpense, strings.Repeat("é", maxNameLength+1), false),
			wantErr: true,
		},
		{
			name: "negative default amount",
			typ: func() *Type {
				typ := NewType(KindExpense, "Multa", false)
				typ.DefaultAmount = types.MustMoney("-1")
				return typ
			}(),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.typ.Validate(ctx)
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			assert.True(t, apperror.IsValidation(err), "got %v", err)
		})
	}
}
