package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"taxiledger/internal/core/entity"
	"taxiledger/internal/core/types"
)

type mockRow struct {
	entity.BaseEntity
	Account entity.AccountRef `db:"-"`
	Number  string            `db:"number"`
	Amount  types.Money       `db:"amount"`
	Note    string
}

func TestExtractDBColumns(t *testing.T) {
	cols := ExtractDBColumns[mockRow]()

	assert.Equal(t, []string{
		"id", "active", "version", "created_at", "updated_at", "number", "amount",
	}, cols)
}

func TestExtractDBColumns_Pointer(t *testing.T) {
	assert.Equal(t, ExtractDBColumns[mockRow](), ExtractDBColumns[*mockRow]())
}

func TestStructToMap(t *testing.T) {
	row := &mockRow{
		BaseEntity: entity.NewBaseEntity(),
		Account:    entity.VehicleAccount(entity.NewBaseEntity().ID),
		Number:     "CAJ-2025-00001",
		Amount:     types.MustMoney("12.50"),
		Note:       "ignored",
	}
	row.Version = 5

	m := StructToMap(row)

	assert.Equal(t, row.ID, m["id"])
	assert.Equal(t, true, m["active"])
	assert.Equal(t, 5, m["version"])
	assert.Equal(t, "CAJ-2025-00001", m["number"])
	assert.True(t, types.MustMoney("12.5").Equal(m["amount"].(types.Money)))
	assert.NotContains(t, m, "Account")
	assert.NotContains(t, m, "Note")
	assert.Len(t, m, 7)
}

func TestStructToMap_NotAStruct(t *testing.T) {
	assert.Nil(t, StructToMap(42))
}
