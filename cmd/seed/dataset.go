package main

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"

	"taxiledger/internal/app"
	"taxiledger/internal/core/apperror"
	"taxiledger/internal/core/entity"
	"taxiledger/internal/core/types"
	"taxiledger/internal/domain/catalogs/movementtype"
	"taxiledger/pkg/logger"
)

// Dataset lists the owners and types loaded into a development ledger.
type Dataset struct {
	Members     []string   `yaml:"members"`
	Subscribers []string   `yaml:"subscribers"`
	Vehicles    []string   `yaml:"vehicles"`
	Types       []TypeSeed `yaml:"types"`
}

// TypeSeed describes one movement type.
type TypeSeed struct {
	Kind              movementtype.Kind  `yaml:"kind"`
	Name              string             `yaml:"name"`
	MonthlyRecurrence bool               `yaml:"monthly_recurrence"`
	DefaultAmount     string             `yaml:"default_amount"`
	AppliesTo         entity.AccountKind `yaml:"applies_to"`
}

// Summary counts what a run created.
type Summary struct {
	Accounts     int
	Types        int
	SkippedTypes int
}

// defaultDataset is used when no file is given.
const defaultDataset = `
members:
  - Ana Torres
  - Luis Pereira
subscribers:
  - Radio Centro
vehicles:
  - AB-123-CD
  - EF-456-GH
types:
  - kind: EXPENSE
    name: Monthly fee
    monthly_recurrence: true
    default_amount: "150"
    applies_to: MEMBER
  - kind: EXPENSE
    name: Radio subscription
    monthly_recurrence: true
    default_amount: "80"
    applies_to: SUBSCRIBER
  - kind: EXPENSE
    name: Workshop repair
  - kind: INCOME
    name: Trip income
`

func parseDataset(data []byte) (*Dataset, error) {
	var ds Dataset
	if err := yaml.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("parse dataset: %w", err)
	}
	return &ds, nil
}

// Apply registers every owner, opens its account and creates the types.
// Types that already exist are skipped, so the type section can be reapplied.
func (d *Dataset) Apply(ctx context.Context, rt *app.Runtime) (Summary, error) {
	var sum Summary

	owners := []struct {
		kind  entity.AccountKind
		names []string
	}{
		{entity.AccountMember, d.Members},
		{entity.AccountSubscriber, d.Subscribers},
		{entity.AccountVehicle, d.Vehicles},
	}
	for _, group := range owners {
		for _, name := range group.names {
			ownerID, err := rt.Owners.Register(ctx, group.kind, name)
			if err != nil {
				return sum, fmt.Errorf("register %s %q: %w", group.kind, name, err)
			}
			if _, err := rt.Ledger.OpenAccount(ctx, group.kind, ownerID); err != nil {
				return sum, fmt.Errorf("open account of %q: %w", name, err)
			}
			sum.Accounts++
		}
	}

	for _, ts := range d.Types {
		t, err := ts.build()
		if err != nil {
			return sum, err
		}
		err = rt.Types.Create(ctx, t)
		if apperror.IsConflict(err) {
			logger.Info(ctx, "movement type exists, skipping", "name", t.Name, "kind", t.Kind)
			sum.SkippedTypes++
			continue
		}
		if err != nil {
			return sum, fmt.Errorf("create type %q: %w", t.Name, err)
		}
		sum.Types++
	}

	return sum, nil
}

func (ts TypeSeed) build() (*movementtype.Type, error) {
	t := movementtype.NewType(ts.Kind, ts.Name, ts.MonthlyRecurrence)
	t.AppliesTo = ts.AppliesTo
	if ts.DefaultAmount != "" {
		amount, err := types.NewMoneyFromString(ts.DefaultAmount)
		if err != nil {
			return nil, fmt.Errorf("default amount of %q: %w", ts.Name, err)
		}
		t.DefaultAmount = amount
	}
	return t, nil
}
