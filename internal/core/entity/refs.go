package entity

import (
	"fmt"

	"taxiledger/internal/core/apperror"
	"taxiledger/internal/core/id"
)

// AccountKind discriminates the owner of an account.
type AccountKind string

const (
	AccountMember     AccountKind = "MEMBER"
	AccountSubscriber AccountKind = "SUBSCRIBER"
	AccountVehicle    AccountKind = "VEHICLE"
)

// AccountKinds lists every account variant.
var AccountKinds = []AccountKind{AccountMember, AccountSubscriber, AccountVehicle}

// Valid reports whether k is a known account kind.
func (k AccountKind) Valid() bool {
	switch k {
	case AccountMember, AccountSubscriber, AccountVehicle:
		return true
	}
	return false
}

// AccountRef points at exactly one member, subscriber or vehicle account.
// The zero value means "no account".
type AccountRef struct {
	Kind AccountKind `json:"kind"`
	ID   id.ID       `json:"id"`
}

// MemberAccount references a member account.
func MemberAccount(accountID id.ID) AccountRef {
	return AccountRef{Kind: AccountMember, ID: accountID}
}

// SubscriberAccount references a subscriber account.
func SubscriberAccount(accountID id.ID) AccountRef {
	return AccountRef{Kind: AccountSubscriber, ID: accountID}
}

// VehicleAccount references a vehicle account.
func VehicleAccount(accountID id.ID) AccountRef {
	return AccountRef{Kind: AccountVehicle, ID: accountID}
}

// NoAccount is the empty reference.
func NoAccount() AccountRef {
	return AccountRef{}
}

// IsNone reports whether the reference is empty.
func (r AccountRef) IsNone() bool {
	return r.Kind == "" && id.IsNil(r.ID)
}

// Is reports whether the reference points at an account of kind k.
func (r AccountRef) Is(k AccountKind) bool {
	return !r.IsNone() && r.Kind == k
}

// Validate checks that the reference is either empty or fully set with a known kind.
func (r AccountRef) Validate() error {
	if r.IsNone() {
		return nil
	}
	if !r.Kind.Valid() {
		return apperror.NewValidation("unknown account kind").WithDetail("kind", string(r.Kind))
	}
	if id.IsNil(r.ID) {
		return apperror.NewValidation("account id is required").WithDetail("kind", string(r.Kind))
	}
	return nil
}

// Require is Validate plus rejection of the empty reference.
func (r AccountRef) Require() error {
	if r.IsNone() {
		return apperror.NewValidation("exactly one account reference is required")
	}
	return r.Validate()
}

func (r AccountRef) String() string {
	if r.IsNone() {
		return "none"
	}
	return fmt.Sprintf("%s:%s", r.Kind, r.ID)
}

// PayerKind discriminates the instrument that pays an account movement.
type PayerKind string

const (
	PayerReceipt           PayerKind = "RECEIPT"
	PayerPayrollSettlement PayerKind = "PAYROLL_SETTLEMENT"
	PayerMoneyMovement     PayerKind = "MONEY_MOVEMENT"
)

// Valid reports whether k is a known payer kind.
func (k PayerKind) Valid() bool {
	switch k {
	case PayerReceipt, PayerPayrollSettlement, PayerMoneyMovement:
		return true
	}
	return false
}

// PayerRef points at exactly one paying instrument.
type PayerRef struct {
	Kind PayerKind `json:"kind"`
	ID   id.ID     `json:"id"`
}

// ReceiptPayer references a receipt.
func ReceiptPayer(receiptID id.ID) PayerRef {
	return PayerRef{Kind: PayerReceipt, ID: receiptID}
}

// SettlementPayer references a payroll settlement.
func SettlementPayer(settlementID id.ID) PayerRef {
	return PayerRef{Kind: PayerPayrollSettlement, ID: settlementID}
}

// MovementPayer references a money movement.
func MovementPayer(movementID id.ID) PayerRef {
	return PayerRef{Kind: PayerMoneyMovement, ID: movementID}
}

// Validate checks that exactly one payer is referenced.
func (r PayerRef) Validate() error {
	if !r.Kind.Valid() {
		return apperror.NewValidation("exactly one payer reference is required").
			WithDetail("kind", string(r.Kind))
	}
	if id.IsNil(r.ID) {
		return apperror.NewValidation("payer id is required").WithDetail("kind", string(r.Kind))
	}
	return nil
}

// Mutable reports whether allocations backed by this payer may be modified or deleted.
// Receipts and payroll settlements leave permanent trails.
func (r PayerRef) Mutable() bool {
	return r.Kind == PayerMoneyMovement
}

func (r PayerRef) String() string {
	return fmt.Sprintf("%s:%s", r.Kind, r.ID)
}
