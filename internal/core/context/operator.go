package context

import (
	"context"
)

// Operator identifies who triggered a ledger mutation (cashier, administrator, scheduler).
// It is informational only and ends up in logs.
type Operator struct {
	ID   string
	Name string
}

type operatorKey struct{}

type jobKey struct{}

// WithOperator adds Operator to context.
func WithOperator(ctx context.Context, op *Operator) context.Context {
	return context.WithValue(ctx, operatorKey{}, op)
}

// GetOperator returns Operator from context.
func GetOperator(ctx context.Context) *Operator {
	if v, ok := ctx.Value(operatorKey{}).(*Operator); ok {
		return v
	}
	return nil
}

// GetOperatorID returns operator ID from context or empty string.
func GetOperatorID(ctx context.Context) string {
	if op := GetOperator(ctx); op != nil {
		return op.ID
	}
	return ""
}

// WithJob marks the context as running a periodic job.
func WithJob(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, jobKey{}, name)
}

// GetJob returns the periodic job name or empty string.
func GetJob(ctx context.Context) string {
	if v, ok := ctx.Value(jobKey{}).(string); ok {
		return v
	}
	return ""
}
