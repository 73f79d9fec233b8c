// Package contextx carries an open database transaction through context
// so repositories can join an in-flight unit of work.
package contextx

import "context"

type txKey struct{}

// WithTx returns a context carrying the given transaction handle.
func WithTx(ctx context.Context, tx any) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// GetTx returns the transaction handle stored in the context, or nil.
func GetTx(ctx context.Context) any {
	return ctx.Value(txKey{})
}
