// internal/app/system/txn/txn.go
//
// Package txn is the unit-of-work boundary for multi-document writes.
// Every operation that must commit-or-nothing (family creation, guided
// parents setup, family linking) goes through WithTransaction instead of
// opening ad hoc sessions at call sites.
//
// Standalone mongod instances (and some DocumentDB deployments) reject
// multi-document transactions. IsNotSupported recognizes those failures so
// callers can fall back to a plain sequential run in dev environments.
package txn

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
)

// command error codes a server returns when transactions are unavailable
const (
	codeIllegalOperation           = 20
	codeCommandNotSupported        = 51
	codeOperationNotSupportedInTxn = 263
)

// WithTransaction runs fn inside one MongoDB transaction. If the server
// does not support transactions, fn is re-run once without one; in that
// mode partial application is possible, which is acceptable only for
// development against a standalone mongod.
func WithTransaction(ctx context.Context, client *mongo.Client, fn func(ctx context.Context) error) error {
	sess, err := client.StartSession()
	if err != nil {
		if IsNotSupported(err) {
			return fn(ctx)
		}
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	if err != nil && IsNotSupported(err) {
		return fn(ctx)
	}
	return err
}

// IsNotSupported reports whether err means the deployment cannot run
// multi-document transactions (standalone server, no replica set, or a
// DocumentDB tier without session support).
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}

	var ce mongo.CommandError
	if errors.As(err, &ce) {
		switch ce.Code {
		case codeIllegalOperation, codeCommandNotSupported, codeOperationNotSupportedInTxn:
			return true
		}
	}

	msg := strings.ToLower(err.Error())
	pairs := [][2]string{
		{"transaction", "replica set"},
		{"session", "not supported"},
		{"transaction", "session"},
		{"illegal operation", "transaction"},
	}
	for _, p := range pairs {
		if strings.Contains(msg, p[0]) && strings.Contains(msg, p[1]) {
			return true
		}
	}
	return false
}
