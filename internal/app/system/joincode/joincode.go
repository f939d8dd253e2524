// internal/app/system/joincode/joincode.go
//
// Package joincode issues the 8-character capability tokens members share
// to invite or merge families. Possession of an unconsumed root-member
// code is sufficient authorization to link that member's family, so codes
// must be globally unique and are never reused once consumed.
package joincode

import (
	"context"
	"crypto/rand"
	"math/big"
	"regexp"

	"github.com/dalemusser/kinhub/internal/app/system/apperrors"
)

// Length is the fixed code length.
const Length = 8

// 36-symbol alphabet: uppercase letters plus digits.
const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// maxAttempts bounds the collision-retry loop. With 36^8 possible codes
// this only trips when generation is broken or the space is nearly full,
// and in either case failing loudly beats degrading uniqueness.
const maxAttempts = 10

var pattern = regexp.MustCompile(`^[A-Z0-9]{8}$`)

// Valid reports whether s is a well-formed join code.
func Valid(s string) bool { return pattern.MatchString(s) }

// ExistsFunc reports whether a code is already assigned to any member,
// store-wide.
type ExistsFunc func(ctx context.Context, code string) (bool, error)

// Issuer draws unique join codes against an existence check.
type Issuer struct {
	exists ExistsFunc
}

// New returns an Issuer backed by the given existence check.
func New(exists ExistsFunc) *Issuer {
	return &Issuer{exists: exists}
}

// Issue returns a fresh code not currently assigned to any member. The
// check here closes most of the race window; the store's unique index on
// join_code closes the rest, and stores treat a duplicate-key insert as a
// signal to call Issue again.
func (i *Issuer) Issue(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		code, err := Generate()
		if err != nil {
			return "", err
		}
		taken, err := i.exists(ctx, code)
		if err != nil {
			return "", apperrors.Transient("join code uniqueness check failed", err)
		}
		if !taken {
			return code, nil
		}
	}
	return "", apperrors.New(apperrors.KindTransient, apperrors.CodeIssuanceExhausted,
		"could not find a unique join code")
}

// Generate draws one random code from the alphabet.
func Generate() (string, error) {
	max := big.NewInt(int64(len(alphabet)))
	buf := make([]byte, Length)
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", apperrors.Transient("random source unavailable", err)
		}
		buf[i] = alphabet[n.Int64()]
	}
	return string(buf), nil
}
