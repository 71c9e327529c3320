// Package invariant is the pure predicate and arithmetic layer shared by the
// claims, riskpool and oracle modules. Every balance mutation elsewhere in
// the protocol computes its proposed state with the checked arithmetic here
// and verifies the relevant predicate before committing; a violation aborts
// the whole operation with no partial write.
package invariant

import (
	"math/big"

	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"
)

// Amounts carry the i128 domain of the deployed contracts. sdkmath.Int only
// hard-fails past 256 bits, so the checked ops enforce the 128-bit bound
// explicitly.
var (
	maxAmount = sdkmath.NewIntFromBigInt(new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1)))
	minAmount = sdkmath.NewIntFromBigInt(new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127)))
)

// MaxAmount returns the largest representable amount.
func MaxAmount() sdkmath.Int {
	return maxAmount
}

func inRange(x sdkmath.Int) bool {
	return x.GTE(minAmount) && x.LTE(maxAmount)
}

// SafeAdd returns a+b or ErrOverflow when the sum leaves the amount range.
func SafeAdd(a, b sdkmath.Int) (sdkmath.Int, error) {
	sum := a.Add(b)
	if !inRange(sum) {
		return sdkmath.Int{}, errorsmod.Wrapf(ErrOverflow, "%s + %s", a, b)
	}
	return sum, nil
}

// SafeSub returns a-b or ErrOverflow when the difference leaves the amount range.
func SafeSub(a, b sdkmath.Int) (sdkmath.Int, error) {
	diff := a.Sub(b)
	if !inRange(diff) {
		return sdkmath.Int{}, errorsmod.Wrapf(ErrOverflow, "%s - %s", a, b)
	}
	return diff, nil
}

// SafeMul returns a*b or ErrOverflow when the product leaves the amount range.
func SafeMul(a, b sdkmath.Int) (sdkmath.Int, error) {
	product := a.Mul(b)
	if !inRange(product) {
		return sdkmath.Int{}, errorsmod.Wrapf(ErrOverflow, "%s * %s", a, b)
	}
	return product, nil
}
