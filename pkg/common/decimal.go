package common

import (
	"fmt"
	"math"
	"strings"

	decimal2 "github.com/govalues/decimal"
)

// Ratio is a non-negative exact decimal such as an over-provisioning
// ratio of 0.07.
type Ratio struct {
	decimal2.Decimal
}

var (
	ZeroRatio = Ratio{Decimal: decimal2.Zero}
	OneRatio  = Ratio{Decimal: decimal2.One}
)

func ParseRatio(s string) (Ratio, error) {
	d, err := decimal2.Parse(strings.TrimSpace(s))
	if err != nil {
		return Ratio{}, fmt.Errorf("%w: ratio %q: %v", ErrInvalidFormat, s, err)
	}
	return NewRatio(d)
}

func MustParseRatio(s string) Ratio {
	r, err := ParseRatio(s)
	if err != nil {
		panic(err)
	}
	return r
}

func NewRatio(d decimal2.Decimal) (Ratio, error) {
	if d.IsNeg() {
		return Ratio{}, fmt.Errorf("%w: ratio %v", ErrNegativeResult, d)
	}
	return Ratio{Decimal: d}, nil
}

func (r Ratio) Equal(o Ratio) bool {
	return r.Decimal.Cmp(o.Decimal) == 0
}

func (r Ratio) IsZero() bool {
	return r.Decimal.IsZero()
}

func (r Ratio) String() string {
	return r.Decimal.String()
}

// OnePlus returns 1 + r.
func (r Ratio) OnePlus() (Ratio, error) {
	res, err := decimal2.One.Add(r.Decimal)
	if err != nil {
		return Ratio{}, fmt.Errorf("1 + %v: %w", r, ErrOverflow)
	}
	return Ratio{Decimal: res}, nil
}

func (r Ratio) MulInt(n uint64) (Ratio, error) {
	if n > math.MaxInt64 {
		return Ratio{}, fmt.Errorf("%v * %d: %w", r, n, ErrOverflow)
	}
	rhs, err := decimal2.NewFromInt64(int64(n), 0, 0)
	if err != nil {
		return Ratio{}, fmt.Errorf("%v * %d: %w", r, n, ErrOverflow)
	}
	res, err := r.Decimal.Mul(rhs)
	if err != nil {
		return Ratio{}, fmt.Errorf("%v * %d: %w", r, n, ErrOverflow)
	}
	return Ratio{Decimal: res}, nil
}
