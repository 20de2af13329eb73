package common

import (
	"fmt"
	"math"
	"math/bits"
	"regexp"
	"strings"

	dec "github.com/govalues/decimal"
)

type Unit uint8

const (
	UnitB Unit = iota
	UnitK
	UnitM
	UnitG
	UnitT
	// UnitP is accepted by ParseSize but has no scale.
	UnitP
)

const (
	SizeBase    uint64 = 1024
	unitLetters        = "BKMGTP"
)

func (u Unit) String() string {
	if int(u) < len(unitLetters) {
		return unitLetters[u : u+1]
	}
	return fmt.Sprintf("Unit(%d)", uint8(u))
}

// Scale returns the number of bytes in one u.
func (u Unit) Scale() (uint64, error) {
	if u > UnitT {
		return 0, fmt.Errorf("%w: %v", ErrInvalidUnit, u)
	}
	return 1 << (10 * uint(u)), nil
}

func ParseUnit(s string) (Unit, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) != 1 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidUnit, s)
	}
	idx := strings.IndexByte(unitLetters, s[0])
	if idx < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidUnit, s)
	}
	return Unit(idx), nil
}

// Size is an immutable byte count. The zero value is 0B.
type Size struct {
	bytes uint64
}

func SizeFromBytes(n uint64) Size {
	return Size{bytes: n}
}

func NewSize(value uint64, unit Unit) (Size, error) {
	scale, err := unit.Scale()
	if err != nil {
		return Size{}, err
	}
	n, err := mulBytes(value, scale)
	if err != nil {
		return Size{}, fmt.Errorf("%d%v: %w", value, unit, err)
	}
	return Size{bytes: n}, nil
}

func MustNewSize(value uint64, unit Unit) Size {
	s, err := NewSize(value, unit)
	if err != nil {
		panic(err)
	}
	return s
}

// NewSizeFromDecimal builds a Size from a possibly fractional value.
// The product must be a whole number of bytes.
func NewSizeFromDecimal(value dec.Decimal, unit Unit) (Size, error) {
	scale, err := unit.Scale()
	if err != nil {
		return Size{}, err
	}
	if value.IsNeg() {
		return Size{}, fmt.Errorf("%w: %v%v", ErrNegativeResult, value, unit)
	}
	if scale > math.MaxInt64 {
		return Size{}, fmt.Errorf("%v%v: %w", value, unit, ErrOverflow)
	}
	factor, err := dec.NewFromInt64(int64(scale), 0, 0)
	if err != nil {
		return Size{}, fmt.Errorf("%v%v: %w", value, unit, ErrOverflow)
	}
	prod, err := value.Mul(factor)
	if err != nil {
		return Size{}, fmt.Errorf("%v%v: %w", value, unit, ErrOverflow)
	}
	whole, frac, ok := prod.Int64(prod.Scale())
	if !ok {
		return Size{}, fmt.Errorf("%v%v: %w", value, unit, ErrOverflow)
	}
	if frac != 0 {
		return Size{}, fmt.Errorf("%w: %v%v is not a whole number of bytes", ErrInvalidFormat, value, unit)
	}
	return Size{bytes: uint64(whole)}, nil
}

var sizePattern = regexp.MustCompile(`^([0-9]+(?:\.[0-9]+)?)([BKMGTP])$`)

// ParseSize parses strings like "4K", "2.5g" or " 96K ".
func ParseSize(s string) (Size, error) {
	norm := strings.ToUpper(strings.TrimSpace(s))
	match := sizePattern.FindStringSubmatch(norm)
	if match == nil {
		return Size{}, fmt.Errorf("%w: %q, expected a value like '4K' or '2.5G'", ErrInvalidFormat, s)
	}
	unit, err := ParseUnit(match[2])
	if err != nil {
		return Size{}, err
	}
	value, err := dec.Parse(match[1])
	if err != nil {
		return Size{}, fmt.Errorf("%w: %q: %v", ErrInvalidFormat, s, err)
	}
	ret, err := NewSizeFromDecimal(value, unit)
	if err != nil {
		return Size{}, fmt.Errorf("parse %q: %w", s, err)
	}
	return ret, nil
}

func MustParseSize(s string) Size {
	ret, err := ParseSize(s)
	if err != nil {
		panic(err)
	}
	return ret
}

func (s Size) Bytes() uint64 {
	return s.bytes
}

func (s Size) IsZero() bool {
	return s.bytes == 0
}

func (s Size) Add(o Size) (Size, error) {
	sum, carry := bits.Add64(s.bytes, o.bytes, 0)
	if carry != 0 {
		return Size{}, fmt.Errorf("%v + %v: %w", s, o, ErrOverflow)
	}
	return Size{bytes: sum}, nil
}

func (s Size) Sub(o Size) (Size, error) {
	if s.bytes < o.bytes {
		return Size{}, fmt.Errorf("%v - %v: %w", s, o, ErrNegativeResult)
	}
	return Size{bytes: s.bytes - o.bytes}, nil
}

func (s Size) MulInt(n uint64) (Size, error) {
	ret, err := mulBytes(s.bytes, n)
	if err != nil {
		return Size{}, fmt.Errorf("%v * %d: %w", s, n, err)
	}
	return Size{bytes: ret}, nil
}

// MulRatio multiplies by an exact decimal and rounds the product up to
// a whole byte, so x < s.MulRatio(r) holds exactly when x < s*r.
func (s Size) MulRatio(r Ratio) (Size, error) {
	if s.bytes > math.MaxInt64 {
		return Size{}, fmt.Errorf("%v * %v: %w", s, r, ErrOverflow)
	}
	lhs, err := dec.NewFromInt64(int64(s.bytes), 0, 0)
	if err != nil {
		return Size{}, fmt.Errorf("%v * %v: %w", s, r, ErrOverflow)
	}
	prod, err := lhs.Mul(r.Decimal)
	if err != nil {
		return Size{}, fmt.Errorf("%v * %v: %w", s, r, ErrOverflow)
	}
	whole, _, ok := prod.Ceil(0).Int64(0)
	if !ok || whole < 0 {
		return Size{}, fmt.Errorf("%v * %v: %w", s, r, ErrOverflow)
	}
	return Size{bytes: uint64(whole)}, nil
}

// DivInt is floor division by a scalar.
func (s Size) DivInt(n uint64) (Size, error) {
	if n == 0 {
		return Size{}, fmt.Errorf("%v / 0: %w", s, ErrDivisionByZero)
	}
	return Size{bytes: s.bytes / n}, nil
}

// Div is floor division of two sizes.
func (s Size) Div(o Size) (uint64, error) {
	if o.bytes == 0 {
		return 0, fmt.Errorf("%v / %v: %w", s, o, ErrDivisionByZero)
	}
	return s.bytes / o.bytes, nil
}

func (s Size) Mod(o Size) (uint64, error) {
	if o.bytes == 0 {
		return 0, fmt.Errorf("%v %% %v: %w", s, o, ErrDivisionByZero)
	}
	return s.bytes % o.bytes, nil
}

func (s Size) Cmp(o Size) int {
	switch {
	case s.bytes < o.bytes:
		return -1
	case s.bytes > o.bytes:
		return 1
	}
	return 0
}

func (s Size) Less(o Size) bool {
	return s.bytes < o.bytes
}

// String renders the largest unit that keeps the value an integer,
// e.g. 4194304 bytes is "4M".
func (s Size) String() string {
	val := s.bytes
	ui := UnitB
	for val >= SizeBase && ui < UnitT && val%SizeBase == 0 {
		val /= SizeBase
		ui++
	}
	return fmt.Sprintf("%d%v", val, ui)
}

// CeilDiv returns the smallest n with n*b >= a.
func CeilDiv(a, b Size) (uint64, error) {
	return CeilDivBytes(a, b.bytes)
}

func CeilDivBytes(a Size, b uint64) (uint64, error) {
	if b == 0 {
		return 0, fmt.Errorf("ceildiv(%v, 0): %w", a, ErrDivisionByZero)
	}
	q := a.bytes / b
	if a.bytes%b != 0 {
		q++
	}
	return q, nil
}

// AlignUp rounds a up to the next multiple of align.
func AlignUp(a, align Size) (Size, error) {
	n, err := CeilDiv(a, align)
	if err != nil {
		return Size{}, err
	}
	return align.MulInt(n)
}

func IsAligned(a, align Size) (bool, error) {
	rem, err := a.Mod(align)
	if err != nil {
		return false, err
	}
	return rem == 0, nil
}

func gcd(a, b uint64) uint64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func LCM(a, b Size) (Size, error) {
	g := gcd(a.bytes, b.bytes)
	if g == 0 {
		return Size{}, fmt.Errorf("lcm(%v, %v): %w", a, b, ErrDivisionByZero)
	}
	ret, err := mulBytes(a.bytes/g, b.bytes)
	if err != nil {
		return Size{}, fmt.Errorf("lcm(%v, %v): %w", a, b, err)
	}
	return Size{bytes: ret}, nil
}

func mulBytes(a, b uint64) (uint64, error) {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return 0, ErrOverflow
	}
	return lo, nil
}
