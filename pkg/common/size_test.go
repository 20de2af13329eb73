package common

import (
	"errors"
	"math"
	"testing"

	dec "github.com/govalues/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSize(t *testing.T) {
	s, err := NewSize(4, UnitM)
	require.NoError(t, err)
	assert.Equal(t, uint64(4<<20), s.Bytes())

	s, err = NewSize(3, UnitT)
	require.NoError(t, err)
	assert.Equal(t, uint64(3)<<40, s.Bytes())

	_, err = NewSize(1, UnitP)
	assert.True(t, errors.Is(err, ErrInvalidUnit))

	_, err = NewSize(1, Unit(42))
	assert.True(t, errors.Is(err, ErrInvalidUnit))

	_, err = NewSize(math.MaxUint64, UnitK)
	assert.True(t, errors.Is(err, ErrOverflow))
}

func TestParseSize(t *testing.T) {
	cases := []struct {
		in    string
		bytes uint64
	}{
		{"4K", 4 << 10},
		{"4k", 4 << 10},
		{" 32M ", 32 << 20},
		{"2.5G", 5 << 29},
		{"0.5K", 512},
		{"96K", 96 << 10},
		{"82G", 82 << 30},
		{"7B", 7},
		{"1T", 1 << 40},
		{"0B", 0},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			s, err := ParseSize(c.in)
			require.NoError(t, err)
			assert.Equal(t, c.bytes, s.Bytes())
		})
	}

	bad := []string{"", "4", "M", "4MB", "4X", "-4M", "4.M", ".5M", "4 M", "1.2.3G", "four"}
	for _, in := range bad {
		t.Run("bad "+in, func(t *testing.T) {
			_, err := ParseSize(in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidFormat), err.Error())
		})
	}

	_, err := ParseSize("0.3B")
	assert.True(t, errors.Is(err, ErrInvalidFormat))

	_, err = ParseSize("2P")
	assert.True(t, errors.Is(err, ErrInvalidUnit))
	assert.Contains(t, err.Error(), "2P")
}

func TestSizeString(t *testing.T) {
	assert.Equal(t, "4M", SizeFromBytes(4194304).String())
	assert.Equal(t, "0B", SizeFromBytes(0).String())
	assert.Equal(t, "1023B", SizeFromBytes(1023).String())
	assert.Equal(t, "1025B", SizeFromBytes(1025).String())
	assert.Equal(t, "1536K", MustParseSize("1.5M").String())
	assert.Equal(t, "7657M", MustNewSize(7657, UnitM).String())
	assert.Equal(t, "82G", MustNewSize(82, UnitG).String())
	assert.Equal(t, "72G", MustNewSize(73728, UnitM).String())
	assert.Equal(t, "2048T", MustNewSize(2048, UnitT).String())
	assert.Equal(t, "96K", MustNewSize(96, UnitK).String())
}

func TestSizeRoundTrip(t *testing.T) {
	units := []Unit{UnitB, UnitK, UnitM, UnitG, UnitT}
	values := []uint64{0, 1, 3, 96, 1023, 1024, 4096, 7657}
	for _, u := range units {
		for _, v := range values {
			s := MustNewSize(v, u)
			back, err := ParseSize(s.String())
			require.NoError(t, err)
			assert.Equal(t, s, back, "%d%v", v, u)
		}
	}
}

func TestSizeArithmetic(t *testing.T) {
	a := MustParseSize("4G")
	b := MustParseSize("24M")

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, "4120M", sum.String())

	_, err = SizeFromBytes(math.MaxUint64).Add(SizeFromBytes(1))
	assert.True(t, errors.Is(err, ErrOverflow))

	diff, err := a.Sub(b)
	require.NoError(t, err)
	assert.Equal(t, "4072M", diff.String())

	_, err = b.Sub(a)
	assert.True(t, errors.Is(err, ErrNegativeResult))

	zero, err := b.Sub(b)
	require.NoError(t, err)
	assert.True(t, zero.IsZero())

	prod, err := b.MulInt(4)
	require.NoError(t, err)
	assert.Equal(t, "96M", prod.String())

	_, err = a.MulInt(math.MaxUint64)
	assert.True(t, errors.Is(err, ErrOverflow))

	q, err := b.DivInt(3)
	require.NoError(t, err)
	assert.Equal(t, "8M", q.String())

	_, err = b.DivInt(0)
	assert.True(t, errors.Is(err, ErrDivisionByZero))

	n, err := a.Div(b)
	require.NoError(t, err)
	assert.Equal(t, uint64(170), n)

	_, err = a.Div(Size{})
	assert.True(t, errors.Is(err, ErrDivisionByZero))

	rem, err := a.Mod(b)
	require.NoError(t, err)
	assert.Equal(t, uint64(16<<20), rem)

	_, err = a.Mod(Size{})
	assert.True(t, errors.Is(err, ErrDivisionByZero))

	assert.Equal(t, 1, a.Cmp(b))
	assert.Equal(t, -1, b.Cmp(a))
	assert.Equal(t, 0, a.Cmp(MustParseSize("4096M")))
	assert.True(t, b.Less(a))
	assert.False(t, a.Less(a))
}

func TestSizeSubtractNeverNegative(t *testing.T) {
	sizes := []Size{
		SizeFromBytes(0),
		SizeFromBytes(1),
		MustParseSize("96K"),
		MustParseSize("24M"),
		MustParseSize("4G"),
	}
	for _, a := range sizes {
		for _, b := range sizes {
			d, err := a.Sub(b)
			if a.Less(b) {
				assert.True(t, errors.Is(err, ErrNegativeResult))
			} else {
				require.NoError(t, err)
				assert.Equal(t, a.Bytes()-b.Bytes(), d.Bytes())
			}
		}
	}
}

func TestSizeModDivRelation(t *testing.T) {
	sizes := []Size{
		SizeFromBytes(1),
		SizeFromBytes(1000),
		MustParseSize("96K"),
		MustParseSize("128K"),
		MustParseSize("24M"),
		MustParseSize("4G"),
	}
	for _, a := range sizes {
		for _, b := range sizes {
			rem, err := a.Mod(b)
			require.NoError(t, err)
			q, err := a.Div(b)
			require.NoError(t, err)
			back, err := b.MulInt(q)
			require.NoError(t, err)
			assert.Equal(t, rem == 0, back == a, "%v %v", a, b)
		}
	}
}

func TestCeilDiv(t *testing.T) {
	n, err := CeilDiv(MustParseSize("4G"), MustParseSize("24M"))
	require.NoError(t, err)
	assert.Equal(t, uint64(171), n)

	n, err = CeilDiv(MustParseSize("4G"), MustParseSize("128M"))
	require.NoError(t, err)
	assert.Equal(t, uint64(32), n)

	n, err = CeilDivBytes(SizeFromBytes(0), 7)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), n)

	_, err = CeilDiv(MustParseSize("4G"), Size{})
	assert.True(t, errors.Is(err, ErrDivisionByZero))
	_, err = CeilDivBytes(MustParseSize("4G"), 0)
	assert.True(t, errors.Is(err, ErrDivisionByZero))

	for a := uint64(0); a < 300; a += 7 {
		for b := uint64(1); b < 40; b += 3 {
			n, err := CeilDivBytes(SizeFromBytes(a), b)
			require.NoError(t, err)
			assert.True(t, n*b >= a)
			if n > 0 {
				assert.True(t, (n-1)*b < a)
			}
		}
	}
}

func TestAlignUp(t *testing.T) {
	aligned, err := AlignUp(MustParseSize("4G"), MustParseSize("24M"))
	require.NoError(t, err)
	assert.Equal(t, "4104M", aligned.String())

	again, err := AlignUp(aligned, MustParseSize("24M"))
	require.NoError(t, err)
	assert.Equal(t, aligned, again)

	ok, err := IsAligned(MustParseSize("24M"), MustParseSize("96K"))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = IsAligned(MustParseSize("25M"), MustParseSize("96K"))
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = AlignUp(MustParseSize("4G"), Size{})
	assert.True(t, errors.Is(err, ErrDivisionByZero))
}

func TestLCM(t *testing.T) {
	l, err := LCM(MustParseSize("96M"), MustParseSize("128M"))
	require.NoError(t, err)
	assert.Equal(t, "384M", l.String())

	l, err = LCM(MustParseSize("128M"), MustParseSize("128M"))
	require.NoError(t, err)
	assert.Equal(t, "128M", l.String())

	l, err = LCM(Size{}, MustParseSize("1M"))
	require.NoError(t, err)
	assert.True(t, l.IsZero())

	_, err = LCM(Size{}, Size{})
	assert.True(t, errors.Is(err, ErrDivisionByZero))

	_, err = LCM(SizeFromBytes(math.MaxUint64), SizeFromBytes(math.MaxUint64-1))
	assert.True(t, errors.Is(err, ErrOverflow))
}

func TestMulRatio(t *testing.T) {
	op := MustParseRatio("0.07")
	factor, err := op.OnePlus()
	require.NoError(t, err)
	factor, err = factor.MulInt(3)
	require.NoError(t, err)
	assert.Equal(t, "3.21", factor.String())

	// 40M * 3.21 = 134637158.4 bytes, rounded up
	target, err := MustParseSize("40M").MulRatio(factor)
	require.NoError(t, err)
	assert.Equal(t, uint64(134637159), target.Bytes())

	same, err := MustParseSize("4G").MulRatio(OneRatio)
	require.NoError(t, err)
	assert.Equal(t, "4G", same.String())

	zero, err := MustParseSize("4G").MulRatio(ZeroRatio)
	require.NoError(t, err)
	assert.True(t, zero.IsZero())

	_, err = SizeFromBytes(math.MaxUint64).MulRatio(OneRatio)
	assert.True(t, errors.Is(err, ErrOverflow))
}

func TestNewSizeFromDecimal(t *testing.T) {
	s, err := NewSizeFromDecimal(dec.MustParse("1.25"), UnitK)
	require.NoError(t, err)
	assert.Equal(t, uint64(1280), s.Bytes())

	_, err = NewSizeFromDecimal(dec.MustParse("-1"), UnitK)
	assert.True(t, errors.Is(err, ErrNegativeResult))

	_, err = NewSizeFromDecimal(dec.MustParse("1.1"), UnitB)
	assert.True(t, errors.Is(err, ErrInvalidFormat))
}

func TestParseUnit(t *testing.T) {
	u, err := ParseUnit("g")
	require.NoError(t, err)
	assert.Equal(t, UnitG, u)
	assert.Equal(t, "G", u.String())

	u, err = ParseUnit("P")
	require.NoError(t, err)
	_, err = u.Scale()
	assert.True(t, errors.Is(err, ErrInvalidUnit))

	_, err = ParseUnit("KB")
	assert.True(t, errors.Is(err, ErrInvalidUnit))
}
