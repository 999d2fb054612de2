package model

import "fmt"

// Rational is an exact quarter-note time value. Musical durations stay
// rational through the whole pipeline; floats only appear at the final
// conversion to milliseconds. The zero value is 0.
type Rational struct {
	Num int64
	Den int64
}

// NewRational returns num/den in lowest terms. It panics on a zero
// denominator, so paths fed by untrusted input must sanitize first.
func NewRational(num, den int64) Rational {
	if den == 0 {
		panic("rational: zero denominator")
	}
	return Rational{Num: num, Den: den}.normalize()
}

func RationalFromInt(n int64) Rational {
	return Rational{Num: n, Den: 1}
}

func (r Rational) normalize() Rational {
	if r.Den == 0 {
		r.Den = 1
	}
	if r.Den < 0 {
		r.Num, r.Den = -r.Num, -r.Den
	}
	if r.Num == 0 {
		return Rational{Num: 0, Den: 1}
	}
	g := gcd(abs(r.Num), r.Den)
	return Rational{Num: r.Num / g, Den: r.Den / g}
}

func (r Rational) Add(o Rational) Rational {
	r, o = r.normalize(), o.normalize()
	return NewRational(r.Num*o.Den+o.Num*r.Den, r.Den*o.Den)
}

func (r Rational) Sub(o Rational) Rational {
	o = o.normalize()
	return r.Add(Rational{Num: -o.Num, Den: o.Den})
}

func (r Rational) MulInt(n int64) Rational {
	r = r.normalize()
	return NewRational(r.Num*n, r.Den)
}

// Cmp returns -1 when r < o, 0 when equal and 1 when r > o.
func (r Rational) Cmp(o Rational) int {
	r, o = r.normalize(), o.normalize()
	d := r.Num*o.Den - o.Num*r.Den
	switch {
	case d < 0:
		return -1
	case d > 0:
		return 1
	}
	return 0
}

func (r Rational) IsZero() bool {
	return r.normalize().Num == 0
}

func (r Rational) Float64() float64 {
	r = r.normalize()
	return float64(r.Num) / float64(r.Den)
}

func (r Rational) String() string {
	r = r.normalize()
	if r.Den == 1 {
		return fmt.Sprintf("%v", r.Num)
	}
	return fmt.Sprintf("%v/%v", r.Num, r.Den)
}

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
