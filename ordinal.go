package cao

import (
	"fmt"
	"math/bits"
)

// OrdKind discriminates Ordinal's constructors: Zero, Finite(n),
// Omega, OmegaPow(o), Sum([o...]), Prod(a,b).
type OrdKind int

const (
	OZero OrdKind = iota
	OFinite
	OOmega
	OOmegaPow
	OSum
	OProd
)

// Ordinal is a term in the small ordinal notation the verifier reasons about.
// Only OFinite uses N; only OOmegaPow uses Exp; only OSum uses Terms; only
// OProd uses A/B.
type Ordinal struct {
	Kind  OrdKind
	N     uint64
	Exp   *Ordinal
	Terms []Ordinal
	A, B  *Ordinal
}

func Zero() Ordinal         { return Ordinal{Kind: OZero} }
func Finite(n uint64) Ordinal { return Ordinal{Kind: OFinite, N: n} }
func Omega() Ordinal        { return Ordinal{Kind: OOmega} }
func OmegaPow(e Ordinal) Ordinal { return Ordinal{Kind: OOmegaPow, Exp: &e} }
func Sum(os ...Ordinal) Ordinal  { return Ordinal{Kind: OSum, Terms: os} }
func Prod(a, b Ordinal) Ordinal  { return Ordinal{Kind: OProd, A: &a, B: &b} }

// rank orders the constructors for the "Zero < Finite < Omega < OmegaPow"
// part of the total pre-order; Sum and Prod are reduced to a comparable rank
// by approximating them as their dominant term, which the comparison
// contract tolerates.
func (o Ordinal) rank() int {
	switch o.Kind {
	case OZero:
		return 0
	case OFinite:
		return 1
	case OOmega:
		return 2
	case OOmegaPow:
		return 3
	case OSum:
		return o.reduce().rank()
	case OProd:
		return o.reduce().rank()
	default:
		return 0
	}
}

// reduce approximates Sum/Prod down to one of Zero/Finite/Omega/OmegaPow so
// that comparison, rendering and the rest of the algebra have a normal form
// to work from; full Cantor normal form is never needed here.
func (o Ordinal) reduce() Ordinal {
	switch o.Kind {
	case OSum:
		acc := Zero()
		for _, t := range o.Terms {
			acc = ordAdd(acc, t.reduce())
		}
		return acc
	case OProd:
		return ordMul(o.A.reduce(), o.B.reduce())
	default:
		return o
	}
}

// Compare returns -1, 0, or 1 per the total pre-order: Zero <
// Finite(n) < Finite(n+1) < Omega < OmegaPow(_), with OmegaPow comparing
// exponents recursively.
func (o Ordinal) Compare(p Ordinal) int {
	a, b := o.reduce(), p.reduce()
	ra, rb := a.rank(), b.rank()
	if ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}
	switch a.Kind {
	case OZero, OOmega:
		return 0
	case OFinite:
		switch {
		case a.N < b.N:
			return -1
		case a.N > b.N:
			return 1
		default:
			return 0
		}
	case OOmegaPow:
		return a.Exp.Compare(*b.Exp)
	default:
		return 0
	}
}

// Less reports whether o is strictly below p.
func (o Ordinal) Less(p Ordinal) bool { return o.Compare(p) < 0 }

// WellFounded reports whether seq is strictly decreasing under Compare.
func WellFounded(seq []Ordinal) bool {
	for i := 1; i < len(seq); i++ {
		if !seq[i].Less(seq[i-1]) {
			return false
		}
	}
	return true
}

// OrdinalError reports a failure in the ordinal algebra or verifier:
// overflow, or a term shape the algebra does not implement.
type OrdinalError struct{ Reason string }

func (e *OrdinalError) Error() string { return "ordinal error: " + e.Reason }

// Add implements ordinal addition: Zero is identity, Finite+Finite is a checked
// sum, Finite+Omega collapses to Omega; anything built from OmegaPow/Sum/Prod
// is reduced first and, failing that, approximated by returning the greater
// operand as the contract allows.
func (o Ordinal) Add(p Ordinal) (Ordinal, error) { return ordAddChecked(o, p) }

// Mul implements ordinal multiplication: Zero is absorbing,
// Omega*Finite(n>0) is Omega, Omega*Omega is OmegaPow(Finite(2)); other
// shapes approximate.
func (o Ordinal) Mul(p Ordinal) (Ordinal, error) { return ordMulChecked(o, p) }

func ordAdd(a, b Ordinal) Ordinal {
	r, err := ordAddChecked(a, b)
	if err != nil {
		// reduce() must stay total; fall back to the larger operand
		// where Add itself would return an error (such as on overflow).
		if a.Compare(b) >= 0 {
			return a
		}
		return b
	}
	return r
}

func ordMul(a, b Ordinal) Ordinal {
	r, err := ordMulChecked(a, b)
	if err != nil {
		if a.Compare(b) >= 0 {
			return a
		}
		return b
	}
	return r
}

func ordAddChecked(o, p Ordinal) (Ordinal, error) {
	a, b := o.reduce(), p.reduce()
	switch {
	case a.Kind == OZero:
		return b, nil
	case b.Kind == OZero:
		return a, nil
	case a.Kind == OFinite && b.Kind == OFinite:
		sum, carry := bits.Add64(a.N, b.N, 0)
		if carry != 0 {
			return Ordinal{}, &OrdinalError{Reason: "overflow"}
		}
		return Finite(sum), nil
	case a.Kind == OFinite && b.Kind == OOmega:
		return Omega(), nil
	case a.Kind == OOmega && b.Kind == OFinite:
		return Omega(), nil
	case a.Kind == OOmega && b.Kind == OOmega:
		return Omega(), nil
	default:
		if a.Compare(b) >= 0 {
			return a, nil
		}
		return b, nil
	}
}

func ordMulChecked(o, p Ordinal) (Ordinal, error) {
	a, b := o.reduce(), p.reduce()
	switch {
	case a.Kind == OZero || b.Kind == OZero:
		return Zero(), nil
	case a.Kind == OFinite && b.Kind == OFinite:
		hi, lo := bits.Mul64(a.N, b.N)
		if hi != 0 {
			return Ordinal{}, &OrdinalError{Reason: "overflow"}
		}
		return Finite(lo), nil
	case a.Kind == OOmega && b.Kind == OFinite && b.N > 0:
		return Omega(), nil
	case a.Kind == OFinite && a.N > 0 && b.Kind == OOmega:
		return Omega(), nil
	case a.Kind == OOmega && b.Kind == OOmega:
		return OmegaPow(Finite(2)), nil
	default:
		if a.Compare(b) >= 0 {
			return a, nil
		}
		return b, nil
	}
}

// Render renders an ordinal's canonical text form: 0, n, ω, ω^e, a + b, a * b.
func (o Ordinal) Render() string {
	switch o.Kind {
	case OZero:
		return "0"
	case OFinite:
		return fmt.Sprintf("%d", o.N)
	case OOmega:
		return "ω"
	case OOmegaPow:
		return "ω^" + o.Exp.Render()
	case OSum:
		s := ""
		for i, t := range o.Terms {
			if i > 0 {
				s += " + "
			}
			s += t.Render()
		}
		return s
	case OProd:
		return o.A.Render() + " * " + o.B.Render()
	default:
		return "?"
	}
}
