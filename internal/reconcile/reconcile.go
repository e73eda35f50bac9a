// Package reconcile completes the amount/rate/total triple of a trade form.
//
// The three fields are tied by amount * rate = total. When exactly two of them
// hold a finite number the third is derived; in every other case the input is
// handed back untouched.
package reconcile

import (
	"github.com/sarrafbook/ledger/internal/numerals"
	"github.com/shopspring/decimal"
)

// Field identifies one member of the triple.
type Field string

const (
	FieldNone   Field = ""
	FieldAmount Field = "amount"
	FieldRate   Field = "rate"
	FieldTotal  Field = "total"
)

// Tolerance is the largest difference between amount*rate and total still
// considered consistent, relative to the magnitude of total (and never less
// than Tolerance itself).
var Tolerance = decimal.New(1, -6)

var one = decimal.NewFromInt(1)

// Fields is the form-local three-field set. Empty strings mean "not filled".
type Fields struct {
	Amount  string `json:"amount"`
	Rate    string `json:"rate"`
	Total   string `json:"total"`
	Derived Field  `json:"derived,omitempty"`
}

// Reconcile derives the missing member of the triple when exactly two are
// filled. Derived values are plain decimal strings.
func Reconcile(amount, rate, total string) Fields {
	return Fields{Amount: amount, Rate: rate, Total: total}.Reconcile()
}

// Reconcile is the method form of Reconcile. Any previous Derived marker is
// discarded.
func (f Fields) Reconcile() Fields {
	out := Fields{Amount: f.Amount, Rate: f.Rate, Total: f.Total}

	a, okA := parse(f.Amount)
	r, okR := parse(f.Rate)
	t, okT := parse(f.Total)

	if count(okA, okR, okT) != 2 {
		return out
	}

	switch {
	case !okA:
		if !r.IsZero() {
			out.Amount = t.Div(r).String()
			out.Derived = FieldAmount
		}
	case !okR:
		if !a.IsZero() {
			out.Rate = t.Div(a).String()
			out.Derived = FieldRate
		}
	case !okT:
		out.Total = a.Mul(r).String()
		out.Derived = FieldTotal
	}
	return out
}

// Mismatch reports whether all three fields are filled and violate
// amount * rate = total.
func (f Fields) Mismatch() bool {
	a, okA := parse(f.Amount)
	r, okR := parse(f.Rate)
	t, okT := parse(f.Total)
	if !okA || !okR || !okT {
		return false
	}
	return !Consistent(a, r, t)
}

// Filled returns how many fields parse to a finite number.
func (f Fields) Filled() int {
	_, okA := parse(f.Amount)
	_, okR := parse(f.Rate)
	_, okT := parse(f.Total)
	return count(okA, okR, okT)
}

// Consistent reports whether amount * rate equals total within Tolerance.
// A derived amount or rate carries decimal.DivisionPrecision places, so the
// rounding that division leaves behind is allowed on top.
func Consistent(amount, rate, total decimal.Decimal) bool {
	limit := Tolerance.Mul(decimal.Max(total.Abs(), one))
	limit = limit.Add(amount.Abs().Add(rate.Abs()).Shift(-int32(decimal.DivisionPrecision)))
	return amount.Mul(rate).Sub(total).Abs().LessThanOrEqual(limit)
}

// Parse reads a user-typed number. It accepts Persian digits and separators.
func Parse(s string) (decimal.Decimal, bool) {
	return parse(s)
}

func parse(s string) (decimal.Decimal, bool) {
	s = numerals.NormalizeDecimal(s)
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

func count(flags ...bool) int {
	n := 0
	for _, ok := range flags {
		if ok {
			n++
		}
	}
	return n
}
