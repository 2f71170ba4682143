package rate

import (
	"errors"
	"fmt"
	"math"
	"math/bits"
	"strconv"
	"strings"
)

// Scale is the number of Rate units in one whole flow unit.
const Scale Rate = 100_000_000

// fracDigits is the number of decimal digits represented below the point.
const fracDigits = 8

// Sentinel errors returned by Parse.
var (
	// ErrSyntax indicates text that is not a non-negative decimal number.
	ErrSyntax = errors.New("rate: invalid decimal syntax")

	// ErrPrecision indicates more fractional digits than Scale can hold.
	ErrPrecision = errors.New("rate: more than 8 fractional digits")

	// ErrRange indicates a value too large to be represented.
	ErrRange = errors.New("rate: value out of range")

	// ErrOverflow indicates a sum that does not fit in a Rate.
	ErrOverflow = errors.New("rate: sum overflows")
)

// Max is the largest representable Rate.
const Max Rate = math.MaxUint64

// Rate is a non-negative fixed-point flow magnitude in units of 1/Scale.
type Rate uint64

// FromUnits converts a whole number of flow units into a Rate.
// It returns ErrRange if the result would overflow.
func FromUnits(units uint64) (Rate, error) {
	hi, lo := bits.Mul64(units, uint64(Scale))
	if hi != 0 {
		return 0, fmt.Errorf("%w: %d units", ErrRange, units)
	}

	return Rate(lo), nil
}

// MustParse is like Parse but panics on error. Intended for tests and
// package-level literals only.
func MustParse(s string) Rate {
	r, err := Parse(s)
	if err != nil {
		panic(err)
	}

	return r
}

// Parse reads a non-negative decimal string into a Rate without any
// floating-point conversion.
//
// Accepted forms: "3", "3.", "3.25", ".5". Surrounding whitespace is ignored.
func Parse(s string) (Rate, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty string", ErrSyntax)
	}

	intPart, fracPart, _ := strings.Cut(s, ".")
	if intPart == "" && fracPart == "" {
		return 0, fmt.Errorf("%w: %q", ErrSyntax, s)
	}
	if !allDigits(intPart) || !allDigits(fracPart) {
		return 0, fmt.Errorf("%w: %q", ErrSyntax, s)
	}
	if len(fracPart) > fracDigits {
		return 0, fmt.Errorf("%w: %q", ErrPrecision, s)
	}

	var whole uint64
	if intPart != "" {
		var err error
		whole, err = strconv.ParseUint(intPart, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrRange, s)
		}
	}
	if whole > math.MaxUint64/uint64(Scale) {
		return 0, fmt.Errorf("%w: %q", ErrRange, s)
	}

	var frac uint64
	if fracPart != "" {
		// right-pad to exactly fracDigits digits: "25" -> "25000000"
		padded := fracPart + strings.Repeat("0", fracDigits-len(fracPart))
		frac, _ = strconv.ParseUint(padded, 10, 64) // digits already validated
	}

	total := whole*uint64(Scale) + frac
	if total < whole*uint64(Scale) {
		return 0, fmt.Errorf("%w: %q", ErrRange, s)
	}

	return Rate(total), nil
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}

	return true
}

// String renders r as the shortest exact decimal.
func (r Rate) String() string {
	whole := uint64(r / Scale)
	frac := uint64(r % Scale)
	if frac == 0 {
		return strconv.FormatUint(whole, 10)
	}
	digits := strconv.FormatUint(frac, 10)
	digits = strings.Repeat("0", fracDigits-len(digits)) + digits
	digits = strings.TrimRight(digits, "0")

	return strconv.FormatUint(whole, 10) + "." + digits
}

// GCD returns the greatest common divisor of a and b using the binary
// (Stein's) algorithm. GCD(0, b) == b and GCD(a, 0) == a.
func GCD(a, b Rate) Rate {
	if a == 0 {
		return b
	}
	if b == 0 {
		return a
	}
	x, y := uint64(a), uint64(b)
	i := bits.TrailingZeros64(x)
	j := bits.TrailingZeros64(y)
	k := min(i, j)
	x >>= i
	y >>= j
	for {
		if x > y {
			x, y = y, x
		}
		y -= x
		if y == 0 {
			return Rate(x << k)
		}
		y >>= bits.TrailingZeros64(y)
	}
}

// GCDOf folds GCD over values. It returns 0 for an empty slice.
func GCDOf(values []Rate) Rate {
	var g Rate
	for _, v := range values {
		g = GCD(g, v)
	}

	return g
}

// Add returns a+b. ok is false when the sum does not fit in a Rate.
func Add(a, b Rate) (sum Rate, ok bool) {
	s, carry := bits.Add64(uint64(a), uint64(b), 0)

	return Rate(s), carry == 0
}

// Sum adds values, returning ErrOverflow if the total does not fit.
func Sum(values []Rate) (Rate, error) {
	var total Rate
	for _, v := range values {
		var ok bool
		if total, ok = Add(total, v); !ok {
			return 0, fmt.Errorf("%w: adding %s", ErrOverflow, v)
		}
	}

	return total, nil
}

// MarshalText implements encoding.TextMarshaler using the decimal form, so
// JSON carries "2.5" rather than scaled units.
func (r Rate) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler, see Parse.
func (r *Rate) UnmarshalText(b []byte) error {
	v, err := Parse(string(b))
	if err != nil {
		return err
	}
	*r = v

	return nil
}
