// Package query parses the one-line problem syntax shared by the REPL and the
// batch file:
//
//	-in 2 2 -out 1x4 -mb 1200
//
// -in and -out are followed by rate tokens up to the next flag. A token is
// either RATE or RATExCOUNT (the x is case-insensitive), the latter standing
// for COUNT copies of RATE. -mb sets the per-channel ceiling ("max belt") and
// -q asks the caller to stop.
package query

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/katalvlaran/flowbalance/balancer"
	"github.com/katalvlaran/flowbalance/rate"
	"github.com/katalvlaran/flowbalance/state"
)

// MaxRepeat caps the COUNT of a RATExCOUNT token.
const MaxRepeat = 1024

// DefaultMaxBelt is the ceiling used when neither the line nor the Parser
// supplies one.
var DefaultMaxBelt = rate.MustParse("1200")

// Sentinel errors.
var (
	// ErrUnknownFlag is returned for a dash token other than -in, -out, -mb, -q.
	ErrUnknownFlag = errors.New("query: unknown flag")

	// ErrUnexpectedToken is returned for a value that follows no flag.
	ErrUnexpectedToken = errors.New("query: value outside -in/-out")

	// ErrMissingValue is returned when -mb is the last token.
	ErrMissingValue = errors.New("query: flag needs a value")

	// ErrBadToken wraps rate and count parse failures.
	ErrBadToken = errors.New("query: malformed rate token")

	// ErrNoInputs is returned by Problem when no positive input was given.
	ErrNoInputs = errors.New("query: no input rates given")

	// ErrNoOutputs is returned by Problem when no positive output was given.
	ErrNoOutputs = errors.New("query: no output rates given")
)

// Query is one parsed line.
type Query struct {
	Inputs  []rate.Rate
	Outputs []rate.Rate
	MaxBelt rate.Rate
	Quit    bool
}

// Parser holds the defaults applied to every parsed line.
type Parser struct {
	// MaxBelt is used when the line has no -mb flag. Zero selects
	// DefaultMaxBelt.
	MaxBelt rate.Rate
}

// Parse reads line with the zero Parser.
func Parse(line string) (Query, error) {
	return Parser{}.Parse(line)
}

// Parse splits line on white space and reads it left to right.
// Zero rates are dropped. A blank line yields an empty Query and no error.
func (p Parser) Parse(line string) (Query, error) {
	q := Query{MaxBelt: p.MaxBelt}
	if q.MaxBelt == 0 {
		q.MaxBelt = DefaultMaxBelt
	}

	var dst *[]rate.Rate
	fields := strings.Fields(line)
	for i := 0; i < len(fields); i++ {
		tok := fields[i]
		if !strings.HasPrefix(tok, "-") {
			if dst == nil {
				return Query{}, fmt.Errorf("%w: %q", ErrUnexpectedToken, tok)
			}
			values, err := parseToken(tok)
			if err != nil {
				return Query{}, err
			}
			*dst = append(*dst, values...)

			continue
		}

		switch strings.ToLower(tok) {
		case "-in":
			dst = &q.Inputs
		case "-out":
			dst = &q.Outputs
		case "-mb":
			if i+1 >= len(fields) {
				return Query{}, fmt.Errorf("%w: %s", ErrMissingValue, tok)
			}
			i++
			mb, err := rate.Parse(fields[i])
			if err != nil {
				return Query{}, fmt.Errorf("%w: -mb %q: %w", ErrBadToken, fields[i], err)
			}
			q.MaxBelt = mb
			dst = nil
		case "-q":
			q.Quit = true
			dst = nil
		default:
			return Query{}, fmt.Errorf("%w: %s", ErrUnknownFlag, tok)
		}
	}

	return q, nil
}

// parseToken expands RATE or RATExCOUNT. Zero rates expand to nothing.
func parseToken(tok string) ([]rate.Rate, error) {
	value, count := tok, 1
	if at := strings.IndexAny(tok, "xX"); at >= 0 {
		n, err := strconv.Atoi(tok[at+1:])
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%w: %q: bad count", ErrBadToken, tok)
		}
		if n > MaxRepeat {
			return nil, fmt.Errorf("%w: %q: count above %d", ErrBadToken, tok, MaxRepeat)
		}
		value, count = tok[:at], n
	}

	r, err := rate.Parse(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrBadToken, tok, err)
	}
	if r == 0 || count == 0 {
		return nil, nil
	}

	out := make([]rate.Rate, count)
	for i := range out {
		out[i] = r
	}

	return out, nil
}

// Empty reports whether q carries neither rates nor a quit request.
func (q Query) Empty() bool {
	return len(q.Inputs) == 0 && len(q.Outputs) == 0 && !q.Quit
}

// Problem builds the balancer problem described by q.
func (q Query) Problem() (*balancer.Problem, error) {
	if len(q.Inputs) == 0 {
		return nil, ErrNoInputs
	}
	if len(q.Outputs) == 0 {
		return nil, ErrNoOutputs
	}

	return balancer.NewProblem(q.Inputs, q.Outputs, q.MaxBelt)
}

// String renders q back into the line syntax with repeated rates folded
// into RATExCOUNT tokens.
func (q Query) String() string {
	var b strings.Builder
	write := func(flag string, values []rate.Rate) {
		if len(values) == 0 {
			return
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(flag)
		canon := state.New(values...)
		for i := 0; i < len(canon); {
			j := i
			for j < len(canon) && canon[j] == canon[i] {
				j++
			}
			b.WriteByte(' ')
			b.WriteString(canon[i].String())
			if n := j - i; n > 1 {
				b.WriteString("x" + strconv.Itoa(n))
			}
			i = j
		}
	}
	write("-in", q.Inputs)
	write("-out", q.Outputs)
	if q.MaxBelt != 0 {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString("-mb " + q.MaxBelt.String())
	}
	if q.Quit {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString("-q")
	}

	return b.String()
}
