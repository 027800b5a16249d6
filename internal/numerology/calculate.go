package numerology

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/hpungsan/platenum/internal/errors"
)

// Pair is one contributing character of the cleaned input and its value.
type Pair struct {
	Char  string `json:"char"`
	Value int    `json:"value"`
}

// String renders the pair as it appears in the breakdown step, e.g. "C = 3".
func (p Pair) String() string {
	return fmt.Sprintf("%s = %d", strings.ToUpper(p.Char), p.Value)
}

// Result is the traced outcome of a calculation. It is never mutated after Calculate returns.
type Result struct {
	FinalNumber int      `json:"final_number"`
	Breakdown   []Pair   `json:"breakdown"`
	Steps       []string `json:"steps"`
}

// Clean removes every character that is not an ASCII letter or digit and lower-cases the rest.
func Clean(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		}
	}
	return b.String()
}

// Calculate maps raw to its numerology number, recording every step.
// Returns INVALID_INPUT if raw is blank or has no letters or digits.
func Calculate(raw string) (*Result, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, errors.NewInvalidInput("Please enter a vehicle number")
	}

	cleaned := Clean(raw)
	if cleaned == "" {
		return nil, errors.NewInvalidInput("Please enter a valid vehicle number")
	}

	sum := 0
	breakdown := make([]Pair, 0, len(cleaned))
	for _, r := range cleaned {
		v, ok := ValueOf(r)
		if !ok {
			continue
		}
		sum += v
		breakdown = append(breakdown, Pair{Char: string(r), Value: v})
	}

	pairs := make([]string, len(breakdown))
	values := make([]string, len(breakdown))
	for i, p := range breakdown {
		pairs[i] = p.String()
		values[i] = strconv.Itoa(p.Value)
	}

	steps := []string{
		"Original: " + upper(raw),
		"Breakdown: " + strings.Join(pairs, ", "),
		fmt.Sprintf("Sum: %s = %d", strings.Join(values, " + "), sum),
	}

	final, reductions := Reduce(sum)
	steps = append(steps, reductions...)
	steps = append(steps, fmt.Sprintf("Final Number: %d", final))

	return &Result{
		FinalNumber: final,
		Breakdown:   breakdown,
		Steps:       steps,
	}, nil
}

// Reduce sums the decimal digits of n until a single digit remains.
// Each pass is recorded as "Reduction: 29 → 2 + 9 = 11".
func Reduce(n int) (int, []string) {
	var steps []string
	for n > 9 {
		digits := strconv.Itoa(n)
		parts := make([]string, len(digits))
		next := 0
		for i, d := range digits {
			parts[i] = string(d)
			next += int(d - '0')
		}
		steps = append(steps, fmt.Sprintf("Reduction: %d → %s = %d", n, strings.Join(parts, " + "), next))
		n = next
	}
	return n, steps
}

// upper applies full Unicode case mapping, so "ß" becomes "SS".
// A Caser holds state and is not safe for concurrent use.
func upper(s string) string {
	return cases.Upper(language.Und).String(s)
}
