package numerology

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/platenum/internal/errors"
)

func TestCalculate_KnownPlate(t *testing.T) {
	res, err := Calculate("CG20J5339")
	require.NoError(t, err)

	assert.Equal(t, 2, res.FinalNumber)
	assert.Equal(t, []Pair{
		{"c", 3}, {"g", 3}, {"2", 2}, {"0", 0}, {"j", 1},
		{"5", 5}, {"3", 3}, {"3", 3}, {"9", 9},
	}, res.Breakdown)
	assert.Equal(t, []string{
		"Original: CG20J5339",
		"Breakdown: C = 3, G = 3, 2 = 2, 0 = 0, J = 1, 5 = 5, 3 = 3, 3 = 3, 9 = 9",
		"Sum: 3 + 3 + 2 + 0 + 1 + 5 + 3 + 3 + 9 = 29",
		"Reduction: 29 → 2 + 9 = 11",
		"Reduction: 11 → 1 + 1 = 2",
		"Final Number: 2",
	}, res.Steps)
}

func TestCalculate_PunctuationAndCase(t *testing.T) {
	res, err := Calculate("ka-01 ab")
	require.NoError(t, err)

	// k=2 a=1 0 1 a=1 b=2 → 7
	assert.Equal(t, 7, res.FinalNumber)
	assert.Equal(t, "Original: KA-01 AB", res.Steps[0])
	assert.Equal(t, "Breakdown: K = 2, A = 1, 0 = 0, 1 = 1, A = 1, B = 2", res.Steps[1])
	assert.Equal(t, "Final Number: 7", res.Steps[len(res.Steps)-1])
	assert.Len(t, res.Steps, 4, "single-digit sum has no reduction steps")
}

func TestCalculate_ZeroDigitInBreakdown(t *testing.T) {
	res, err := Calculate("A-0")
	require.NoError(t, err)
	assert.Equal(t, []Pair{{"a", 1}, {"0", 0}}, res.Breakdown)
	assert.Equal(t, 1, res.FinalNumber)
}

func TestCalculate_AllZeros(t *testing.T) {
	res, err := Calculate("000")
	require.NoError(t, err)
	assert.Equal(t, 0, res.FinalNumber)
	assert.Equal(t, "Sum: 0 + 0 + 0 = 0", res.Steps[2])
}

func TestCalculate_OriginalUsesFullCaseMapping(t *testing.T) {
	res, err := Calculate("straße 7")
	require.NoError(t, err)
	assert.Equal(t, "Original: STRASSE 7", res.Steps[0])
	// ß is not in the table and contributes nothing
	assert.Len(t, res.Breakdown, 6)
}

func TestCalculate_InvalidInput(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		message string
	}{
		{"empty", "", "Please enter a vehicle number"},
		{"whitespace", "   ", "Please enter a vehicle number"},
		{"tabs and newlines", "\t\n", "Please enter a vehicle number"},
		{"punctuation only", "!!!", "Please enter a valid vehicle number"},
		{"non-ascii letters", "ÄÖÜ", "Please enter a valid vehicle number"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Calculate(tt.input)
			require.Error(t, err)
			assert.Nil(t, res)
			assert.True(t, errors.Is(err, errors.ErrInvalidInput))

			e, ok := errors.As(err)
			require.True(t, ok)
			assert.Equal(t, tt.message, e.Message)
		})
	}
}

func TestCalculate_Deterministic(t *testing.T) {
	first, err := Calculate("MH 12 DE 1433")
	require.NoError(t, err)
	second, err := Calculate("MH 12 DE 1433")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestCalculate_AlwaysSingleDigit(t *testing.T) {
	const alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 500; i++ {
		n := 1 + rng.Intn(40)
		b := make([]byte, n)
		for j := range b {
			b[j] = alphabet[rng.Intn(len(alphabet))]
		}
		// Guarantee one non-zero contributor so the sum is positive.
		b[rng.Intn(n)] = 'x'

		res, err := Calculate(string(b))
		require.NoError(t, err, "input %q", b)
		assert.GreaterOrEqual(t, res.FinalNumber, 1, "input %q", b)
		assert.LessOrEqual(t, res.FinalNumber, 9, "input %q", b)
	}
}

func TestClean(t *testing.T) {
	assert.Equal(t, "ka01ab1234", Clean(" KA-01/AB 1234 "))
	assert.Equal(t, "", Clean("--- ***"))
	assert.Equal(t, "ab", Clean("aé b"))
}

func TestReduce(t *testing.T) {
	tests := []struct {
		in    int
		final int
		steps []string
	}{
		{0, 0, nil},
		{9, 9, nil},
		{10, 1, []string{"Reduction: 10 → 1 + 0 = 1"}},
		{99, 9, []string{"Reduction: 99 → 9 + 9 = 18", "Reduction: 18 → 1 + 8 = 9"}},
		{199, 1, []string{
			"Reduction: 199 → 1 + 9 + 9 = 19",
			"Reduction: 19 → 1 + 9 = 10",
			"Reduction: 10 → 1 + 0 = 1",
		}},
	}

	for _, tt := range tests {
		final, steps := Reduce(tt.in)
		assert.Equal(t, tt.final, final, "Reduce(%d)", tt.in)
		assert.Equal(t, tt.steps, steps, "Reduce(%d)", tt.in)
	}
}
