package pseudonym

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testKey = []byte("0123456789abcdef")

func newTestPseudonymizer(t *testing.T) *Pseudonymizer {
	t.Helper()
	p, err := NewPseudonymizer(testKey)
	require.NoError(t, err)
	return p
}

func TestNewPseudonymizerRejectsBadKey(t *testing.T) {
	_, err := NewPseudonymizer([]byte("short"))
	require.ErrorIs(t, err, ErrKeyCorrupt)
}

func TestPseudonymizeDeterministic(t *testing.T) {
	p := newTestPseudonymizer(t)

	a, err := p.Pseudonymize("12345678")
	require.NoError(t, err)
	b, err := p.Pseudonymize("12345678")
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.NotEqual(t, "12345678", a)
}

func TestPseudonymizePreservesLengthAndDigits(t *testing.T) {
	p := newTestPseudonymizer(t)

	for _, id := range []string{"00042", "99", "123456789012", "007"} {
		out, err := p.Pseudonymize(id)
		require.NoError(t, err)
		assert.Len(t, out, len(id), "length must be preserved for %q", id)
		for _, r := range out {
			assert.True(t, r >= '0' && r <= '9', "output %q for %q must be all digits", out, id)
		}
	}
}

// Every two-digit input must map to a distinct two-digit output.
func TestPseudonymizeBijectionTwoDigits(t *testing.T) {
	p := newTestPseudonymizer(t)

	seen := make(map[string]string, 100)
	for i := 0; i < 100; i++ {
		in := string([]byte{'0' + byte(i/10), '0' + byte(i%10)})
		out, err := p.Pseudonymize(in)
		require.NoError(t, err)
		require.Len(t, out, 2)
		if prev, dup := seen[out]; dup {
			t.Fatalf("collision: %q and %q both map to %q", prev, in, out)
		}
		seen[out] = in
	}
	assert.Len(t, seen, 100)
}

func TestPseudonymizeSingleDigitBijection(t *testing.T) {
	p := newTestPseudonymizer(t)

	seen := make(map[string]bool, 10)
	for d := '0'; d <= '9'; d++ {
		out, err := p.Pseudonymize(string(d))
		require.NoError(t, err)
		require.Len(t, out, 1)
		require.False(t, seen[out], "digit outputs must not collide")
		seen[out] = true
	}
}

func TestPseudonymizeHyphenSegments(t *testing.T) {
	p := newTestPseudonymizer(t)

	out, err := p.Pseudonymize("ABC-123")
	require.NoError(t, err)
	parts := strings.Split(out, "-")
	require.Len(t, parts, 2)
	assert.Equal(t, "ABC", parts[0], "non-numeric segment passes through")
	assert.Len(t, parts[1], 3)
	assert.NotEqual(t, "123", parts[1])

	// The numeric segment transform must match the standalone transform.
	solo, err := p.Pseudonymize("123")
	require.NoError(t, err)
	assert.Equal(t, solo, parts[1])
}

func TestPseudonymizeNonNumericPassThrough(t *testing.T) {
	p := newTestPseudonymizer(t)

	out, err := p.Pseudonymize("UNKNOWN")
	require.NoError(t, err)
	assert.Equal(t, "UNKNOWN", out)
}

func TestPseudonymizeTrimsWhitespace(t *testing.T) {
	p := newTestPseudonymizer(t)

	padded, err := p.Pseudonymize("  12345678 ")
	require.NoError(t, err)
	bare, err := p.Pseudonymize("12345678")
	require.NoError(t, err)
	assert.Equal(t, bare, padded)
}

func TestPseudonymizeEmpty(t *testing.T) {
	p := newTestPseudonymizer(t)

	out, err := p.Pseudonymize("")
	require.NoError(t, err)
	assert.Equal(t, "", out)
}

func TestPseudonymizeDifferentKeysDiffer(t *testing.T) {
	p1 := newTestPseudonymizer(t)
	p2, err := NewPseudonymizer([]byte("fedcba9876543210"))
	require.NoError(t, err)

	a, err := p1.Pseudonymize("12345678")
	require.NoError(t, err)
	b, err := p2.Pseudonymize("12345678")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestPseudonymizeConcurrent(t *testing.T) {
	p := newTestPseudonymizer(t)

	want, err := p.Pseudonymize("20070156")
	require.NoError(t, err)

	done := make(chan string, 32)
	for i := 0; i < 32; i++ {
		go func() {
			out, err := p.Pseudonymize("20070156")
			if err != nil {
				done <- "error: " + err.Error()
				return
			}
			done <- out
		}()
	}
	for i := 0; i < 32; i++ {
		assert.Equal(t, want, <-done)
	}
}
