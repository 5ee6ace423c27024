package pseudonym

import (
	"crypto/aes"
	"fmt"
	"strings"

	"github.com/capitalone/fpe/ff1"
)

// Transformer maps an original identifier to its replacement. Implementations
// must be deterministic and safe for concurrent use.
type Transformer interface {
	Pseudonymize(id string) (string, error)
}

// Pseudonymizer applies FF1 format-preserving encryption to identifiers.
// Hyphen-separated segments are transformed independently: numeric segments
// are encrypted over the digit alphabet, keeping their exact length and any
// leading zeros, while non-numeric segments pass through untouched. The same
// key always yields the same pseudonym, and distinct inputs of a given shape
// never collide because each segment transform is a bijection.
type Pseudonymizer struct {
	key       []byte
	digitPerm [10]byte
}

// NewPseudonymizer builds a Pseudonymizer around a KeySize-byte key.
func NewPseudonymizer(key []byte) (*Pseudonymizer, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrKeyCorrupt, len(key), KeySize)
	}
	p := &Pseudonymizer{key: append([]byte(nil), key...)}
	if err := p.deriveDigitPerm(); err != nil {
		return nil, err
	}
	return p, nil
}

// Pseudonymize transforms one identifier. Whitespace padding, common in
// scanner-produced headers, is stripped before transformation.
func (p *Pseudonymizer) Pseudonymize(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", nil
	}

	segments := strings.Split(id, "-")
	out := make([]string, len(segments))
	for i, seg := range segments {
		enc, err := p.encryptSegment(seg)
		if err != nil {
			return "", fmt.Errorf("could not pseudonymize segment %q: %w", seg, err)
		}
		out[i] = enc
	}
	return strings.Join(out, "-"), nil
}

func (p *Pseudonymizer) encryptSegment(seg string) (string, error) {
	if !isNumeric(seg) {
		return seg, nil
	}

	// FF1 over radix 10 requires at least two numerals. A lone digit goes
	// through a key-derived permutation of the digit alphabet instead, which
	// is still a bijection on the segment's domain.
	if len(seg) == 1 {
		return string(p.digitPerm[seg[0]-'0']), nil
	}

	// ff1.Cipher keeps CBC state between calls, so instances cannot be
	// shared across goroutines. Constructing one per call keeps the
	// pseudonymizer free of coordination.
	cipher, err := ff1.NewCipher(10, 8, p.key, nil)
	if err != nil {
		return "", fmt.Errorf("could not build FF1 cipher: %w", err)
	}
	enc, err := cipher.Encrypt(seg)
	if err != nil {
		return "", fmt.Errorf("FF1 encrypt failed: %w", err)
	}
	return enc, nil
}

// deriveDigitPerm builds a deterministic permutation of '0'..'9' from a
// single AES block, used for single-digit segments.
func (p *Pseudonymizer) deriveDigitPerm() error {
	block, err := aes.NewCipher(p.key)
	if err != nil {
		return fmt.Errorf("could not derive digit permutation: %w", err)
	}

	var stream [16]byte
	block.Encrypt(stream[:], stream[:])

	for i := range p.digitPerm {
		p.digitPerm[i] = byte('0' + i)
	}
	for i := 9; i > 0; i-- {
		j := int(stream[9-i]) % (i + 1)
		p.digitPerm[i], p.digitPerm[j] = p.digitPerm[j], p.digitPerm[i]
	}
	return nil
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
