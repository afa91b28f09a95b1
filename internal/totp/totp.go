package totp

import (
	"encoding/base32"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/dmitrijs2005/acctkeeper/internal/clock"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const (
	// Period is the time step in seconds.
	Period = 30
	// Digits is the length of a generated code.
	Digits = 6
)

// ErrInvalidSecret is returned for second-factor secrets that are not
// well-formed base32 or cannot produce a code.
var ErrInvalidSecret = errors.New("invalid second-factor secret")

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ234567"

var (
	nonAlphabet  = regexp.MustCompile(`[^A-Z2-7]`)
	whitespace   = regexp.MustCompile(`\s+`)
	strictBase32 = regexp.MustCompile(`^[A-Z2-7]+=*$`)

	validateOpts = totp.ValidateOpts{
		Period:    Period,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	}
)

// Generator produces codes for the current time of its clock. It holds no
// other state, so two generators with the same clock agree on every code.
type Generator struct {
	clock clock.Clocker
}

// NewGenerator returns a Generator reading time from c. A nil c means the
// system clock.
func NewGenerator(c clock.Clocker) *Generator {
	if c == nil {
		c = clock.New()
	}
	return &Generator{clock: c}
}

// Normalize uppercases secret and drops every character outside the base32
// alphabet, including whitespace and '=' padding.
func Normalize(secret string) string {
	return nonAlphabet.ReplaceAllString(strings.ToUpper(secret), "")
}

// GenerateCode returns the 6-digit code for secret in the current window.
func (g *Generator) GenerateCode(secret string) (string, error) {
	return GenerateCodeAt(secret, g.clock.Now())
}

// SecondsRemaining returns how long the current window stays valid, in
// the range 1..30.
func (g *Generator) SecondsRemaining() int {
	return SecondsRemainingAt(g.clock.Now())
}

// decodeKey reads the normalized secret five bits per symbol and keeps
// only whole bytes; trailing bits that do not fill a byte are dropped, so
// any length decodes.
func decodeKey(normalized string) []byte {
	key := make([]byte, 0, len(normalized)*5/8)
	var buf uint32
	var bits uint
	for i := 0; i < len(normalized); i++ {
		buf = buf<<5 | uint32(strings.IndexByte(alphabet, normalized[i]))
		bits += 5
		if bits >= 8 {
			bits -= 8
			key = append(key, byte(buf>>bits))
		}
	}
	return key
}

// GenerateCodeAt returns the 6-digit code for secret in the window that
// contains at. Characters outside the base32 alphabet are ignored; a secret
// with no whole key byte left is ErrInvalidSecret.
func GenerateCodeAt(secret string, at time.Time) (string, error) {
	key := decodeKey(Normalize(secret))
	if len(key) == 0 {
		return "", fmt.Errorf("%w: secret holds no key bytes", ErrInvalidSecret)
	}
	// Re-encoding canonically lets the library's strict decoder accept
	// lengths a hand-typed secret can have.
	code, err := totp.GenerateCodeCustom(base32.StdEncoding.EncodeToString(key), at, validateOpts)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidSecret, err)
	}
	return code, nil
}

// SecondsRemainingAt returns Period minus the offset of at into its window.
func SecondsRemainingAt(at time.Time) int {
	offset := at.Unix() % Period
	if offset < 0 {
		offset += Period
	}
	return Period - int(offset)
}

// ValidateSecret checks a user-entered secret before it is saved. Surrounding
// and embedded whitespace is removed and letters are uppercased; what remains
// must be base32 symbols optionally followed by '=' padding, and must be able
// to produce a code. The cleaned secret is returned.
func ValidateSecret(raw string) (string, error) {
	cleaned := whitespace.ReplaceAllString(strings.ToUpper(strings.TrimSpace(raw)), "")
	if cleaned == "" {
		return "", fmt.Errorf("%w: secret is empty", ErrInvalidSecret)
	}
	if !strictBase32.MatchString(cleaned) {
		return "", fmt.Errorf("%w: must be a valid Base32 string", ErrInvalidSecret)
	}
	if _, err := GenerateCodeAt(cleaned, time.Now()); err != nil {
		return "", err
	}
	return cleaned, nil
}
