package security

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"math"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	argonTime    uint32 = 3
	argonMemory  uint32 = 64 * 1024
	argonThreads uint8  = 2
	argonKeyLen  uint32 = 32
	argonSaltLen        = 16
)

const (
	ModePlaintext = "plaintext"
	ModeArgon2id  = "argon2id"
)

// PasswordStore decides how account passwords are persisted and compared.
type PasswordStore interface {
	Mode() string
	// Prepare converts a caller-supplied password into its stored form.
	Prepare(password string) (string, error)
	// Verify compares a candidate against a stored value in constant time.
	Verify(stored, candidate string) bool
	// VerifyDummy spends the same effort as Verify for usernames that do not exist.
	VerifyDummy(candidate string)
}

func NewPasswordStore(mode string) (PasswordStore, error) {
	switch strings.ToLower(mode) {
	case "", ModePlaintext:
		return PlaintextPasswords{}, nil
	case ModeArgon2id:
		dummy, err := HashPassword("authplus-dummy-password")
		if err != nil {
			return nil, err
		}
		return &Argon2idPasswords{dummy: dummy}, nil
	default:
		return nil, fmt.Errorf("unsupported password storage mode %q", mode)
	}
}

// PlaintextPasswords stores passwords verbatim, matching deployed clients
// that read them back through fetch.
type PlaintextPasswords struct{}

func (PlaintextPasswords) Mode() string { return ModePlaintext }

func (PlaintextPasswords) Prepare(password string) (string, error) { return password, nil }

func (PlaintextPasswords) Verify(stored, candidate string) bool {
	return ConstantTimeEqual(stored, candidate)
}

func (PlaintextPasswords) VerifyDummy(candidate string) {
	_ = ConstantTimeEqual(candidate, candidate)
}

type Argon2idPasswords struct {
	dummy string
}

func (*Argon2idPasswords) Mode() string { return ModeArgon2id }

func (*Argon2idPasswords) Prepare(password string) (string, error) {
	return HashPassword(password)
}

func (*Argon2idPasswords) Verify(stored, candidate string) bool {
	ok, err := VerifyPassword(stored, candidate)
	return err == nil && ok
}

func (a *Argon2idPasswords) VerifyDummy(candidate string) {
	_, _ = VerifyPassword(a.dummy, candidate)
}

// ConstantTimeEqual compares two secrets without leaking their common prefix
// length. Inputs are digested first so differing lengths take the same path.
func ConstantTimeEqual(a, b string) bool {
	da := sha256.Sum256([]byte(a))
	db := sha256.Sum256([]byte(b))
	return subtle.ConstantTimeCompare(da[:], db[:]) == 1
}

func HashPassword(password string) (string, error) {
	salt := make([]byte, argonSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	hash := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)
	return fmt.Sprintf("$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		argonMemory, argonTime, argonThreads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash)), nil
}

func VerifyPassword(encoded, password string) (bool, error) {
	memory, timeCost, threads, salt, expected, err := decodeHash(encoded)
	if err != nil {
		return false, err
	}
	if uint64(len(expected)) > uint64(math.MaxUint32) {
		return false, fmt.Errorf("invalid hash length")
	}
	// #nosec G115 -- bounded by explicit MaxUint32 check above.
	actual := argon2.IDKey([]byte(password), salt, timeCost, memory, threads, uint32(len(expected)))
	return subtle.ConstantTimeCompare(actual, expected) == 1, nil
}

func decodeHash(encoded string) (memory uint32, timeCost uint32, threads uint8, salt, hash []byte, err error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" || parts[2] != "v=19" {
		return 0, 0, 0, nil, nil, fmt.Errorf("invalid password hash format")
	}
	if _, err = fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &timeCost, &threads); err != nil {
		return 0, 0, 0, nil, nil, fmt.Errorf("invalid hash params")
	}
	if salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		return 0, 0, 0, nil, nil, fmt.Errorf("invalid hash salt")
	}
	if hash, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil {
		return 0, 0, 0, nil, nil, fmt.Errorf("invalid hash payload")
	}
	return memory, timeCost, threads, salt, hash, nil
}
