package codec

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fernet/fernet-go"

	"github.com/sandeepkv93/authplus-license-service/internal/observability"
)

var (
	ErrNoKeys       = errors.New("codec: at least one fernet key is required")
	ErrInvalidToken = errors.New("codec: token is invalid or was signed with an unknown key")
)

// Fernet encrypts with the first configured key and decrypts with any of them,
// so keys can be rotated by prepending a new one.
type Fernet struct {
	keys []*fernet.Key
	ttl  time.Duration
}

func NewFernet(encodedKeys []string) (*Fernet, error) {
	if len(encodedKeys) == 0 {
		return nil, ErrNoKeys
	}
	keys, err := fernet.DecodeKeys(encodedKeys...)
	if err != nil {
		return nil, fmt.Errorf("decode fernet keys: %w", err)
	}
	return &Fernet{keys: keys, ttl: -1}, nil
}

// WithMaxAge returns a copy that rejects tokens older than ttl on Decrypt.
func (f *Fernet) WithMaxAge(ttl time.Duration) *Fernet {
	cp := *f
	cp.ttl = ttl
	return &cp
}

func (f *Fernet) Encrypt(plaintext string) (string, error) {
	tok, err := fernet.EncryptAndSign([]byte(plaintext), f.keys[0])
	if err != nil {
		observability.RecordCodecEvent(context.Background(), "encrypt", "error")
		return "", fmt.Errorf("encrypt: %w", err)
	}
	observability.RecordCodecEvent(context.Background(), "encrypt", "success")
	return string(tok), nil
}

func (f *Fernet) Decrypt(token string) (string, error) {
	msg := fernet.VerifyAndDecrypt([]byte(token), f.ttl, f.keys)
	if msg == nil {
		observability.RecordCodecEvent(context.Background(), "decrypt", "invalid")
		return "", ErrInvalidToken
	}
	observability.RecordCodecEvent(context.Background(), "decrypt", "success")
	return string(msg), nil
}
