package codec

import (
	"fmt"
	"strconv"
)

// Encrypter is the opaque token capability the response encoder depends on.
type Encrypter interface {
	Encrypt(plaintext string) (string, error)
}

// ResponseEncoder turns logical results into flat maps of encrypted fields.
type ResponseEncoder struct {
	cipher Encrypter
}

func NewResponseEncoder(cipher Encrypter) *ResponseEncoder {
	return &ResponseEncoder{cipher: cipher}
}

func (e *ResponseEncoder) Success() (map[string]string, error) {
	return e.Fields(map[string]string{"status": strconv.Itoa(SuccessCode())})
}

func (e *ResponseEncoder) Failure() (map[string]string, error) {
	return e.Fields(map[string]string{"status": strconv.Itoa(FailureCode())})
}

// Message encrypts a human-readable failure text as the status field.
func (e *ResponseEncoder) Message(text string) (map[string]string, error) {
	return e.Fields(map[string]string{"status": text})
}

// Fields encrypts every value individually.
func (e *ResponseEncoder) Fields(plain map[string]string) (map[string]string, error) {
	out := make(map[string]string, len(plain))
	for k, v := range plain {
		tok, err := e.cipher.Encrypt(v)
		if err != nil {
			return nil, fmt.Errorf("encrypt field %s: %w", k, err)
		}
		out[k] = tok
	}
	return out, nil
}
