package codec

import "fmt"

// Decrypter is implemented by *Fernet.
type Decrypter interface {
	Decrypt(token string) (string, error)
}

// Client decodes encrypted responses the way a licensed application does.
type Client struct {
	cipher Decrypter
}

func NewClient(cipher Decrypter) *Client {
	return &Client{cipher: cipher}
}

// Decode decrypts every field of a response envelope.
func (c *Client) Decode(fields map[string]string) (map[string]string, error) {
	out := make(map[string]string, len(fields))
	for k, tok := range fields {
		v, err := c.cipher.Decrypt(tok)
		if err != nil {
			return nil, fmt.Errorf("decrypt field %s: %w", k, err)
		}
		out[k] = v
	}
	return out, nil
}

// Status decrypts and classifies the status field of a response envelope.
func (c *Client) Status(fields map[string]string) (Status, string, error) {
	tok, ok := fields["status"]
	if !ok {
		return StatusUnknown, "", fmt.Errorf("response has no status field")
	}
	v, err := c.cipher.Decrypt(tok)
	if err != nil {
		return StatusUnknown, "", err
	}
	return ClassifyText(v), v, nil
}
