package codec

import (
	"errors"
	"strconv"
	"testing"
)

const (
	testKey  = "cw_0x689RpI-jtRR7oE8h_eQsKImvJapLeSbXpwF4e4="
	otherKey = "AAECAwQFBgcICQoLDA0ODxAREhMUFRYXGBkaGxwdHh8="
)

func newTestFernet(t *testing.T, keys ...string) *Fernet {
	t.Helper()
	f, err := NewFernet(keys)
	if err != nil {
		t.Fatalf("new fernet: %v", err)
	}
	return f
}

func TestFernetRoundTrip(t *testing.T) {
	f := newTestFernet(t, testKey)
	tok, err := f.Encrypt("hwid_resets=1")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if tok == "hwid_resets=1" {
		t.Fatal("expected ciphertext to differ from plaintext")
	}
	got, err := f.Decrypt(tok)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if got != "hwid_resets=1" {
		t.Fatalf("unexpected plaintext %q", got)
	}
}

func TestFernetRejectsForeignKey(t *testing.T) {
	tok, err := newTestFernet(t, otherKey).Encrypt("x")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if _, err := newTestFernet(t, testKey).Decrypt(tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestFernetDecryptsWithRotatedKey(t *testing.T) {
	tok, err := newTestFernet(t, otherKey).Encrypt("rotated")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	got, err := newTestFernet(t, testKey, otherKey).Decrypt(tok)
	if err != nil || got != "rotated" {
		t.Fatalf("expected rotated key to decrypt, got %q err=%v", got, err)
	}
}

func TestNewFernetValidatesKeys(t *testing.T) {
	if _, err := NewFernet(nil); !errors.Is(err, ErrNoKeys) {
		t.Fatalf("expected ErrNoKeys, got %v", err)
	}
	if _, err := NewFernet([]string{"short"}); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestStatusFamiliesNeverOverlap(t *testing.T) {
	for _, c := range successCodes {
		if c < minCode || c > maxCode || c%successModulus != 0 || c%failureModulus == 0 {
			t.Fatalf("bad success code %d", c)
		}
		if Classify(c) != StatusSuccess {
			t.Fatalf("success code %d classified as %s", c, Classify(c))
		}
	}
	for _, c := range failureCodes {
		if c < minCode || c > maxCode || c%failureModulus != 0 || c%successModulus == 0 {
			t.Fatalf("bad failure code %d", c)
		}
		if Classify(c) != StatusFailure {
			t.Fatalf("failure code %d classified as %s", c, Classify(c))
		}
	}
}

func TestRandomCodesClassify(t *testing.T) {
	for i := 0; i < 500; i++ {
		if got := Classify(SuccessCode()); got != StatusSuccess {
			t.Fatalf("success code classified as %s", got)
		}
		if got := Classify(FailureCode()); got != StatusFailure {
			t.Fatalf("failure code classified as %s", got)
		}
	}
}

func TestClassifyText(t *testing.T) {
	cases := []struct {
		in   string
		want Status
	}{
		{strconv.Itoa(19 * 100), StatusSuccess},
		{strconv.Itoa(17 * 100), StatusFailure},
		{"1001", StatusUnknown},
		{"38", StatusUnknown},
		{"Invalid license.", StatusFailure},
		{"", StatusUnknown},
	}
	for _, tc := range cases {
		if got := ClassifyText(tc.in); got != tc.want {
			t.Fatalf("ClassifyText(%q)=%s want %s", tc.in, got, tc.want)
		}
	}
}

func TestResponseEncoderAndClientRoundTrip(t *testing.T) {
	f := newTestFernet(t, testKey)
	enc := NewResponseEncoder(f)
	client := NewClient(f)

	fields, err := enc.Success()
	if err != nil {
		t.Fatalf("success: %v", err)
	}
	status, _, err := client.Status(fields)
	if err != nil || status != StatusSuccess {
		t.Fatalf("expected success status, got %s err=%v", status, err)
	}

	fields, err = enc.Message("Invalid license.")
	if err != nil {
		t.Fatalf("message: %v", err)
	}
	status, raw, err := client.Status(fields)
	if err != nil || status != StatusFailure || raw != "Invalid license." {
		t.Fatalf("expected failure message, got %s %q err=%v", status, raw, err)
	}

	fields, err = enc.Fields(map[string]string{"username": "alice", "hwid_resets": "1"})
	if err != nil {
		t.Fatalf("fields: %v", err)
	}
	if fields["username"] == "alice" {
		t.Fatal("expected encrypted field")
	}
	plain, err := client.Decode(fields)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if plain["username"] != "alice" || plain["hwid_resets"] != "1" {
		t.Fatalf("unexpected decoded fields %v", plain)
	}
}

func TestClientStatusRequiresField(t *testing.T) {
	client := NewClient(newTestFernet(t, testKey))
	if _, _, err := client.Status(map[string]string{}); err == nil {
		t.Fatal("expected missing status error")
	}
}
