package encryption

import (
	"bytes"
	"errors"
	"testing"

	"shoplist/internal/config"
)

func TestTestEncryptor_EncryptDecrypt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input []byte
	}{
		{name: "simple text", input: []byte("hello world")},
		{name: "empty", input: []byte{}},
		{name: "large data", input: bytes.Repeat([]byte("abcdef"), 10000)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			e := NewTestEncryptor()

			var encrypted bytes.Buffer
			if err := e.Encrypt(bytes.NewReader(tt.input), &encrypted); err != nil {
				t.Fatalf("Encrypt() error = %v", err)
			}
			if !bytes.HasPrefix(encrypted.Bytes(), testHeader) {
				t.Error("encrypted output does not start with test header")
			}

			var decrypted bytes.Buffer
			if err := e.Decrypt(bytes.NewReader(encrypted.Bytes()), &decrypted); err != nil {
				t.Fatalf("Decrypt() error = %v", err)
			}
			if !bytes.Equal(decrypted.Bytes(), tt.input) {
				t.Errorf("round-trip failed: got %q, want %q", decrypted.Bytes(), tt.input)
			}
		})
	}
}

func TestTestEncryptor_Deterministic(t *testing.T) {
	t.Parallel()

	e := NewTestEncryptor()
	var a, b bytes.Buffer
	if err := e.Encrypt(bytes.NewReader([]byte("same")), &a); err != nil {
		t.Fatal(err)
	}
	if err := e.Encrypt(bytes.NewReader([]byte("same")), &b); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a.Bytes(), b.Bytes()) {
		t.Error("TestEncryptor output is not deterministic")
	}
}

func TestTestEncryptor_DecryptBadHeader(t *testing.T) {
	t.Parallel()

	e := NewTestEncryptor()
	err := e.Decrypt(bytes.NewReader([]byte("NOTENC\x00\x00payload")), &bytes.Buffer{})
	if !errors.Is(err, ErrInvalidTestHeader) {
		t.Errorf("Decrypt() error = %v, want ErrInvalidTestHeader", err)
	}

	if err := e.Decrypt(bytes.NewReader([]byte("abc")), &bytes.Buffer{}); err == nil {
		t.Error("Decrypt() of short input should return error")
	}
}

func TestNewEncryptorFromConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		cfg        config.EncryptionConfig
		passphrase string
		wantType   string
		wantErr    bool
	}{
		{name: "age", cfg: config.EncryptionConfig{Type: "age"}, passphrase: "p", wantType: "age"},
		{name: "default is age", cfg: config.EncryptionConfig{}, passphrase: "p", wantType: "age"},
		{name: "age without passphrase", cfg: config.EncryptionConfig{Type: "age"}, wantErr: true},
		{name: "test", cfg: config.EncryptionConfig{Type: "test"}, wantType: "test"},
		{name: "unknown", cfg: config.EncryptionConfig{Type: "rot13"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := NewEncryptorFromConfig(tt.cfg, tt.passphrase)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewEncryptorFromConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			switch got.(type) {
			case *AgeEncryptor:
				if tt.wantType != "age" {
					t.Errorf("got *AgeEncryptor, want %s", tt.wantType)
				}
			case *TestEncryptor:
				if tt.wantType != "test" {
					t.Errorf("got *TestEncryptor, want %s", tt.wantType)
				}
			default:
				t.Errorf("unexpected encryptor type %T", got)
			}
		})
	}
}
