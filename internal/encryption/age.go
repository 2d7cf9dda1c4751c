package encryption

import (
	"errors"
	"fmt"
	"io"

	"filippo.io/age"

	"shoplist/internal/shop"
)

// defaultWorkFactor is age's own default scrypt cost (2^18).
const defaultWorkFactor = 18

// AgeEncryptor implements shop.Encryptor using filippo.io/age with a
// passphrase. Each backup carries its own scrypt stanza, so no key files
// need to be kept next to the data.
type AgeEncryptor struct {
	passphrase string
	workFactor int
}

var _ shop.Encryptor = (*AgeEncryptor)(nil)

// NewAgeEncryptor creates an AgeEncryptor sealing with passphrase.
func NewAgeEncryptor(passphrase string) (*AgeEncryptor, error) {
	if passphrase == "" {
		return nil, errors.New("passphrase can't be empty")
	}
	return &AgeEncryptor{passphrase: passphrase, workFactor: defaultWorkFactor}, nil
}

// SetWorkFactor sets the scrypt cost as log2(N) for future encryptions and
// the maximum cost accepted on decryption.
func (e *AgeEncryptor) SetWorkFactor(logN int) {
	e.workFactor = logN
}

// Encrypt reads plaintext from r and writes age-encrypted ciphertext to w.
func (e *AgeEncryptor) Encrypt(r io.Reader, w io.Writer) error {
	recipient, err := age.NewScryptRecipient(e.passphrase)
	if err != nil {
		return fmt.Errorf("creating scrypt recipient: %w", err)
	}
	recipient.SetWorkFactor(e.workFactor)

	encWriter, err := age.Encrypt(w, recipient)
	if err != nil {
		return fmt.Errorf("creating encrypted writer: %w", err)
	}
	if _, err := io.Copy(encWriter, r); err != nil {
		return fmt.Errorf("encrypting data: %w", err)
	}
	if err := encWriter.Close(); err != nil {
		return fmt.Errorf("finalizing encryption: %w", err)
	}
	return nil
}

// Decrypt reads age-encrypted ciphertext from r and writes plaintext to w.
// A wrong passphrase fails before anything is written.
func (e *AgeEncryptor) Decrypt(r io.Reader, w io.Writer) error {
	identity, err := age.NewScryptIdentity(e.passphrase)
	if err != nil {
		return fmt.Errorf("creating scrypt identity: %w", err)
	}
	if e.workFactor > defaultWorkFactor {
		identity.SetMaxWorkFactor(e.workFactor)
	}

	decReader, err := age.Decrypt(r, identity)
	if err != nil {
		return fmt.Errorf("creating decrypted reader: %w", err)
	}
	if _, err := io.Copy(w, decReader); err != nil {
		return fmt.Errorf("decrypting data: %w", err)
	}
	return nil
}
