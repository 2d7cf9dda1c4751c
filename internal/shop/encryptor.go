package shop

import "io"

// Encryptor seals backups before they leave the machine.
type Encryptor interface {
	// Encrypt reads plaintext from r and writes ciphertext to w.
	Encrypt(r io.Reader, w io.Writer) error

	// Decrypt reads ciphertext from r and writes plaintext to w.
	// It fails if the ciphertext was not produced with the same secret.
	Decrypt(r io.Reader, w io.Writer) error
}
