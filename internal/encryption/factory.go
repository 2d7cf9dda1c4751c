package encryption

import (
	"fmt"

	"shoplist/internal/config"
	"shoplist/internal/shop"
)

// NewEncryptorFromConfig creates an Encryptor based on the configuration type.
// passphrase is ignored by the test encryptor.
func NewEncryptorFromConfig(cfg config.EncryptionConfig, passphrase string) (shop.Encryptor, error) {
	switch cfg.Type {
	case "age", "":
		return NewAgeEncryptor(passphrase)
	case "test":
		return NewTestEncryptor(), nil
	default:
		return nil, fmt.Errorf("unknown encryption type: %q", cfg.Type)
	}
}
