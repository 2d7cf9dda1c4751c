package testutil

import (
	"testing"

	"shoplist/internal/encryption"
	"shoplist/internal/shop"
	"shoplist/internal/vault"
)

// NewTestStore creates a Store over backend with a FixedClock and sequential
// IDs. A nil backend gets a fresh in-memory one.
func NewTestStore(t *testing.T, backend shop.Backend) (*shop.Store, *StubClock) {
	t.Helper()
	return NewTestStoreWithLogger(t, backend, shop.NewNopLogger())
}

// NewTestStoreWithLogger is NewTestStore with a caller-supplied logger.
func NewTestStoreWithLogger(t *testing.T, backend shop.Backend, logger shop.Logger) (*shop.Store, *StubClock) {
	t.Helper()

	if backend == nil {
		backend = NewTestBackend()
	}
	clock := FixedClock()
	s, err := shop.NewStore(backend, logger, clock, NewStubIDGenerator())
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	return s, clock
}

// NewTestDestination creates a new in-memory backup destination for testing.
func NewTestDestination() *vault.MemoryVault {
	return vault.NewMemoryVault()
}

// NewTestEncryptor creates a new test encryptor for testing.
func NewTestEncryptor() shop.Encryptor {
	return encryption.NewTestEncryptor()
}
