package shop

// Logical keys under which the four collections are persisted.
const (
	KeyProducts        = "products"
	KeyShoppingLists   = "shopping_lists"
	KeyPurchaseHistory = "purchase_history"
	KeySettings        = "settings"
)

// AllKeys lists every logical key the store owns, in initialization order.
var AllKeys = []string{KeyProducts, KeyShoppingLists, KeyPurchaseHistory, KeySettings}

// AnyVersion disables the version check on Backend.Put.
const AnyVersion int64 = -1

// Backend is the durable key/value storage beneath the Store.
// Every stored value carries a version stamp that increases on each write,
// so concurrent writers of the same key can detect each other.
type Backend interface {
	// Get returns the value and version stored under key.
	// A missing key returns a nil value and version 0 with no error.
	Get(key string) (value []byte, version int64, err error)

	// Put stores value under key and returns the new version.
	// Unless ifVersion is AnyVersion, the current version must equal
	// ifVersion (0 meaning the key must be absent); otherwise Put returns
	// ErrVersionConflict and writes nothing.
	Put(key string, value []byte, ifVersion int64) (int64, error)

	// Delete removes key together with its version stamp, so a later Put
	// starts again at version 1. Deleting a missing key is not an error.
	Delete(key string) error

	// Close releases any resources held by the backend.
	Close() error
}
