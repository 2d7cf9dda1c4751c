package app

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/term"
)

// PassphraseEnv names the variable consulted before prompting.
const PassphraseEnv = "SHOPLIST_PASSPHRASE"

// PassphraseFunc supplies the passphrase for encrypted backups.
type PassphraseFunc func() (string, error)

// PassphraseFromEnvOrTerminal reads SHOPLIST_PASSPHRASE, or prompts on the
// terminal without echo when it is unset.
func PassphraseFromEnvOrTerminal() (string, error) {
	if p := os.Getenv(PassphraseEnv); p != "" {
		return p, nil
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("stdin is not a terminal; set %s", PassphraseEnv)
	}

	fmt.Fprint(os.Stderr, "Backup passphrase: ")
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	if len(b) == 0 {
		return "", errors.New("empty passphrase")
	}
	return string(b), nil
}
