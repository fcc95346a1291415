// Package session holds who is using the CLI. A session is an explicit value
// loaded from <root>/.passbook/session.yaml at the start of a command and
// written back whenever it changes.
package session

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/schoolbank/passbook/internal/model"
)

var (
	// ErrNotLoggedIn is returned when a guest tries to read account data.
	ErrNotLoggedIn = errors.New("not logged in")
	// ErrForbidden is returned when the role does not allow the operation.
	ErrForbidden = errors.New("permission denied")
)

const (
	dirName  = ".passbook"
	fileName = "session.yaml"
)

// Session is the resolved role of the caller. A user session is tied to
// exactly one account number.
type Session struct {
	Role          model.Role `yaml:"role"`
	AccountNumber string     `yaml:"account_number,omitempty"`
}

// Guest returns the session of someone who has not logged in.
func Guest() Session {
	return Session{Role: model.RoleGuest}
}

// Admin returns an administrator session.
func Admin() Session {
	return Session{Role: model.RoleAdmin}
}

// User returns a session restricted to one account.
func User(accountNumber string) (Session, error) {
	accountNumber = strings.TrimSpace(accountNumber)
	if accountNumber == "" {
		return Session{}, errors.New("account number is required")
	}
	return Session{Role: model.RoleUser, AccountNumber: accountNumber}, nil
}

// Path returns the session file location for a project root.
func Path(root string) string {
	return filepath.Join(root, dirName, fileName)
}

// Load reads the session for root. A missing file is a guest session.
func Load(root string) (Session, error) {
	data, err := os.ReadFile(Path(root))
	if errors.Is(err, fs.ErrNotExist) {
		return Guest(), nil
	}
	if err != nil {
		return Session{}, fmt.Errorf("reading session: %w", err)
	}

	var raw struct {
		Role          string `yaml:"role"`
		AccountNumber string `yaml:"account_number"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Session{}, fmt.Errorf("parsing session: %w", err)
	}
	role, err := model.ParseRole(raw.Role)
	if err != nil {
		return Session{}, fmt.Errorf("parsing session: %w", err)
	}
	s := Session{Role: role, AccountNumber: raw.AccountNumber}
	if role == model.RoleUser && s.AccountNumber == "" {
		return Session{}, errors.New("parsing session: user session without account number")
	}
	return s, nil
}

// Save writes the session for root, replacing any previous one.
func Save(root string, s Session) error {
	if err := os.MkdirAll(filepath.Join(root, dirName), 0o700); err != nil {
		return fmt.Errorf("creating session dir: %w", err)
	}
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshaling session: %w", err)
	}
	if err := os.WriteFile(Path(root), data, 0o600); err != nil {
		return fmt.Errorf("writing session: %w", err)
	}
	return nil
}

// Clear removes the session file, logging out.
func Clear(root string) error {
	err := os.Remove(Path(root))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing session: %w", err)
	}
	return nil
}

// IsAdmin reports whether the session has the admin role.
func (s Session) IsAdmin() bool { return s.Role == model.RoleAdmin }

// RequireAdmin fails unless the session is an admin session.
func (s Session) RequireAdmin() error {
	switch s.Role {
	case model.RoleAdmin:
		return nil
	case model.RoleUser:
		return fmt.Errorf("admin role required: %w", ErrForbidden)
	default:
		return fmt.Errorf("admin role required: %w", ErrNotLoggedIn)
	}
}

// CanView fails unless the session may read the given account. Admins read
// any account, users only their own.
func (s Session) CanView(accountNumber string) error {
	switch s.Role {
	case model.RoleAdmin:
		return nil
	case model.RoleUser:
		if s.AccountNumber == accountNumber {
			return nil
		}
		return fmt.Errorf("account %q: %w", accountNumber, ErrForbidden)
	default:
		return fmt.Errorf("account %q: %w", accountNumber, ErrNotLoggedIn)
	}
}

func (s Session) String() string {
	if s.Role == model.RoleUser {
		return fmt.Sprintf("%s (account %s)", s.Role, s.AccountNumber)
	}
	return string(s.Role)
}
