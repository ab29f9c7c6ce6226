package participant

import (
	"context"
	"strings"

	"github.com/mca-deal-ledger/internal/domain/shared"
)

// ErrEmptyName rejects names that are blank after trimming
var ErrEmptyName = shared.ValidationError{Field: "name", Reason: "participant name cannot be empty"}

// Normalize trims and lowercases a participant name
func Normalize(name string) (string, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return "", ErrEmptyName
	}
	return n, nil
}

// Repository is the additive-only participant registry
type Repository interface {
	// Add stores a normalised name; adding an existing name is a no-op
	Add(ctx context.Context, name string) error
	// List returns names in registration order
	List(ctx context.Context) ([]string, error)
	Exists(ctx context.Context, name string) (bool, error)
}

// ErrUnknownParticipants reports allocation names missing from the registry
type ErrUnknownParticipants struct {
	Names []string
}

func (e ErrUnknownParticipants) Error() string {
	return "unknown participants: " + strings.Join(e.Names, ", ")
}

// Unwrap lets errors.Is match shared.ErrValidation
func (e ErrUnknownParticipants) Unwrap() error {
	return shared.ErrValidation
}
