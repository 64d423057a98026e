// Package hookregistry manages the set of registered chainhooks: it
// validates incoming specifications, assigns identifiers, and delegates
// persistence to a HookStorage backend. The processing pipeline reads the
// stored set as a read-only snapshot once per evaluation pass.
package hookregistry

import (
	"context"
	"fmt"

	"github.com/gabapcia/hookwatch/internal/hookeval"

	"github.com/google/uuid"
)

// Service defines the interface for registering and unregistering
// chainhooks.
type Service interface {
	// Register validates the specification, assigns a UUID when none is
	// provided, and persists it. It returns the stored specification.
	Register(ctx context.Context, spec hookeval.Specification) (hookeval.Specification, error)

	// Deregister removes the chainhook stored under the given UUID.
	Deregister(ctx context.Context, hookUUID string) error

	// List returns every registered chainhook.
	List(ctx context.Context) ([]hookeval.Specification, error)
}

// service is the concrete implementation of the Service interface.
type service struct {
	hookStorage HookStorage
}

var _ Service = (*service)(nil)

// Register validates and persists a chainhook specification. A missing UUID
// is generated; a provided one must be a valid UUID string.
func (s *service) Register(ctx context.Context, spec hookeval.Specification) (hookeval.Specification, error) {
	if spec.UUID == "" {
		spec.UUID = uuid.NewString()
	}

	if err := validateSpecification(spec); err != nil {
		return hookeval.Specification{}, err
	}

	if err := s.hookStorage.SaveHook(ctx, spec); err != nil {
		return hookeval.Specification{}, err
	}

	return spec, nil
}

// Deregister removes a chainhook by UUID.
func (s *service) Deregister(ctx context.Context, hookUUID string) error {
	if _, err := uuid.Parse(hookUUID); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSpecification, err)
	}

	return s.hookStorage.DeleteHook(ctx, hookUUID)
}

// List returns every registered chainhook.
func (s *service) List(ctx context.Context) ([]hookeval.Specification, error) {
	return s.hookStorage.ListHooks(ctx)
}

// New creates a new hookregistry service backed by the given storage.
func New(hs HookStorage) *service {
	return &service{
		hookStorage: hs,
	}
}
