package asset

import (
	"context"

	"github.com/matzehuels/foxy/pkg/errors"
)

// Finder picks the asset manager of a project.
type Finder struct {
	managers []*Manager
}

// NewFinder returns a Finder over managers, tried in the given order.
func NewFinder(managers ...*Manager) *Finder {
	return &Finder{managers: managers}
}

// Find returns the manager called name. With an empty name it returns the
// first manager whose lock file exists, else the first one available.
func (f *Finder) Find(ctx context.Context, name string) (*Manager, error) {
	if name != "" {
		for _, m := range f.managers {
			if m.Name() == name {
				return m, nil
			}
		}
		return nil, errors.New(errors.ErrCodeManagerNotFound, "the asset manager %q doesn't exist", name)
	}

	for _, m := range f.managers {
		if m.HasLockFile() {
			return m, nil
		}
	}
	for _, m := range f.managers {
		if m.IsAvailable(ctx) {
			return m, nil
		}
	}
	return nil, errors.New(errors.ErrCodeManagerNotFound, "no asset manager is found")
}
