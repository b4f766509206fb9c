// Package usecase contains application use cases.
package usecase

import (
	"context"

	"github.com/planweave/planweave/internal/domain"
)

// InitInput contains the parameters for initializing a workspace.
type InitInput struct{}

// InitOutput contains the result of initialization.
type InitOutput struct{}

// Init is the use case for initializing a planweave workspace.
type Init struct {
	store domain.StoreInitializer
}

// NewInit creates a new Init use case.
func NewInit(store domain.StoreInitializer) *Init {
	return &Init{store: store}
}

// Execute initializes the workspace store.
func (uc *Init) Execute(_ context.Context, _ InitInput) (*InitOutput, error) {
	if err := uc.store.Initialize(); err != nil {
		return nil, err
	}
	return &InitOutput{}, nil
}
