package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Repository is the storage contract shared by the relational store and the
// flat-file store.
//
// Insert takes the sale entry built by the service; backends that keep no
// sales ledger ignore it. FindByValue and FindUsable return (nil, nil) on a
// miss so callers can distinguish absence from storage failure. Deactivate
// succeeds on a key that is already inactive; callers resolve existence with
// a lookup first.
type Repository interface {
	Insert(ctx context.Context, key *LicenseKey, sale *Sale) error
	FindByValue(ctx context.Context, keyValue string) (*LicenseKey, error)
	FindUsable(ctx context.Context, keyValue, machineID string, now time.Time) (*LicenseKey, error)
	ListByCustomer(ctx context.Context, telegram string) ([]LicenseKey, error)
	Deactivate(ctx context.Context, id snowflake.ID) error
	Stats(ctx context.Context, now time.Time) (Stats, error)
	ListTypes(ctx context.Context) ([]KeyTypeDefinition, error)
}
