package domain

import (
	"context"
	"errors"
	"time"
)

type CreateKeyRequest struct {
	KeyValue         string
	MachineID        string
	ExpiryDate       time.Time
	KeyType          string
	CustomerTelegram string
	Price            float64
}

type ValidateKeyRequest struct {
	KeyValue  string
	MachineID string
}

type Service interface {
	Create(context.Context, CreateKeyRequest) (LicenseKey, error)
	Validate(context.Context, ValidateKeyRequest) (bool, error)
	GetByValue(ctx context.Context, keyValue string) (LicenseKey, error)
	Deactivate(ctx context.Context, keyValue string) (LicenseKey, error)
	ListByCustomer(ctx context.Context, telegram string) ([]LicenseKey, error)
	Stats(context.Context) (Stats, error)
	ListTypes(context.Context) ([]KeyTypeDefinition, error)
}

var (
	ErrInvalidKeyValue  = errors.New("invalid_key_value")
	ErrInvalidMachineID = errors.New("invalid_machine_id")
	ErrInvalidExpiry    = errors.New("invalid_expiry")
	ErrInvalidCustomer  = errors.New("invalid_customer")
	ErrInvalidPrice     = errors.New("invalid_price")
	ErrNotFound         = errors.New("not_found")
)
