package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// LicenseKey is a license grant tying a key value to a machine, with a
// validity window and a one-way active flag.
type LicenseKey struct {
	ID               snowflake.ID `gorm:"primaryKey" json:"id"`
	KeyValue         string       `gorm:"column:key_value;not null;index" json:"keyValue"`
	MachineID        string       `gorm:"column:machine_id;not null" json:"machineId"`
	CreatedDate      time.Time    `gorm:"column:created_date;not null" json:"createdDate"`
	ExpiryDate       time.Time    `gorm:"column:expiry_date;not null" json:"expiryDate"`
	IsActive         bool         `gorm:"column:is_active;not null" json:"isActive"`
	KeyType          string       `gorm:"column:key_type;not null" json:"keyType"`
	CustomerTelegram string       `gorm:"column:customer_telegram;not null;index" json:"customerTelegram"`
	Price            float64      `gorm:"column:price;not null" json:"price"`
}

func (LicenseKey) TableName() string {
	return "keys"
}

// Usable reports whether the key licenses use at the given instant.
func (k LicenseKey) Usable(now time.Time) bool {
	return k.IsActive && k.ExpiryDate.After(now)
}

// SaleStatus is the bookkeeping state of a sale entry.
type SaleStatus string

const (
	SaleStatusCompleted SaleStatus = "Completed"
)

// Sale is an accounting entry recorded alongside a key at issuance time.
// Only the relational backend maintains sales.
type Sale struct {
	ID               snowflake.ID `gorm:"primaryKey" json:"id"`
	KeyID            snowflake.ID `gorm:"column:key_id;not null;index" json:"keyId"`
	SaleDate         time.Time    `gorm:"column:sale_date;not null" json:"saleDate"`
	Amount           float64      `gorm:"column:amount;not null" json:"amount"`
	CustomerTelegram string       `gorm:"column:customer_telegram;not null" json:"customerTelegram"`
	Status           SaleStatus   `gorm:"column:status;not null" json:"status"`
}

func (Sale) TableName() string {
	return "sales"
}

// KeyTypeDefinition is a catalog entry describing a sellable key type.
type KeyTypeDefinition struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	Name         string       `gorm:"column:name;not null;uniqueIndex" json:"name"`
	DurationDays int          `gorm:"column:duration_days;not null" json:"durationDays"`
	Price        float64      `gorm:"column:price;not null" json:"price"`
	Description  string       `gorm:"column:description" json:"description"`
	IsActive     bool         `gorm:"column:is_active;not null" json:"isActive"`
}

func (KeyTypeDefinition) TableName() string {
	return "key_types"
}

// KeyTypeStat aggregates issued keys by their raw key type label.
type KeyTypeStat struct {
	KeyType string  `json:"keyType"`
	Count   int64   `json:"count"`
	Revenue float64 `json:"revenue"`
}

// Stats is the registry-wide aggregate.
//
// The partition is deliberate: a key counts toward ActiveKeys only while
// active and unexpired, toward ExpiredKeys once expired regardless of the
// active flag, and a deactivated-but-unexpired key counts toward neither.
type Stats struct {
	TotalKeys    int64         `json:"totalKeys"`
	ActiveKeys   int64         `json:"activeKeys"`
	ExpiredKeys  int64         `json:"expiredKeys"`
	TotalRevenue float64       `json:"totalRevenue"`
	KeyTypeStats []KeyTypeStat `json:"keyTypeStats"`
}
