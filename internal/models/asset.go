package models

import "time"

// Asset type constants
const (
	AssetTypeCrypto    = "crypto"
	AssetTypeStock     = "stock"
	AssetTypeETF       = "etf"
	AssetTypeCommodity = "commodity"
	AssetTypeForex     = "forex"
)

// Asset represents a tradeable instrument. Identity is immutable once the
// asset is referenced by a position or order.
type Asset struct {
	ID        string    `json:"id"`
	Symbol    string    `json:"symbol"`
	Name      string    `json:"name"`
	AssetType string    `json:"asset_type"`
	Exchange  string    `json:"exchange,omitempty"`
	IsActive  bool      `json:"is_active"`
	Sector    string    `json:"sector,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
