package domain

import "time"

// Pricing models a vendor listing can use.
const (
	PriceFlat   = "Flat"
	PricePerKm  = "PerKm"
	PricePerKg  = "PerKg"
	PricePerTon = "PerTon"
)

// VendorListing is a catalog entry owned by a vendor. The auth core only
// reads these; listing management lives outside this service.
type VendorListing struct {
	ListingID  string    `json:"id" dynamodbav:"listing_id"`
	VendorID   string    `json:"vendor_id" dynamodbav:"vendor_id"`
	Title      string    `json:"title" dynamodbav:"title"`
	Category   string    `json:"category" dynamodbav:"category"`
	PriceModel string    `json:"price_model" dynamodbav:"price_model"`
	UnitPrice  float64   `json:"unit_price" dynamodbav:"unit_price"`
	IsActive   bool      `json:"is_active" dynamodbav:"is_active"`
	CreatedAt  time.Time `json:"created_at" dynamodbav:"created_at"`
}
