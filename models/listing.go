package models

import "time"

// ListingStatus is the lifecycle state of a marketplace listing.
type ListingStatus string

const (
	ListingPending   ListingStatus = "pending"
	ListingCompleted ListingStatus = "completed"
	ListingCancelled ListingStatus = "cancelled"
)

// Listing is a marketplace transaction: a farmer offers a quantity of a
// crop and, once bought, it records the buyer and the ledger block hash.
type Listing struct {
	ID             int64         `json:"id"`
	FarmerID       int64         `json:"farmer_id"`
	BuyerID        *int64        `json:"buyer_id"`
	CropID         int64         `json:"crop_id"`
	Quantity       float64       `json:"quantity"`
	Price          float64       `json:"price"`
	TotalAmount    float64       `json:"total_amount"`
	Status         ListingStatus `json:"status"`
	Quality        string        `json:"quality"`
	Location       string        `json:"location"`
	BlockchainHash string        `json:"blockchain_hash,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
	CompletedAt    *time.Time    `json:"completed_at,omitempty"`
}

// Product is a pending listing decorated for the marketplace catalogue.
type Product struct {
	ID          int64     `json:"id"`
	CropName    string    `json:"crop_name"`
	FarmerName  string    `json:"farmer_name"`
	FarmerID    int64     `json:"farmer_id"`
	Quantity    float64   `json:"quantity"`
	Price       float64   `json:"price"`
	TotalAmount float64   `json:"total_amount"`
	Quality     string    `json:"quality"`
	Location    string    `json:"location"`
	HarvestDate string    `json:"harvest_date"`
	CreatedAt   time.Time `json:"created_at"`
}

// Order is one side of a completed or pending trade seen by a user.
type Order struct {
	Type        string  `json:"type"` // purchase | sale
	Transaction Listing `json:"transaction"`
	Crop        Crop    `json:"crop"`
	Farmer      *User   `json:"farmer,omitempty"`
	Buyer       *User   `json:"buyer,omitempty"`
}
