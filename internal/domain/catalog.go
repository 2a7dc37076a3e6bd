package domain

import "time"

// Product is a shop-scoped catalog entry, synced from product webhooks.
type Product struct {
	ID          string    `json:"id"`
	ShopID      string    `json:"shop_id"`
	ExternalID  int64     `json:"external_id"`
	Title       string    `json:"title"`
	Handle      string    `json:"handle"`
	Vendor      string    `json:"vendor"`
	ProductType string    `json:"product_type"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// InventoryLevel tracks available stock for an inventory item at a location.
type InventoryLevel struct {
	ID              string    `json:"id"`
	ShopID          string    `json:"shop_id"`
	InventoryItemID int64     `json:"inventory_item_id"`
	LocationID      int64     `json:"location_id"`
	Available       int       `json:"available"`
	UpdatedAt       time.Time `json:"updated_at"`
}
