package models

import "time"

// CartItem is one line in a user's cart. ItemID is a synthetic per-line
// identifier so quantity updates and removals can target a single line.
type CartItem struct {
	ItemID   string `json:"item_id"`
	CakeID   string `json:"cake_id"`
	Quantity int    `json:"quantity"`
}

// Cart holds the single active item list for a user.
type Cart struct {
	UserID    string     `json:"user_id"`
	Items     []CartItem `json:"items"`
	UpdatedAt time.Time  `json:"updated_at"`
}
