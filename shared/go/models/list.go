package models

import "time"

// ListItem references a catalog entry from a user list by its cache key.
type ListItem struct {
	Category Category `json:"category"`
	ItemID   string   `json:"itemId"`
}

// List is a user-owned named collection of catalog references. Items are a
// set: (category, itemId) pairs are unique within a list.
type List struct {
	ID        int64      `json:"id"`
	UserID    string     `json:"userId"`
	Name      string     `json:"name"`
	Items     []ListItem `json:"items"`
	CreatedAt time.Time  `json:"createdAt"`
}
