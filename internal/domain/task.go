package domain

import (
	"strings"
	"time"
	"unicode"
)

// DefaultImportance is the "iot" marker written for tasks created by voice.
// The companion mobile app uses 2 for important tasks.
const DefaultImportance = 1

// Task is a to-do entry owned by a user.
type Task struct {
	ID           string         `json:"-"`
	Text         string         `json:"text"`
	Date         string         `json:"date"`
	CreatedAt    time.Time      `json:"created_at"`
	Importance   int            `json:"iot"`
	IsShopping   bool           `json:"is_shopping,omitempty"`
	ParentTask   string         `json:"parent_task,omitempty"`
	ShoppingList []ShoppingItem `json:"shopping_list,omitempty"`
}

// GroupKey returns the shopping group a task belongs to.
func (t Task) GroupKey() string {
	if t.ParentTask != "" {
		return t.ParentTask
	}
	return t.ID
}

// ShoppingItem is one entry of a shopping list. Only ShortName is always set;
// the other fields are filled when the item matched a catalog product.
type ShoppingItem struct {
	ShortName     string `json:"short_name"`
	FullName      string `json:"full_name,omitempty"`
	Price         string `json:"price,omitempty"`
	PriceWithCard string `json:"price_with_card,omitempty"`
	URL           string `json:"url,omitempty"`
	ImageURL      string `json:"image_url,omitempty"`
}

// Matched reports whether the item was enriched from the catalog.
func (i ShoppingItem) Matched() bool {
	return i.FullName != "" || i.URL != ""
}

// Capitalize upper-cases the first letter and lower-cases the rest.
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(strings.ToLower(s))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
