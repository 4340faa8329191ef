package model

import "github.com/shopspring/decimal"

// Component describes a PC part as returned by the build-suggestion backend.
// The type/storage-type fields are free-form and inconsistent across catalog
// sources, which is why storage classification falls back to name and form
// factor heuristics.
type Component struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Type        string            `json:"type,omitempty"`
	StorageType string            `json:"storage_type,omitempty"`
	FormFactor  string            `json:"form_factor,omitempty"`
	Interface   string            `json:"interface,omitempty"`
	Details     *ComponentDetails `json:"details,omitempty"`
	Price       decimal.Decimal   `json:"price"`
	StorageKind string            `json:"storage_kind,omitempty"` // "ssd" or "hdd", set for storage slots
}

// ComponentDetails carries nested catalog metadata some sources use instead
// of the top-level type fields.
type ComponentDetails struct {
	Type        string `json:"type,omitempty"`
	StorageType string `json:"storage_type,omitempty"`
}

// BuildConfiguration is one suggested PC build: a fixed set of eight
// component slots.
type BuildConfiguration struct {
	CPU         Component       `json:"cpu"`
	Motherboard Component       `json:"motherboard"`
	Memory      Component       `json:"memory"`
	Storage     Component       `json:"storage"`
	GPU         Component       `json:"gpu"`
	PSU         Component       `json:"psu"`
	Case        Component       `json:"case"`
	Cooling     Component       `json:"cooling"`
	TotalPrice  decimal.Decimal `json:"total_price"`
}

// BuildSuggestion is the backend's answer to a free-text requirement:
// three ranked configurations.
type BuildSuggestion struct {
	Saving      BuildConfiguration `json:"saving"`
	Performance BuildConfiguration `json:"performance"`
	Popular     BuildConfiguration `json:"popular"`
}
