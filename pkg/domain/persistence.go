package domain

import "context"

// Transaction exposes the domain operations that a persistence implementation
// must support within an atomic scope.
type Transaction interface {
	Snapshot() TransactionView
	CreateBrand(Brand) (Brand, error)
	UpdateBrand(id int64, mutator func(*Brand) error) (Brand, error)
	DeleteBrand(id int64) error
	CreateColor(Color) (Color, error)
	UpdateColor(id int64, mutator func(*Color) error) (Color, error)
	DeleteColor(id int64) error
	CreatePalette(Palette) (Palette, error)
	UpdatePalette(id int64, mutator func(*Palette) error) (Palette, error)
	DeletePalette(id int64) error
	CreateColorSlot(ColorSlot) (ColorSlot, error)
	UpdateColorSlot(id int64, mutator func(*ColorSlot) error) (ColorSlot, error)
	DeleteColorSlot(id int64) error
	CreateStashItem(StashItem) (StashItem, error)
	UpdateStashItem(id int64, mutator func(*StashItem) error) (StashItem, error)
	DeleteStashItem(id int64) error
	FindBrand(id int64) (Brand, bool)
	FindColor(id int64) (Color, bool)
	FindPalette(id int64) (Palette, bool)
	FindColorSlot(id int64) (ColorSlot, bool)
	FindStashItem(id int64) (StashItem, bool)
}

// TransactionView provides read-only access to snapshot data.
type TransactionView interface {
	RuleView
	ListBrands() []Brand
	ListColors() []Color
	ListPalettes() []Palette
	ListStashItems() []StashItem
	FindStashItem(id int64) (StashItem, bool)
}

// PersistentStore is a minimal abstraction over durable backends. It mirrors
// the subset of store capabilities used directly by higher layers.
type PersistentStore interface {
	RunInTransaction(ctx context.Context, fn func(Transaction) error) (Result, error)
	View(ctx context.Context, fn func(TransactionView) error) error
	GetBrand(id int64) (Brand, bool)
	ListBrands() []Brand
	GetColor(id int64) (Color, bool)
	ListColors() []Color
	GetPalette(id int64) (Palette, bool)
	ListPalettes() []Palette
	ListColorSlots() []ColorSlot
	ListStashItems() []StashItem
}
