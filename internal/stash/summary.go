package stash

import (
	"context"
	"palettecore/pkg/domain"
)

// CategoryCounts tallies stash items for one brand category.
type CategoryCounts struct {
	Total    int `json:"total"`
	Owned    int `json:"owned"`
	WishList int `json:"wish_list"`
}

// Summary reports an owner's stash across every brand category.
type Summary struct {
	Total      int                                `json:"total"`
	Owned      int                                `json:"owned"`
	WishList   int                                `json:"wish_list"`
	ByCategory map[domain.Category]CategoryCounts `json:"by_category"`
}

// Summarize counts owner's stash items per brand category. Every category is
// present, zero when empty.
func Summarize(ctx context.Context, store domain.PersistentStore, owner int64) (Summary, error) {
	summary := Summary{ByCategory: make(map[domain.Category]CategoryCounts)}
	for _, category := range domain.Categories() {
		summary.ByCategory[category] = CategoryCounts{}
	}
	err := store.View(ctx, func(view domain.TransactionView) error {
		for _, item := range view.ListStashItems() {
			if item.OwnerID != owner {
				continue
			}
			color, ok := view.FindColor(item.ColorID)
			if !ok {
				continue
			}
			brand, ok := view.FindBrand(color.BrandID)
			if !ok {
				continue
			}
			counts := summary.ByCategory[brand.Category]
			counts.Total++
			summary.Total++
			switch item.Status {
			case domain.OwnershipOwned:
				counts.Owned++
				summary.Owned++
			case domain.OwnershipWishList:
				counts.WishList++
				summary.WishList++
			}
			summary.ByCategory[brand.Category] = counts
		}
		return nil
	})
	if err != nil {
		return Summary{}, err
	}
	return summary, nil
}
