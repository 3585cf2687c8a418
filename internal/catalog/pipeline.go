// Package catalog derives the paginated storefront view from the raw product
// list. Every step is pure: no I/O, no mutation of the input, safe to re-run
// on every filter change.
package catalog

import (
	"sort"
	"strings"
)

// Product is the view shape of a cupcake row, decoded at the boundary.
type Product struct {
	ID            int     `json:"id"`
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	Ingredients   string  `json:"ingredients"`
	Price         float64 `json:"price"`
	Image         string  `json:"image"`
	IsNew         bool    `json:"is_new"`
	IsBlackFriday bool    `json:"is_black_friday"`
	IsChristmas   bool    `json:"is_christmas"`
	Discount      int     `json:"discount"`
	OrderCount    int     `json:"order_count"`
}

type Category string

const (
	CategoryAll         Category = "all"
	CategoryNew         Category = "new"
	CategoryBlackFriday Category = "blackFriday"
	CategoryChristmas   Category = "christmas"
)

type SortKey string

const (
	SortMostOrdered     SortKey = "mostOrdered"
	SortNewest          SortKey = "newest"
	SortLowestPrice     SortKey = "lowestPrice"
	SortHighestDiscount SortKey = "highestDiscount"
)

// PageSize is fixed by the storefront grid.
const PageSize = 6

// FilterState is the user's current view selection. Zero values of Search
// and the full price range pass everything through.
type FilterState struct {
	Search   string
	Category Category
	SortBy   SortKey
	MinPrice float64
	MaxPrice float64
	Page     int
}

// View is one derived page plus the page count for the pager.
type View struct {
	Products   []Product `json:"products"`
	Page       int       `json:"page"`
	TotalPages int       `json:"total_pages"`
	Total      int       `json:"total"`
}

// Derive applies search, category, price range, sort and pagination, in that
// fixed order.
func Derive(products []Product, f FilterState) View {
	filtered := Filter(products, f)
	Sort(filtered, f.SortBy)

	total := len(filtered)
	totalPages := (total + PageSize - 1) / PageSize

	page := f.Page
	if page < 1 {
		page = 1
	}

	return View{
		Products:   paginate(filtered, page),
		Page:       page,
		TotalPages: totalPages,
		Total:      total,
	}
}

// Filter returns a fresh slice holding the products that pass the search,
// category and price-range steps.
func Filter(products []Product, f FilterState) []Product {
	out := make([]Product, 0, len(products))

	term := strings.ToLower(f.Search)
	for _, p := range products {
		if term != "" &&
			!strings.Contains(strings.ToLower(p.Title), term) &&
			!strings.Contains(strings.ToLower(p.Description), term) {
			continue
		}
		if !matchesCategory(p, f.Category) {
			continue
		}
		if p.Price < f.MinPrice || p.Price > f.MaxPrice {
			continue
		}
		out = append(out, p)
	}
	return out
}

func matchesCategory(p Product, c Category) bool {
	switch c {
	case CategoryNew:
		return p.IsNew
	case CategoryBlackFriday:
		return p.IsBlackFriday
	case CategoryChristmas:
		return p.IsChristmas
	default:
		return true
	}
}

// Sort orders the slice in place, stably, by the selected key. "newest" is a
// partition putting is_new items first, not a created-at ordering; the
// storefront always behaved that way and the behavior is kept as is.
func Sort(products []Product, key SortKey) {
	switch key {
	case SortMostOrdered:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].OrderCount > products[j].OrderCount
		})
	case SortNewest:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].IsNew && !products[j].IsNew
		})
	case SortLowestPrice:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].Price < products[j].Price
		})
	case SortHighestDiscount:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].Discount > products[j].Discount
		})
	}
}

func paginate(products []Product, page int) []Product {
	from := (page - 1) * PageSize
	if from >= len(products) {
		return []Product{}
	}
	to := from + PageSize
	if to > len(products) {
		to = len(products)
	}
	return products[from:to]
}
