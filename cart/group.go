package cart

import (
	"sort"

	"mandi/models"
)

// GroupBySeller splits joined cart entries into per-seller groups and
// computes each group's pricing rollup. Seller order is stable
// (sorted by id) so repeated reads of the same cart render identically.
//
// The delivery fee of a group is the maximum fee among its lines that
// chose home delivery; a group with only pickup lines ships free.
func GroupBySeller(entries []models.CartEntry) []models.SellerCartGroup {
	bySeller := make(map[string][]models.CartEntry)
	for _, e := range entries {
		bySeller[e.Product.SellerID] = append(bySeller[e.Product.SellerID], e)
	}

	sellerIDs := make([]string, 0, len(bySeller))
	for id := range bySeller {
		sellerIDs = append(sellerIDs, id)
	}
	sort.Strings(sellerIDs)

	groups := make([]models.SellerCartGroup, 0, len(sellerIDs))
	for _, sellerID := range sellerIDs {
		group := models.SellerCartGroup{
			SellerID: sellerID,
			Entries:  bySeller[sellerID],
		}
		for _, e := range group.Entries {
			group.Subtotal += e.Product.Price * float64(e.Quantity)
			if e.DeliveryOption == models.HomeDelivery && e.Product.DeliveryFee > group.DeliveryFee {
				group.DeliveryFee = e.Product.DeliveryFee
			}
		}
		group.Total = group.Subtotal + group.DeliveryFee
		groups = append(groups, group)
	}
	return groups
}
