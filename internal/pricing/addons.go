package pricing

import "strings"

type addOnKey struct {
	name  string
	price float64
}

func keyOf(a AddOnOption) addOnKey {
	return addOnKey{name: strings.ToLower(a.Name), price: a.Price}
}

// DedupeAddOns drops options whose lower-cased name and price match an earlier option.
// Order is preserved and the first occurrence wins.
func DedupeAddOns(list []AddOnOption) []AddOnOption {
	if len(list) == 0 {
		return nil
	}
	seen := make(map[addOnKey]struct{}, len(list))
	out := make([]AddOnOption, 0, len(list))
	for _, a := range list {
		k := keyOf(a)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, a)
	}
	return out
}

// rawAddOns returns the item's own add-ons followed by its parent's, undeduplicated.
func rawAddOns(item CatalogItem, catalog Catalog) []AddOnOption {
	all := append([]AddOnOption(nil), item.AddOns...)
	if item.ParentID == "" || item.ParentID == item.ID || catalog == nil {
		return all
	}
	if parent, ok := catalog.Lookup(item.ParentID); ok {
		all = append(all, parent.AddOns...)
	}
	return all
}

// AvailableAddOns is the deduplicated union of item's add-ons and its parent's.
func AvailableAddOns(item CatalogItem, catalog Catalog) []AddOnOption {
	return DedupeAddOns(rawAddOns(item, catalog))
}

// addOnsTotal sums the price of every selected option once. An id that points at a
// duplicate option resolves to the surviving one with the same key, so selecting both
// copies of the same option still charges it once. Unknown ids are skipped.
func addOnsTotal(item CatalogItem, catalog Catalog, selected []string) float64 {
	if len(selected) == 0 {
		return 0
	}
	raw := rawAddOns(item, catalog)
	if len(raw) == 0 {
		return 0
	}
	keyByID := make(map[string]addOnKey, len(raw))
	for _, a := range raw {
		if _, ok := keyByID[a.ID]; !ok {
			keyByID[a.ID] = keyOf(a)
		}
	}
	charged := make(map[addOnKey]struct{}, len(selected))
	var total float64
	for _, a := range DedupeAddOns(raw) {
		k := keyOf(a)
		for _, id := range selected {
			sk, ok := keyByID[id]
			if !ok || sk != k {
				continue
			}
			if _, done := charged[k]; !done {
				charged[k] = struct{}{}
				total += a.Price
			}
			break
		}
	}
	return total
}
