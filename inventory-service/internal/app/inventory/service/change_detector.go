package service

import (
	"sort"

	"inventory/inventory-service/internal/app/inventory/entity"
)

// stringField reads one user-editable text field of a product.
type stringField struct {
	name string
	get  func(*entity.Product) string
}

// brand and sku are fixed after creation and not tracked.
var trackedStringFields = []stringField{
	{"title", func(p *entity.Product) string { return p.Title }},
	{"category", func(p *entity.Product) string { return p.Category }},
	{"description", func(p *entity.Product) string { return p.Description }},
	{"caseMaterial", func(p *entity.Product) string { return p.CaseMaterial }},
	{"dialColor", func(p *entity.Product) string { return p.DialColor }},
	{"waterResistance", func(p *entity.Product) string { return p.WaterResistance }},
	{"warrantyPeriod", func(p *entity.Product) string { return p.WarrantyPeriod }},
	{"movement", func(p *entity.Product) string { return p.Movement }},
	{"gender", func(p *entity.Product) string { return p.Gender }},
	{"strapColor", func(p *entity.Product) string { return p.StrapColor }},
	{"caseShape", func(p *entity.Product) string { return p.CaseShape }},
	{"caseSize", func(p *entity.Product) string { return p.CaseSize }},
}

// DetectChanges returns the tracked fields whose value differs between before
// and after, or nil when none does. A nil product counts as all zero values.
// Images compare as multisets: reordering is not a change.
func DetectChanges(before, after *entity.Product) entity.Changes {
	if before == nil {
		before = &entity.Product{}
	}
	if after == nil {
		after = &entity.Product{}
	}

	changes := entity.Changes{}

	if before.Inventory != after.Inventory {
		changes["inventory"] = entity.FieldChange{Before: before.Inventory, After: after.Inventory}
	}
	if before.Price != after.Price {
		changes["price"] = entity.FieldChange{Before: before.Price, After: after.Price}
	}
	if before.OldPrice != after.OldPrice {
		changes["oldPrice"] = entity.FieldChange{Before: before.OldPrice, After: after.OldPrice}
	}

	for _, f := range trackedStringFields {
		if b, a := f.get(before), f.get(after); b != a {
			changes[f.name] = entity.FieldChange{Before: b, After: a}
		}
	}

	if !sameImages(before.Images, after.Images) {
		changes["images"] = entity.FieldChange{
			Before: nonNil(before.Images),
			After:  nonNil(after.Images),
		}
	}

	if len(changes) == 0 {
		return nil
	}
	return changes
}

func sameImages(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	sa := append([]string(nil), a...)
	sb := append([]string(nil), b...)
	sort.Strings(sa)
	sort.Strings(sb)
	for i := range sa {
		if sa[i] != sb[i] {
			return false
		}
	}
	return true
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return append([]string(nil), s...)
}
