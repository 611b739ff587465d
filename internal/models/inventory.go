package models

// Inventory is a set of item names kept in the order they were acquired.
type Inventory struct {
	items []string
}

// NewInventory builds an inventory from names, dropping duplicates and blanks.
func NewInventory(names ...string) Inventory {
	var inv Inventory
	for _, n := range names {
		inv.Add(n)
	}
	return inv
}

// Add puts an item in the inventory. It reports false if the item was
// already there.
func (inv *Inventory) Add(name string) bool {
	if name == "" || inv.Has(name) {
		return false
	}
	inv.items = append(inv.items, name)
	return true
}

// Has reports whether the item is carried.
func (inv Inventory) Has(name string) bool {
	for _, it := range inv.items {
		if it == name {
			return true
		}
	}
	return false
}

// Items returns a copy of the carried item names.
func (inv Inventory) Items() []string {
	out := make([]string, len(inv.items))
	copy(out, inv.items)
	return out
}

func (inv Inventory) Len() int {
	return len(inv.items)
}
