package model

import "slices"

const (
	InventorySlots = 36
	HotbarSlots    = 9
)

type ItemStack struct {
	Item  string
	Count int
}

func (s ItemStack) Empty() bool { return s.Item == "" || s.Count <= 0 }

// Inventory is the player grid; slots 0..8 are the hotbar. PendingSelect is a
// hotbar change requested by the caller and applied by the inventory system.
type Inventory struct {
	Slots         [InventorySlots]ItemStack
	Selected      int
	PendingSelect *int
}

// Held is the stack in the selected hotbar slot.
func (inv *Inventory) Held() ItemStack { return inv.Slots[inv.Selected] }

// Count totals an item over all slots.
func (inv *Inventory) Count(item string) int {
	n := 0
	for _, s := range inv.Slots {
		if s.Item == item {
			n += s.Count
		}
	}
	return n
}

// Add merges count items into existing stacks first, then fills empty slots
// in index order. It returns how many did not fit.
func (inv *Inventory) Add(item string, count, maxStack int) int {
	if item == "" || count <= 0 {
		return 0
	}
	if maxStack <= 0 {
		maxStack = 1
	}
	for i := range inv.Slots {
		if count == 0 {
			return 0
		}
		s := &inv.Slots[i]
		if s.Item != item || s.Count >= maxStack {
			continue
		}
		n := min(count, maxStack-s.Count)
		s.Count += n
		count -= n
	}
	for i := range inv.Slots {
		if count == 0 {
			return 0
		}
		s := &inv.Slots[i]
		if !s.Empty() {
			continue
		}
		n := min(count, maxStack)
		*s = ItemStack{Item: item, Count: n}
		count -= n
	}
	return count
}

// TakeSelected removes one item from the selected slot.
func (inv *Inventory) TakeSelected() (string, bool) {
	s := &inv.Slots[inv.Selected]
	if s.Empty() {
		return "", false
	}
	item := s.Item
	s.Count--
	if s.Count == 0 {
		*s = ItemStack{}
	}
	return item, true
}

func (inv Inventory) Clone() Inventory {
	out := inv
	if inv.PendingSelect != nil {
		v := *inv.PendingSelect
		out.PendingSelect = &v
	}
	return out
}

// Stacks lists non-empty slots for display.
func (inv *Inventory) Stacks() []ItemStack {
	out := make([]ItemStack, 0, InventorySlots)
	for _, s := range inv.Slots {
		if !s.Empty() {
			out = append(out, s)
		}
	}
	return slices.Clip(out)
}
