package mining

import "voxelcraft.ai/pathsim/internal/sim/catalogs"

type ToolFamily int

const (
	ToolFamilyNone ToolFamily = iota
	ToolFamilyPickaxe
	ToolFamilyAxe
	ToolFamilyShovel
)

func ParseToolFamily(name string) ToolFamily {
	switch name {
	case "PICKAXE":
		return ToolFamilyPickaxe
	case "AXE":
		return ToolFamilyAxe
	case "SHOVEL":
		return ToolFamilyShovel
	default:
		return ToolFamilyNone
	}
}

// ToolSpeed is the mining speed multiplier of a matching tool tier.
func ToolSpeed(tier int) float64 {
	switch {
	case tier >= 3:
		return 6
	case tier == 2:
		return 4
	case tier == 1:
		return 2
	default:
		return 1
	}
}

// EffectiveTier is the tier the held item brings against the block: zero
// unless it is a tool of the family the block wants.
func EffectiveTier(block catalogs.BlockDef, held catalogs.ItemDef) int {
	want := ParseToolFamily(block.Tool)
	if want == ToolFamilyNone || held.Kind != "TOOL" || ParseToolFamily(held.Tool) != want {
		return 0
	}
	return held.Tier
}

// Harvestable reports whether breaking the block with tier yields its drop.
func Harvestable(block catalogs.BlockDef, tier int) bool {
	if !block.RequiresTool {
		return true
	}
	return tier >= max(block.MinTier, 1)
}

// ProgressPerTick is the fraction of the block broken each tick.
func ProgressPerTick(block catalogs.BlockDef, tier int, harvestDivisor, noHarvestDivisor float64) float64 {
	if block.Hardness <= 0 {
		return 1
	}
	div := noHarvestDivisor
	if Harvestable(block, tier) {
		div = harvestDivisor
	}
	return ToolSpeed(tier) / block.Hardness / div
}
