package layout

import (
	"fmt"

	"github.com/xlab/treeprint"
)

func (plan *Plan) Print(tree treeprint.Tree) {
	if plan == nil {
		return
	}
	tree = tree.AddBranch(fmt.Sprintf("%s %s %s:", plan.Prototype, plan.FlashType, plan.Interface))

	geo := tree.AddBranch("Geometry:")
	geo.AddMetaNode("one-shot page", plan.OneShotPage.String())
	geo.AddMetaNode("block size", plan.BlockSize.String())
	geo.AddMetaNode("dies", fmt.Sprintf("%d", plan.Dies))
	geo.AddMetaNode("super block size", plan.SuperBlockSize.String())
	geo.AddMetaNode("zone size", plan.ZoneSize.String())
	geo.AddMetaNode("super block/zone lcm", plan.SuperBlockZoneLCM.String())

	data := tree.AddBranch("Data:")
	data.AddMetaNode("logical size", plan.LogicalDataSize.String())
	data.AddMetaNode("op ratio", plan.DataOP.String())
	data.AddMetaNode("super blocks", fmt.Sprintf("%d", plan.DataSuperBlocks))
	data.AddMetaNode("pSLC super blocks", fmt.Sprintf("%d", plan.PSLCSuperBlocks))
	data.AddMetaNode("pSLC size", plan.PSLCSize.String())
	data.AddMetaNode("pSLC capacity", plan.PSLCCapacity.String())
	data.AddMetaNode("physical size", plan.PhysicalDataSize.String())

	meta := tree.AddBranch("Meta:")
	meta.AddMetaNode("logical size", plan.LogicalMetaSize.String())
	meta.AddMetaNode("op ratio", plan.MetaOP.String())
	meta.AddMetaNode("pSLC multiplier", fmt.Sprintf("%d", plan.PSLCMultiplier))
	meta.AddMetaNode("super blocks", fmt.Sprintf("%d", plan.MetaSuperBlocks))
	meta.AddMetaNode("physical size", plan.PhysicalMetaSize.String())

	rsv := tree.AddBranch("Reservation:")
	rsv.AddMetaNode("memmap start", plan.MemmapStart.String())
	rsv.AddMetaNode("driver reserve", plan.DriverReserve.String())
	rsv.AddMetaNode("memmap size", plan.ReservedSize.String())

	if len(plan.Warnings) > 0 {
		warns := tree.AddBranch("Warnings:")
		for _, w := range plan.Warnings {
			warns.AddNode(w.String())
		}
	}
}

func (plan *Plan) String() string {
	tree := treeprint.NewWithRoot("LayoutPlan:")
	plan.Print(tree)
	return tree.String()
}
