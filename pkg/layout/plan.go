// Copyright 2023-2024 daviszhen
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package layout

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/daviszhen/flashsize/pkg/common"
	"github.com/daviszhen/flashsize/pkg/util"
)

// Plan is the physical reservation derived from one parameter set.
type Plan struct {
	Prototype      string
	FlashType      string
	Interface      Interface
	MemmapStart    common.Size
	Dies           uint64
	OneShotPage    common.Size
	PSLCMultiplier uint64
	MetaOP         common.Ratio
	DataOP         common.Ratio

	// BlockSize is the block size aligned to the one-shot page.
	BlockSize common.Size
	// ZoneBlockSize is BlockSize rounded up to a power of two.
	ZoneBlockSize     common.Size
	ZoneSize          common.Size
	SuperBlockSize    common.Size
	SuperBlockZoneLCM common.Size

	LogicalDataSize common.Size
	LogicalMetaSize common.Size

	DataSuperBlocks uint64
	MetaSuperBlocks uint64
	PSLCSuperBlocks uint64

	PSLCSize     common.Size
	PSLCCapacity common.Size

	PhysicalDataSize common.Size
	PhysicalMetaSize common.Size
	DriverReserve    common.Size
	ReservedSize     common.Size

	Warnings Warnings
}

// Plan resolves raw and computes its layout.
func (c *Catalog) Plan(raw RawParams) (*Plan, error) {
	params, warns, err := c.Resolve(raw)
	if err != nil {
		return nil, err
	}
	plan, err := c.PlanLayout(params)
	if err != nil {
		return nil, err
	}
	plan.Warnings = append(warns, plan.Warnings...)
	return plan, nil
}

// PlanLayout derives the aligned, over-provisioned physical layout of p.
// It performs no I/O and keeps no state between calls.
func (c *Catalog) PlanLayout(p *Params) (*Plan, error) {
	if p == nil {
		return nil, errors.New("nil layout params")
	}
	if p.Dies == 0 {
		return nil, fmt.Errorf("dies: %w: dies per super-block must be positive", common.ErrInvalidFormat)
	}
	if p.BlockSize.IsZero() {
		return nil, fmt.Errorf("block_size: %w: block size must be positive", common.ErrInvalidFormat)
	}

	plan := &Plan{
		MemmapStart:   p.MemmapStart,
		Dies:          p.Dies,
		MetaOP:        p.MetaOP,
		DriverReserve: c.DriverReserve,
	}
	warns := &plan.Warnings
	plan.Prototype = c.resolvePrototype(p.Prototype, warns)
	fp := c.resolveFlash(p.FlashType, warns)
	plan.FlashType = fp.Name
	plan.OneShotPage = fp.OneShotPage
	plan.PSLCMultiplier = fp.PSLCMultiplier
	plan.Interface = c.resolveInterface(string(p.Interface), warns)
	zoned := plan.Interface == InterfaceZoned

	var err error
	// block size is a whole number of one-shot pages
	plan.BlockSize, err = alignField(warns, "block_size", p.BlockSize, fp.OneShotPage, "not a multiple of the one-shot page size")
	if err != nil {
		return nil, err
	}

	physData, err := alignField(warns, "physical_data_size", p.LogicalDataSize, plan.BlockSize, "not a multiple of the block size")
	if err != nil {
		return nil, err
	}

	plan.SuperBlockSize, err = plan.BlockSize.MulInt(p.Dies)
	if err != nil {
		return nil, err
	}
	dataSblks, err := common.CeilDiv(physData, plan.SuperBlockSize)
	if err != nil {
		return nil, err
	}

	blkKiB, err := common.CeilDivBytes(plan.BlockSize, common.SizeBase)
	if err != nil {
		return nil, err
	}
	plan.ZoneBlockSize, err = common.NewSize(util.NextPowerOfTwo(blkKiB), common.UnitK)
	if err != nil {
		return nil, err
	}
	if zoned {
		plan.ZoneSize, err = plan.ZoneBlockSize.MulInt(p.Dies)
		if err != nil {
			return nil, err
		}
	} else {
		plan.ZoneSize = c.BlockZoneSize
	}

	plan.LogicalDataSize = p.LogicalDataSize
	if zoned {
		aligned, err := common.IsAligned(p.LogicalDataSize, plan.ZoneSize)
		if err != nil {
			return nil, err
		}
		if !aligned {
			plan.LogicalDataSize, err = plan.ZoneSize.MulInt(dataSblks)
			if err != nil {
				return nil, err
			}
			warns.add("logical_data_size", p.LogicalDataSize.String(), plan.LogicalDataSize.String(),
				"not a multiple of the zone size")
		}
	}

	plan.SuperBlockZoneLCM, err = common.LCM(plan.SuperBlockSize, plan.ZoneSize)
	if err != nil {
		return nil, err
	}
	if zoned && plan.ZoneSize != plan.SuperBlockSize {
		util.Info("zone size differs from super-block size, zones carry padding",
			zap.Stringer("zoneSize", plan.ZoneSize),
			zap.Stringer("superBlockSize", plan.SuperBlockSize),
			zap.Stringer("lcm", plan.SuperBlockZoneLCM))
	}

	plan.PSLCSuperBlocks = p.PSLCSuperBlocks
	if c.isCaching(plan.Prototype) && plan.PSLCSuperBlocks < c.MinPSLCSuperBlocks {
		plan.PSLCSuperBlocks = c.MinPSLCSuperBlocks
		warns.add("pslc_super_blocks",
			fmt.Sprintf("%d", p.PSLCSuperBlocks),
			fmt.Sprintf("%d", plan.PSLCSuperBlocks),
			fmt.Sprintf("%s needs at least %d pSLC super-blocks", plan.Prototype, c.MinPSLCSuperBlocks))
	}

	plan.PSLCSize, err = plan.SuperBlockSize.MulInt(plan.PSLCSuperBlocks)
	if err != nil {
		return nil, err
	}
	plan.PSLCCapacity, err = plan.PSLCSize.DivInt(fp.PSLCMultiplier)
	if err != nil {
		return nil, err
	}

	// zoned namespaces are append only and need no user visible OP
	plan.DataOP = common.ZeroRatio
	if !zoned {
		plan.DataOP = p.MetaOP
	}
	dataFactor, err := plan.DataOP.OnePlus()
	if err != nil {
		return nil, err
	}
	dataTarget, err := plan.LogicalDataSize.MulRatio(dataFactor)
	if err != nil {
		return nil, err
	}
	for physData.Less(dataTarget) {
		physData, err = physData.Add(plan.SuperBlockSize)
		if err != nil {
			return nil, err
		}
	}
	plan.DataSuperBlocks, err = common.CeilDiv(physData, plan.SuperBlockSize)
	if err != nil {
		return nil, err
	}

	plan.PhysicalDataSize, err = physData.Add(plan.PSLCSize)
	if err != nil {
		return nil, err
	}

	plan.LogicalMetaSize, err = alignField(warns, "logical_meta_size", p.LogicalMetaSize, plan.ZoneSize, "not a multiple of the zone size")
	if err != nil {
		return nil, err
	}

	// the meta area lives entirely in pSLC mode
	metaFactor, err := p.MetaOP.OnePlus()
	if err != nil {
		return nil, err
	}
	metaFactor, err = metaFactor.MulInt(fp.PSLCMultiplier)
	if err != nil {
		return nil, err
	}
	metaTarget, err := plan.LogicalMetaSize.MulRatio(metaFactor)
	if err != nil {
		return nil, err
	}
	metaSblks, err := common.CeilDiv(plan.LogicalMetaSize, plan.SuperBlockSize)
	if err != nil {
		return nil, err
	}
	physMeta, err := plan.SuperBlockSize.MulInt(metaSblks)
	if err != nil {
		return nil, err
	}
	for physMeta.Less(metaTarget) || metaSblks < c.MinMetaSuperBlocks {
		physMeta, err = physMeta.Add(plan.SuperBlockSize)
		if err != nil {
			return nil, err
		}
		metaSblks, err = common.CeilDiv(physMeta, plan.SuperBlockSize)
		if err != nil {
			return nil, err
		}
	}
	plan.PhysicalMetaSize = physMeta
	plan.MetaSuperBlocks = metaSblks

	plan.ReservedSize, err = c.DriverReserve.Add(plan.PhysicalDataSize)
	if err != nil {
		return nil, err
	}
	plan.ReservedSize, err = plan.ReservedSize.Add(plan.PhysicalMetaSize)
	if err != nil {
		return nil, err
	}

	util.Debug("layout planned",
		zap.String("flashType", plan.FlashType),
		zap.String("interface", string(plan.Interface)),
		zap.Stringer("physicalData", plan.PhysicalDataSize),
		zap.Stringer("physicalMeta", plan.PhysicalMetaSize),
		zap.Stringer("reserved", plan.ReservedSize))
	return plan, nil
}

// alignField rounds v up to a multiple of align and records a warning
// when that changed it.
func alignField(warns *Warnings, field string, v, align common.Size, reason string) (common.Size, error) {
	aligned, err := common.AlignUp(v, align)
	if err != nil {
		return common.Size{}, fmt.Errorf("%s: %w", field, err)
	}
	if aligned != v {
		warns.add(field, v.String(), aligned.String(), reason)
	}
	return aligned, nil
}
