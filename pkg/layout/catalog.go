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
	"fmt"
	"slices"
	"strings"

	treemap "github.com/liyue201/gostl/ds/map"
	"github.com/xlab/treeprint"

	"github.com/daviszhen/flashsize/pkg/common"
	"github.com/daviszhen/flashsize/pkg/util"
)

type Interface string

const (
	InterfaceZoned Interface = "zoned"
	InterfaceBlock Interface = "block"
)

const (
	PrototypeConZone = "conzone"
	PrototypeZNS     = "zns"
)

// FlashProfile describes one flash cell type.
type FlashProfile struct {
	Name string
	// OneShotPage is the program unit; block sizes are multiples of it.
	OneShotPage common.Size
	// PSLCMultiplier is how many pSLC bytes one native byte costs.
	PSLCMultiplier uint64
	// BlockSize is the default block size for this cell type.
	BlockSize common.Size
}

func (fp *FlashProfile) validate() error {
	if fp.Name == "" {
		return fmt.Errorf("flash profile without name")
	}
	if fp.OneShotPage.IsZero() {
		return fmt.Errorf("flash profile %s: one-shot page size must be positive", fp.Name)
	}
	if fp.PSLCMultiplier == 0 {
		return fmt.Errorf("flash profile %s: pSLC multiplier must be positive", fp.Name)
	}
	if fp.BlockSize.IsZero() {
		return fmt.Errorf("flash profile %s: block size must be positive", fp.Name)
	}
	return nil
}

// Catalog carries every lookup table and policy constant the calculator
// needs. It must not be modified while plans are being computed.
type Catalog struct {
	profiles *treemap.Map[string, *FlashProfile]

	DefaultFlashType string
	DefaultInterface Interface
	DefaultPrototype string

	// BlockZoneSize is the meta alignment granularity of the block interface.
	BlockZoneSize common.Size
	// DriverReserve is the emulator's own bookkeeping reservation.
	DriverReserve common.Size

	CachingPrototypes  []string
	MinPSLCSuperBlocks uint64
	MinMetaSuperBlocks uint64

	MemmapStart     common.Size
	Dies            uint64
	DataSize        common.Size
	MetaOP          common.Ratio
	MetaSize        map[Interface]common.Size
	PSLCSuperBlocks map[string]uint64
}

func NewCatalog() *Catalog {
	return &Catalog{
		profiles:        treemap.New[string, *FlashProfile](strings.Compare),
		MetaSize:        make(map[Interface]common.Size),
		PSLCSuperBlocks: make(map[string]uint64),
	}
}

// DefaultCatalog returns the TLC/QLC tables of the ConZone emulator.
func DefaultCatalog() *Catalog {
	c := NewCatalog()
	for _, fp := range []*FlashProfile{
		{
			Name:           "TLC",
			OneShotPage:    common.MustNewSize(96, common.UnitK),
			PSLCMultiplier: 3,
			BlockSize:      common.MustNewSize(24, common.UnitM),
		},
		{
			Name:           "QLC",
			OneShotPage:    common.MustNewSize(128, common.UnitK),
			PSLCMultiplier: 4,
			BlockSize:      common.MustNewSize(32, common.UnitM),
		},
	} {
		if err := c.RegisterFlash(fp); err != nil {
			panic(err)
		}
	}
	c.DefaultFlashType = "TLC"
	c.DefaultInterface = InterfaceZoned
	c.DefaultPrototype = PrototypeConZone
	c.BlockZoneSize = common.MustNewSize(2, common.UnitM)
	c.DriverReserve = common.MustNewSize(1, common.UnitM)
	c.CachingPrototypes = []string{PrototypeConZone}
	c.MinPSLCSuperBlocks = 4
	c.MinMetaSuperBlocks = 4
	c.MemmapStart = common.MustNewSize(82, common.UnitG)
	c.Dies = 4
	c.DataSize = common.MustNewSize(4, common.UnitG)
	c.MetaOP = common.MustParseRatio("0.07")
	c.MetaSize[InterfaceZoned] = common.MustNewSize(256, common.UnitM)
	c.MetaSize[InterfaceBlock] = common.MustNewSize(40, common.UnitM)
	c.PSLCSuperBlocks[PrototypeConZone] = 28
	c.PSLCSuperBlocks[PrototypeZNS] = 0
	return c
}

// RegisterFlash adds a profile or replaces the one with the same name.
func (c *Catalog) RegisterFlash(fp *FlashProfile) error {
	fp.Name = strings.ToUpper(strings.TrimSpace(fp.Name))
	if err := fp.validate(); err != nil {
		return err
	}
	c.profiles.Insert(fp.Name, fp)
	return nil
}

// ApplyFlashOptions registers the profiles of a config file. Empty
// fields inherit from an existing profile of the same name.
func (c *Catalog) ApplyFlashOptions(opts []util.FlashOptions) error {
	for _, opt := range opts {
		fp := &FlashProfile{Name: strings.ToUpper(strings.TrimSpace(opt.Name))}
		if old, ok := c.Flash(fp.Name); ok {
			*fp = *old
		}
		if opt.OneShotPage != "" {
			sz, err := common.ParseSize(opt.OneShotPage)
			if err != nil {
				return fmt.Errorf("flash profile %s: one_shot_page: %w", fp.Name, err)
			}
			fp.OneShotPage = sz
		}
		if opt.BlockSize != "" {
			sz, err := common.ParseSize(opt.BlockSize)
			if err != nil {
				return fmt.Errorf("flash profile %s: block_size: %w", fp.Name, err)
			}
			fp.BlockSize = sz
		}
		if opt.PSLCMultiplier != 0 {
			fp.PSLCMultiplier = opt.PSLCMultiplier
		}
		if err := c.RegisterFlash(fp); err != nil {
			return err
		}
	}
	return nil
}

func (c *Catalog) Flash(name string) (*FlashProfile, bool) {
	fp, err := c.profiles.Get(strings.ToUpper(strings.TrimSpace(name)))
	if err != nil {
		return nil, false
	}
	return fp, true
}

// FlashProfiles returns the profiles ordered by name.
func (c *Catalog) FlashProfiles() []*FlashProfile {
	ret := make([]*FlashProfile, 0, c.profiles.Size())
	for iter := c.profiles.Begin(); iter.IsValid(); iter.Next() {
		ret = append(ret, iter.Value())
	}
	return ret
}

func (c *Catalog) isCaching(prototype string) bool {
	return slices.Contains(c.CachingPrototypes, prototype)
}

func (c *Catalog) knownPrototype(prototype string) bool {
	_, ok := c.PSLCSuperBlocks[prototype]
	return ok
}

func (c *Catalog) Print(tree treeprint.Tree) {
	profiles := tree.AddBranch("Flash profiles:")
	for iter := c.profiles.Begin(); iter.IsValid(); iter.Next() {
		fp := iter.Value()
		name := fp.Name
		if name == c.DefaultFlashType {
			name += " (default)"
		}
		branch := profiles.AddBranch(name)
		branch.AddMetaNode("one-shot page", fp.OneShotPage.String())
		branch.AddMetaNode("pSLC multiplier", fmt.Sprintf("%d", fp.PSLCMultiplier))
		branch.AddMetaNode("block size", fp.BlockSize.String())
	}

	defaults := tree.AddBranch("Defaults:")
	defaults.AddMetaNode("prototype", c.DefaultPrototype)
	defaults.AddMetaNode("interface", string(c.DefaultInterface))
	defaults.AddMetaNode("memmap start", c.MemmapStart.String())
	defaults.AddMetaNode("dies", fmt.Sprintf("%d", c.Dies))
	defaults.AddMetaNode("data size", c.DataSize.String())
	defaults.AddMetaNode("meta OP", c.MetaOP.String())
	for _, iface := range []Interface{InterfaceZoned, InterfaceBlock} {
		if sz, ok := c.MetaSize[iface]; ok {
			defaults.AddMetaNode("meta size "+string(iface), sz.String())
		}
	}
	protos := make([]string, 0, len(c.PSLCSuperBlocks))
	for proto := range c.PSLCSuperBlocks {
		protos = append(protos, proto)
	}
	slices.Sort(protos)
	for _, proto := range protos {
		defaults.AddMetaNode("pSLC super-blocks "+proto, fmt.Sprintf("%d", c.PSLCSuperBlocks[proto]))
	}

	policy := tree.AddBranch("Policy:")
	policy.AddMetaNode("block zone size", c.BlockZoneSize.String())
	policy.AddMetaNode("driver reserve", c.DriverReserve.String())
	policy.AddMetaNode("caching prototypes", strings.Join(c.CachingPrototypes, ","))
	policy.AddMetaNode("min pSLC super-blocks", fmt.Sprintf("%d", c.MinPSLCSuperBlocks))
	policy.AddMetaNode("min meta super-blocks", fmt.Sprintf("%d", c.MinMetaSuperBlocks))
}

func (c *Catalog) String() string {
	tree := treeprint.NewWithRoot("Catalog:")
	c.Print(tree)
	return tree.String()
}
