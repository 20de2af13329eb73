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
	"strconv"
	"strings"

	"github.com/daviszhen/flashsize/pkg/common"
)

// RawParams is the textual parameter set supplied by flags, prompts and
// sweep files. Empty fields take the catalog defaults.
type RawParams struct {
	Prototype       string `toml:"prototype"`
	MemmapStart     string `toml:"memmap_start"`
	FlashType       string `toml:"flash_type"`
	Interface       string `toml:"interface"`
	BlockSize       string `toml:"block_size"`
	Dies            string `toml:"dies"`
	PSLCSuperBlocks string `toml:"pslc_super_blocks"`
	DataSize        string `toml:"data_size"`
	MetaSize        string `toml:"meta_size"`
	MetaOP          string `toml:"op_ratio"`
}

type Params struct {
	Prototype       string
	MemmapStart     common.Size
	FlashType       string
	Interface       Interface
	BlockSize       common.Size
	Dies            uint64
	PSLCSuperBlocks uint64
	LogicalDataSize common.Size
	LogicalMetaSize common.Size
	MetaOP          common.Ratio
}

// DefaultPSLCSuperBlocks is the pSLC request used when none is given.
func (c *Catalog) DefaultPSLCSuperBlocks(prototype string) uint64 {
	return c.PSLCSuperBlocks[c.resolvePrototype(prototype, nil)]
}

func (c *Catalog) DefaultMetaSize(iface string) common.Size {
	return c.MetaSize[c.resolveInterface(iface, nil)]
}

func (c *Catalog) DefaultBlockSize(flashType string) common.Size {
	return c.resolveFlash(flashType, nil).BlockSize
}

func (c *Catalog) resolvePrototype(name string, warns *Warnings) string {
	proto := strings.ToLower(strings.TrimSpace(name))
	if proto == "" {
		return c.DefaultPrototype
	}
	if !c.knownPrototype(proto) {
		warns.add("prototype", name, c.DefaultPrototype, "undefined prototype")
		return c.DefaultPrototype
	}
	return proto
}

func (c *Catalog) resolveFlash(name string, warns *Warnings) *FlashProfile {
	if strings.TrimSpace(name) == "" {
		name = c.DefaultFlashType
	}
	if fp, ok := c.Flash(name); ok {
		return fp
	}
	fp, ok := c.Flash(c.DefaultFlashType)
	if !ok {
		// an empty or broken catalog still needs a usable profile
		profiles := c.FlashProfiles()
		if len(profiles) == 0 {
			panic("layout: catalog has no flash profiles")
		}
		fp = profiles[0]
	}
	warns.add("flash_type", name, fp.Name, common.ErrUnsupportedFlashType.Error())
	return fp
}

func (c *Catalog) resolveInterface(name string, warns *Warnings) Interface {
	iface := Interface(strings.ToLower(strings.TrimSpace(name)))
	switch iface {
	case InterfaceZoned, InterfaceBlock:
		return iface
	case "":
		return c.DefaultInterface
	}
	warns.add("interface", name, string(c.DefaultInterface), common.ErrUnsupportedInterfaceType.Error())
	return c.DefaultInterface
}

// Resolve parses raw into Params. Parse errors are returned; unknown
// prototype, flash or interface names fall back to the catalog default
// and are reported as warnings.
func (c *Catalog) Resolve(raw RawParams) (*Params, Warnings, error) {
	var warns Warnings
	var err error
	p := &Params{}

	p.Prototype = c.resolvePrototype(raw.Prototype, &warns)
	fp := c.resolveFlash(raw.FlashType, &warns)
	p.FlashType = fp.Name
	p.Interface = c.resolveInterface(raw.Interface, &warns)

	p.MemmapStart, err = sizeOr(raw.MemmapStart, c.MemmapStart, "memmap_start")
	if err != nil {
		return nil, warns, err
	}
	p.BlockSize, err = sizeOr(raw.BlockSize, fp.BlockSize, "block_size")
	if err != nil {
		return nil, warns, err
	}
	p.LogicalDataSize, err = sizeOr(raw.DataSize, c.DataSize, "data_size")
	if err != nil {
		return nil, warns, err
	}
	p.LogicalMetaSize, err = sizeOr(raw.MetaSize, c.MetaSize[p.Interface], "meta_size")
	if err != nil {
		return nil, warns, err
	}
	p.Dies, err = uintOr(raw.Dies, c.Dies, "dies")
	if err != nil {
		return nil, warns, err
	}
	p.PSLCSuperBlocks, err = uintOr(raw.PSLCSuperBlocks, c.PSLCSuperBlocks[p.Prototype], "pslc_super_blocks")
	if err != nil {
		return nil, warns, err
	}
	p.MetaOP = c.MetaOP
	if s := strings.TrimSpace(raw.MetaOP); s != "" {
		p.MetaOP, err = common.ParseRatio(s)
		if err != nil {
			return nil, warns, fmt.Errorf("op_ratio: %w", err)
		}
	}
	return p, warns, nil
}

func sizeOr(s string, def common.Size, field string) (common.Size, error) {
	if strings.TrimSpace(s) == "" {
		return def, nil
	}
	ret, err := common.ParseSize(s)
	if err != nil {
		return common.Size{}, fmt.Errorf("%s: %w", field, err)
	}
	return ret, nil
}

func uintOr(s string, def uint64, field string) (uint64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return def, nil
	}
	ret, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w: %q is not a non-negative integer", field, common.ErrInvalidFormat, s)
	}
	return ret, nil
}
