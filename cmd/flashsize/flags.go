package main

import (
	"github.com/spf13/pflag"

	"github.com/daviszhen/flashsize/pkg/common"
)

// sizeValue is a size flag checked at parse time. It keeps the text as
// given so that unset flags stay empty and take the catalog default.
type sizeValue struct {
	text string
}

var _ pflag.Value = (*sizeValue)(nil)

func (v *sizeValue) String() string {
	return v.text
}

func (v *sizeValue) Set(s string) error {
	if _, err := common.ParseSize(s); err != nil {
		return err
	}
	v.text = s
	return nil
}

func (v *sizeValue) Type() string {
	return "size"
}

// ratioValue is a fraction flag like 0.07.
type ratioValue struct {
	text string
}

var _ pflag.Value = (*ratioValue)(nil)

func (v *ratioValue) String() string {
	return v.text
}

func (v *ratioValue) Set(s string) error {
	if _, err := common.ParseRatio(s); err != nil {
		return err
	}
	v.text = s
	return nil
}

func (v *ratioValue) Type() string {
	return "ratio"
}

// paramFlag ties a calculator parameter to its flag and config key.
type paramFlag struct {
	name  string
	key   string
	usage string
	value pflag.Value
}

func paramFlags() []paramFlag {
	return []paramFlag{
		{"prototype", "plan.prototype", "emulator prototype. conzone, zns", nil},
		{"memmap_start", "plan.memmap_start", "start address of memmap, e.g. 82G", &sizeValue{}},
		{"flash_type", "plan.flash_type", "flash type, e.g. TLC, QLC", nil},
		{"interface", "plan.interface", "interface type. zoned, block", nil},
		{"block_size", "plan.block_size", "flash block size, e.g. 24M", &sizeValue{}},
		{"dies", "plan.dies", "dies per super block", nil},
		{"pslc_super_blocks", "plan.pslc_super_blocks", "pSLC super blocks of the data area", nil},
		{"data_size", "plan.data_size", "logical data namespace size, e.g. 4G", &sizeValue{}},
		{"meta_size", "plan.meta_size", "logical meta namespace size, e.g. 256M", &sizeValue{}},
		{"op_ratio", "plan.op_ratio", "over-provisioning ratio of the meta area, e.g. 0.07", &ratioValue{}},
	}
}

func addParamFlags(flags *pflag.FlagSet) []paramFlag {
	pfs := paramFlags()
	for _, pf := range pfs {
		if pf.value != nil {
			flags.Var(pf.value, pf.name, pf.usage)
		} else {
			flags.String(pf.name, "", pf.usage)
		}
	}
	return pfs
}
