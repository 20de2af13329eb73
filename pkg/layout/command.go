package layout

import (
	"strings"

	"github.com/daviszhen/flashsize/pkg/util"
)

// CommandOptions shapes the emulator module load line.
type CommandOptions struct {
	Sudo   bool
	Module string
	CPUs   []int
}

func DefaultCommandOptions() CommandOptions {
	return CommandOptions{
		Sudo:   true,
		Module: "./nvmev.ko",
		CPUs:   []int{7, 8},
	}
}

// InsmodCommand renders the line that loads the emulator with this
// plan's reservation, e.g.
//
//	sudo insmod ./nvmev.ko memmap_start=82G memmap_size=7657M cpus=7,8
func (plan *Plan) InsmodCommand(opts CommandOptions) string {
	module := opts.Module
	if module == "" {
		module = DefaultCommandOptions().Module
	}
	parts := make([]string, 0, 6)
	if opts.Sudo {
		parts = append(parts, "sudo")
	}
	parts = append(parts,
		"insmod",
		module,
		"memmap_start="+plan.MemmapStart.String(),
		"memmap_size="+plan.ReservedSize.String())
	if len(opts.CPUs) > 0 {
		parts = append(parts, "cpus="+util.JoinInts(opts.CPUs, ","))
	}
	return strings.Join(parts, " ")
}
