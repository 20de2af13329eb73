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

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/daviszhen/flashsize/pkg/layout"
	"github.com/daviszhen/flashsize/pkg/prompt"
)

//plan cmd

var planInfo = "compute the memmap reservation of one configuration"
var planCmd = &cobra.Command{
	Use:   "plan",
	Short: planInfo,
	Long:  planInfo,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog, opts, err := setup()
		if err != nil {
			return err
		}
		plan, err := catalog.Plan(readRawParams())
		if err != nil {
			return err
		}
		printPlan(cmd.OutOrStdout(), plan, opts)
		return nil
	},
}

func initPlanCmd() {
	RootCmd.AddCommand(planCmd)
	for _, pf := range addParamFlags(planCmd.Flags()) {
		viper.BindPFlag(pf.key, planCmd.Flags().Lookup(pf.name))
	}
}

func readRawParams() layout.RawParams {
	return layout.RawParams{
		Prototype:       viper.GetString("plan.prototype"),
		MemmapStart:     viper.GetString("plan.memmap_start"),
		FlashType:       viper.GetString("plan.flash_type"),
		Interface:       viper.GetString("plan.interface"),
		BlockSize:       viper.GetString("plan.block_size"),
		Dies:            viper.GetString("plan.dies"),
		PSLCSuperBlocks: viper.GetString("plan.pslc_super_blocks"),
		DataSize:        viper.GetString("plan.data_size"),
		MetaSize:        viper.GetString("plan.meta_size"),
		MetaOP:          viper.GetString("plan.op_ratio"),
	}
}

func printPlan(w io.Writer, plan *layout.Plan, opts layout.CommandOptions) {
	fmt.Fprint(w, plan.String())
	fmt.Fprintln(w, "Insmod Command:")
	fmt.Fprintln(w, plan.InsmodCommand(opts))
}

//interactive cmd

var interactiveInfo = "ask for every parameter and compute the reservation"
var interactiveCmd = &cobra.Command{
	Use:   "interactive",
	Short: interactiveInfo,
	Long:  interactiveInfo,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog, opts, err := setup()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		raw, err := prompt.NewPrompter(os.Stdin, out).AskParams(catalog)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, "----------------------------------")
		plan, err := catalog.Plan(*raw)
		if err != nil {
			return err
		}
		printPlan(out, plan, opts)
		return nil
	},
}

func initInteractiveCmd() {
	RootCmd.AddCommand(interactiveCmd)
}

//profiles cmd

var profilesInfo = "show the flash profiles and defaults"
var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: profilesInfo,
	Long:  profilesInfo,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog, _, err := setup()
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), catalog.String())
		return nil
	},
}

func initProfilesCmd() {
	RootCmd.AddCommand(profilesCmd)
}
