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
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/daviszhen/flashsize/pkg/sweep"
	"github.com/daviszhen/flashsize/pkg/util"
)

//sweep cmd

var sweepInfo = "compute the reservation of every point of a sweep file"
var sweepCmd = &cobra.Command{
	Use:   "sweep <file.toml>",
	Short: sweepInfo,
	Long:  sweepInfo,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog, opts, err := setup()
		if err != nil {
			return err
		}
		initSweepOptions()

		def, err := sweep.LoadDefinition(args[0])
		if err != nil {
			return err
		}
		points, err := def.Expand()
		if err != nil {
			return err
		}
		order, err := sweep.ParseOrder(flashsizeCfg.Sweep.OrderBy)
		if err != nil {
			return err
		}
		workers := sweepWorkers(cmd.Flags().Changed("workers"), flashsizeCfg.Sweep.Workers, def.Workers)
		util.Info("sweep start",
			zap.String("name", def.Name),
			zap.Int("points", len(points)))

		res, err := sweep.Run(cmd.Context(), catalog, points, workers, order)
		if err != nil {
			return err
		}

		switch flashsizeCfg.Sweep.Format {
		case "", "table":
			return sweep.WriteTable(cmd.OutOrStdout(), res)
		case "csv":
			if flashsizeCfg.Sweep.Output == "" {
				return sweep.WriteCSV(cmd.OutOrStdout(), res, opts)
			}
			f, err := os.Create(flashsizeCfg.Sweep.Output)
			if err != nil {
				return err
			}
			defer f.Close()
			return sweep.WriteCSV(f, res, opts)
		case "parquet":
			if flashsizeCfg.Sweep.Output == "" {
				return fmt.Errorf("parquet format needs --output")
			}
			return sweep.WriteParquet(flashsizeCfg.Sweep.Output, res, opts)
		}
		return fmt.Errorf("unknown sweep format %q: want table, csv or parquet", flashsizeCfg.Sweep.Format)
	},
}

// sweepWorkers picks the worker count: the --workers flag, then the sweep
// file, then sweep.workers of the config file. Zero means the cpu count.
func sweepWorkers(flagSet bool, configured, fromFile int) int {
	if flagSet || fromFile <= 0 {
		return configured
	}
	return fromFile
}

func initSweepOptions() {
	flashsizeCfg.Sweep.Workers = viper.GetInt("sweep.workers")
	flashsizeCfg.Sweep.Format = viper.GetString("sweep.format")
	flashsizeCfg.Sweep.Output = viper.GetString("sweep.output")
	flashsizeCfg.Sweep.OrderBy = viper.GetString("sweep.orderBy")
}

func initSweepCmd() {
	RootCmd.AddCommand(sweepCmd)
	sweepCmd.Flags().IntVar(&flashsizeCfg.Sweep.Workers, "workers", 0, "concurrent calculations. 0 uses the sweep file, the config file or the cpu count")
	sweepCmd.Flags().StringVar(&flashsizeCfg.Sweep.Format, "format", "table", "output format. table, csv, parquet")
	sweepCmd.Flags().StringVar(&flashsizeCfg.Sweep.Output, "output", "", "output file path")
	sweepCmd.Flags().StringVar(&flashsizeCfg.Sweep.OrderBy, "order", "index", "result order. index, reservation")

	viper.BindPFlag("sweep.workers", sweepCmd.Flags().Lookup("workers"))
	viper.BindPFlag("sweep.format", sweepCmd.Flags().Lookup("format"))
	viper.BindPFlag("sweep.output", sweepCmd.Flags().Lookup("output"))
	viper.BindPFlag("sweep.orderBy", sweepCmd.Flags().Lookup("order"))
}
