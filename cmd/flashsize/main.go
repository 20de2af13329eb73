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
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/daviszhen/flashsize/pkg/layout"
	"github.com/daviszhen/flashsize/pkg/util"
)

func init() {
	cobra.OnInitialize(loadConfig)
	initRootFlags()
	initPlanCmd()
	initInteractiveCmd()
	initSweepCmd()
	initProfilesCmd()
}

var flashsizeCfg = &util.Config{}

///root cmd

var info = "flash capacity layout calculator for the ConZone emulator"
var RootCmd = &cobra.Command{
	Use:          "flashsize",
	Short:        info,
	Long:         info,
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("use flashsize --help or -h")
	},
}

func initRootFlags() {
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "console")
	viper.SetDefault("insmod.module", "./nvmev.ko")
	viper.SetDefault("insmod.cpus", "7,8")
	viper.SetDefault("insmod.sudo", true)

	RootCmd.PersistentFlags().String("log_level", "info", "log level. debug, info, warn, error")
	RootCmd.PersistentFlags().String("log_format", "console", "log format. console, json")
	viper.BindPFlag("log.level", RootCmd.PersistentFlags().Lookup("log_level"))
	viper.BindPFlag("log.format", RootCmd.PersistentFlags().Lookup("log_format"))
}

var defCfgFilePaths = []string{".", "etc"}
var cfgFileName = "flashsize.toml"

// loadConfig reads flashsize.toml if one exists. The file is optional:
// every key has a default.
func loadConfig() {
	for _, dirPath := range defCfgFilePaths {
		fpath := filepath.Join(dirPath, cfgFileName)
		if !util.FileIsValid(fpath) {
			continue
		}
		viper.SetConfigFile(fpath)
		err := viper.ReadInConfig()
		if err != nil {
			util.Error("viper load config file failed",
				zap.String("fpath", fpath),
				zap.Error(err))
			continue
		}
		util.Debug("config loaded", zap.String("fpath", fpath))
		return
	}
}

func initLogOptions() error {
	flashsizeCfg.Log.Level = viper.GetString("log.level")
	flashsizeCfg.Log.Format = viper.GetString("log.format")
	return util.InitLogger(flashsizeCfg.Log.Level, flashsizeCfg.Log.Format)
}

func initInsmodOptions() {
	flashsizeCfg.Insmod.Module = viper.GetString("insmod.module")
	flashsizeCfg.Insmod.CPUs = viper.GetString("insmod.cpus")
	flashsizeCfg.Insmod.Sudo = viper.GetBool("insmod.sudo")
}

// setup applies the configuration shared by every command and returns the
// catalog with the configured flash profiles registered.
func setup() (*layout.Catalog, layout.CommandOptions, error) {
	opts := layout.DefaultCommandOptions()
	if err := initLogOptions(); err != nil {
		return nil, opts, err
	}
	initInsmodOptions()

	cpus, err := util.ParseIntList(flashsizeCfg.Insmod.CPUs)
	if err != nil {
		return nil, opts, fmt.Errorf("insmod.cpus %q: %w", flashsizeCfg.Insmod.CPUs, err)
	}
	opts.Module = flashsizeCfg.Insmod.Module
	opts.CPUs = cpus
	opts.Sudo = flashsizeCfg.Insmod.Sudo

	catalog := layout.DefaultCatalog()
	if err = viper.UnmarshalKey("flash", &flashsizeCfg.Flash); err != nil {
		return nil, opts, fmt.Errorf("flash profiles: %w", err)
	}
	if err = catalog.ApplyFlashOptions(flashsizeCfg.Flash); err != nil {
		return nil, opts, err
	}
	return catalog, opts, nil
}

func main() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
