package util

type LogOptions struct {
	Level  string `tag:"level"`
	Format string `tag:"format"`
}

type InsmodOptions struct {
	Module string `tag:"module"`
	CPUs   string `tag:"cpus"`
	Sudo   bool   `tag:"sudo"`
}

// FlashOptions adds or overrides a flash profile of the catalog.
type FlashOptions struct {
	Name           string `tag:"name" mapstructure:"name"`
	OneShotPage    string `tag:"one_shot_page" mapstructure:"one_shot_page"`
	PSLCMultiplier uint64 `tag:"pslc_multiplier" mapstructure:"pslc_multiplier"`
	BlockSize      string `tag:"block_size" mapstructure:"block_size"`
}

type SweepOptions struct {
	Workers int    `tag:"workers"`
	Format  string `tag:"format"`
	Output  string `tag:"output"`
	OrderBy string `tag:"orderBy"`
}

type Config struct {
	Log    LogOptions     `tag:"log"`
	Insmod InsmodOptions  `tag:"insmod"`
	Flash  []FlashOptions `tag:"flash"`
	Sweep  SweepOptions   `tag:"sweep"`
}
