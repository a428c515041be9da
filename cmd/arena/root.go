package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nathoo/arenacore/config"
	"github.com/nathoo/arenacore/content"
	"github.com/nathoo/arenacore/engine"
	"github.com/nathoo/arenacore/engine/save"
	"github.com/nathoo/arenacore/engine/state"
	"github.com/nathoo/arenacore/loader"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "arena",
	Short: "Idle arena progression engine",
	Long: `Arena simulates an idle arena fighter: quests, rest, loot and defeat
outcomes, ticking at a fixed interval.

Without a subcommand it starts the interactive dashboard.`,
	SilenceUsage: true,
	RunE:         runPlay,
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default $HOME/.arena.yaml)")
	pf.String("content", "", "directory of Lua arena content (default: built-in arena)")
	pf.String("tuning", "", "YAML tuning file overlaying the default balance")
	pf.String("save_dir", "", "directory for save files (default $HOME/.arenacore/saves)")
	pf.Int64("seed", 0, "RNG seed (0 picks one from the clock)")
	pf.String("log_level", "info", "log level: debug, info, warn, error")

	for _, name := range []string{"content", "tuning", "save_dir", "seed", "log_level"} {
		viper.BindPFlag(name, pf.Lookup(name))
	}

	addPlayFlags(rootCmd)
}

// initConfig reads the config file and ARENA_ environment variables.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".arena")
	}

	viper.SetEnvPrefix("arena")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		log.Debug("using config file", "path", viper.ConfigFileUsed())
	}
}

// newLogger builds the process logger writing to w at the configured level.
// It also becomes the package-level default used by the loader.
func newLogger(w io.Writer) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Prefix:          "arena",
	})
	level, err := log.ParseLevel(viper.GetString("log_level"))
	if err != nil {
		level = log.InfoLevel
		logger.Warn("unknown log level, using info", "level", viper.GetString("log_level"))
	}
	logger.SetLevel(level)
	log.SetDefault(logger)
	return logger
}

// loadDefs loads the tuning overlay and the arena content.
func loadDefs() (*state.Defs, error) {
	tuning, err := config.LoadTuning(viper.GetString("tuning"))
	if err != nil {
		return nil, err
	}

	if dir := viper.GetString("content"); dir != "" {
		return loader.Load(dir, tuning)
	}
	return loader.LoadFS(content.FS(), tuning)
}

// newEngine builds an engine from the configured content and seed.
func newEngine(logger *log.Logger) (*engine.Engine, error) {
	defs, err := loadDefs()
	if err != nil {
		return nil, fmt.Errorf("loading arena: %w", err)
	}

	seed := viper.GetInt64("seed")
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	eng := engine.New(defs, seed)
	eng.Log = logger
	logger.Debug("engine ready", "arena", defs.Arena.Title, "quests", len(defs.Quests), "seed", seed)
	return eng, nil
}

func saveDir() string {
	if dir := viper.GetString("save_dir"); dir != "" {
		return dir
	}
	return save.DefaultDir()
}
