package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nathoo/arenacore/cli"
	"github.com/nathoo/arenacore/tui"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Start the interactive arena dashboard",
	Long: `Starts the live dashboard. With --plain, or when stdout is not a
terminal, a line-based console with a simulated clock is used instead.
--script replays console commands from a file.`,
	Args: cobra.NoArgs,
	RunE: runPlay,
}

func init() {
	addPlayFlags(playCmd)
	rootCmd.AddCommand(playCmd)
}

func addPlayFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("plain", false, "use the plain console instead of the dashboard")
	cmd.Flags().String("script", "", "replay console commands from a file")
	cmd.Flags().Bool("trace", false, "print engine events")
}

func runPlay(cmd *cobra.Command, args []string) error {
	plain, _ := cmd.Flags().GetBool("plain")
	script, _ := cmd.Flags().GetString("script")
	trace, _ := cmd.Flags().GetBool("trace")

	// Script mode: force plain, echo commands.
	if script != "" {
		f, err := os.Open(script)
		if err != nil {
			return fmt.Errorf("opening script: %w", err)
		}
		defer f.Close()

		c, err := newConsole(trace)
		if err != nil {
			return err
		}
		c.In = f
		c.EchoInput = true
		c.Run()
		return nil
	}

	if plain || !isTerminal() {
		c, err := newConsole(trace)
		if err != nil {
			return err
		}
		c.Run()
		return nil
	}

	// The dashboard owns the terminal, so logs go to a file.
	logPath := filepath.Join(filepath.Dir(saveDir()), "arena.log")
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return err
	}
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer logFile.Close()

	eng, err := newEngine(newLogger(logFile))
	if err != nil {
		return err
	}
	eng.Unlock()
	return tui.Run(tui.New(eng).WithSaveDir(saveDir()))
}

func newConsole(trace bool) (*cli.CLI, error) {
	eng, err := newEngine(newLogger(os.Stderr))
	if err != nil {
		return nil, err
	}
	a := eng.Defs.Arena
	fmt.Printf("%s v%s by %s\n\n", a.Title, a.Version, a.Author)

	c := cli.New(eng)
	c.SaveDir = saveDir()
	c.Trace = trace
	return c, nil
}

// isTerminal returns true if stdout is a terminal (not piped/redirected).
func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
