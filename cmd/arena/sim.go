package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nathoo/arenacore/cli"
)

var simCmd = &cobra.Command{
	Use:   "sim",
	Short: "Run a headless simulation and print a summary",
	Long: `Advances a fresh session by the given number of simulated minutes with
no output, then prints the character summary. Useful for balancing runs.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		minutes, _ := cmd.Flags().GetInt("minutes")
		out, _ := cmd.Flags().GetString("out")
		if minutes < 1 {
			return fmt.Errorf("--minutes must be positive, got %d", minutes)
		}

		logger := newLogger(os.Stderr)
		eng, err := newEngine(logger)
		if err != nil {
			return err
		}

		c := cli.New(eng)
		c.Quiet = true
		eng.Unlock()
		eng.MarkVisited()
		c.Advance(int64(minutes) * 60 * 1000)

		fmt.Printf("%s after %d simulated minutes (%d ticks):\n", eng.Defs.Arena.Title, minutes, eng.Session.TickCount)
		for _, line := range cli.Summary(eng.Snapshot(), c.Purse.Gold) {
			fmt.Println("  " + line)
		}

		if out != "" {
			data, err := eng.Save()
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("writing save: %w", err)
			}
			logger.Info("session written", "path", out)
		}
		return nil
	},
}

func init() {
	simCmd.Flags().Int("minutes", 60, "simulated minutes to run")
	simCmd.Flags().String("out", "", "write the final session to this save file")
	rootCmd.AddCommand(simCmd)
}
