// Package cli provides the plain-terminal front end: a simulated clock,
// output formatting and meta-command dispatch for scripted or headless
// arena runs.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/nathoo/arenacore/engine"
	"github.com/nathoo/arenacore/engine/events"
	"github.com/nathoo/arenacore/engine/save"
	"github.com/nathoo/arenacore/types"
)

// maxRunSeconds bounds a single run command.
const maxRunSeconds = 24 * 3600

// Purse is a simple in-memory wallet.
type Purse struct {
	Gold int
}

// Deposit adds gold to the purse.
func (p *Purse) Deposit(amount int) {
	p.Gold += amount
}

// CLI drives an engine from line commands against a simulated clock.
type CLI struct {
	Engine    *engine.Engine
	In        io.Reader
	Out       io.Writer
	SaveDir   string
	Trace     bool
	Quiet     bool  // suppress tick output during run
	EchoInput bool  // echo each input line after the prompt (for script playback)
	Clock     int64 // simulated millis
	Purse     *Purse
	lastCmd   string // for "again"/"g" repeat
}

// New creates a CLI wired to the given engine. The engine's wallet is
// replaced by the CLI's purse.
func New(eng *engine.Engine) *CLI {
	purse := &Purse{}
	eng.Wallet = purse
	return &CLI{
		Engine:  eng,
		In:      os.Stdin,
		Out:     os.Stdout,
		SaveDir: save.DefaultDir(),
		Purse:   purse,
	}
}

// Run enters the arena and loops: prompt, input, dispatch, output.
func (c *CLI) Run() {
	if intro := c.Engine.Defs.Arena.Intro; intro != "" {
		c.printLine(intro)
		c.printLine("")
	}
	c.Engine.Unlock()
	c.Engine.MarkVisited()
	c.printSystem("Type /help for commands.")

	scanner := bufio.NewScanner(c.In)
	for {
		c.print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		// Skip comment lines (for script files).
		if strings.HasPrefix(input, "#") {
			continue
		}
		if c.EchoInput {
			c.printLine(input)
		}

		// Meta-commands start with '/'.
		if strings.HasPrefix(input, "/") {
			if c.handleMeta(input) {
				return // /quit
			}
			continue
		}

		// "again" / "g" repeats the last command.
		lower := strings.ToLower(input)
		if lower == "again" || lower == "g" {
			if c.lastCmd == "" {
				c.printLine("Nothing to repeat.")
				continue
			}
			input = c.lastCmd
		} else {
			c.lastCmd = input
		}

		c.handleCommand(input)
	}
}

// handleCommand dispatches clock and display commands.
func (c *CLI) handleCommand(input string) {
	parts := strings.Fields(strings.ToLower(input))
	var arg string
	if len(parts) > 1 {
		arg = parts[1]
	}

	switch parts[0] {
	case "run", "r":
		seconds, err := parseCount(arg, 1)
		if err != nil || seconds > maxRunSeconds {
			c.printSystem(fmt.Sprintf("Usage: run <seconds> (1 to %d).", maxRunSeconds))
			return
		}
		c.Advance(int64(seconds) * 1000)

	case "tick", "t":
		n, err := parseCount(arg, 1)
		if err != nil {
			c.printSystem("Usage: tick [count].")
			return
		}
		c.Advance(int64(n) * c.Engine.Defs.Tuning.TickIntervalMillis)

	case "status", "s":
		for _, line := range Summary(c.Engine.Snapshot(), c.Purse.Gold) {
			c.printLine(line)
		}

	case "log":
		for _, line := range c.Engine.Snapshot().Log {
			c.printLine(line)
		}

	default:
		c.printLine(fmt.Sprintf("I don't know how to %q. Type /help for commands.", parts[0]))
	}
}

// Advance moves the simulated clock forward by ms, ticking at the engine's
// interval.
func (c *CLI) Advance(ms int64) {
	step := c.Engine.Defs.Tuning.TickIntervalMillis
	if step <= 0 {
		step = 1
	}
	end := c.Clock + ms
	for c.Clock+step <= end {
		c.Clock += step
		result := c.Engine.Tick(c.Clock)
		if !c.Quiet {
			c.printResult(result)
		}
		if c.Trace {
			c.printTrace(result)
		}
	}
}

// handleMeta dispatches meta-commands. Returns true if the session should exit.
func (c *CLI) handleMeta(input string) bool {
	parts := strings.Fields(input)
	cmd := parts[0]
	var arg string
	if len(parts) > 1 {
		arg = parts[1]
	}

	switch cmd {
	case "/quit", "/exit":
		c.printSystem("Goodbye.")
		return true

	case "/save":
		c.cmdSave(arg)

	case "/load":
		c.cmdLoad(arg)

	case "/help":
		c.cmdHelp()

	case "/state":
		c.cmdState()

	case "/quiet":
		c.Quiet = !c.Quiet
		c.printSystem(fmt.Sprintf("Quiet mode: %t.", c.Quiet))

	case "/trace":
		c.Trace = !c.Trace
		if c.Trace {
			c.printSystem("Trace output enabled.")
		} else {
			c.printSystem("Trace output disabled.")
		}

	default:
		c.printSystem(fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd))
	}

	return false
}

func (c *CLI) cmdSave(name string) {
	if name == "" {
		name = save.DefaultSlot
	}
	if err := c.Engine.SaveSlot(c.SaveDir, name); err != nil {
		c.printSystem(fmt.Sprintf("Save failed: %v", err))
		return
	}
	c.printSystem(fmt.Sprintf("Session saved to %s.", name))
}

func (c *CLI) cmdLoad(name string) {
	if name == "" {
		name = save.DefaultSlot
	}
	if err := c.Engine.LoadSlot(c.SaveDir, name); err != nil {
		c.printSystem(fmt.Sprintf("Load failed: %v", err))
		return
	}
	// Resume the simulated clock where the saved session stopped.
	c.Clock = c.Engine.Session.LastTick
	c.Engine.Unlock()
	c.printSystem(fmt.Sprintf("Session loaded from %s (tick %d).", name, c.Engine.Session.TickCount))
}

func (c *CLI) cmdHelp() {
	help := []string{
		"System:",
		"  /save [name]  Save session (default: quicksave)",
		"  /load [name]  Load session (default: quicksave)",
		"  /quit         Exit",
		"  /help         Show this help",
		"  /state        Debug: dump the session as JSON",
		"  /trace        Toggle event trace output",
		"  /quiet        Toggle tick output during runs",
		"",
		"Arena commands:",
		"  run <seconds> (r)  Advance the simulated clock",
		"  tick [n] (t)       Advance n ticks",
		"  status (s)         Show the character summary",
		"  log                Show the recent message feed",
		"  again (g)          Repeat your last command",
	}
	for _, line := range help {
		c.printLine(line)
	}
}

func (c *CLI) cmdState() {
	lines, err := c.Engine.Dump()
	if err != nil {
		c.printSystem(fmt.Sprintf("State failed: %v", err))
		return
	}
	for _, line := range lines {
		c.printLine(line)
	}
}

func (c *CLI) printTrace(result types.Result) {
	for _, ev := range result.Events {
		c.printLine(events.Trace(ev))
	}
}

func (c *CLI) printResult(result types.Result) {
	for _, line := range result.Output {
		c.printLine(line)
	}
}

func (c *CLI) printLine(text string) {
	fmt.Fprintln(c.Out, text)
}

func (c *CLI) print(text string) {
	fmt.Fprint(c.Out, text)
}

func (c *CLI) printSystem(text string) {
	fmt.Fprintf(c.Out, "[%s]\n", text)
}

func parseCount(arg string, def int) (int, error) {
	if arg == "" {
		return def, nil
	}
	n, err := strconv.Atoi(arg)
	if err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, fmt.Errorf("count must be positive")
	}
	return n, nil
}
