package chimer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"

	"github.com/oshokin/hourly-chime/internal/api/grpc/control"
	"github.com/oshokin/hourly-chime/internal/autostart"
	"github.com/oshokin/hourly-chime/internal/domain/chime"
)

// consolePrompt is shown before every console command.
const consolePrompt = "chime> "

// lineReader reads console input one line at a time.
type lineReader interface {
	Readline() (string, error)
	Close() error
}

// console turns typed commands into control commands for the loop.
type console struct {
	// svc executes the commands.
	svc *service
	// in reads the commands.
	in lineReader
	// out receives the answers.
	out io.Writer
}

// newReadlineConsole opens an interactive prompt on the terminal.
func newReadlineConsole(svc *service) (*console, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          consolePrompt,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("create readline: %w", err)
	}

	return &console{
		svc: svc,
		in:  rl,
		out: rl.Stdout(),
	}, nil
}

// run reads commands until exit, end of input or a read error.
// End of input stops the loop like the exit command.
func (c *console) run(ctx context.Context) error {
	defer func() {
		_ = c.in.Close()
	}()

	c.printHelp()

	for {
		line, err := c.in.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}

			c.svc.Exit()

			if errors.Is(err, io.EOF) {
				return nil
			}

			return fmt.Errorf("read console: %w", err)
		}

		if !c.execute(ctx, line) {
			return nil
		}
	}
}

// execute runs one command line and reports whether the console should keep reading.
func (c *console) execute(ctx context.Context, line string) bool {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return true
	}

	args := parts[1:]

	switch strings.ToLower(parts[0]) {
	case "test", "t":
		c.cmdTest(ctx)
	case "style":
		c.cmdStyle(ctx, args)
	case "autostart", "a":
		c.cmdAutostart(ctx)
	case "status", "s":
		c.cmdStatus(ctx)
	case "help", "?":
		c.printHelp()
	case "exit", "quit", "q":
		c.println("Exiting...")
		c.svc.Exit()

		return false
	default:
		c.printf("Unknown command %q, type help for the list\n", parts[0])
	}

	return true
}

func (c *console) cmdTest(ctx context.Context) {
	hour, err := c.svc.TestPlay(ctx, control.CurrentHour)
	if err != nil {
		c.printf("Test play failed: %v\n", err)
		return
	}

	c.printf("Playing the %02d:00 chime\n", hour)
}

func (c *console) cmdStyle(ctx context.Context, args []string) {
	if len(args) == 0 {
		status, err := c.svc.Status(ctx)
		if err != nil {
			c.printf("Status failed: %v\n", err)
			return
		}

		c.printf("Chime type: %s\n", status.Style)

		return
	}

	style, ok := chime.ParseStyle(args[0])
	if !ok {
		c.printf("Unknown chime type %q, use one of: %s\n", args[0], styleNames())
		return
	}

	if err := c.svc.SetChimeStyle(ctx, style); err != nil {
		c.printf("Chime type not saved: %v\n", err)
		return
	}

	c.printf("Chime type: %s\n", style)
}

func (c *console) cmdAutostart(ctx context.Context) {
	enabled, err := c.svc.Autostart(ctx, autostart.ActionToggle)
	if err != nil {
		c.printf("Autostart not changed: %v\n", err)
		return
	}

	c.printf("Autostart: %s\n", onOff(enabled))
}

func (c *console) cmdStatus(ctx context.Context) {
	status, err := c.svc.Status(ctx)
	if err != nil {
		c.printf("Status failed: %v\n", err)
		return
	}

	lastFired := "none"
	if status.HasFired {
		lastFired = fmt.Sprintf("%02d:00", status.LastFiredHour)
	}

	c.printf("Window:     %s\n", status.Window)
	c.printf("Chime type: %s\n", status.Style)
	c.printf("Autostart:  %s\n", onOff(status.AutoStart))
	c.printf("Last chime: %s\n", lastFired)
}

func (c *console) printHelp() {
	c.println("Commands:")
	c.println("  test, t                play the chime for the current hour")
	c.println("  style [name]           show or set the chime type (" + styleNames() + ")")
	c.println("  autostart, a           toggle start at logon")
	c.println("  status, s              show the current settings")
	c.println("  help, ?                show this help")
	c.println("  exit, quit, q          stop the chime")
}

func (c *console) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(c.out, format, args...)
}

func (c *console) println(text string) {
	_, _ = fmt.Fprintln(c.out, text)
}

func styleNames() string {
	styles := chime.Styles()
	names := make([]string, 0, len(styles))

	for _, style := range styles {
		names = append(names, style.String())
	}

	return strings.Join(names, ", ")
}

func onOff(enabled bool) string {
	if enabled {
		return "on"
	}

	return "off"
}
