package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/alkime/voicememo/internal/audio"
	"github.com/alkime/voicememo/internal/cli"
	"github.com/alkime/voicememo/internal/logger"
	"github.com/alkime/voicememo/internal/memo"
	"github.com/alkime/voicememo/internal/tui"
	"github.com/alkime/voicememo/internal/workdir"
	tea "github.com/charmbracelet/bubbletea"
)

// Globals are flags shared by every command.
type Globals struct {
	RecordingsDir string `flag:"" optional:"" help:"Recordings directory (default: $HOME/Documents/Alkime/Memos/recordings)"`
	Verbose       bool   `flag:"" short:"v" help:"Debug logging"`
}

// CLI defines the memo command structure.
type CLI struct {
	Globals

	// Default TUI command (runs when no subcommand given)
	TUI TUICmd `cmd:"" default:"withargs" help:"Launch the recorder screen"`

	// Subcommands
	Record  RecordCmd  `cmd:"" help:"Record a memo from the default microphone"`
	Play    PlayCmd    `cmd:"" help:"Play a recording"`
	List    ListCmd    `cmd:"" help:"List recordings"`
	Devices DevicesCmd `cmd:"" help:"List available audio devices"`
	Export  ExportCmd  `cmd:"" help:"Convert a recording to MP3"`
}

// TUICmd is the default command that runs the TUI.
type TUICmd struct {
	History bool `flag:"" help:"Include recordings from earlier runs"`
}

// Run executes the TUI command.
func (c *TUICmd) Run(g *Globals) error {
	e, err := newEnv(g)
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if g.Verbose {
		level = slog.LevelDebug
	}

	// the terminal belongs to bubbletea, so log to a file
	_, closeLog, err := logger.SetupFile(workdir.LogPath(e.dir), level)
	if err != nil {
		return err
	}
	defer closeLog() //nolint:errcheck // best effort

	notices := &memo.NoticeQueue{}

	app, err := e.newApp(notices, nil)
	if err != nil {
		return err
	}
	defer closeApp(app)

	if c.History {
		if err := e.restore(app); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := tea.NewProgram(tui.New(ctx, tui.Config{
		Cancel:  cancel,
		App:     app,
		Notices: notices,
	}))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to start TUI: %w", err)
	}

	fmt.Println("\nfinished. bye!") //nolint:forbidigo // CLI output

	return nil
}

// RecordCmd records a single memo.
type RecordCmd struct {
	MaxDuration time.Duration `flag:"" default:"1h" help:"Max recording duration (0 for no limit)"`
}

// Run executes the record command.
func (c *RecordCmd) Run(g *Globals) error {
	e, err := newEnv(g)
	if err != nil {
		return err
	}

	app, err := e.newApp(printNotices(), nil)
	if err != nil {
		return err
	}
	defer closeApp(app)

	_, err = cli.Record(context.Background(), app, cli.RecordOptions{
		MaxDuration: c.MaxDuration,
		Stdin:       os.Stdin,
		Progress:    os.Stdout,
	})
	if err != nil {
		return fmt.Errorf("recording failed: %w", err)
	}

	return nil
}

// PlayCmd plays a recording file.
type PlayCmd struct {
	File string `arg:"" required:"" type:"existingfile" help:"FLAC recording to play"`
}

// Run executes the play command.
func (c *PlayCmd) Run(g *Globals) error {
	e, err := newEnv(g)
	if err != nil {
		return err
	}

	d, err := audio.Probe(c.File)
	if err != nil {
		return err
	}

	finished := make(chan struct{})
	app, err := e.newApp(printNotices(), func(memo.SavedRecording) { close(finished) })
	if err != nil {
		return err
	}
	defer closeApp(app)

	app.Restore(memo.SavedRecording{URI: c.File, DurationSeconds: int(d.Seconds())})

	slog.Info("playing", "file", c.File, "duration", d)

	return cli.Play(context.Background(), app, 0, finished, os.Stdin)
}

// ListCmd lists recordings in the recordings directory.
type ListCmd struct{}

// Run executes the list command.
func (c *ListCmd) Run(g *Globals) error {
	e, err := newEnv(g)
	if err != nil {
		return err
	}

	files, err := audio.ListRecordings(e.dir)
	if err != nil {
		return err
	}

	if len(files) == 0 {
		fmt.Println("No recordings in", e.dir) //nolint:forbidigo // CLI output
		return nil
	}

	for i, f := range files {
		//nolint:forbidigo // CLI output
		fmt.Printf("Recording %d - %ds  %s  %s\n",
			i+1, int(f.Duration.Seconds()), f.ModTime.Format(time.DateTime), f.Path)
	}

	return nil
}

// DevicesCmd lists available audio devices.
type DevicesCmd struct{}

// Run executes the devices command.
func (dcmd *DevicesCmd) Run(g *Globals) error {
	e, err := newEnv(g)
	if err != nil {
		return err
	}

	slog.Info("Enumerating audio devices...")

	devices, err := e.backend.EnumerateDevices(context.Background())
	if err != nil {
		return err
	}

	for _, dev := range devices {
		slog.Info("Audio Device",
			"name", dev.Name,
			"isDefault", dev.IsDefault,
			"formatCount", dev.FormatCount,
			"formats", dev.Formats,
		)
	}

	return nil
}

// ExportCmd converts a FLAC recording to MP3.
type ExportCmd struct {
	File   string `arg:"" required:"" type:"existingfile" help:"FLAC recording to convert"`
	Output string `flag:"" short:"o" optional:"" help:"MP3 output path (default: next to the recording)"`
}

// Run executes the export command.
func (c *ExportCmd) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dst, err := audio.ExportMP3(ctx, c.File, c.Output)
	if err != nil {
		return fmt.Errorf("failed to export %s: %w", c.File, err)
	}

	fmt.Println(dst) //nolint:forbidigo // CLI output

	return nil
}

func main() {
	var c CLI
	ctx := kong.Parse(&c,
		kong.Name("memo"),
		kong.Description("Record and play back voice memos."),
	)

	// Set up text-based logger for CLI output
	logger.SetupCLI(os.Stdout, c.Verbose)

	err := ctx.Run(&c.Globals)
	ctx.FatalIfErrorf(err)
	os.Exit(0)
}
