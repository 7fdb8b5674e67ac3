package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/ytparty/internal/models"
	"github.com/desertthunder/ytparty/internal/session"
	"github.com/desertthunder/ytparty/internal/shared"
	"github.com/desertthunder/ytparty/internal/store"
	"github.com/desertthunder/ytparty/internal/ui"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// The store and engine are opened on first use so commands like setup never touch storage they do not need.
type Runner struct {
	config     *shared.Config
	configPath string
	store      store.Store
	ownsStore  bool
	engine     *session.Engine
	logger     *log.Logger
	output     io.Writer
	palette    *ui.Palette
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Store      store.Store // overrides the configured storage driver
	Logger     *log.Logger
	Output     io.Writer
	Palette    *ui.Palette
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Palette == nil {
		opts.Palette = ui.Default
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		store:      opts.Store,
		logger:     opts.Logger,
		output:     opts.Output,
		palette:    opts.Palette,
	}
}

// App builds the root command.
func (r *Runner) App() *cli.Command {
	return &cli.Command{
		Name:      "ytparty",
		Usage:     "Manage watch party accounts and sessions",
		Version:   "0.1.0",
		Writer:    r.output,
		ErrWriter: r.output,
		Commands:  r.register(),
		After: func(ctx context.Context, cmd *cli.Command) error {
			return r.Close()
		},
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, registerCommand, loginCommand, logoutCommand, whoamiCommand,
		profileCommand, adminCommand, eventsCommand, serveCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// open returns the engine, opening the configured store on first use.
func (r *Runner) open() (*session.Engine, error) {
	if r.engine != nil {
		return r.engine, nil
	}

	if r.store == nil {
		s, err := store.Open(r.config.Storage)
		if err != nil {
			return nil, err
		}
		r.store, r.ownsStore = s, true
	}

	r.engine = session.NewEngine(session.EngineOpts{
		Store: r.store,
		Identity: models.Identity{
			ID:         r.config.Identity.ID,
			Alias:      r.config.Identity.Alias,
			Credential: r.config.Identity.Credential,
		},
		ReservedNames: r.config.Registration.ReservedNames,
		Logger:        r.logger,
	})
	return r.engine, nil
}

// Close releases the store if the runner opened it. An injected store is left open.
func (r *Runner) Close() error {
	if r.store == nil || !r.ownsStore {
		return nil
	}
	err := r.store.Close()
	r.store, r.engine, r.ownsStore = nil, nil, false
	return err
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func jsonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print output",
			Value: true,
		},
	}
}
