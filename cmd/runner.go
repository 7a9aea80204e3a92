package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/continuum/internal/gateway"
	"github.com/desertthunder/continuum/internal/pipeline"
	"github.com/desertthunder/continuum/internal/repositories"
	"github.com/desertthunder/continuum/internal/shared"
	"github.com/desertthunder/continuum/internal/workflow"
	"github.com/urfave/cli/v3"
)

const defaultConfigPath = "config.toml"

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config      *shared.Config
	configPath  string
	gateway     gateway.Gateway
	api         *gateway.APIService
	mixes       *repositories.MixRepository
	logger      *log.Logger
	output      io.Writer
	input       io.Reader
	openBrowser func(url string) error
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config      *shared.Config
	ConfigPath  string
	Gateway     gateway.Gateway
	API         *gateway.APIService
	Mixes       *repositories.MixRepository // Opened from config.Database on demand when nil
	Logger      *log.Logger
	Output      io.Writer
	Input       io.Reader
	OpenBrowser func(url string) error
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
	if opts.Input == nil {
		opts.Input = os.Stdin
	}
	if opts.OpenBrowser == nil {
		opts.OpenBrowser = shared.OpenBrowser
	}
	if opts.API == nil {
		client := gateway.NewHTTPClient(context.Background(), opts.Config.Gateway.APIToken)
		opts.API = gateway.NewAPIService(opts.Config.Gateway.BaseURL, client)
	}
	if opts.Gateway == nil {
		opts.Gateway = gateway.NewClient(opts.API, shared.WithLogger(opts.Logger, "component", "gateway"))
	}

	return &Runner{
		config:      opts.Config,
		configPath:  opts.ConfigPath,
		gateway:     opts.Gateway,
		api:         opts.API,
		mixes:       opts.Mixes,
		logger:      opts.Logger,
		output:      opts.Output,
		input:       opts.Input,
		openBrowser: opts.OpenBrowser,
	}
}

// SetLogger replaces the logger, including the one the HTTP gateway writes to.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
	if c, ok := r.gateway.(*gateway.Client); ok {
		r.gateway = gateway.NewClient(c.API(), shared.WithLogger(l, "component", "gateway"))
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, apiCommand, mixCommand, historyCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// newMachine wires a workflow machine to the gateway. mixes may be nil.
func (r *Runner) newMachine(mixes *repositories.MixRepository) *workflow.Machine {
	engine := pipeline.NewEngine(r.gateway, pipeline.EngineOpts{
		RequestsPerSecond: r.config.Pipeline.RequestsPerSecond,
		Burst:             r.config.Pipeline.Burst,
		Logger:            shared.WithLogger(r.logger, "component", "pipeline"),
	})

	opts := workflow.MachineOpts{
		Engine:         engine,
		Logger:         shared.WithLogger(r.logger, "component", "workflow"),
		DefaultMinutes: r.config.Mix.DefaultMinutes,
	}
	if mixes != nil {
		opts.Recorder = mixes
	}
	return workflow.NewMachine(r.gateway, opts)
}

// openHistory returns the mix repository, opening and migrating the configured database when needed.
//
// The returned close func is always safe to call.
func (r *Runner) openHistory() (*repositories.MixRepository, func(), error) {
	if r.mixes != nil {
		return r.mixes, func() {}, nil
	}

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, func() {}, fmt.Errorf("failed to open database: %w", err)
	}
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, func() {}, fmt.Errorf("failed to run migrations: %w", err)
	}

	return repositories.NewMixRepository(db), func() { db.Close() }, nil
}

// optionalHistory is [Runner.openHistory] for commands that still work without a database.
func (r *Runner) optionalHistory() (*repositories.MixRepository, func()) {
	mixes, closeFn, err := r.openHistory()
	if err != nil {
		r.logger.Warn("mix history disabled", "error", err)
		return nil, closeFn
	}
	return mixes, closeFn
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

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
