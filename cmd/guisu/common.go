package main

import (
	"fmt"
	"os"
	"os/user"
	"runtime"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"

	"github.com/guisu-dotfiles/guisu/pkg/engine"
	"github.com/guisu-dotfiles/guisu/pkg/identity"
	"github.com/guisu-dotfiles/guisu/pkg/ledger"
	"github.com/guisu-dotfiles/guisu/pkg/logging"
	"github.com/guisu-dotfiles/guisu/pkg/profile"
	"github.com/guisu-dotfiles/guisu/pkg/render"
)

// pipelineFlags holds the flags shared by the diff and apply subcommands:
// everything needed to assemble an engine.Configuration.
type pipelineFlags struct {
	source      string
	destination string
	ledgerPath  string
	ignore      []string
	identities  []string
	variables   []string
	json        bool
}

// register attaches the shared flags to a command's flag set.
func (f *pipelineFlags) register(flags *pflag.FlagSet) {
	flags.StringVar(&f.source, "source", "", "path to the source repository (required)")
	flags.StringVar(&f.destination, "destination", defaultDestination(), "destination root")
	flags.StringVar(&f.ledgerPath, "ledger", defaultLedgerPath(), "path to the ledger database")
	flags.StringArrayVar(&f.ignore, "ignore", nil, "ignore pattern (repeatable)")
	flags.StringArrayVar(&f.identities, "identity", nil, "hex-encoded decryption identity (repeatable)")
	flags.StringArrayVar(&f.variables, "var", nil, "context variable in key=value form (repeatable)")
	flags.BoolVar(&f.json, "json", false, "render output as JSON")
}

// defaultDestination returns the current user's home directory, matching
// the "typically the user's home directory" default spec.md §1 describes.
func defaultDestination() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return "."
}

// defaultLedgerPath returns "<home>/.guisu/ledger.db".
func defaultLedgerPath() string {
	home := defaultDestination()
	return home + "/.guisu/ledger.db"
}

// pipeline is the set of engine components a single invocation assembles:
// the resolved configuration, the content processor, and an open ledger
// handle the caller is responsible for closing.
type pipeline struct {
	config    *engine.Configuration
	processor *engine.Processor
	ledger    *ledger.Ledger
	runID     string
}

// buildPipeline resolves flags into a ready-to-run engine.Configuration,
// opening the ledger database and constructing the reference
// TemplateRenderer/Decryptor collaborators (SPEC_FULL.md §3).
func buildPipeline(f *pipelineFlags, logLevel string) (*pipeline, error) {
	if f.source == "" {
		return nil, errors.New("--source is required")
	}

	sourceRoot, err := engine.NewAbsolutePath(f.source)
	if err != nil {
		return nil, errors.Wrap(err, "invalid --source")
	}
	destRoot, err := engine.NewAbsolutePath(f.destination)
	if err != nil {
		return nil, errors.Wrap(err, "invalid --destination")
	}

	ignorer, err := engine.NewIgnorer(f.ignore)
	if err != nil {
		return nil, errors.Wrap(err, "invalid --ignore pattern")
	}

	context, err := buildContext(f.variables)
	if err != nil {
		return nil, err
	}

	identities, err := parseIdentities(f.identities)
	if err != nil {
		return nil, err
	}

	level, ok := logging.NameToLevel(logLevel)
	if !ok {
		return nil, errors.Errorf("invalid --log-level %q", logLevel)
	}

	// Every invocation gets its own run identifier, attached as the root
	// logger's prefix so that concurrent or overlapping runs (e.g. a
	// scheduled apply racing a manual diff) can be told apart in shared log
	// output, per SPEC_FULL.md §3's domain-stack wiring for uuid.
	runID := uuid.New().String()
	logger := logging.NewLogger(level).Sublogger(runID)

	store, err := ledger.Open(f.ledgerPath)
	if err != nil {
		return nil, errors.Wrap(err, "unable to open ledger")
	}

	config := &engine.Configuration{
		SourceRoot:      sourceRoot,
		DestinationRoot: destRoot,
		Ignore:          ignorer,
		Context:         context,
		Identities:      identities,
		Logger:          logger,
	}

	return &pipeline{
		config: config,
		processor: &engine.Processor{
			Decryptor: identity.Decryptor{},
			Renderer:  render.New(),
		},
		ledger: store,
		runID:  runID,
	}, nil
}

// buildContext assembles the renderer context: the minimum variable set
// spec.md §6 mandates, derived from the host, overridden/extended by
// caller-supplied --var flags.
func buildContext(vars []string) (engine.Context, error) {
	hostname, _ := os.Hostname()
	username := ""
	homeDir, _ := os.UserHomeDir()
	if u, err := user.Current(); err == nil {
		username = u.Username
	}

	context := render.DefaultContext(runtime.GOOS, runtime.GOARCH, hostname, username, homeDir)

	for _, v := range vars {
		parts := strings.SplitN(v, "=", 2)
		if len(parts) != 2 {
			return nil, errors.Errorf("invalid --var %q, expected key=value", v)
		}
		context[parts[0]] = parts[1]
	}

	return context, nil
}

// parseIdentities converts hex-encoded identity flags into engine.Identity
// values via pkg/identity.
func parseIdentities(raw []string) ([]engine.Identity, error) {
	identities := make([]engine.Identity, 0, len(raw))
	for _, r := range raw {
		id, err := identity.ParseIdentity(r)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid --identity %q", r)
		}
		identities = append(identities, id)
	}
	return identities, nil
}

// runProfile wraps a function with CPU profiling if requested, matching the
// teacher's own --profile flag convention.
func runProfile(enabled bool, name string, fn func() error) error {
	if !enabled {
		return fn()
	}

	p, err := profile.New(name)
	if err != nil {
		return err
	}
	defer p.Finalize()

	return fn()
}

// statusLabel renders a Status for human-readable output.
func statusLabel(s engine.Status) string {
	return fmt.Sprintf("%-16s", s.String())
}
