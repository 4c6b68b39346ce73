// Package cli implements the cookbookclub command line. Every command prints
// one pretty JSON document on stdout; failures print `Error: <message>` on
// stderr and exit with status 1.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/bjax13/CookbookClub/internal/application"
	"github.com/bjax13/CookbookClub/internal/datastore"
	"github.com/bjax13/CookbookClub/internal/state"
)

// Options carries defaults and collaborators. Command line flags override
// Storage and DataPath.
type Options struct {
	Storage           string
	DataPath          string
	SQLiteBusyTimeout time.Duration
	Version           string
	Now               func() time.Time
	Files             application.FileChecker
	Logger            *slog.Logger
	Metrics           application.Metrics
}

// Run executes one invocation and returns the process exit status.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer, opts Options) int {
	r := &runner{stdout: stdout, opts: opts}
	if r.opts.Now == nil {
		r.opts.Now = time.Now
	}
	if r.opts.Logger == nil {
		r.opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	code, err := r.run(ctx, args)
	if err != nil {
		r.opts.Logger.DebugContext(ctx, "command failed", "error", err, "error_kind", application.ErrorKind(err))
		fmt.Fprintf(stderr, "Error: %s\n", err.Error())
		return 1
	}
	return code
}

var errInvalidStorage = errors.New("Invalid --storage value. Use `json` or `sqlite`.")

type runner struct {
	stdout io.Writer
	opts   Options
}

func (r *runner) run(ctx context.Context, args []string) (int, error) {
	tokens := append([]string{}, args...)
	tokens, dataPath, err := takeGlobalOption(tokens, "--data")
	if err != nil {
		return 1, err
	}
	tokens, storageName, err := takeGlobalOption(tokens, "--storage")
	if err != nil {
		return 1, err
	}
	if storageName == "" {
		storageName = r.opts.Storage
	}
	kind, err := datastore.ParseKind(storageName)
	if err != nil {
		return 1, errInvalidStorage
	}
	if dataPath == "" {
		dataPath = r.opts.DataPath
	}

	inv := parseInvocation(tokens)
	switch inv.key() {
	case "help:":
		printHelp(r.stdout)
		return 0, nil
	case "version:":
		return 0, r.print(map[string]string{"version": r.version()})
	}

	cmd, isData := dataCommands[inv.key()]
	if !isData {
		var ok bool
		if cmd, ok = clubCommands[inv.key()]; !ok {
			printHelp(r.stdout)
			return 1, nil
		}
	}

	handle, err := datastore.Open(ctx, datastore.Options{Kind: kind, Path: dataPath, SQLiteBusyTimeout: r.opts.SQLiteBusyTimeout})
	if err != nil {
		return 1, err
	}
	defer handle.Close()

	env := &commandEnv{inv: inv, handle: handle, now: r.opts.Now, logger: r.opts.Logger}
	if !cmd.stateless {
		ws, err := application.OpenWorkspace(ctx, handle, r.serviceFactory())
		if err != nil {
			return 1, err
		}
		env.workspace = ws
	}

	output, err := cmd.execute(ctx, env)
	if err != nil {
		return 1, err
	}
	return 0, r.print(output)
}

func (r *runner) serviceFactory() application.ServiceFactory {
	return func(snapshot *state.Snapshot) *application.Service {
		svc := application.NewServiceWithLogger(snapshot, r.opts.Files, r.opts.Now, r.opts.Logger)
		if r.opts.Metrics != nil {
			svc.WithMetrics(r.opts.Metrics)
		}
		return svc
	}
}

func (r *runner) version() string {
	if r.opts.Version == "" {
		return "dev"
	}
	return r.opts.Version
}

func (r *runner) print(payload any) error {
	return encodeJSON(r.stdout, payload)
}

// encodeJSON writes payload indented by two spaces with a trailing newline.
func encodeJSON(w io.Writer, payload any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(payload)
}
