package config

import (
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/dmitrijs2005/clinicauth/internal/flagx"
)

// ErrStrayArgument reports a value left over after flag parsing, typically
// from "-m false" where "-m=false" was meant.
var ErrStrayArgument = errors.New("unexpected argument")

var serverFlags = []string{"-a", "-d", "-s", "-t", "-b", "-l", "-m"}

// parseFlags populates server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string     gRPC bind address (e.g., ":50051")
//	-d string     PostgreSQL DSN
//	-s string     token HMAC secret key
//	-t duration   per-query timeout (e.g., "3s")
//	-b int        bcrypt cost
//	-l string     log backend: slog or zap
//	-m bool       run migrations on startup; use -m=false to disable
//
// Args are first narrowed with flagx.FilterArgs so that -c/-config and flags
// owned by other components do not cause parse errors.
func parseFlags(config *Config, args []string) error {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.DurationVar(&config.QueryTimeout, "t", config.QueryTimeout, "query timeout")
	fs.IntVar(&config.BcryptCost, "b", config.BcryptCost, "bcrypt cost")
	fs.StringVar(&config.LogBackend, "l", config.LogBackend, "log backend (slog|zap)")
	fs.BoolVar(&config.RunMigrations, "m", config.RunMigrations, "run migrations on startup")

	if err := fs.Parse(flagx.FilterArgs(args, serverFlags)); err != nil {
		return err
	}

	// A bool flag never consumes the next token, so "-m false" stops parsing
	// at "false" and silently drops every flag after it.
	if fs.NArg() > 0 {
		return fmt.Errorf("%w %q (boolean flags take the -m=false form)", ErrStrayArgument, fs.Arg(0))
	}
	return nil
}
