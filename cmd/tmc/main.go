/*
Tmc starts an interactive TunaMUD client session.

It connects to a TunaMUD game server over a websocket, trying an encrypted
connection first and falling back to an unencrypted one if that fails. If a
session from a previous run was saved, it is resumed automatically. The client
then reads commands from stdin, sends them to the server, and prints what the
server sends back until the "#quit" command is input or input ends.

Usage:

	tmc [flags]

The flags are:

	-v, --version
		Give the current version of the TunaMUD client and then exit.

	-c, --config FILE
		Read configuration from the given TOML file. Defaults to config.toml
		in the tunamud directory of the user config dir, such as
		~/.config/tunamud/config.toml. It is not an error for the default file
		to be missing.

	-s, --server HOST[:PORT]
		Connect to the game server at the given host. If not given, will
		default to the value of environment variable TUNAMUD_SERVER, and if
		that is not given, to server.host in the config file.

	--insecure
		Skip the encrypted connection attempt and connect unencrypted.

	--store DRIVER[:PARAMS]
		Use the given store connection string for keeping the session between
		runs. DRIVER must be one of inmem, sqlite, or bolt. sqlite needs the
		path to a data directory, such as sqlite:path/to/dir; bolt needs the
		path to a database file, such as bolt:path/to/client.db. If not given,
		will default to the value of environment variable TUNAMUD_STORE, then
		to store in the config file, and then to a SQLite store in the tunamud
		config directory.

	--log FILE
		Write a debug log to the given file. If not given, will default to the
		value of environment variable TUNAMUD_LOG_FILE, then to log.file in the
		config file. With none of those, nothing is logged.

	-d, --direct
		Force reading directly from the console as opposed to using GNU
		readline based routines for reading command input even if launched in
		a tty with stdin and stdout.

	--no-connect
		Do not connect on start. Use "#connect" to connect later.

Once a session has started, lines starting with "#" are client commands and
everything else is sent to the server as a game command. Type "#help" for the
client commands and "#aliases" for the short forms of game commands.
*/
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/dekarrin/tunamud"
	"github.com/dekarrin/tunamud/internal/config"
	"github.com/dekarrin/tunamud/internal/version"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

const (

	// ExitSuccess indicates a successful program execution.
	ExitSuccess = iota

	// ExitClientError indicates an unsuccessful program execution due to a
	// problem while the client was running.
	ExitClientError

	// ExitInitError indicates an unsuccessful program execution due to an
	// issue initializing the client.
	ExitInitError
)

const (
	EnvServer  = "TUNAMUD_SERVER"
	EnvStore   = "TUNAMUD_STORE"
	EnvLogFile = "TUNAMUD_LOG_FILE"
)

var (
	returnCode    int = ExitSuccess
	flagVersion       = pflag.BoolP("version", "v", false, "Give the current version of the TunaMUD client and then exit.")
	flagConfig        = pflag.StringP("config", "c", "", "Read configuration from the given TOML file.")
	flagServer        = pflag.StringP("server", "s", "", "Connect to the game server at HOST[:PORT].")
	flagInsecure      = pflag.Bool("insecure", false, "Skip the encrypted connection attempt.")
	flagStore         = pflag.String("store", "", "Keep the session in the given store, as DRIVER[:PARAMS].")
	flagLog           = pflag.String("log", "", "Write a debug log to the given file.")
	flagDirect        = pflag.BoolP("direct", "d", false, "Force reading directly from stdin instead of going through GNU readline where possible.")
	flagNoConnect     = pflag.Bool("no-connect", false, "Do not connect to the server on start.")
)

func main() {
	defer func() {
		if panicErr := recover(); panicErr != nil {
			// we are panicking, make sure we dont lose the panic just because
			// we checked
			panic(panicErr)
		} else {
			os.Exit(returnCode)
		}
	}()

	pflag.Parse()

	if *flagVersion {
		fmt.Printf("%s (protocol v%s)\n", version.Current, version.Protocol)
		return
	}

	if len(pflag.Args()) > 0 {
		fmt.Fprintf(os.Stderr, "ERROR: Too many arguments\nDo -h for help.\n")
		returnCode = ExitInitError
		return
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitInitError
		return
	}

	logger, err := cfg.Log.Logger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitInitError
		return
	}
	defer logger.Sync()
	logger.Info("starting client", zap.String("version", version.Current), zap.String("server", cfg.Server.Host))

	eng, initErr := tunamud.New(os.Stdin, os.Stdout, cfg, *flagDirect, logger)
	if initErr != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", initErr.Error())
		returnCode = ExitInitError
		return
	}
	defer eng.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err = eng.RunUntilQuit(ctx, !*flagNoConnect)
	if err != nil {
		logger.Error("client stopped", zap.Error(err))
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitClientError
		return
	}
}

// loadConfig reads the config file and applies environment variables and
// then flags over it. Later sources win.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(*flagConfig)
	if err != nil {
		return cfg, err
	}

	if v := os.Getenv(EnvServer); v != "" {
		cfg.Server.Host = v
	}
	if pflag.Lookup("server").Changed {
		cfg.Server.Host = *flagServer
	}

	if pflag.Lookup("insecure").Changed {
		cfg.Server.Insecure = *flagInsecure
	}

	if v := os.Getenv(EnvStore); v != "" {
		cfg.Store = v
	}
	if pflag.Lookup("store").Changed {
		cfg.Store = *flagStore
	}

	if v := os.Getenv(EnvLogFile); v != "" {
		cfg.Log.File = v
	}
	if pflag.Lookup("log").Changed {
		cfg.Log.File = *flagLog
	}

	cfg = cfg.FillDefaults()
	if cfg.Server.Host == "" {
		return cfg, fmt.Errorf("no server given; use --server, %s, or server.host in the config file", EnvServer)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}
