// Command storectl prepares and inspects the storefront's local databases.
//
//	storectl setup   create the stores, apply migrations, seed demo data
//	storectl reset   wipe the storage directory and run setup
//	storectl verify  report each store's file and row count
//	storectl users   list the registered accounts
//	storectl genkey  write a new JWT_SECRET to the env file
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"text/tabwriter"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
	"github.com/rs/zerolog"

	"github.com/99minutos/storefront/internal/setup"
	"github.com/99minutos/storefront/pkg/logger"
)

// Config is read from flags, STORECTL_* variables and an optional
// storectl.yaml.
type Config struct {
	DataDir   string `default:"data/databases" usage:"directory holding the SQLite stores" flag:"data-dir" env:"DATA_DIR" yaml:"data_dir"`
	EnvFile   string `default:".env" usage:"env file written by genkey" flag:"env-file" env:"ENV_FILE" yaml:"env_file"`
	Overwrite bool   `default:"false" usage:"let genkey replace an existing JWT_SECRET" flag:"overwrite" env:"OVERWRITE" yaml:"overwrite"`
	LogLevel  string `default:"info" usage:"log level" flag:"log-level" env:"LOG_LEVEL" yaml:"log_level"`
}

const usage = `usage: storectl <setup|reset|verify|users|genkey> [flags]`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1], os.Args[2:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "storectl: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func loadConfig(args []string) (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "STORECTL",
		Files:     []string{"storectl.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
		Args: args,
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	return &cfg, nil
}

func run(ctx context.Context, command string, args []string, out io.Writer) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}
	log := logger.New(logger.Options{Service: "storectl", Level: cfg.LogLevel, Pretty: true, Output: os.Stderr})

	switch command {
	case "setup":
		report, err := setup.Setup(ctx, cfg.DataDir, log)
		if err != nil {
			return errors.Wrap(err, "setup")
		}
		return printReport(out, report)
	case "reset":
		report, err := setup.Reset(ctx, cfg.DataDir, log)
		if err != nil {
			return errors.Wrap(err, "reset")
		}
		return printReport(out, report)
	case "verify":
		report, err := setup.Verify(ctx, cfg.DataDir)
		if err != nil {
			return errors.Wrap(err, "verify")
		}
		return printReport(out, report)
	case "users":
		return listUsers(ctx, out, cfg.DataDir)
	case "genkey":
		return genKey(out, cfg, log)
	default:
		return errors.Errorf("unknown command %q\n%s", command, usage)
	}
}

func printReport(out io.Writer, report *setup.Report) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STORE\tPATH\tSIZE\tROWS\tSTATUS")
	for _, s := range report.Stores {
		status := "ok"
		switch {
		case !s.Exists:
			status = "missing"
		case s.Err != nil:
			status = "error: " + s.Err.Error()
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n", s.Store, s.Path, s.Size, s.Rows, status)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if !report.Healthy() {
		return errors.New("one or more stores are not ready, run `storectl setup`")
	}
	return nil
}

func listUsers(ctx context.Context, out io.Writer, dir string) error {
	users, err := setup.ListUsers(ctx, dir)
	if err != nil {
		return errors.Wrap(err, "list users")
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tUSERNAME\tEMAIL\tADMIN\tCREATED")
	for _, u := range users {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%t\t%s\n", u.ID, u.Username, u.Email, u.IsAdmin, u.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	return tw.Flush()
}

func genKey(out io.Writer, cfg *Config, log zerolog.Logger) error {
	if _, err := setup.GenerateKey(cfg.EnvFile, cfg.Overwrite); err != nil {
		if errors.Is(err, setup.ErrSecretExists) {
			return errors.Wrapf(err, "%s already has a key, pass --overwrite to rotate it", cfg.EnvFile)
		}
		return errors.Wrap(err, "genkey")
	}
	log.Info().Str("file", cfg.EnvFile).Msg("signing key written")
	fmt.Fprintf(out, "JWT_SECRET written to %s\n", cfg.EnvFile)
	return nil
}
