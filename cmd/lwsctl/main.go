package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/btcsuite/btcd/btcutil"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/idwallet/lwsd/internal/config"
	"github.com/idwallet/lwsd/internal/core/application"
	"github.com/idwallet/lwsd/internal/core/ports"
	"github.com/idwallet/lwsd/internal/infrastructure/keystore"
	"github.com/idwallet/lwsd/pkg/wallet"
)

var (
	defaultDatadir = btcutil.AppDataDir("lwsd", false)

	datadirFlag = &cli.StringFlag{
		Name:    "datadir",
		Usage:   "data directory of the daemon, it must not be running",
		Value:   defaultDatadir,
		EnvVars: []string{"LWS_DATADIR"},
	}
	dbTypeFlag = &cli.StringFlag{
		Name:    "db-type",
		Usage:   "database type (badger|inmemory)",
		Value:   application.DBBadger,
		EnvVars: []string{"LWS_DB_TYPE"},
	}
	lightKDFFlag = &cli.BoolFlag{
		Name:  "lightkdf",
		Usage: "encrypt new keystore files with light scrypt params",
	}
)

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		fatal(err)
	}
}

func newApp(out io.Writer) *cli.App {
	app := cli.NewApp()

	app.Name = "lwsctl"
	app.Usage = "Command line interface to manage the wallets served by lwsd"
	app.Version = "dev"
	app.Writer = out
	app.Flags = []cli.Flag{datadirFlag, dbTypeFlag, lightKDFFlag}
	app.Before = func(*cli.Context) error {
		log.SetLevel(log.WarnLevel)
		return nil
	}
	app.Commands = append(
		app.Commands,
		&walletCmd,
		&schemaCmd,
		&attributeCmd,
		&attemptsCmd,
	)
	return app
}

type store struct {
	repo     ports.RepoManager
	keyStore *keystore.FileKeyStore
}

func (s store) close() {
	s.repo.Close()
}

// openStore opens the database and the keystore of the datadir.
func openStore(ctx *cli.Context) (*store, error) {
	datadir := ctx.String(datadirFlag.Name)
	if len(datadir) <= 0 {
		return nil, errors.New("missing datadir")
	}

	cfg := &application.Config{
		DBType:      ctx.String(dbTypeFlag.Name),
		DBDir:       filepath.Join(datadir, config.DbLocation),
		KeystoreDir: filepath.Join(datadir, config.KeystoreLocation),
	}
	if ctx.Bool(lightKDFFlag.Name) {
		cfg.ScryptN = wallet.LightScryptN
		cfg.ScryptP = wallet.LightScryptP
	}
	if _, ok := application.SupportedDBType[cfg.DBType]; !ok {
		return nil, fmt.Errorf("unsupported db type %s", cfg.DBType)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &store{cfg.RepoManager(), cfg.KeyStore()}, nil
}

func printJSON(ctx *cli.Context, v interface{}) error {
	buf, err := json.MarshalIndent(v, "", "\t")
	if err != nil {
		return fmt.Errorf("unable to encode response: %w", err)
	}
	_, err = fmt.Fprintln(ctx.App.Writer, string(buf))
	return err
}

type invalidUsageError struct {
	ctx     *cli.Context
	command string
}

func (e *invalidUsageError) Error() string {
	return fmt.Sprintf("invalid usage of command %s", e.command)
}

func fatal(err error) {
	var e *invalidUsageError
	if errors.As(err, &e) {
		_ = cli.ShowCommandHelp(e.ctx, e.command)
	} else {
		_, _ = fmt.Fprintf(os.Stderr, "[lwsctl] %v\n", err)
	}
	os.Exit(1)
}
