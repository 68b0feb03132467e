package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Eldar88/openldap/internal/backend"
	"github.com/Eldar88/openldap/internal/config"
	"github.com/Eldar88/openldap/internal/version"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "ldifd",
		Short: "ldifd runs the flat-file directory-service storage backend",
	}
	root.AddCommand(newRunCommand())
	root.AddCommand(newVersionCommand())
	return root
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "print version information and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(version.Get().String())
			return nil
		},
	}
}

func newRunCommand() *cobra.Command {
	var configPath string
	var logLevel string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "load the configured directory and serve backend operations until signaled",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configPath, logLevel)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "ldifd.toml", "path to the TOML config file")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "logrus level: debug, info, warn, error")
	return cmd
}

func runServe(configPath, logLevel string) error {
	log := logrus.New()
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("parse log level %q: %w", logLevel, err)
	}
	log.SetLevel(level)
	entry := logrus.NewEntry(log)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config %q: %w", configPath, err)
	}

	be, err := backend.New(cfg, backend.WithLogger(entry))
	if err != nil {
		return fmt.Errorf("construct backend: %w", err)
	}
	if err := be.DBInit(); err != nil {
		return fmt.Errorf("db_init: %w", err)
	}
	if err := be.DBOpen(); err != nil {
		return fmt.Errorf("db_open: %w", err)
	}

	entry.WithFields(logrus.Fields{
		"directory": cfg.Directory,
		"suffix":    cfg.Suffix,
	}).Info("ldifd: ready")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	entry.Info("ldifd: shutting down")
	return be.DBDestroy()
}
