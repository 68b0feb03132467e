package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Eldar88/openldap/internal/backend"
	"github.com/Eldar88/openldap/internal/config"
	"github.com/Eldar88/openldap/internal/entry"
	"github.com/Eldar88/openldap/internal/status"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "ldiftool",
		Short: "ldiftool drives the backend's offline batch export/import cursor",
	}
	root.AddCommand(newExportCommand())
	root.AddCommand(newImportCommand())
	return root
}

func newExportCommand() *cobra.Command {
	var configPath, outPath string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "dump every entry under the configured suffix to an ldif file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(configPath, outPath)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "ldifd.toml", "path to the TOML config file")
	cmd.Flags().StringVar(&outPath, "out", "-", "output file path, or - for stdout")
	return cmd
}

func newImportCommand() *cobra.Command {
	var configPath, inPath string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "load every entry from an ldif dump into the configured directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(configPath, inPath)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "ldifd.toml", "path to the TOML config file")
	cmd.Flags().StringVar(&inPath, "in", "", "input ldif dump path (required)")
	cmd.MarkFlagRequired("in")
	return cmd
}

func runExport(configPath, outPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config %q: %w", configPath, err)
	}
	be, err := backend.New(cfg)
	if err != nil {
		return fmt.Errorf("construct backend: %w", err)
	}
	if err := be.DBInit(); err != nil {
		return err
	}
	if err := be.DBOpen(); err != nil {
		return err
	}

	out := os.Stdout
	if outPath != "-" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create %q: %w", outPath, err)
		}
		defer f.Close()
		out = f
	}

	c := be.ToolOpen()
	if code := be.ToolFirst(c); code != status.Success {
		return fmt.Errorf("tool_first: %s", code)
	}
	n := 0
	for {
		id, ok := be.ToolNext(c)
		if !ok {
			break
		}
		e, ok := be.ToolGet(c, id)
		if !ok {
			continue
		}
		if _, err := out.Write(entry.Encode(e)); err != nil {
			return fmt.Errorf("write entry: %w", err)
		}
		n++
	}
	fmt.Fprintf(os.Stderr, "ldiftool: exported %d entries\n", n)
	return be.DBDestroy()
}

func runImport(configPath, inPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config %q: %w", configPath, err)
	}
	be, err := backend.New(cfg)
	if err != nil {
		return fmt.Errorf("construct backend: %w", err)
	}
	if err := be.DBInit(); err != nil {
		return err
	}
	if err := be.DBOpen(); err != nil {
		return err
	}

	f, err := os.Open(inPath)
	if err != nil {
		return fmt.Errorf("open %q: %w", inPath, err)
	}
	defer f.Close()

	n := 0
	for block := range iterBlocks(f) {
		e, err := entry.Decode([]byte(block))
		if err != nil {
			return fmt.Errorf("decode entry %d: %w", n+1, err)
		}
		if code := be.ToolImport(e); code != status.Success {
			return fmt.Errorf("import %s: %s", e.Name, code)
		}
		n++
	}
	fmt.Fprintf(os.Stderr, "ldiftool: imported %d entries\n", n)
	return be.DBDestroy()
}

// iterBlocks splits an ldif dump into one string per blank-line
// delimited entry record, since entry.Decode parses a single record.
func iterBlocks(f *os.File) <-chan string {
	ch := make(chan string)
	go func() {
		defer close(ch)
		sc := bufio.NewScanner(f)
		sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
		var b strings.Builder
		for sc.Scan() {
			line := sc.Text()
			if line == "" {
				if b.Len() > 0 {
					ch <- b.String()
					b.Reset()
				}
				continue
			}
			b.WriteString(line)
			b.WriteByte('\n')
		}
		if b.Len() > 0 {
			ch <- b.String()
		}
	}()
	return ch
}
