// Command worldcanvas inspects, converts, lays out and renders the maps and
// relation graphs of a world document.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ha1tch/worldcanvas/internal/ui"
	"github.com/ha1tch/worldcanvas/pkg/config"
	"github.com/ha1tch/worldcanvas/pkg/world"
	"github.com/ha1tch/worldcanvas/pkg/worldfile"
)

var version = "0.3.0"

// env is the state shared by every subcommand once the root pre-run has
// loaded configuration.
type env struct {
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *slog.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		ui.Bad.Fprintf(os.Stderr, "worldcanvas: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	e := &env{}

	root := &cobra.Command{
		Use:   "worldcanvas",
		Short: "Work with the maps and relation graphs of a world document",
		Long: ui.Brand.Sprint("worldcanvas") + " - maps and relation graphs of a fictional world\n" +
			ui.Subtle.Sprint("Documents are .json, .yaml or .wcz bundles"),
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return e.setup(cmd)
		},
	}
	root.SetVersionTemplate("worldcanvas {{ .Version }}\n")
	root.PersistentFlags().StringVar(&e.configPath, "config", config.Path(), "Config file")
	root.PersistentFlags().BoolVarP(&e.verbose, "verbose", "v", false, "Log debug output to stderr")

	root.AddCommand(
		newCmd(e),
		infoCmd(e),
		validateCmd(e),
		convertCmd(e),
		dotCmd(e),
		pngCmd(e),
		svgCmd(e),
		arrangeCmd(e),
		cropCmd(e),
		configCmd(e),
	)
	return root
}

func (e *env) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(e.configPath)
	if err != nil {
		return err
	}
	level, err := cfg.Level()
	if err != nil {
		return err
	}
	if e.verbose {
		level = slog.LevelDebug
	}
	e.cfg = cfg
	e.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	return nil
}

func (e *env) load(path string) (*world.World, error) {
	w, err := worldfile.ReadFile(path)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("loaded world", "path", path, "maps", len(w.Maps), "graphs", len(w.Graphs))
	return w, nil
}

func (e *env) save(path string, w *world.World) error {
	if err := worldfile.WriteFile(path, w); err != nil {
		return err
	}
	e.logger.Debug("saved world", "path", path)
	return nil
}

// collection picks a collection by id, or the only one when id is empty.
func collection(w *world.World, id string) (world.Collection, error) {
	if id != "" {
		c, ok := w.Collection(id)
		if !ok {
			return world.Collection{}, fmt.Errorf("no collection %q (have %s)", id, collectionIDs(w))
		}
		return c, nil
	}
	all := w.Collections()
	if len(all) != 1 {
		return world.Collection{}, fmt.Errorf("world has %d collections, pick one with --collection (%s)", len(all), collectionIDs(w))
	}
	return all[0], nil
}

func collectionIDs(w *world.World) string {
	var ids []string
	for _, c := range w.Collections() {
		ids = append(ids, c.ID)
	}
	if len(ids) == 0 {
		return "none"
	}
	return strings.Join(ids, ", ")
}

// writeOutput writes data to path, or to the command's stdout when path
// is empty or "-".
func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
