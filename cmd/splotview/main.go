// splotview is the command-line surface of the session engine: inspect and
// render saved .splot projects and list recently used ones.
package main

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/splotview/splotview/src/config"
	"github.com/splotview/splotview/src/logging"
	"github.com/splotview/splotview/src/project"
	"github.com/splotview/splotview/src/render"
	"github.com/splotview/splotview/src/session"
)

func main() {
	var cfgPath string
	var cfg config.Config

	root := &cobra.Command{
		Use:           "splotview",
		Short:         "Inspect and render splot chart projects",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load(cfgPath)
			if err != nil {
				return err
			}
			logging.SetLogLevel(cfg.LogLevel)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", config.DefaultPath(), "config file")

	root.AddCommand(infoCmd(&cfg), renderCmd(&cfg), recentCmd(&cfg))

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// openProject loads a saved project and records it in the recent-file log.
// A broken log never blocks opening the project itself.
func openProject(cfg *config.Config, path string) (*session.Session, error) {
	s, err := project.Load(path)
	if err != nil {
		return nil, err
	}
	log := &project.RecentLog{Path: cfg.RecentLog}
	if err := log.Touch(path); err != nil {
		logging.Warnf("recent log: %v", err)
	}
	return s, nil
}

func infoCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "info <project.splot>",
		Short: "Summarize a project file: pages, axes, traces, link groups",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openProject(cfg, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %d page(s), %d file(s)\n", filepath.Base(args[0]), len(s.Pages), s.Files.Len())
			for _, name := range s.Files.Names() {
				e, _ := s.Files.Get(name)
				fmt.Fprintf(out, "  file %s (%d rows, %d columns) from %s\n",
					name, e.Dataset.Len(), len(e.Dataset.Vars()), e.OriginalPath)
			}
			for i, p := range s.Pages {
				marker := " "
				if i == s.Current {
					marker = "*"
				}
				fmt.Fprintf(out, "%s page %d %q (%dx%d, %d traces)\n",
					marker, i+1, p.Title, p.Rows, p.Cols, len(p.Traces))
				for ax := 0; ax < p.NumAxes(); ax++ {
					for _, t := range p.TracesOnAxis(ax) {
						fmt.Fprintf(out, "    axis %d: %s (%s of %s, transform=%s, side=%s)\n",
							ax, t.ID, t.VarKey, t.File, t.Transform, t.Side)
					}
				}
				groups := p.Links.Groups()
				var ids []string
				for id := range groups {
					ids = append(ids, id)
				}
				sort.Strings(ids)
				for _, id := range ids {
					fmt.Fprintf(out, "    x-link %s: axes %v\n", id, groups[id])
				}
			}
			return nil
		},
	}
}

func renderCmd(cfg *config.Config) *cobra.Command {
	var outDir string
	var width, height int
	cmd := &cobra.Command{
		Use:   "render <project.splot>",
		Short: "Render every page of a project to page-N.png",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openProject(cfg, args[0])
			if err != nil {
				return err
			}
			if width <= 0 {
				width = cfg.ChartWidth
			}
			if height <= 0 {
				height = cfg.ChartHeight
			}
			if err := os.MkdirAll(outDir, 0755); err != nil {
				return err
			}

			r := render.New(width, height)
			var renderErr error
			page := 0
			r.OnImage = func(p *session.Page, img image.Image) {
				page++
				path := filepath.Join(outDir, fmt.Sprintf("page-%d.png", page))
				if err := render.WritePNG(path, img); err != nil && renderErr == nil {
					renderErr = err
					return
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			}
			for _, p := range s.Pages {
				if err := r.Draw(p); err != nil {
					return err
				}
			}
			return renderErr
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "output directory")
	cmd.Flags().IntVar(&width, "width", 0, "page width in pixels (default from config)")
	cmd.Flags().IntVar(&height, "height", 0, "page height in pixels (default from config)")
	return cmd
}

func recentCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "recent",
		Short: "List recently used project files, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := &project.RecentLog{Path: cfg.RecentLog}
			entries, err := log.Entries()
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no recent projects")
				return nil
			}
			for _, e := range entries {
				fmt.Fprintf(cmd.OutOrStdout(), "%s | %s\n", e.Time.Format("2006-01-02 15:04:05"), e.Path)
			}
			return nil
		},
	}
}
