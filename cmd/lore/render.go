package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-lore/internal/logging"
)

func newRenderCommand(a *app) *cobra.Command {
	var (
		file   string
		format string
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a card body to sanitized HTML or a display tree",
		RunE: func(cmd *cobra.Command, _ []string) error {
			source, err := readSource(a.in, file)
			if err != nil {
				return err
			}

			module, err := a.module()
			if err != nil {
				return err
			}
			defer module.Close()

			scope := a.scope(source.FrontMatter.Scope)
			logging.WithFields(module.Logger, map[string]any{
				"path":   source.Path,
				"scope":  scope,
				"format": format,
			}).Debug("cli.render.start")

			switch format {
			case "html":
				html, err := module.RenderHTML(scope, source.Body)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(a.out, string(html))
				return err
			case "tree":
				enc := json.NewEncoder(a.out)
				enc.SetIndent("", "  ")
				return enc.Encode(module.Render(scope, source.Body))
			default:
				return fmt.Errorf("unknown render format %q (want html or tree)", format)
			}
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "-", "card file to render (- reads stdin)")
	cmd.Flags().StringVar(&format, "format", "html", "output format: html or tree")
	return cmd
}
