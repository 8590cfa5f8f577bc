package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newConvertCommand(a *app) *cobra.Command {
	var (
		file string
		to   string
	)

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert a card body between portable text and editor markup",
		Long: `Convert reads portable text or editor markup and writes one of:
  markdown   canonical portable text
  editor     markup the rich-text editor loads
  html-raw   unsanitized goldmark HTML, for debugging`,
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

			codec := module.Codec()
			var out string
			switch to {
			case "markdown":
				out = codec.Encode(codec.Parse(source.Body))
			case "editor":
				out = codec.PrepareForEditor(source.Body)
			case "html-raw":
				raw, err := module.Container().RawParser().Parse([]byte(codec.Encode(codec.Parse(source.Body))))
				if err != nil {
					return err
				}
				out = string(raw)
			default:
				return fmt.Errorf("unknown conversion target %q (want markdown, editor or html-raw)", to)
			}
			_, err = fmt.Fprintln(a.out, out)
			return err
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "-", "card file to convert (- reads stdin)")
	cmd.Flags().StringVar(&to, "to", "markdown", "target: markdown, editor or html-raw")
	return cmd
}
