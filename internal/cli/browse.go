package cli

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	pio "github.com/matzehuels/pathcover/pkg/io"
)

// browseCommand creates the browse command.
func (c *CLI) browseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "browse <trails>",
		Short: "Browse exported trails interactively",
		Long: `Open an interactive browser over trails exported by "pathcover cover".
Both the JSON Lines and the JSON document formats are accepted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := pio.ImportTrails(args[0])
			if err != nil {
				return err
			}
			p := tea.NewProgram(NewTrailBrowserModel(doc), tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			_, err = p.Run()
			return err
		},
	}
}
