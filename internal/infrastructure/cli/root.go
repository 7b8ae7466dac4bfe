package cli

import (
	"github.com/spf13/cobra"

	"github.com/doeshing/exline/internal/app"
	"github.com/doeshing/exline/internal/infrastructure/cli/commands"
)

// Options holds CLI-level configuration.
type Options struct {
	Verbose bool
}

// NewRootCmd wires the cobra root command. The container is populated once
// flags are parsed so --config can take effect; the caller closes it.
func NewRootCmd(opts Options) (*cobra.Command, *app.Container) {
	var configPath string
	container := &app.Container{}

	root := &cobra.Command{
		Use:   "exline",
		Short: "exline - Vim command line for plain files",
		Long:  "exline runs Vim ex commands against a file, with history and an optional Neovim fallback.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			built, err := app.BuildContainer(cmd.Context(), app.Options{
				Verbose:    opts.Verbose,
				ConfigPath: configPath,
			})
			if err != nil {
				return err
			}
			*container = *built
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default $EXLINE_CONFIG or ~/.exline/config.yaml)")
	root.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", opts.Verbose, "Enable debug logging")

	root.AddCommand(newEditCommand(container))
	root.AddCommand(newRunCommand(container))
	root.AddCommand(newPickCommand(container))
	root.AddCommand(commands.NewHistoryCommand(container))
	root.AddCommand(commands.NewConfigCommand(container))
	root.AddCommand(commands.NewDoctorCommand(container))
	root.AddCommand(commands.NewVersionCommand())
	return root, container
}
