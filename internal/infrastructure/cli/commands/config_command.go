package commands

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/doeshing/exline/internal/app"
	configapp "github.com/doeshing/exline/internal/application/config"
	"github.com/doeshing/exline/internal/domain"
	"github.com/doeshing/exline/internal/infrastructure/cli/helpers"
	"github.com/doeshing/exline/internal/ports"
)

// configCommand serves the config subcommands from one container.
type configCommand struct {
	container *app.Container
}

// NewConfigCommand creates the config command. Without a subcommand it
// prints the effective configuration.
func NewConfigCommand(container *app.Container) *cobra.Command {
	c := &configCommand{container: container}

	root := &cobra.Command{
		Use:   "config",
		Short: "Inspect and change exline configuration",
		Args:  cobra.NoArgs,
		RunE:  c.show,
	}
	root.AddCommand(
		&cobra.Command{Use: "show", Short: "Print the effective configuration as YAML", Args: cobra.NoArgs, RunE: c.show},
		&cobra.Command{Use: "path", Short: "Print the configuration file location", Args: cobra.NoArgs, RunE: c.path},
		&cobra.Command{Use: "get <key>", Short: "Print one value by dotted key (e.g. fallback.enabled)", Args: cobra.ExactArgs(1), RunE: c.get},
		&cobra.Command{Use: "set <key> <value>", Short: "Change one value; the value is read as YAML", Args: cobra.MinimumNArgs(2), RunE: c.set},
		&cobra.Command{Use: "edit", Short: "Open the file in $EDITOR, then validate it", Args: cobra.NoArgs, RunE: c.edit},
		&cobra.Command{Use: "validate", Short: "Check the configuration file", Args: cobra.NoArgs, RunE: c.validate},
		&cobra.Command{Use: "reset", Short: "Replace the file with the defaults", Args: cobra.NoArgs, RunE: c.reset},
		&cobra.Command{Use: "diff", Short: "Compare with the defaults (-default +current)", Args: cobra.NoArgs, RunE: c.diff},
	)
	return root
}

func (c *configCommand) load(cmd *cobra.Command) (domain.Config, error) {
	cfg, err := c.container.ConfigProvider.Load(cmd.Context())
	if err != nil {
		return domain.Config{}, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

func (c *configCommand) show(cmd *cobra.Command, _ []string) error {
	cfg, err := c.load(cmd)
	if err != nil {
		return err
	}
	return printYAML(cmd.OutOrStdout(), cfg)
}

func (c *configCommand) path(cmd *cobra.Command, _ []string) error {
	loader, err := helpers.GetConfigLoader(c.container)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), loader.Path())
	return nil
}

func (c *configCommand) get(cmd *cobra.Command, args []string) error {
	cfg, err := c.load(cmd)
	if err != nil {
		return err
	}
	tree, err := helpers.ConfigToMap(cfg)
	if err != nil {
		return err
	}
	value, ok := helpers.TraverseNestedMap(tree, splitKey(args[0]))
	if !ok {
		return fmt.Errorf("unknown configuration key %s", args[0])
	}
	return printYAML(cmd.OutOrStdout(), value)
}

func (c *configCommand) set(cmd *cobra.Command, args []string) error {
	key, raw := args[0], strings.Join(args[1:], " ")

	cfg, err := c.load(cmd)
	if err != nil {
		return err
	}
	tree, err := helpers.ConfigToMap(cfg)
	if err != nil {
		return err
	}
	if !helpers.SetNestedMapValue(tree, splitKey(key), helpers.ParseYAMLValue(raw)) {
		return fmt.Errorf("unknown configuration key %s", key)
	}
	updated, err := helpers.MapToConfig(tree)
	if err != nil {
		return err
	}
	return c.save(cmd, updated)
}

// edit runs $EDITOR (which may carry arguments, e.g. "code -w") on the file
// and validates whatever was saved.
func (c *configCommand) edit(cmd *cobra.Command, _ []string) error {
	loader, err := helpers.GetConfigLoader(c.container)
	if err != nil {
		return err
	}

	argv := strings.Fields(os.Getenv(envKeyEditor))
	if len(argv) == 0 {
		argv = []string{DefaultEditorCommand}
	}
	run := exec.CommandContext(cmd.Context(), argv[0], append(argv[1:], loader.Path())...)
	run.Stdin = cmd.InOrStdin()
	run.Stdout = cmd.OutOrStdout()
	run.Stderr = cmd.ErrOrStderr()
	if err := run.Run(); err != nil {
		return fmt.Errorf("editor %s: %w", argv[0], err)
	}
	return check(cmd, loader)
}

func (c *configCommand) validate(cmd *cobra.Command, _ []string) error {
	return check(cmd, c.container.ConfigProvider)
}

func (c *configCommand) reset(cmd *cobra.Command, _ []string) error {
	if err := c.save(cmd, domain.DefaultConfig()); err != nil {
		return fmt.Errorf("failed to reset configuration: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), MsgConfigurationReset)
	return nil
}

func (c *configCommand) diff(cmd *cobra.Command, _ []string) error {
	cfg, err := c.load(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	diff := cmp.Diff(domain.DefaultConfig(), cfg)
	if diff == "" {
		fmt.Fprintln(out, MsgNoDifferencesFromDefault)
		return nil
	}
	fmt.Fprintf(out, "(-default +current)\n%s", diff)
	return nil
}

// save validates and writes cfg, keeping a copy of the file it replaces.
func (c *configCommand) save(cmd *cobra.Command, cfg domain.Config) error {
	backup, err := helpers.SaveConfigWithValidation(c.container, cfg)
	if err != nil {
		return err
	}
	if backup != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Previous configuration saved to %s\n", backup)
	}
	return nil
}

func check(cmd *cobra.Command, provider ports.ConfigProvider) error {
	cfg, err := provider.Load(cmd.Context())
	if err == nil {
		err = configapp.Validate(cfg)
	}
	if err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), MsgConfigurationValid)
	return nil
}

func printYAML(out io.Writer, v interface{}) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to render configuration: %w", err)
	}
	_, err = out.Write(data)
	return err
}

func splitKey(key string) []string {
	return strings.Split(key, ".")
}
