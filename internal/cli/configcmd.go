package cli

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/matzehuels/fretboard/pkg/config"
	"github.com/matzehuels/fretboard/pkg/errors"
)

// configCommand creates the config command group.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Create and inspect the configuration file",
	}

	cmd.AddCommand(c.configInitCommand())
	cmd.AddCommand(c.configPathCommand())
	cmd.AddCommand(c.configShowCommand())
	cmd.AddCommand(c.configCheckCommand())

	return cmd
}

func (c *CLI) configInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration",
		Long: `Write the default configuration to the config path.

The file is TOML unless --config names a .yaml or .yml file. An existing
file is kept unless --force is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := c.configPathOrDefault()
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err == nil && !force {
				return errors.New(errors.ErrCodeInvalidConfig, "%s already exists; use --force to overwrite", path)
			}
			if err := config.Default().Save(path); err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			printSuccess(w, "Wrote default configuration")
			printFile(w, path)
			printNextStep(w, "Validate after editing", "fretboard config check")
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	return cmd
}

func (c *CLI) configPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := c.configPathOrDefault()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}

func (c *CLI) configShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as TOML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return toml.NewEncoder(cmd.OutOrStdout()).Encode(c.config())
		},
	}
}

func (c *CLI) configCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the config file and list every problem",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := c.configPathOrDefault()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if _, err := config.Load(path); err != nil {
				problems := config.Problems(err)
				if len(problems) == 0 {
					return err
				}
				printWarning(w, "%s has %d %s", path, len(problems), plural(len(problems), "problem", "problems"))
				for _, p := range problems {
					printDetail(w, "%s", errors.UserMessage(p))
				}
				return errors.New(errors.ErrCodeInvalidConfig, "invalid configuration")
			}
			printSuccess(w, "%s is valid", path)
			return nil
		},
	}
}
