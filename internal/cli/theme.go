package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"budgetapp/internal/models"
)

func (c *CLI) themeCommand() *cobra.Command {
	get := &cobra.Command{
		Use:   "get",
		Short: "Print the current theme",
		Args:  cobra.NoArgs,
		RunE:  c.runThemeGet,
	}

	names := make([]string, len(models.Themes))
	for i, t := range models.Themes {
		names[i] = string(t)
	}
	set := &cobra.Command{
		Use:       "set NAME",
		Short:     "Change the theme (" + strings.Join(names, ", ") + ")",
		Args:      cobra.ExactArgs(1),
		ValidArgs: names,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.open()
			if err != nil {
				return err
			}
			theme, err := a.Theme.SetTheme(args[0])
			if err != nil {
				return err
			}
			c.printf("Theme set to %s.\n", theme)
			return nil
		},
	}

	cmd := &cobra.Command{
		Use:   "theme",
		Short: "Show or change the theme",
		Args:  cobra.NoArgs,
		RunE:  c.runThemeGet,
	}
	cmd.AddCommand(get, set)
	return cmd
}

func (c *CLI) runThemeGet(cmd *cobra.Command, args []string) error {
	a, err := c.open()
	if err != nil {
		return err
	}
	theme, err := a.Theme.Theme()
	if err != nil {
		return err
	}
	c.printf("%s\n", theme)
	return nil
}
