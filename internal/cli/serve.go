package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"budgetapp/internal/server"
)

func (c *CLI) serveCommand() *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long:  `Run the HTTP API until interrupted. Swagger docs are served at /swagger/index.html.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.open()
			if err != nil {
				return err
			}
			if port != "" {
				a.Config.Port = port
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return server.NewForApp(a).Run(ctx)
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "Port to listen on (default from PORT)")
	return cmd
}
