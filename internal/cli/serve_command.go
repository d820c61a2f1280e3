package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/doccomments/internal/services/bridge"
)

const (
	serveUse              = "serve"
	serveShortDescription = "serve documentation commands over HTTP"
	serveLongDescription  = `Start the HTTP bridge used by editor extensions.
GET /capabilities lists the commands, POST /commands/<id> runs one with the editor context as JSON,
and GET /metrics exposes Prometheus metrics.`
	addressFlagName           = "address"
	addressFlagDescription    = "listen address; overrides bridge.address"
	serverListeningFormat     = "bridge listening on %s\n"
	serverListeningLogMessage = "bridge listening"
	serverStoppedLogMessage   = "bridge stopped"
	serverAddressLogField     = "address"
)

// createServeCommand returns the serve subcommand.
func createServeCommand(env environment, root *rootOptions) *cobra.Command {
	var address string

	serveCommand := &cobra.Command{
		Use:   serveUse,
		Short: serveShortDescription,
		Long:  serveLongDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			signalContext, stop := signal.NotifyContext(command.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServeCommand(signalContext, env, root, address, command.OutOrStdout())
		},
	}
	serveCommand.Flags().StringVar(&address, addressFlagName, "", addressFlagDescription)
	return serveCommand
}

func runServeCommand(ctx context.Context, env environment, root *rootOptions, address string, output io.Writer) error {
	configuration, configurationError := loadConfiguration(env, root)
	if configurationError != nil {
		return configurationError
	}
	if address == "" {
		address = configuration.BridgeAddress()
	}

	activated, activationError := activate(env, configuration)
	if activationError != nil {
		return activationError
	}
	defer activated.Close()

	commands := activated.registry.Commands()
	server := bridge.NewServer(bridge.Config{
		Address:    address,
		Dispatcher: activated.dispatcher,
		Commands:   commands,
	})
	runError := server.Run(ctx, func(boundAddress string) {
		fmt.Fprintf(output, serverListeningFormat, boundAddress)
		env.logger.Info(serverListeningLogMessage, zap.String(serverAddressLogField, boundAddress))
	})
	if runError != nil {
		return runError
	}
	env.logger.Info(serverStoppedLogMessage)
	return nil
}
