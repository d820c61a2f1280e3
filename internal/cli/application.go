package cli

import (
	"errors"
	"io"

	"go.uber.org/zap"

	"github.com/temirov/doccomments/internal/config"
	"github.com/temirov/doccomments/internal/dispatcher"
	"github.com/temirov/doccomments/internal/notify"
	"github.com/temirov/doccomments/internal/services/agent"
	"github.com/temirov/doccomments/internal/services/chat"
	"github.com/temirov/doccomments/internal/services/clipboard"
	"github.com/temirov/doccomments/internal/symbols/treesitter"
	"github.com/temirov/doccomments/internal/target"
	"github.com/temirov/doccomments/internal/tokenizer"
)

const warningTokenizerUnavailable = "token estimates disabled"

// application is an activated set of commands with their collaborators.
type application struct {
	registry   *dispatcher.Registry
	dispatcher *dispatcher.Dispatcher
	closers    []io.Closer
}

// activate wires the collaborators from configuration and registers the default commands.
func activate(env environment, configuration config.ApplicationConfiguration) (*application, error) {
	opener, openerError := chat.NewCommandOpener(configuration.ChatCommand(), chat.RunProcess)
	if openerError != nil {
		return nil, openerError
	}

	activated := &application{registry: dispatcher.NewRegistry()}
	var channel notify.Channel = notify.NewWriterChannel(env.stderr)
	if channelFile := configuration.Output.ChannelFile; channelFile != "" {
		fileChannel, closer, channelError := notify.OpenFileChannel(channelFile)
		if channelError != nil {
			return nil, channelError
		}
		channel = fileChannel
		activated.closers = append(activated.closers, closer)
	}

	dependencies := dispatcher.Dependencies{
		Resolver:  target.NewResolver(treesitter.NewProvider(), configuration.ContextLanguages()),
		Chat:      opener,
		Clipboard: clipboard.NewService(),
		Agent: agent.NewRunner(agent.Config{
			Executable:       configuration.AgentExecutable(),
			Sandbox:          configuration.AgentSandbox(),
			SkipGitRepoCheck: configuration.Agent.SkipGitRepoCheck,
			MaxOutputBytes:   configuration.MaxOutputBytes(),
			ProbeTimeout:     configuration.ProbeTimeout(),
		}),
		Notifier: notify.NewLoggerNotifier(env.logger),
		Channel:  channel,
	}
	if configuration.TokensEnabled() {
		counter, _, counterError := tokenizer.NewCounter(configuration.TokenModel())
		if counterError != nil {
			env.logger.Warn(warningTokenizerUnavailable, zap.Error(counterError))
		} else {
			dependencies.Counter = counter
		}
	}
	if env.customize != nil {
		env.customize(&dependencies)
	}

	activated.registry.RegisterDefaults()
	activated.dispatcher = dispatcher.New(activated.registry, dependencies)
	return activated, nil
}

// Close unregisters the commands and releases the output channel.
func (activated *application) Close() error {
	activated.registry.UnregisterAll()
	var closeErrors []error
	for _, closer := range activated.closers {
		if closeError := closer.Close(); closeError != nil {
			closeErrors = append(closeErrors, closeError)
		}
	}
	return errors.Join(closeErrors...)
}
