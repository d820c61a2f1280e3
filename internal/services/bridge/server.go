// Package bridge serves documentation commands over HTTP on the loopback interface so an editor
// extension can post editor context instead of spawning the CLI for every command.
package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/temirov/doccomments/internal/dispatcher"
)

const (
	// DefaultListenAddress binds an ephemeral loopback port.
	DefaultListenAddress   = "127.0.0.1:0"
	defaultShutdownTimeout = 5 * time.Second
	defaultMaxPayloadBytes = 16 * 1024 * 1024
	capabilitiesRoute      = "/capabilities"
	metricsRoute           = "/metrics"
	commandsRoute          = "/commands/"
	contentTypeHeader      = "Content-Type"
	jsonContentType        = "application/json"

	errorListenFormat      = "listen on %s: %w"
	errorServeFormat       = "serve bridge: %w"
	errorShutdownFormat    = "shutdown bridge: %w"
	errorReadPayloadFormat = "read payload: %w"
	errorUnknownCommand    = "command not found"
)

// Dispatcher runs documentation commands.
type Dispatcher interface {
	Dispatch(ctx context.Context, commandID string, request dispatcher.Request) (dispatcher.Outcome, error)
}

// Config defines runtime options for the bridge.
type Config struct {
	Address    string
	Dispatcher Dispatcher
	// Commands are advertised on /capabilities and accepted on /commands/<id>.
	Commands        []dispatcher.Command
	ShutdownTimeout time.Duration
	MaxPayloadBytes int64
	// MetricsHandler serves /metrics; nil uses the default Prometheus registry.
	MetricsHandler http.Handler
}

// Server exposes the registered commands of a dispatcher over HTTP.
type Server struct {
	config   Config
	commands map[string]dispatcher.Command
}

// NewServer creates a Server with defaults applied.
func NewServer(config Config) *Server {
	normalized := config
	if normalized.Address == "" {
		normalized.Address = DefaultListenAddress
	}
	if normalized.ShutdownTimeout <= 0 {
		normalized.ShutdownTimeout = defaultShutdownTimeout
	}
	if normalized.MaxPayloadBytes <= 0 {
		normalized.MaxPayloadBytes = defaultMaxPayloadBytes
	}
	if normalized.MetricsHandler == nil {
		normalized.MetricsHandler = promhttp.Handler()
	}
	commands := make(map[string]dispatcher.Command, len(normalized.Commands))
	for _, command := range normalized.Commands {
		commands[command.ID] = command
	}
	return &Server{config: normalized, commands: commands}
}

// Handler returns the bridge routes.
func (server *Server) Handler() http.Handler {
	router := http.NewServeMux()
	router.HandleFunc(capabilitiesRoute, server.handleCapabilities)
	router.Handle(metricsRoute, server.config.MetricsHandler)
	router.HandleFunc(commandsRoute, server.handleCommand)
	return router
}

// Run serves until ctx is canceled. announce receives the bound address once the listener is open.
func (server *Server) Run(ctx context.Context, announce func(address string)) error {
	listener, listenError := net.Listen("tcp", server.config.Address)
	if listenError != nil {
		return fmt.Errorf(errorListenFormat, server.config.Address, listenError)
	}
	httpServer := &http.Server{Handler: server.Handler(), ReadHeaderTimeout: server.config.ShutdownTimeout}
	group, groupContext := errgroup.WithContext(ctx)

	group.Go(func() error {
		if serveError := httpServer.Serve(listener); serveError != nil && !errors.Is(serveError, http.ErrServerClosed) {
			return fmt.Errorf(errorServeFormat, serveError)
		}
		return nil
	})
	if announce != nil {
		announce(listener.Addr().String())
	}
	group.Go(func() error {
		<-groupContext.Done()
		shutdownContext, cancel := context.WithTimeout(context.Background(), server.config.ShutdownTimeout)
		defer cancel()
		if shutdownError := httpServer.Shutdown(shutdownContext); shutdownError != nil && !errors.Is(shutdownError, http.ErrServerClosed) {
			return fmt.Errorf(errorShutdownFormat, shutdownError)
		}
		return nil
	})
	return group.Wait()
}

func (server *Server) handleCapabilities(writer http.ResponseWriter, request *http.Request) {
	if request.Method != http.MethodGet {
		writer.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(writer, http.StatusOK, capabilitiesResponse{Capabilities: Capabilities(server.config.Commands)})
}

// handleCommand answers 200 with the outcome for every run, failed runs included. Only requests
// that never reach the dispatcher get an error status.
func (server *Server) handleCommand(writer http.ResponseWriter, request *http.Request) {
	if request.Method != http.MethodPost {
		writer.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	commandID := strings.TrimPrefix(request.URL.Path, commandsRoute)
	if _, registered := server.commands[commandID]; !registered || server.config.Dispatcher == nil {
		writeError(writer, http.StatusNotFound, errors.New(errorUnknownCommand))
		return
	}

	payload, decodeError := decodePayload(http.MaxBytesReader(writer, request.Body, server.config.MaxPayloadBytes))
	if decodeError != nil {
		writeError(writer, http.StatusBadRequest, decodeError)
		return
	}
	dispatchRequest, requestError := payload.Request()
	if requestError != nil {
		writeError(writer, http.StatusBadRequest, requestError)
		return
	}

	outcome, dispatchError := server.config.Dispatcher.Dispatch(request.Context(), commandID, dispatchRequest)
	switch {
	case errors.Is(dispatchError, dispatcher.ErrUnknownCommand):
		writeError(writer, http.StatusNotFound, dispatchError)
	case dispatchError != nil:
		writeError(writer, http.StatusInternalServerError, dispatchError)
	default:
		writeJSON(writer, http.StatusOK, ResponseFromOutcome(outcome))
	}
}

type capabilitiesResponse struct {
	Capabilities []Capability `json:"capabilities"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(writer http.ResponseWriter, statusCode int, err error) {
	writeJSON(writer, statusCode, errorResponse{Error: err.Error()})
}

func writeJSON(writer http.ResponseWriter, statusCode int, payload any) {
	encoded, encodeError := json.Marshal(payload)
	if encodeError != nil {
		statusCode = http.StatusInternalServerError
		encoded, _ = json.Marshal(errorResponse{Error: encodeError.Error()})
	}
	writer.Header().Set(contentTypeHeader, jsonContentType)
	writer.WriteHeader(statusCode)
	_, _ = writer.Write(append(encoded, '\n'))
}
