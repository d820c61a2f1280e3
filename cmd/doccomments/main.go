package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/temirov/doccomments/internal/cli"
	"github.com/temirov/doccomments/internal/utils"
)

// main is the entry point for the doccomments command.
func main() {
	loggerInstance, loggerInitializationError := utils.NewApplicationLogger()
	if loggerInitializationError != nil {
		panic(fmt.Errorf(utils.LoggerInitializationFailedMessageFormat, loggerInitializationError))
	}
	defer loggerInstance.Sync()
	applicationExecutionError := cli.Execute(context.Background(), loggerInstance)
	if applicationExecutionError == nil {
		return
	}
	if errors.Is(applicationExecutionError, cli.ErrCommandReported) {
		_ = loggerInstance.Sync()
		os.Exit(1)
	}
	loggerInstance.Fatal(utils.ApplicationExecutionFailedMessage + ": " + applicationExecutionError.Error())
}
