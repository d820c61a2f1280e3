// Package config loads doccomments settings from the global and local YAML files.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/temirov/doccomments/internal/utils"
)

const (
	// ConfigFileName is the global configuration file inside GlobalConfigDirectoryName.
	ConfigFileName = "config.yaml"
	// LocalConfigFileName is the per-workspace configuration file.
	LocalConfigFileName = ".doccomments.yaml"
	// GlobalConfigDirectoryName is the directory under the user's home holding ConfigFileName.
	GlobalConfigDirectoryName = "." + utils.ApplicationName

	defaultChatCommand         = "code chat"
	defaultAgentExecutable     = "codex"
	defaultSandbox             = "workspace-write"
	defaultMaxOutputBytes      = 10 * 1024 * 1024
	defaultProbeTimeoutSeconds = 15
	defaultContextLanguage     = "csharp"
	defaultTokenModel          = "gpt-4o"
	defaultBridgeAddress       = "127.0.0.1:7823"
)

// LoadOptions controls how application configuration is discovered.
type LoadOptions struct {
	WorkingDirectory string
	ExplicitFilePath string
}

// ApplicationConfiguration holds every configurable setting. Unset values keep their defaults.
type ApplicationConfiguration struct {
	Chat    ChatConfiguration    `mapstructure:"chat"`
	Agent   AgentConfiguration   `mapstructure:"agent"`
	Context ContextConfiguration `mapstructure:"context"`
	Output  OutputConfiguration  `mapstructure:"output"`
	Tokens  TokenConfiguration   `mapstructure:"tokens"`
	Bridge  BridgeConfiguration  `mapstructure:"bridge"`
}

// ChatConfiguration selects the command that opens the chat panel.
type ChatConfiguration struct {
	Command string `mapstructure:"command"`
}

// AgentConfiguration controls the external agent.
type AgentConfiguration struct {
	Executable          string `mapstructure:"executable"`
	Sandbox             string `mapstructure:"sandbox"`
	SkipGitRepoCheck    *bool  `mapstructure:"skip_git_repo_check"`
	MaxOutputBytes      *int64 `mapstructure:"max_output_bytes"`
	ProbeTimeoutSeconds *int   `mapstructure:"probe_timeout_seconds"`
}

// ContextConfiguration lists the languages whose prompts carry the enclosing type signature.
type ContextConfiguration struct {
	Languages []string `mapstructure:"languages"`
}

// OutputConfiguration routes the diagnostic output channel.
type OutputConfiguration struct {
	ChannelFile string `mapstructure:"channel_file"`
}

// TokenConfiguration controls token counting defaults.
type TokenConfiguration struct {
	Enabled *bool  `mapstructure:"enabled"`
	Model   string `mapstructure:"model"`
}

// BridgeConfiguration controls the HTTP bridge.
type BridgeConfiguration struct {
	Address string `mapstructure:"address"`
}

// LoadApplicationConfiguration loads configuration from global and local files.
func LoadApplicationConfiguration(options LoadOptions) (ApplicationConfiguration, error) {
	workingDirectory := options.WorkingDirectory
	if workingDirectory == "" {
		currentDirectory, err := os.Getwd()
		if err != nil {
			return ApplicationConfiguration{}, fmt.Errorf("determine working directory: %w", err)
		}
		workingDirectory = currentDirectory
	}

	var merged ApplicationConfiguration

	if homeDirectory, err := os.UserHomeDir(); err == nil && homeDirectory != "" {
		globalPath := filepath.Join(homeDirectory, GlobalConfigDirectoryName, ConfigFileName)
		globalConfig, loadErr := loadConfigurationFromPath(globalPath)
		if loadErr != nil {
			return ApplicationConfiguration{}, loadErr
		}
		merged = merged.Merge(globalConfig)
	}

	localPath, resolveErr := resolveLocalConfigPath(workingDirectory, options.ExplicitFilePath)
	if resolveErr != nil {
		return ApplicationConfiguration{}, resolveErr
	}
	if localPath != "" {
		localConfig, loadErr := loadConfigurationFromPath(localPath)
		if loadErr != nil {
			return ApplicationConfiguration{}, loadErr
		}
		merged = merged.Merge(localConfig)
	}

	return merged, nil
}

func resolveLocalConfigPath(workingDirectory, explicitPath string) (string, error) {
	if explicitPath != "" {
		if filepath.IsAbs(explicitPath) {
			return explicitPath, nil
		}
		if workingDirectory == "" {
			absolute, err := filepath.Abs(explicitPath)
			if err != nil {
				return "", fmt.Errorf("resolve configuration path %s: %w", explicitPath, err)
			}
			return absolute, nil
		}
		return filepath.Join(workingDirectory, explicitPath), nil
	}
	if workingDirectory == "" {
		return "", nil
	}
	return filepath.Join(workingDirectory, LocalConfigFileName), nil
}

func loadConfigurationFromPath(path string) (ApplicationConfiguration, error) {
	if path == "" {
		return ApplicationConfiguration{}, nil
	}
	info, statErr := os.Stat(path)
	if statErr != nil {
		if os.IsNotExist(statErr) {
			return ApplicationConfiguration{}, nil
		}
		return ApplicationConfiguration{}, fmt.Errorf("stat configuration %s: %w", path, statErr)
	}
	if info.IsDir() {
		return ApplicationConfiguration{}, fmt.Errorf("configuration path %s is a directory", path)
	}

	reader := viper.New()
	reader.SetConfigFile(path)
	reader.SetConfigType("yaml")
	if readErr := reader.ReadInConfig(); readErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf("read configuration from %s: %w", path, readErr)
	}
	var config ApplicationConfiguration
	if decodeErr := reader.Unmarshal(&config); decodeErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf("decode configuration from %s: %w", path, decodeErr)
	}
	return config, nil
}

// Merge overlays override onto the receiver returning the combined configuration.
func (config ApplicationConfiguration) Merge(override ApplicationConfiguration) ApplicationConfiguration {
	result := config
	if override.Chat.Command != "" {
		result.Chat.Command = override.Chat.Command
	}
	result.Agent = result.Agent.merge(override.Agent)
	if len(override.Context.Languages) > 0 {
		result.Context.Languages = append([]string{}, override.Context.Languages...)
	}
	if override.Output.ChannelFile != "" {
		result.Output.ChannelFile = override.Output.ChannelFile
	}
	result.Tokens = result.Tokens.merge(override.Tokens)
	if override.Bridge.Address != "" {
		result.Bridge.Address = override.Bridge.Address
	}
	return result
}

func (config AgentConfiguration) merge(override AgentConfiguration) AgentConfiguration {
	result := config
	if override.Executable != "" {
		result.Executable = override.Executable
	}
	if override.Sandbox != "" {
		result.Sandbox = override.Sandbox
	}
	if override.SkipGitRepoCheck != nil {
		result.SkipGitRepoCheck = cloneBool(override.SkipGitRepoCheck)
	}
	if override.MaxOutputBytes != nil {
		result.MaxOutputBytes = cloneInt64(override.MaxOutputBytes)
	}
	if override.ProbeTimeoutSeconds != nil {
		result.ProbeTimeoutSeconds = cloneInt(override.ProbeTimeoutSeconds)
	}
	return result
}

func (config TokenConfiguration) merge(override TokenConfiguration) TokenConfiguration {
	result := config
	if override.Enabled != nil {
		result.Enabled = cloneBool(override.Enabled)
	}
	if override.Model != "" {
		result.Model = override.Model
	}
	return result
}

// ChatCommand returns the chat command line.
func (config ApplicationConfiguration) ChatCommand() string {
	if strings.TrimSpace(config.Chat.Command) == "" {
		return defaultChatCommand
	}
	return config.Chat.Command
}

// AgentExecutable returns the configured agent path or name.
func (config ApplicationConfiguration) AgentExecutable() string {
	if strings.TrimSpace(config.Agent.Executable) == "" {
		return defaultAgentExecutable
	}
	return config.Agent.Executable
}

// AgentSandbox returns the sandbox scope passed to the agent.
func (config ApplicationConfiguration) AgentSandbox() string {
	if strings.TrimSpace(config.Agent.Sandbox) == "" {
		return defaultSandbox
	}
	return config.Agent.Sandbox
}

// MaxOutputBytes returns the per-stream bound on captured agent output.
func (config ApplicationConfiguration) MaxOutputBytes() int64 {
	if config.Agent.MaxOutputBytes == nil || *config.Agent.MaxOutputBytes <= 0 {
		return defaultMaxOutputBytes
	}
	return *config.Agent.MaxOutputBytes
}

// ProbeTimeout returns the timeout of the agent version probe.
func (config ApplicationConfiguration) ProbeTimeout() time.Duration {
	if config.Agent.ProbeTimeoutSeconds == nil || *config.Agent.ProbeTimeoutSeconds <= 0 {
		return defaultProbeTimeoutSeconds * time.Second
	}
	return time.Duration(*config.Agent.ProbeTimeoutSeconds) * time.Second
}

// ContextLanguages returns the languages that receive a context line.
func (config ApplicationConfiguration) ContextLanguages() []string {
	if len(config.Context.Languages) == 0 {
		return []string{defaultContextLanguage}
	}
	return append([]string{}, config.Context.Languages...)
}

// TokensEnabled reports whether prompt token estimates are written to the output channel.
func (config ApplicationConfiguration) TokensEnabled() bool {
	return config.Tokens.Enabled == nil || *config.Tokens.Enabled
}

// TokenModel returns the model used for token estimates.
func (config ApplicationConfiguration) TokenModel() string {
	if strings.TrimSpace(config.Tokens.Model) == "" {
		return defaultTokenModel
	}
	return config.Tokens.Model
}

// BridgeAddress returns the listen address of the HTTP bridge.
func (config ApplicationConfiguration) BridgeAddress() string {
	if strings.TrimSpace(config.Bridge.Address) == "" {
		return defaultBridgeAddress
	}
	return config.Bridge.Address
}

func cloneBool(value *bool) *bool {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}

func cloneInt(value *int) *int {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}

func cloneInt64(value *int64) *int64 {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}
