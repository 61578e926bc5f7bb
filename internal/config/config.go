// Package config provides the configuration schema and loader for the
// Auriga voice assistant.
package config

// LogLevel controls log verbosity.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// HotkeyMode selects how the dictation hotkey behaves.
type HotkeyMode string

const (
	// HotkeyToggle starts listening on one press and stops on the next.
	HotkeyToggle HotkeyMode = "toggle"

	// HotkeyHold listens only while the key is held down.
	HotkeyHold HotkeyMode = "hold"
)

// IsValid reports whether m is a recognised hotkey mode.
func (m HotkeyMode) IsValid() bool {
	return m == HotkeyToggle || m == HotkeyHold
}

// Config is the root configuration structure for Auriga.
// It is typically loaded from a YAML file using [Load] or [LoadFromReader].
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Languages []string        `yaml:"languages"`
	Providers ProvidersConfig `yaml:"providers"`
	Repair    RepairConfig    `yaml:"repair"`
	Matching  MatchingConfig  `yaml:"matching"`
	Hotkey    HotkeyConfig    `yaml:"hotkey"`
	Commands  []Command       `yaml:"commands"`
}

// ServerConfig holds logging and metrics settings.
type ServerConfig struct {
	// MetricsAddr is the TCP address the Prometheus /metrics endpoint
	// listens on (e.g., ":9090"). Empty disables the endpoint.
	MetricsAddr string `yaml:"metrics_addr"`

	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`
}

// ProvidersConfig declares the external collaborators of the pipeline.
type ProvidersConfig struct {
	STT        STTConfig        `yaml:"stt"`
	Embeddings EmbeddingsConfig `yaml:"embeddings"`
	Grammar    GrammarConfig    `yaml:"grammar"`
}

// STTConfig configures the local speech-to-text model.
type STTConfig struct {
	// ModelPath is the path to the whisper.cpp model file (GGML format).
	ModelPath string `yaml:"model_path"`

	// Language is the transcription language hint (e.g., "fr").
	Language string `yaml:"language"`
}

// EmbeddingsConfig selects the embedding backends. The primary is used for
// every encode; the optional fallback takes over when the primary's circuit
// breaker is open.
type EmbeddingsConfig struct {
	Primary  ProviderEntry  `yaml:"primary"`
	Fallback *ProviderEntry `yaml:"fallback"`
}

// ProviderEntry is the common configuration block shared by embedding
// backends.
type ProviderEntry struct {
	// Name selects the backend implementation ("ollama" or "openai").
	Name string `yaml:"name"`

	// APIKey authenticates against hosted backends.
	APIKey string `yaml:"api_key"`

	// BaseURL overrides the backend's default endpoint.
	BaseURL string `yaml:"base_url"`

	// Model selects a specific embedding model (e.g., "nomic-embed-text").
	Model string `yaml:"model"`
}

// GrammarConfig points at a LanguageTool-compatible correction service.
type GrammarConfig struct {
	// BaseURL is the service root (e.g., "http://localhost:8081").
	// Empty disables grammar correction.
	BaseURL string `yaml:"base_url"`

	// Language is the check language code (e.g., "fr" or "fr-FR").
	Language string `yaml:"language"`
}

// RepairConfig tunes the fragment-merge repair pass.
type RepairConfig struct {
	// DictionaryDir is where downloaded word lists are cached.
	DictionaryDir string `yaml:"dictionary_dir"`

	// MaxMerge is the largest number of adjacent fragments considered for
	// a single merge.
	MaxMerge int `yaml:"max_merge"`
}

// MatchingConfig tunes phrase matching.
type MatchingConfig struct {
	// WakeThreshold is the similarity a wake-word variant must strictly
	// exceed.
	WakeThreshold float32 `yaml:"wake_threshold"`

	// CommandThreshold is the similarity a command trigger must strictly
	// exceed.
	CommandThreshold float32 `yaml:"command_threshold"`

	// PlausibilityTemplates overrides the sentence frames used by the
	// word-plausibility probe. Each must contain exactly one %s
	// placeholder; at least two are required. Empty keeps the built-in
	// set.
	PlausibilityTemplates []string `yaml:"plausibility_templates"`
}

// HotkeyConfig configures the global dictation hotkey.
type HotkeyConfig struct {
	// Key is the key name watched for (e.g., "f9").
	Key string `yaml:"key"`

	// Mode selects toggle or push-to-talk behaviour.
	Mode HotkeyMode `yaml:"mode"`
}

// Command maps a spoken trigger phrase to an action. Actions starting with
// "cmd:" run as shell commands; anything else is typed as keystrokes.
type Command struct {
	Trigger string `yaml:"trigger"`
	Action  string `yaml:"action"`
}

// Triggers returns the trigger phrases of cmds in declaration order.
func Triggers(cmds []Command) []string {
	out := make([]string, len(cmds))
	for i, c := range cmds {
		out[i] = c.Trigger
	}
	return out
}
