package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/auriga-voice/auriga/internal/semantic"
)

// validEmbeddingBackends lists the known embedding backend names. Unknown
// names are warned about rather than rejected so new backends can be tried
// without a code change here.
var validEmbeddingBackends = []string{"ollama", "openai"}

// Load reads the YAML configuration file at path and returns a validated
// [Config]. It is a convenience wrapper around [LoadFromReader].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r, fills defaults, and
// validates the result. Useful in tests where configs are constructed from
// string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	applyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyDefaults fills unset fields with working defaults.
func applyDefaults(cfg *Config) {
	if len(cfg.Languages) == 0 {
		cfg.Languages = []string{"fr"}
	}
	if cfg.Server.LogLevel == "" {
		cfg.Server.LogLevel = LogInfo
	}
	if cfg.Providers.STT.Language == "" {
		cfg.Providers.STT.Language = cfg.Languages[0]
	}
	if cfg.Providers.Grammar.Language == "" {
		cfg.Providers.Grammar.Language = cfg.Languages[0]
	}
	if cfg.Repair.DictionaryDir == "" {
		cfg.Repair.DictionaryDir = "./dics"
	}
	if cfg.Repair.MaxMerge == 0 {
		cfg.Repair.MaxMerge = 4
	}
	if cfg.Matching.WakeThreshold == 0 {
		cfg.Matching.WakeThreshold = 0.75
	}
	if cfg.Matching.CommandThreshold == 0 {
		cfg.Matching.CommandThreshold = 0.75
	}
	if cfg.Hotkey.Key == "" {
		cfg.Hotkey.Key = "f9"
	}
	if cfg.Hotkey.Mode == "" {
		cfg.Hotkey.Mode = HotkeyToggle
	}
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}

	if cfg.Providers.STT.ModelPath == "" {
		errs = append(errs, errors.New("providers.stt.model_path is required"))
	}

	validateBackendName("providers.embeddings.primary", cfg.Providers.Embeddings.Primary.Name)
	if cfg.Providers.Embeddings.Primary.Name == "" {
		errs = append(errs, errors.New("providers.embeddings.primary.name is required"))
	}
	if fb := cfg.Providers.Embeddings.Fallback; fb != nil {
		validateBackendName("providers.embeddings.fallback", fb.Name)
		if fb.Name == "" {
			errs = append(errs, errors.New("providers.embeddings.fallback.name is required when a fallback block is present"))
		}
	}

	if cfg.Providers.Grammar.BaseURL == "" {
		slog.Warn("providers.grammar.base_url is empty; utterances will not be grammar-corrected")
	}

	if t := cfg.Matching.WakeThreshold; t <= 0 || t >= 1 {
		errs = append(errs, fmt.Errorf("matching.wake_threshold %.2f is out of range (0, 1)", t))
	}
	if t := cfg.Matching.CommandThreshold; t <= 0 || t >= 1 {
		errs = append(errs, fmt.Errorf("matching.command_threshold %.2f is out of range (0, 1)", t))
	}
	if tmpls := cfg.Matching.PlausibilityTemplates; len(tmpls) > 0 {
		if len(tmpls) < 2 {
			errs = append(errs, fmt.Errorf("matching.plausibility_templates needs at least 2 entries, got %d", len(tmpls)))
		}
		if err := semantic.ValidateTemplates(tmpls); err != nil {
			errs = append(errs, fmt.Errorf("matching.plausibility_templates: %w", err))
		}
	}
	if cfg.Repair.MaxMerge < 2 {
		errs = append(errs, fmt.Errorf("repair.max_merge %d is invalid; at least 2 fragments are needed for a merge", cfg.Repair.MaxMerge))
	}
	if cfg.Hotkey.Mode != "" && !cfg.Hotkey.Mode.IsValid() {
		errs = append(errs, fmt.Errorf("hotkey.mode %q is invalid; valid values: toggle, hold", cfg.Hotkey.Mode))
	}

	// Two commands with the same trigger would race to fire on the same
	// utterance, so duplicates are rejected outright. Comparison is
	// case-insensitive because triggers are matched on lowercased text.
	triggersSeen := make(map[string]int, len(cfg.Commands))
	for i, cmd := range cfg.Commands {
		prefix := fmt.Sprintf("commands[%d]", i)
		if cmd.Trigger == "" {
			errs = append(errs, fmt.Errorf("%s.trigger is required", prefix))
		} else {
			key := strings.ToLower(cmd.Trigger)
			if prev, ok := triggersSeen[key]; ok {
				errs = append(errs, fmt.Errorf("%s.trigger %q is a duplicate of commands[%d]", prefix, cmd.Trigger, prev))
			}
			triggersSeen[key] = i
		}
		if cmd.Action == "" {
			errs = append(errs, fmt.Errorf("%s.action is required", prefix))
		}
	}

	return errors.Join(errs...)
}

// validateBackendName logs a warning if name is non-empty and not a known
// embedding backend.
func validateBackendName(field, name string) {
	if name == "" || slices.Contains(validEmbeddingBackends, name) {
		return
	}
	slog.Warn("unknown embedding backend name, may be a typo",
		"field", field,
		"name", name,
		"known", validEmbeddingBackends,
	)
}
