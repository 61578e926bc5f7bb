// Command auriga is the entry point for the Auriga voice dictation
// assistant: it captures microphone audio on a hotkey, transcribes it with
// a local whisper.cpp model, repairs the transcription, and routes it to
// commands or dictation.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/auriga-voice/auriga/internal/actions"
	"github.com/auriga-voice/auriga/internal/app"
	"github.com/auriga-voice/auriga/internal/config"
	"github.com/auriga-voice/auriga/internal/dict"
	"github.com/auriga-voice/auriga/internal/grammar"
	"github.com/auriga-voice/auriga/internal/hotkey"
	"github.com/auriga-voice/auriga/internal/observe"
	"github.com/auriga-voice/auriga/internal/phrasematch"
	"github.com/auriga-voice/auriga/internal/resilience"
	"github.com/auriga-voice/auriga/internal/semantic"
	"github.com/auriga-voice/auriga/internal/textrepair"
	"github.com/auriga-voice/auriga/pkg/audio"
	"github.com/auriga-voice/auriga/pkg/provider/embeddings"
	ollamaembed "github.com/auriga-voice/auriga/pkg/provider/embeddings/ollama"
	oaembed "github.com/auriga-voice/auriga/pkg/provider/embeddings/openai"
	"github.com/auriga-voice/auriga/pkg/provider/stt/whispercpp"
)

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	// ── Load configuration ────────────────────────────────────────────────────
	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "auriga: config file %q not found — copy configs/example.yaml to get started\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "auriga: %v\n", err)
		}
		return 1
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	slog.SetDefault(newLogger(cfg.Server.LogLevel))

	slog.Info("auriga starting",
		"config", *configPath,
		"languages", cfg.Languages,
		"log_level", cfg.Server.LogLevel,
	)

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Metrics ───────────────────────────────────────────────────────────────
	otelShutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{ServiceName: "auriga"})
	if err != nil {
		slog.Error("failed to initialise metrics provider", "err", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelShutdown(shutdownCtx); err != nil {
			slog.Warn("metrics shutdown error", "err", err)
		}
	}()
	if cfg.Server.MetricsAddr != "" {
		go serveMetrics(cfg.Server.MetricsAddr)
	}

	// ── Dictionaries ──────────────────────────────────────────────────────────
	loader := dict.NewLoader(dict.WithCacheDir(cfg.Repair.DictionaryDir))
	dicts, err := loader.Load(ctx, cfg.Languages)
	if err != nil {
		slog.Error("failed to load dictionaries", "err", err)
		return 1
	}

	// ── Embeddings and semantic oracle ────────────────────────────────────────
	embedProvider, err := buildEmbeddings(cfg)
	if err != nil {
		slog.Error("failed to build embeddings provider", "err", err)
		return 1
	}
	oracleOpts := []semantic.Option{semantic.WithMetrics(observe.DefaultMetrics())}
	if tmpls := cfg.Matching.PlausibilityTemplates; len(tmpls) > 0 {
		oracleOpts = append(oracleOpts, semantic.WithTemplates(tmpls))
	}
	oracle, err := semantic.New(embedProvider, oracleOpts...)
	if err != nil {
		slog.Error("failed to build semantic oracle", "err", err)
		return 1
	}

	// ── Matchers ──────────────────────────────────────────────────────────────
	wakeDetector := phrasematch.NewWakeDetector(
		phrasematch.New(oracle, phrasematch.WithThreshold(cfg.Matching.WakeThreshold)))
	commandMatcher := phrasematch.New(oracle, phrasematch.WithThreshold(cfg.Matching.CommandThreshold))

	if err := wakeDetector.Warm(ctx); err != nil {
		slog.Warn("failed to precompute wake-word embeddings", "err", err)
	}
	if triggers := config.Triggers(cfg.Commands); len(triggers) > 0 {
		if err := commandMatcher.Warm(ctx, triggers); err != nil {
			slog.Warn("failed to precompute trigger embeddings", "err", err)
		}
	}

	// ── Grammar correction (optional) ─────────────────────────────────────────
	var corrector app.Corrector
	if cfg.Providers.Grammar.BaseURL != "" {
		client := grammar.NewClient(cfg.Providers.Grammar.BaseURL,
			grammar.WithLanguage(cfg.Providers.Grammar.Language))
		if err := client.WaitReady(ctx); err != nil {
			slog.Warn("grammar service unavailable, continuing without correction", "err", err)
		} else {
			corrector = client
		}
	}

	// ── Speech to text ────────────────────────────────────────────────────────
	transcriber, err := whispercpp.New(cfg.Providers.STT.ModelPath,
		whispercpp.WithLanguage(cfg.Providers.STT.Language))
	if err != nil {
		slog.Error("failed to load transcription model", "err", err)
		return 1
	}
	defer transcriber.Close()

	// ── Audio capture ─────────────────────────────────────────────────────────
	recorder, err := audio.NewRecorder()
	if err != nil {
		slog.Error("failed to initialise audio capture", "err", err)
		return 1
	}
	defer recorder.Close()

	// ── Session ───────────────────────────────────────────────────────────────
	session, err := app.NewSession(app.Deps{
		Transcriber: transcriber,
		Grammar:     corrector,
		Repair:      textrepair.NewEngine(dicts, oracle, textrepair.WithMetrics(observe.DefaultMetrics())),
		Wake:        wakeDetector,
		Commands:    commandMatcher,
		CommandList: cfg.Commands,
		Executor:    actions.NewExecutor(),
		Metrics:     observe.DefaultMetrics(),
		MaxMerge:    cfg.Repair.MaxMerge,
	})
	if err != nil {
		slog.Error("failed to initialise session", "err", err)
		return 1
	}

	// ── Hotkey ────────────────────────────────────────────────────────────────
	listener := hotkey.NewListener(cfg.Hotkey)
	go listener.Start()
	defer listener.Stop()

	slog.Info("ready — press the hotkey to dictate, Ctrl+C to shut down",
		"hotkey", cfg.Hotkey.Key, "mode", cfg.Hotkey.Mode)

	if err := session.Run(ctx, recorder, listener.Events()); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("run error", "err", err)
		return 1
	}

	slog.Info("goodbye")
	return 0
}

// buildEmbeddings constructs the configured embedding backend, wrapped in a
// failover chain when a fallback is declared.
func buildEmbeddings(cfg *config.Config) (embeddings.Provider, error) {
	primary, err := buildEmbeddingsEntry(cfg.Providers.Embeddings.Primary)
	if err != nil {
		return nil, fmt.Errorf("primary: %w", err)
	}
	if cfg.Providers.Embeddings.Fallback == nil {
		return primary, nil
	}

	fallback, err := buildEmbeddingsEntry(*cfg.Providers.Embeddings.Fallback)
	if err != nil {
		return nil, fmt.Errorf("fallback: %w", err)
	}
	chain := resilience.NewEmbeddingsFailover(cfg.Providers.Embeddings.Primary.Name, primary,
		resilience.BreakerConfig{})
	chain.AddFallback(cfg.Providers.Embeddings.Fallback.Name, fallback)
	return chain, nil
}

func buildEmbeddingsEntry(entry config.ProviderEntry) (embeddings.Provider, error) {
	switch entry.Name {
	case "ollama":
		return ollamaembed.New(entry.BaseURL, entry.Model)
	case "openai":
		var opts []oaembed.Option
		if entry.BaseURL != "" {
			opts = append(opts, oaembed.WithBaseURL(entry.BaseURL))
		}
		return oaembed.New(entry.APIKey, entry.Model, opts...)
	default:
		return nil, fmt.Errorf("unknown embeddings backend %q (supported: ollama, openai)", entry.Name)
	}
}

// serveMetrics exposes the Prometheus scrape endpoint.
func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	slog.Info("metrics endpoint listening", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		slog.Error("metrics endpoint failed", "err", err)
	}
}

// newLogger builds the process-wide text logger at the configured level.
func newLogger(level config.LogLevel) *slog.Logger {
	var lvl slog.Level
	switch level {
	case config.LogDebug:
		lvl = slog.LevelDebug
	case config.LogWarn:
		lvl = slog.LevelWarn
	case config.LogError:
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
