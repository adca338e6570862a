// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/mdconvert/internal/caption"
	"github.com/pdiddy/mdconvert/internal/container"
	"github.com/pdiddy/mdconvert/internal/convert"
	"github.com/pdiddy/mdconvert/internal/legacy"
	"github.com/pdiddy/mdconvert/internal/notify"
	"github.com/pdiddy/mdconvert/internal/report"
	"github.com/pdiddy/mdconvert/pkg/types"
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert every document under an input directory to Markdown",
	Long: `Convert walks --input recursively and writes one Markdown file per
supported document into --output, keeping the relative directory layout.
Unsupported files are skipped and logged. Legacy .xls workbooks are upgraded
to a sibling .xlsx first.

Backends:
  markitdown      markitdown container image via docker or podman (default)
  markitdown-cli  locally installed markitdown binary
  native          in-process Go converters (no Word or PowerPoint support)

With --llm, JPEG and PNG images get an LLM-written description appended. The
API key comes from --api-key, MDCONVERT_LLM_API_KEY, the config file, or
.secrets/openai-api-key, in that order.`,
	RunE: runConvert,
}

func init() {
	f := convertCmd.Flags()
	f.String("input", "", "directory to convert (walked recursively)")
	f.String("output", "", "directory that receives the Markdown tree")
	f.String("backend", string(types.BackendMarkitdown), "conversion backend: markitdown, markitdown-cli, or native")
	f.String("log-dir", report.DefaultLogDir, "directory for conversion log files")
	f.Bool("llm", false, "caption images with an LLM")
	f.String("api-key", "", "API key for LLM captioning")
	f.String("model", caption.DefaultModel, "LLM model used for image captions")
	f.Bool("notify", false, "send a desktop notification when the run finishes")

	for key, flag := range map[string]string{
		keyInput:      "input",
		keyOutput:     "output",
		keyBackend:    "backend",
		keyLogDir:     "log-dir",
		keyLLMEnabled: "llm",
		keyLLMAPIKey:  "api-key",
		keyLLMModel:   "model",
		keyNotify:     "notify",
	} {
		_ = viper.BindPFlag(key, f.Lookup(flag))
	}

	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper(), loadedSecrets)
	if err != nil {
		return err
	}

	logger := slog.Default().With("run_id", uuid.NewString())

	// The log file exists before validation so that pre-run errors are
	// recorded too.
	logFile, err := report.CreateLogFile(cfg.LogDir, time.Now())
	if err != nil {
		return err
	}
	defer logFile.Close()
	logger.Debug("logging run", "path", logFile.Path(), "backend", cfg.Backend)

	// Report lines and the bar usually share a terminal; the guard keeps
	// them on separate lines.
	progress := report.NewTerminalProgress(cmd.ErrOrStderr(), "converting")
	runLog := &report.RunLog{}
	reporter := report.NewReporter(logger,
		runLog,
		logFile,
		progress.Guard(report.WriterSink{W: cmd.OutOrStdout()}),
	)

	session := &convert.Session{
		Factory:  converterFactory(cfg),
		Upgrader: legacy.NewUpgrader(),
		Reporter: reporter,
		Progress: progress,
	}
	if cfg.Notify {
		session.Notifier = notify.NewDesktopNotifier()
	}

	req := convert.Request{
		InputDir:  cfg.InputDir,
		OutputDir: cfg.OutputDir,
		UseLLM:    cfg.LLM.Enabled,
	}
	if req.UseLLM {
		req.APIKey = cfg.LLM.APIKey
	}

	result, err := session.Execute(cmd.Context(), req)
	if err != nil {
		return err
	}
	logger.Info("conversion finished",
		"converted", result.Converted,
		"skipped", result.Skipped,
		"failed", result.Failed,
		"log", logFile.Path(),
	)
	return nil
}

// converterFactory builds the converter for cfg.Backend, wrapped with image
// captioning when the request enables it.
func converterFactory(cfg types.ConversionConfig) convert.AdapterFactory {
	return func(ctx context.Context, req convert.Request) (convert.Converter, error) {
		conv, err := newBackend(cfg.Backend)
		if err != nil {
			return nil, err
		}
		if !req.UseLLM {
			return conv, nil
		}

		llm := cfg.LLM
		llm.APIKey = req.APIKey
		capt, err := caption.NewOpenAICaptioner(llm)
		if err != nil {
			return nil, err
		}
		slog.Debug("image captioning enabled", "model", capt.Model)
		return &convert.Captioning{Next: conv, Captioner: capt}, nil
	}
}

func newBackend(backend types.ConversionBackend) (convert.Converter, error) {
	switch backend {
	case types.BackendMarkitdown:
		rt, err := container.DetectRuntime()
		if err != nil {
			return nil, err
		}
		slog.Debug("using container runtime", "runtime", rt.Name())
		m, err := convert.NewMarkitdownConverter(rt, convert.DefaultMarkitdownImage)
		if err != nil {
			return nil, err
		}
		return m, nil
	case types.BackendMarkitdownCLI:
		c, err := convert.NewCLIConverter("")
		if err != nil {
			return nil, err
		}
		return c, nil
	case types.BackendNative:
		return convert.NewNativeConverter(), nil
	default:
		return nil, fmt.Errorf("unknown backend %q (want markitdown, markitdown-cli, or native)", backend)
	}
}
