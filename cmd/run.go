package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"interview-evaluator/internal/ai"
	"interview-evaluator/internal/ai/gemini"
	"interview-evaluator/internal/ai/groq"
	"interview-evaluator/internal/evaluation"
	"interview-evaluator/internal/logger"
	"interview-evaluator/internal/media"
	"interview-evaluator/internal/secrets"
	"interview-evaluator/internal/transcription"
)

const (
	// ModePerQuestion evaluates one question per video clip, merging
	// results incrementally into the candidate's record.
	ModePerQuestion = "per-question"
	// ModeFullTranscript evaluates the whole transcript against every
	// question of the job position.
	ModeFullTranscript = "full-transcript"
)

var videoExtensions = map[string]bool{
	".mp4": true,
	".avi": true,
	".mov": true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Process all interview videos in the input directory",
	Run: func(_ *cobra.Command, _ []string) {
		run()
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Bool("skip-frames", false, "do not capture video frames even if enabled in the config")

	viper.BindPFlag("skip-frames", runCmd.Flags().Lookup("skip-frames"))
}

// run is the main command for the cli.
func run() {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the interview-evaluator", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	if config == nil {
		logger.Fatal("config is required")
	}

	mode := strings.TrimSpace(config.Mode)
	if mode != ModePerQuestion && mode != ModeFullTranscript {
		logger.Fatal("invalid mode",
			zap.String("mode", mode),
			zap.Strings("supported", []string{ModePerQuestion, ModeFullTranscript}),
		)
	}

	videos, err := listVideos(config.InputDir)
	if err != nil {
		logger.Fatal("listing input videos", zap.Error(err))
	}

	if len(videos) == 0 {
		logger.Info("exiting",
			zap.String("reason", "no videos found in the input directory"),
			zap.String("input_dir", config.InputDir),
			zap.String("hint", "add .mp4/.avi/.mov files named like candidato_joao_frontend_q1.mp4"),
		)
		return
	}

	ffmpeg, err := media.New(config.FFmpegPath, logger)
	if err != nil {
		logger.Fatal("resolving ffmpeg", zap.Error(err))
	}

	groqClient, err := newGroqClient(config)
	if err != nil {
		logger.Fatal(
			"creating groq client",
			zap.Error(err),
			zap.String("hint", "set GROQ_API_KEY (or GROQ_API_KEY_FILE) to enable transcription"),
		)
	}

	generator, err := newGenerator(ctx, config, groqClient)
	if err != nil {
		logger.Fatal("creating ai generator", zap.Error(err))
	}

	providerName := "groq"
	if config.AI != nil && strings.TrimSpace(config.AI.Provider) != "" {
		providerName = strings.ToLower(strings.TrimSpace(config.AI.Provider))
	}
	judgeLogger := newJudgeLogger(logger, providerName, generator.Model())

	transcriber := transcription.New(groqClient, transcriptionConfig(config), logger)

	maxLogLen := 0
	if config.AI != nil && config.AI.Groq != nil {
		maxLogLen = config.AI.Groq.MaxLogLength
	}

	evaluator := evaluation.NewInterviewEvaluator(
		evaluation.NewCatalog(config.JobsDir),
		evaluation.NewAnswerEvaluator(generator, judgeLogger, maxLogLen),
		evaluation.NewStore(config.OutputDir),
		logger,
	)

	var summarizer *transcription.Summarizer
	if config.Summary != nil && config.Summary.Enabled {
		summarizer = transcription.NewSummarizer(groqClient, logger)
	}

	processed := 0
	for _, video := range videos {
		if processVideo(ctx, logger, config, mode, ffmpeg, transcriber, summarizer, evaluator, video) {
			processed++
		}
	}

	logger.Info("batch finished",
		zap.Int("videos_total", len(videos)),
		zap.Int("videos_evaluated", processed),
	)
}

// processVideo runs the whole pipeline for one video. Every failure is
// terminal for this video only; the batch moves on.
func processVideo(
	ctx context.Context,
	zlog *zap.Logger,
	config *Config,
	mode string,
	ffmpeg *media.FFmpeg,
	transcriber *transcription.Transcriber,
	summarizer *transcription.Summarizer,
	evaluator *evaluation.InterviewEvaluator,
	videoPath string,
) bool {
	name := filepath.Base(videoPath)
	zlog.Info("processing video", zap.String("video", name))

	audioPath, err := ffmpeg.ExtractAudio(ctx, videoPath, config.OutputDir)
	if err != nil {
		zlog.Error("extracting audio", zap.String("video", name), zap.Error(err))
		return false
	}
	defer ffmpeg.Cleanup(audioPath)

	transcript, err := transcriber.Transcribe(ctx, audioPath)
	if err != nil {
		zlog.Error("transcribing audio", zap.String("video", name), zap.Error(err))
		return false
	}

	if path, err := transcriber.SaveTranscript(transcript, config.OutputDir); err != nil {
		zlog.Warn("saving transcript", zap.String("video", name), zap.Error(err))
	} else {
		zlog.Info("transcript saved", zap.String("path", path))
	}

	if framesEnabled(config) {
		frames, err := ffmpeg.CaptureFrames(ctx, videoPath, config.OutputDir, config.Frames.Interval)
		if err != nil {
			zlog.Warn("capturing frames", zap.String("video", name), zap.Error(err))
		} else {
			zlog.Info("frames captured", zap.Int("count", len(frames)))
		}
	}

	if summarizer != nil {
		if summary, err := summarizer.Summarize(ctx, transcript); err != nil {
			zlog.Warn("summarizing transcript", zap.String("video", name), zap.Error(err))
		} else if path, err := saveSummary(config.OutputDir, name, summary); err != nil {
			zlog.Warn("saving summary", zap.String("video", name), zap.Error(err))
		} else {
			zlog.Info("summary saved", zap.String("path", path))
		}
	}

	var recordPath string
	switch mode {
	case ModeFullTranscript:
		recordPath, err = evaluator.EvaluateFullTranscript(ctx, name, transcript)
	default:
		recordPath, err = evaluator.EvaluateInterview(ctx, name, transcript)
	}
	if err != nil {
		zlog.Error("evaluating interview", zap.String("video", name), zap.Error(err))
		return false
	}

	zlog.Info("evaluation saved", zap.String("video", name), zap.String("path", recordPath))
	return true
}

func listVideos(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading input directory %s: %w", dir, err)
	}

	videos := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if videoExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			videos = append(videos, filepath.Join(dir, entry.Name()))
		}
	}

	return videos, nil
}

func framesEnabled(config *Config) bool {
	if viper.GetBool("skip-frames") {
		return false
	}
	return config.Frames != nil && config.Frames.Enabled && config.Frames.Interval > 0
}

func transcriptionConfig(config *Config) transcription.Config {
	cfg := transcription.Config{}
	if config.Transcription != nil {
		cfg.Model = config.Transcription.Model
		cfg.Language = config.Transcription.Language
	}
	return cfg
}

func saveSummary(outDir, videoName, summary string) (string, error) {
	base := strings.TrimSuffix(videoName, filepath.Ext(videoName))
	path := filepath.Join(outDir, "summary_"+base+".txt")
	if err := os.WriteFile(path, []byte(summary+"\n"), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func newJudgeLogger(base *zap.Logger, provider, model string) *zap.Logger {
	return logger.WithProvider(base, provider, model)
}

func newGroqClient(config *Config) (*groq.Client, error) {
	groqCfg := &GroqConfig{}
	if config.AI != nil && config.AI.Groq != nil {
		groqCfg = config.AI.Groq
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "groq api key",
		File: groqCfg.APIKeyFile,
		Env:  "GROQ_API_KEY",
	})
	if err != nil {
		return nil, err
	}

	return groq.NewClient(groq.Config{
		APIKey:      apiKey,
		Model:       groqCfg.Model,
		Temperature: groqCfg.Temperature,
		MaxTokens:   groqCfg.MaxTokens,
	})
}

// newGenerator selects the judge backend. Transcription always runs on
// the groq client; only the judging step is provider-selectable.
func newGenerator(ctx context.Context, config *Config, groqClient *groq.Client) (ai.Generator, error) {
	provider := "groq"
	if config.AI != nil {
		provider = strings.TrimSpace(strings.ToLower(config.AI.Provider))
	}

	switch provider {
	case "", "groq":
		return groqClient, nil
	case "gemini":
		if config.AI == nil || config.AI.Gemini == nil {
			return nil, fmt.Errorf("gemini configuration is required when ai provider is gemini")
		}

		apiKey, err := secrets.Load(secrets.Source{
			Name: "gemini api key",
			File: config.AI.Gemini.APIKeyFile,
			Env:  "GEMINI_API_KEY",
		})
		if err != nil {
			return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY)", err)
		}

		groqCfg := config.AI.Groq
		temperature, maxTokens := 0.3, 1024
		if groqCfg != nil {
			temperature, maxTokens = groqCfg.Temperature, groqCfg.MaxTokens
		}

		return gemini.NewGenerator(ctx, gemini.Config{
			APIKey:      apiKey,
			Model:       config.AI.Gemini.Model,
			Temperature: temperature,
			MaxTokens:   maxTokens,
		})
	default:
		return nil, fmt.Errorf("unsupported ai provider: %s", provider)
	}
}
