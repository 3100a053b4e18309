package cmd

import (
	"errors"
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "interview-evaluator"
)

type Config struct {
	InputDir      string               `mapstructure:"input-dir"`
	OutputDir     string               `mapstructure:"output-dir"`
	JobsDir       string               `mapstructure:"jobs-dir"`
	Mode          string               `mapstructure:"mode"`
	FFmpegPath    string               `mapstructure:"ffmpeg-path"`
	Frames        *FramesConfig        `mapstructure:"frames"`
	Transcription *TranscriptionConfig `mapstructure:"transcription"`
	Summary       *SummaryConfig       `mapstructure:"summary"`
	AI            *AIConfig            `mapstructure:"ai"`
}

type FramesConfig struct {
	Enabled  bool `mapstructure:"enabled"`
	Interval int  `mapstructure:"interval"`
}

type TranscriptionConfig struct {
	Model    string `mapstructure:"model"`
	Language string `mapstructure:"language"`
}

type SummaryConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type AIConfig struct {
	Provider string        `mapstructure:"provider"`
	Groq     *GroqConfig   `mapstructure:"groq"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GroqConfig struct {
	APIKeyFile   string  `mapstructure:"api-key-file"`
	Model        string  `mapstructure:"model"`
	MaxTokens    int     `mapstructure:"max-tokens"`
	Temperature  float64 `mapstructure:"temperature"`
	MaxLogLength int     `mapstructure:"max-log-length"`
}

type GeminiConfig struct {
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "interview-evaluator transcribes recorded interview videos and scores the answers with an LLM judge",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// API keys usually live in a local .env file; a missing file is fine.
	_ = godotenv.Load()

	if err := viper.BindEnv("ai.groq.api-key-file", "GROQ_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GROQ_API_KEY_FILE environment variable: %v", err)
	}
	if err := viper.BindEnv("ai.gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is interview-evaluator.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// Config is needed only for the run command.
	if runCmd.CalledAs() == "" {
		return
	}

	viper.SetDefault("input-dir", "input")
	viper.SetDefault("output-dir", "output")
	viper.SetDefault("jobs-dir", "data/job_positions")
	viper.SetDefault("mode", ModePerQuestion)
	viper.SetDefault("frames.interval", 60)
	viper.SetDefault("transcription.model", "whisper-large-v3")
	viper.SetDefault("ai.provider", "groq")
	viper.SetDefault("ai.groq.max-tokens", 1024)
	viper.SetDefault("ai.groq.temperature", 0.3)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
	}

	// Defaults make the tool runnable without a config file, but a file
	// that exists and fails to parse is fatal.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}
