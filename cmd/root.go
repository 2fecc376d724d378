package cmd

import (
	"log"

	"github.com/obrienhr/cv-triage/internal/notify"
	"github.com/obrienhr/cv-triage/internal/survey"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "cv-triage"
)

type Config struct {
	Input     *InputConfig     `mapstructure:"input"`
	Output    *OutputConfig    `mapstructure:"output"`
	Screening *ScreeningConfig `mapstructure:"screening"`
	Scoring   *ScoringConfig   `mapstructure:"scoring"`
	Survey    *SurveyConfig    `mapstructure:"survey"`
	Notify    *NotifyConfig    `mapstructure:"notify"`
}

type InputConfig struct {
	Dir          string `mapstructure:"dir"`
	ProcessedDir string `mapstructure:"processed-dir"`
}

type OutputConfig struct {
	Dir string `mapstructure:"dir"`
}

type ScreeningConfig struct {
	Keywords     []string `mapstructure:"keywords"`
	KeywordsFile string   `mapstructure:"keywords-file"`
	Threshold    int      `mapstructure:"threshold"`
}

type ScoringConfig struct {
	Weights      map[string]any `mapstructure:"weights"`
	HighCutoff   int            `mapstructure:"high-cutoff"`
	MediumCutoff int            `mapstructure:"medium-cutoff"`
}

type SurveyConfig struct {
	ResponsesFile string              `mapstructure:"responses-file"`
	ResponseRate  *float64            `mapstructure:"response-rate"`
	InterestRate  *float64            `mapstructure:"interest-rate"`
	Seed          int64               `mapstructure:"seed"`
	Distribution  survey.Distribution `mapstructure:"distribution"`
}

type NotifyConfig struct {
	Transport string             `mapstructure:"transport"`
	SMTP      *notify.SMTPConfig `mapstructure:"smtp"`

	SurveyURL     string `mapstructure:"survey-url"`
	InterviewDate string `mapstructure:"interview-date"`
	InterviewTime string `mapstructure:"interview-time"`
	Location      string `mapstructure:"location"`

	SurveySubject    string `mapstructure:"survey-subject"`
	SurveyBody       string `mapstructure:"survey-body"`
	InterviewSubject string `mapstructure:"interview-subject"`
	InterviewBody    string `mapstructure:"interview-body"`

	MaxRetries     int    `mapstructure:"max-retries"`
	BackoffSeconds int    `mapstructure:"backoff-seconds"`
	TimeoutSeconds int    `mapstructure:"timeout-seconds"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "cv-triage is a cli for screening, scoring and notifying resume candidates from an inbound folder",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is cv-triage.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// Config needed only for the processing commands.
	if runCmd.CalledAs() == "" && watchCmd.CalledAs() == "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)

		// We can't proceed if an explicitly requested config file parsed
		// with error.
		if err := viper.ReadInConfig(); err != nil {
			log.Fatal(err)
		}
		return
	}

	viper.AddConfigPath(".")
	viper.SetConfigName(app + ".yaml")

	// The default config file is optional: every section has a built-in
	// fallback.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
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

	if config == nil {
		config = &Config{}
	}

	return config, nil
}
