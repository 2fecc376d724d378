package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/obrienhr/cv-triage/internal/candidate"
	"github.com/obrienhr/cv-triage/internal/ingest"
	"github.com/obrienhr/cv-triage/internal/logger"
	"github.com/obrienhr/cv-triage/internal/notify"
	"github.com/obrienhr/cv-triage/internal/pipeline"
	"github.com/obrienhr/cv-triage/internal/report"
	"github.com/obrienhr/cv-triage/internal/scoring"
	"github.com/obrienhr/cv-triage/internal/screening"
	"github.com/obrienhr/cv-triage/internal/survey"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	PromptYes = "Yes"
	PromptNo  = "No"

	defaultInputDir  = "input_cv"
	defaultOutputDir = "output"

	extractedFileName  = "extracted_candidates.csv"
	classifiedFileName = "output_candidates.csv"
	summaryFileName    = "triage_summary.xlsx"

	defaultSurveyURL     = "https://forms.example.com/fast-food-survey"
	defaultLocation      = "Fast Food Restaurant, 123 Main Street"
	defaultInterviewTime = "10:00 AM"
	defaultInterviewLead = 14 * 24 * time.Hour

	stageSurveyInvite    = "survey_invite"
	stageInterviewInvite = "interview_invite"
)

// defaultKeywords gate candidates when neither a keyword list nor a keywords
// file is configured.
var defaultKeywords = []string{
	"attendant", "cook", "fast food", "mcdonald's", "burger king",
	"customer service", "food handling", "cashier", "restaurant",
}

var prompt = promptui.Select{
	Label: "Send survey and interview notifications?",
	Items: []string{PromptYes, PromptNo},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Process pending resumes from the input folder once",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolP("auto-approve", "y", false, "do not ask for confirmation before sending notifications")
}

// run is the main command for the cli.
func run(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the cv-triage", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	deps, err := buildDeps(config, logger)
	if err != nil {
		logger.Fatal("building pipeline dependencies", zap.Error(err))
	}

	folder, err := openFolder(config, logger)
	if err != nil {
		logger.Fatal("preparing input folder", zap.Error(err))
	}

	auto := cmd.Flag("auto-approve").Value.String() == "true"

	if err := executeBatch(ctx, folder, deps, outputPaths(config), auto); err != nil {
		logger.Fatal("batch failed", zap.Error(err))
	}
}

// executeBatch drives one pass over the pending documents: ingest, extract,
// optionally confirm, then screen, survey, classify and notify.
func executeBatch(ctx context.Context, folder *ingest.Folder, deps pipeline.Deps, out outputs, autoApprove bool) error {
	log := deps.Logger

	pending, err := folder.ListPending(ctx)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		log.Info("exiting", zap.String("reason", "no pending documents"))
		return nil
	}

	cs := ingestAll(folder, pending, log)

	screenStages := []pipeline.Stage{pipeline.NewExtract(), pipeline.NewScreen()}
	if err := pipeline.Run(ctx, deps, screenStages, cs); err != nil {
		return err
	}

	if err := report.WriteExtracted(out.extracted, cs); err != nil {
		return err
	}
	log.Info("wrote extraction table", zap.String("file", out.extracted), zap.Int("candidates", cs.Len()))

	stages := []pipeline.Stage{
		pipeline.NewSurveyInvite(),
		pipeline.NewSurveyCollect(),
		pipeline.NewClassify(),
		pipeline.NewInterviewInvite(),
	}

	if !autoApprove {
		_, action, err := prompt.Run()
		if err != nil {
			return err
		}
		if action == PromptNo {
			pipeline.DisableByName(stages, stageSurveyInvite, "declined by operator")
			pipeline.DisableByName(stages, stageInterviewInvite, "declined by operator")
			log.Info("notifications disabled", zap.String("reason", "declined by operator"))
		}
	}

	if err := pipeline.Run(ctx, deps, stages, cs); err != nil {
		return err
	}

	if err := report.WriteClassified(out.classified, cs); err != nil {
		return err
	}
	if err := report.WriteSummary(out.summary, cs); err != nil {
		return err
	}

	counts := cs.CountByPriority()
	log.Info("batch complete",
		zap.Int("candidates", cs.Len()),
		zap.Int("high", counts[candidate.PriorityHigh]),
		zap.Int("medium", counts[candidate.PriorityMedium]),
		zap.Int("low", counts[candidate.PriorityLow]),
		zap.Int("unscreened", counts[candidate.PriorityUnscreened]),
		zap.String("classified", out.classified),
		zap.String("summary", out.summary),
	)
	return nil
}

// ingestAll claims and archives every pending document. Failed claims still
// produce a record so the run output accounts for every source file.
func ingestAll(folder *ingest.Folder, pending []ingest.Handle, log *zap.Logger) *candidate.Candidates {
	cs := &candidate.Candidates{}

	for _, h := range pending {
		text, err := folder.Claim(h)

		id := ingest.UniqueID(h, []byte(text), func(id string) bool {
			return cs.FindByID(id) != nil
		})

		c := candidate.New(id, h.Name)
		if err != nil {
			c.Err = err.Error()
			log.Warn("claiming document failed", zap.String("file", h.Name), zap.Error(err))
		} else {
			c.RawText = text
		}
		cs.Add(c)

		if err := folder.Archive(h); err != nil {
			log.Warn("archiving document failed", zap.String("file", h.Name), zap.Error(err))
			if c.Err == "" {
				c.Err = err.Error()
			}
		}
	}

	return cs
}

type outputs struct {
	extracted  string
	classified string
	summary    string
}

func outputPaths(config *Config) outputs {
	dir := defaultOutputDir
	if config.Output != nil && config.Output.Dir != "" {
		dir = config.Output.Dir
	}
	return outputs{
		extracted:  filepath.Join(dir, extractedFileName),
		classified: filepath.Join(dir, classifiedFileName),
		summary:    filepath.Join(dir, summaryFileName),
	}
}

func openFolder(config *Config, log *zap.Logger) (*ingest.Folder, error) {
	dir := defaultInputDir
	processed := ""

	if config.Input != nil {
		if config.Input.Dir != "" {
			dir = config.Input.Dir
		}
		processed = config.Input.ProcessedDir
	}
	if processed == "" {
		processed = filepath.Join(dir, "processed")
	}

	return ingest.NewFolder(dir, processed, ingest.NewFileExtractor(), log)
}

func buildDeps(config *Config, log *zap.Logger) (pipeline.Deps, error) {
	screener, err := buildScreener(config.Screening)
	if err != nil {
		return pipeline.Deps{}, err
	}

	weights, thresholds, err := buildScoring(config.Scoring)
	if err != nil {
		return pipeline.Deps{}, err
	}

	simulator, err := buildSimulator(config.Survey)
	if err != nil {
		return pipeline.Deps{}, err
	}

	notifier, err := buildNotifier(config.Notify, log)
	if err != nil {
		return pipeline.Deps{}, err
	}

	return pipeline.Deps{
		Logger:     log,
		Screener:   screener,
		Simulator:  simulator,
		Weights:    weights,
		Thresholds: thresholds,
		Notifier:   notifier,
	}, nil
}

func buildScreener(cfg *ScreeningConfig) (*screening.Screener, error) {
	if cfg == nil {
		return screening.New(defaultKeywords, 0), nil
	}

	keywords := cfg.Keywords
	if cfg.KeywordsFile != "" {
		fromFile, err := loadKeywordsFile(cfg.KeywordsFile)
		if err != nil {
			return nil, err
		}
		keywords = append(keywords, fromFile...)
	}
	if len(keywords) == 0 {
		keywords = defaultKeywords
	}

	return screening.New(keywords, cfg.Threshold), nil
}

// loadKeywordsFile reads one keyword per line, skipping blanks and comments.
func loadKeywordsFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading keywords file: %w", err)
	}

	var keywords []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		keywords = append(keywords, strings.ToLower(line))
	}
	return keywords, nil
}

func buildScoring(cfg *ScoringConfig) (*scoring.Weights, scoring.Thresholds, error) {
	thresholds := scoring.DefaultThresholds()
	if cfg == nil {
		return scoring.DefaultWeights(), thresholds, nil
	}

	weights, err := scoring.ParseWeights(cfg.Weights)
	if err != nil {
		return nil, thresholds, err
	}

	if cfg.HighCutoff > 0 {
		thresholds.High = cfg.HighCutoff
	}
	if cfg.MediumCutoff > 0 {
		thresholds.Medium = cfg.MediumCutoff
	}
	if thresholds.Medium > thresholds.High {
		return nil, thresholds, fmt.Errorf("medium cutoff %d exceeds high cutoff %d", thresholds.Medium, thresholds.High)
	}

	return weights, thresholds, nil
}

func buildSimulator(cfg *SurveyConfig) (*survey.Simulator, error) {
	if cfg == nil {
		return survey.New(0), nil
	}

	var opts []survey.Option

	if cfg.ResponsesFile != "" {
		table, err := survey.LoadTable(cfg.ResponsesFile)
		if err != nil {
			return nil, fmt.Errorf("loading survey responses: %w", err)
		}
		opts = append(opts, survey.WithTable(table))
	}
	if cfg.ResponseRate != nil {
		opts = append(opts, survey.WithResponseRate(*cfg.ResponseRate))
	}
	if cfg.InterestRate != nil {
		opts = append(opts, survey.WithInterestRate(*cfg.InterestRate))
	}
	if len(cfg.Distribution.Availability) > 0 || len(cfg.Distribution.Visa) > 0 || len(cfg.Distribution.Courses) > 0 {
		opts = append(opts, survey.WithDistribution(cfg.Distribution))
	}

	return survey.New(cfg.Seed, opts...), nil
}

func buildNotifier(cfg *NotifyConfig, log *zap.Logger) (*notify.Notifier, error) {
	if cfg == nil {
		cfg = &NotifyConfig{}
	}

	templates, err := notify.ParseTemplates(notify.Overrides{
		SurveySubject:    cfg.SurveySubject,
		SurveyBody:       cfg.SurveyBody,
		InterviewSubject: cfg.InterviewSubject,
		InterviewBody:    cfg.InterviewBody,
	})
	if err != nil {
		return nil, err
	}

	transport, err := buildTransport(cfg, log)
	if err != nil {
		return nil, err
	}

	details := notify.Details{
		InterviewDate: cfg.InterviewDate,
		InterviewTime: cfg.InterviewTime,
		Location:      cfg.Location,
		SurveyURL:     cfg.SurveyURL,
	}
	if details.InterviewDate == "" {
		details.InterviewDate = time.Now().Add(defaultInterviewLead).Format("02/01/2006")
	}
	if details.InterviewTime == "" {
		details.InterviewTime = defaultInterviewTime
	}
	if details.Location == "" {
		details.Location = defaultLocation
	}
	if details.SurveyURL == "" {
		details.SurveyURL = defaultSurveyURL
	}

	var opts []notify.Option
	if cfg.MaxRetries > 0 {
		opts = append(opts, notify.WithRetries(cfg.MaxRetries))
	}
	if cfg.BackoffSeconds > 0 {
		opts = append(opts, notify.WithBackoff(time.Duration(cfg.BackoffSeconds)*time.Second))
	}
	if cfg.TimeoutSeconds > 0 {
		opts = append(opts, notify.WithTimeout(time.Duration(cfg.TimeoutSeconds)*time.Second))
	}

	return notify.New(transport, templates, details, log, opts...), nil
}

func buildTransport(cfg *NotifyConfig, log *zap.Logger) (notify.Transport, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Transport)) {
	case "", "simulated":
		return notify.NewSimulated(log), nil
	case "smtp":
		if cfg.SMTP == nil {
			return nil, fmt.Errorf("smtp transport requires the notify.smtp section")
		}
		return notify.NewSMTP(*cfg.SMTP, log)
	default:
		return nil, fmt.Errorf("unsupported notify transport: %s", cfg.Transport)
	}
}
