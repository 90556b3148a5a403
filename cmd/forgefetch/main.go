// Command forgefetch downloads Magic card and token images from Scryfall
// into the folder layout and naming scheme the Forge client expects.
//
// Run it bare for the interactive menu, or drive one workflow directly:
//
//	forgefetch --workflow set --set eld
//	forgefetch --workflow card --card "Giant Growth"
//	forgefetch --workflow token-audit --manifest ./missing_tokens.txt
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/pflag"

	"forgefetch/internal/config"
	"forgefetch/internal/download"
	"forgefetch/internal/scryfall"
)

func main() {
	var (
		configPath string
		baseDir    string
		workflow   string
		setCode    string
		cardName   string
		listFile   string
		manifest   string
		allScope   string
		overwrite  bool
		assumeYes  bool
	)
	pflag.StringVar(&configPath, "config", "", "path to forgefetch.yaml (default: ./forgefetch.yaml)")
	pflag.StringVar(&baseDir, "base-dir", "", "override the output base directory")
	pflag.StringVar(&workflow, "workflow", "", "set | set-printed | all-sets | set-list | card | card-printed | token-audit | card-audit | clean")
	pflag.StringVar(&setCode, "set", "", "set code for the set and clean workflows")
	pflag.StringVar(&cardName, "card", "", "card name for the card workflows")
	pflag.StringVar(&listFile, "file", "Sets.txt", "set list file for the set-list workflow")
	pflag.StringVar(&manifest, "manifest", "", "manifest path for the audit workflows")
	pflag.StringVar(&allScope, "scope", "sanctioned", "all-sets scope: all | sanctioned")
	pflag.BoolVar(&overwrite, "overwrite", false, "re-download files that already exist")
	pflag.BoolVarP(&assumeYes, "yes", "y", false, "skip confirmation prompts")
	pflag.Parse()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	if baseDir != "" {
		cfg.Dirs.Base = baseDir
	}

	logger := newLogger(cfg.Log.Level)
	slog.SetDefault(logger)

	client := scryfall.New(scryfall.Options{
		BaseURL:       cfg.Scryfall.BaseURL,
		UserAgent:     cfg.Scryfall.UserAgent,
		Timeout:       cfg.Scryfall.Timeout,
		MinDelay:      cfg.Scryfall.MinDelay,
		MaxRetries:    cfg.Scryfall.MaxRetries,
		BackoffBase:   cfg.Scryfall.BackoffBase,
		BackoffJitter: cfg.Scryfall.BackoffJitter,
	}, logger)
	orch := download.New(cfg, client, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if workflow == "" {
		if err := runMenu(ctx, orch, logger, assumeYes); err != nil {
			logger.Error("menu", "err", err)
			os.Exit(1)
		}
		return
	}

	sum, err := runWorkflow(ctx, orch, workflowArgs{
		workflow:  workflow,
		setCode:   setCode,
		cardName:  cardName,
		listFile:  listFile,
		manifest:  manifest,
		scope:     parseScope(allScope),
		overwrite: overwrite,
		assumeYes: assumeYes,
	})
	if err != nil {
		logger.Error("workflow failed", "workflow", workflow, "err", err)
		os.Exit(1)
	}
	if sum != nil {
		printSummary(logger, sum)
		if !sum.Clean() {
			os.Exit(1)
		}
	}
}

type workflowArgs struct {
	workflow  string
	setCode   string
	cardName  string
	listFile  string
	manifest  string
	scope     download.SetScope
	overwrite bool
	assumeYes bool
}

func runWorkflow(ctx context.Context, orch *download.Orchestrator, a workflowArgs) (*download.Summary, error) {
	switch a.workflow {
	case "set":
		if a.setCode == "" {
			return nil, fmt.Errorf("--set is required for the set workflow")
		}
		return orch.DownloadSet(ctx, a.setCode, a.overwrite, false)
	case "set-printed":
		if a.setCode == "" {
			return nil, fmt.Errorf("--set is required for the set-printed workflow")
		}
		return orch.DownloadSet(ctx, a.setCode, a.overwrite, true)
	case "all-sets":
		return orch.DownloadAllSets(ctx, a.scope, a.overwrite)
	case "set-list":
		return orch.DownloadSetsFromFile(ctx, a.listFile, a.overwrite)
	case "card":
		if a.cardName == "" {
			return nil, fmt.Errorf("--card is required for the card workflow")
		}
		return orch.DownloadCardPrints(ctx, a.cardName, false)
	case "card-printed":
		if a.cardName == "" {
			return nil, fmt.Errorf("--card is required for the card-printed workflow")
		}
		return orch.DownloadCardPrints(ctx, a.cardName, true)
	case "token-audit":
		if a.manifest == "" {
			return nil, fmt.Errorf("--manifest is required for the token-audit workflow")
		}
		return orch.RunTokenAudit(ctx, a.manifest)
	case "card-audit":
		if a.manifest == "" {
			return nil, fmt.Errorf("--manifest is required for the card-audit workflow")
		}
		return orch.RunCardAudit(ctx, a.manifest)
	case "clean":
		if a.setCode == "" {
			return nil, fmt.Errorf("--set is required for the clean workflow")
		}
		if !a.assumeYes {
			return nil, fmt.Errorf("clean deletes files; pass --yes to confirm")
		}
		return nil, orch.CleanSetFolder(a.setCode)
	default:
		return nil, fmt.Errorf("unknown workflow %q", a.workflow)
	}
}

func parseScope(s string) download.SetScope {
	if strings.EqualFold(strings.TrimSpace(s), "all") {
		return download.ScopeAll
	}
	return download.ScopeSanctioned
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(tint.NewHandler(os.Stdout, &tint.Options{
		Level:      lvl,
		TimeFormat: time.Kitchen,
	}))
}

func printSummary(log *slog.Logger, s *download.Summary) {
	log.Info("run complete",
		"run", s.RunID,
		"duration", s.Duration.Round(time.Second),
		"planned", s.Planned,
		"downloaded", s.Downloaded,
		"skipped_existing", s.SkippedExisting,
		"not_found", s.NotFound,
		"ambiguous", s.Ambiguous,
		"collisions", s.Collisions,
		"failed", s.Failed,
	)
	if len(s.FailedSets) > 0 {
		log.Warn("failed sets", "sets", s.FailedSets)
	}
}
