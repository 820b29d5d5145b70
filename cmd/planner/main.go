package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/norraist/PaxDei-Planner/internal/config"
	"github.com/norraist/PaxDei-Planner/internal/loader"
	"github.com/norraist/PaxDei-Planner/internal/models"
	"github.com/norraist/PaxDei-Planner/internal/report"
	"github.com/norraist/PaxDei-Planner/internal/solver"
	"github.com/norraist/PaxDei-Planner/internal/store"
	"github.com/norraist/PaxDei-Planner/internal/xpmodel"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		color.New(color.FgRed).Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app carries the settings shared by every subcommand
type app struct {
	configPath string
	verbose    bool
	locale     string

	cfg    config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "planner",
		Short: "Pax Dei crafting skill leveling planner",
		Long: `Plans the cheapest sequence of crafts that levels each skill in a player
profile to its target, and aggregates the materials to buy or gather.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelInfo
			if a.verbose {
				level = slog.LevelDebug
			}
			a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			a.cfg = cfg
			return a.applyPathFlags(cmd)
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", config.DefaultPath, "Path to YAML config file")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Debug logging")
	root.PersistentFlags().StringVar(&a.locale, "locale", "en", "Locale for number formatting")
	root.PersistentFlags().String("bundle", "", "Static data bundle (.json, .json.br or .json.gz)")
	root.PersistentFlags().String("localisation", "", "Localisation JSON")
	root.PersistentFlags().String("db", "", "Catalog snapshot database")

	root.AddCommand(newPlanCmd(a), newImportCmd(a), newSkillsCmd(a), newInitConfigCmd(a))
	return root
}

// applyPathFlags lets explicitly set path flags win over the config file and env
func (a *app) applyPathFlags(cmd *cobra.Command) error {
	paths := map[string]*string{
		"bundle":       &a.cfg.Paths.Bundle,
		"localisation": &a.cfg.Paths.Localisation,
		"db":           &a.cfg.Paths.Database,
		"profile":      &a.cfg.Paths.Profile,
		"weights":      &a.cfg.Paths.Weights,
		"targets":      &a.cfg.Paths.Targets,
		"materials":    &a.cfg.Paths.Materials,
		"out":          &a.cfg.Paths.OutDir,
	}
	for name, dest := range paths {
		f := cmd.Flags().Lookup(name)
		if f == nil || !f.Changed {
			continue
		}
		*dest = f.Value.String()
	}
	return nil
}

// loadCatalog parses the bundle, or reads the snapshot when fromDB is set
func (a *app) loadCatalog(ctx context.Context, fromDB bool) (*models.Catalog, error) {
	if fromDB {
		if a.cfg.Paths.Database == "" {
			return nil, fmt.Errorf("no snapshot database configured; set --db or paths.database")
		}
		db, err := store.Open(a.cfg.Paths.Database)
		if err != nil {
			return nil, err
		}
		defer db.Close()
		cat, err := db.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("load snapshot %s: %w", a.cfg.Paths.Database, err)
		}
		a.logger.Debug("catalog loaded from snapshot", "path", a.cfg.Paths.Database, "recipes", len(cat.Recipes))
		return cat, nil
	}

	bundle, err := loader.LoadBundle(a.cfg.Paths.Bundle)
	if err != nil {
		return nil, err
	}
	loc, err := loader.LoadLocalisation(a.cfg.Paths.Localisation)
	if errors.Is(err, fs.ErrNotExist) {
		a.logger.Warn("localisation not found, using raw IDs as names", "path", a.cfg.Paths.Localisation)
		loc = loader.Localisation{}
	} else if err != nil {
		return nil, err
	}
	cat, err := loader.ParseCatalog(bundle, loc)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("catalog parsed", "bundle", a.cfg.Paths.Bundle, "skills", len(cat.Skills), "recipes", len(cat.Recipes))
	return cat, nil
}

func newPlanCmd(a *app) *cobra.Command {
	var (
		strategy       = strategyFlag{name: solver.StrategyGreedy}
		skills         []string
		useDB          bool
		workers        int
		topK           int
		ignoreStations bool
		weightMode     string
		writeCSV       bool
	)

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Plan skill leveling for a profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := &a.cfg
			flags := cmd.Flags()
			if flags.Changed("strategy") {
				cfg.Strategy = strategy.String()
			}
			if flags.Changed("workers") {
				cfg.Workers = workers
			}
			if flags.Changed("top-k") {
				cfg.TopK = topK
			}
			if flags.Changed("ignore-stations") {
				cfg.IgnoreStations = ignoreStations
			}
			if flags.Changed("weight-mode") {
				cfg.WeightMode = weightMode
			}
			if flags.Changed("csv") {
				cfg.WriteCSV = writeCSV
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			useDB = useDB || flags.Changed("db")
			return a.runPlan(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), skills, useDB)
		},
	}

	flags := cmd.Flags()
	flags.Var(&strategy, "strategy", fmt.Sprintf("Search strategy (%s)", strings.Join(solver.StrategyNames(), ", ")))
	flags.StringSliceVarP(&skills, "skill", "s", nil, "Skills to plan (default: every skill in the profile)")
	flags.BoolVar(&useDB, "from-db", false, "Read the catalog from the snapshot database instead of the bundle (implied by --db)")
	flags.IntVarP(&workers, "workers", "w", 0, "Skills planned in parallel (0 = one per CPU)")
	flags.IntVar(&topK, "top-k", 3, "Alternatives recorded per step")
	flags.BoolVar(&ignoreStations, "ignore-stations", false, "Plan as if every crafting station were owned")
	flags.StringVar(&weightMode, "weight-mode", config.WeightModeNone, "Default material weights: none or rarity")
	flags.BoolVar(&writeCSV, "csv", false, "Write plan and shopping list CSVs to the output directory")
	flags.StringP("profile", "p", "", "Player profile JSON")
	flags.String("weights", "", "Material weights JSON")
	flags.String("targets", "", "Target levels JSON")
	flags.String("materials", "", "Materials config JSON")
	flags.StringP("out", "o", "", "Output directory for CSVs")
	return cmd
}

func (a *app) runPlan(ctx context.Context, out, errOut io.Writer, skills []string, useDB bool) error {
	titleColor := color.New(color.FgCyan, color.Bold)
	successColor := color.New(color.FgGreen, color.Bold)
	warnColor := color.New(color.FgYellow)
	errorColor := color.New(color.FgRed)

	cat, err := a.loadCatalog(ctx, useDB)
	if err != nil {
		return err
	}
	profile, err := loader.LoadProfile(a.cfg.Paths.Profile)
	if err != nil {
		return err
	}
	if err := models.ValidateProfile(profile, cat); err != nil {
		warnColor.Fprintf(errOut, "Warning: %v\n", err)
	}
	fileWeights, err := loader.LoadWeights(a.cfg.Paths.Weights)
	if err != nil {
		return err
	}
	fileTargets, err := loader.LoadTargets(a.cfg.Paths.Targets)
	if err != nil {
		return err
	}
	targets, err := models.ResolveTargets(fileTargets, cat)
	if err != nil {
		warnColor.Fprintf(errOut, "Warning: %v\n", err)
	}
	materials, err := loader.LoadMaterialsConfig(a.cfg.Paths.Materials)
	if err != nil {
		return err
	}

	weights := fileWeights
	if a.cfg.WeightMode == config.WeightModeRarity {
		weights = models.DeriveRarityWeights(cat).Merge(fileWeights)
	}

	strategy, err := solver.StrategyByName(a.cfg.Strategy)
	if err != nil {
		return err
	}
	if exact, ok := strategy.(*solver.ExactSolver); ok && a.cfg.MaxExpansions > 0 {
		exact.MaxExpansions = a.cfg.MaxExpansions
	}

	sim := xpmodel.NewModel()
	if err := sim.Validate(); err != nil {
		return err
	}
	planner := solver.NewPlanner(cat, sim)
	planner.Strategy = strategy
	planner.Weights = weights
	planner.Materials = materials
	planner.IgnoreStations = a.cfg.IgnoreStations
	planner.TopK = a.cfg.TopK
	if a.cfg.Workers > 0 {
		planner.Workers = a.cfg.Workers
	}
	planner.Logger = a.logger

	result, err := planner.PlanAll(ctx, solver.Request{Profile: profile, Targets: targets, Skills: skills})
	if err != nil {
		return err
	}

	nums := report.NewNumbers(a.locale)
	for i := range result.Plans {
		plan := &result.Plans[i]
		titleColor.Fprintf(out, "\n%s: level %d → %d (%s)\n", cat.DisplayName(plan.Skill), plan.FromLevel, plan.ToLevel, plan.Strategy)
		if len(plan.Steps) == 0 {
			fmt.Fprintln(out, "Already at target.")
			continue
		}
		if err := report.PlanTable(out, cat, plan, nums); err != nil {
			return err
		}
	}

	if len(result.ShoppingList) > 0 {
		titleColor.Fprintln(out, "\nShopping list")
		if err := report.ShoppingTable(out, cat, result.ShoppingList, nums); err != nil {
			return err
		}
	}

	for _, f := range result.Failures {
		errorColor.Fprintf(errOut, "✗ %s: %v\n", cat.DisplayName(f.Skill), f.Err)
		var stall *solver.StallError
		if errors.As(f.Err, &stall) && len(stall.MissingStations) > 0 {
			names := make([]string, len(stall.MissingStations))
			for i, id := range stall.MissingStations {
				names[i] = cat.DisplayName(id)
			}
			warnColor.Fprintf(errOut, "  building one of these would unlock recipes: %s\n", strings.Join(names, ", "))
		}
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, report.RenderSummary(cat, report.Summary{
		Strategy: strategy.Name(),
		Plans:    result.Plans,
		Failures: result.Failures,
		Shopping: result.ShoppingList,
	}, nums))

	if a.cfg.WriteCSV {
		for i := range result.Plans {
			path, err := report.SavePlanCSV(a.cfg.Paths.OutDir, cat, &result.Plans[i])
			if err != nil {
				return err
			}
			a.logger.Debug("wrote plan", "path", path)
		}
		path, err := report.SaveShoppingCSV(a.cfg.Paths.OutDir, cat, result.ShoppingList)
		if err != nil {
			return err
		}
		successColor.Fprintf(out, "✓ CSVs written to %s\n", filepath.Dir(path))
	}

	if len(result.Plans) == 0 {
		return fmt.Errorf("no skill could be planned (%d failed)", len(result.Failures))
	}
	return nil
}

func newImportCmd(a *app) *cobra.Command {
	var writeMaterials bool
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Parse the static data bundle into the snapshot database",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if a.cfg.Paths.Database == "" {
				return fmt.Errorf("no snapshot database configured; set --db or paths.database")
			}
			cat, err := a.loadCatalog(cmd.Context(), false)
			if err != nil {
				return err
			}

			db, err := store.Open(a.cfg.Paths.Database)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := db.Save(cmd.Context(), cat, a.cfg.Paths.Bundle); err != nil {
				return fmt.Errorf("save snapshot: %w", err)
			}
			info, err := db.Info(cmd.Context())
			if err != nil {
				return err
			}
			color.New(color.FgGreen, color.Bold).Fprintf(out, "✓ Imported %d skills, %d recipes, %d stations, %d materials into %s\n",
				info.Skills, info.Recipes, info.Stations, info.Materials, a.cfg.Paths.Database)
			for _, id := range cat.SkillIDs() {
				if err, ok := cat.TableErrors[id]; ok {
					color.New(color.FgYellow).Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", err)
				}
			}

			if writeMaterials {
				path := a.cfg.Paths.Materials
				if _, err := os.Stat(path); err == nil {
					a.logger.Info("materials config exists, leaving it untouched", "path", path)
					return nil
				}
				if err := loader.SaveMaterialsConfig(path, loader.GenerateMaterialsConfig(cat)); err != nil {
					return err
				}
				fmt.Fprintf(out, "Wrote materials config to %s\n", path)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&writeMaterials, "materials-config", false, "Also generate the materials config if it does not exist")
	cmd.Flags().String("materials", "", "Materials config JSON to generate")
	return cmd
}

func newSkillsCmd(a *app) *cobra.Command {
	var useDB bool
	cmd := &cobra.Command{
		Use:   "skills",
		Short: "List catalog skills and their level tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := a.loadCatalog(cmd.Context(), useDB || cmd.Flags().Changed("db"))
			if err != nil {
				return err
			}
			return report.SkillsTable(cmd.OutOrStdout(), cat)
		},
	}
	cmd.Flags().BoolVar(&useDB, "from-db", false, "Read the catalog from the snapshot database (implied by --db)")
	return cmd
}

func newInitConfigCmd(a *app) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init-config [path]",
		Short: "Write a template config file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.configPath
			if len(args) == 1 {
				path = args[0]
			}
			if err := config.WriteTemplate(path, force); err != nil {
				return err
			}
			color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "✓ Wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing file")
	return cmd
}
