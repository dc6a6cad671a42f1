package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var defaultConfigFiles = []string{"cup.yaml", "cup.json"}

func resolveConfigPath(configFlag string) (string, error) {
	if configFlag != "" {
		return configFlag, nil
	}
	for _, name := range defaultConfigFiles {
		if _, err := os.Stat(name); err == nil {
			return name, nil
		}
	}
	return "", fmt.Errorf("no cup file found. Either create %s in the current directory or pass --config", defaultConfigFiles[0])
}

func main() {
	loadEnv()
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configFile string
		verbose    bool
	)

	rootCmd := &cobra.Command{
		Use:   "cup",
		Short: "Youth football cup schedule generator",
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to cup file (default: cup.yaml or cup.json in current directory)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log scheduler progress to stderr")

	// withConfig resolves --config before handing off to run.
	withConfig := func(run func(path string, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			path, err := resolveConfigPath(configFile)
			if err != nil {
				return err
			}
			return run(path, args)
		}
	}

	var initOutputPath string
	initCmd := &cobra.Command{
		Use:          "init",
		Short:        "Create a starter cup.yaml in the current directory",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(initOutputPath)
		},
	}
	initCmd.Flags().StringVarP(&initOutputPath, "output", "o", defaultConfigFiles[0], "Output path for the cup file")

	scheduleCmd := &cobra.Command{
		Use:   "schedule",
		Short: "Generate, validate and adjust schedules",
	}

	genOpts := generateFlags{
		seed:     envInt64("CUP_SEED", defaultSeed),
		attempts: envInt("CUP_ATTEMPTS", defaultAttempts),
		workers:  defaultWorkers(),
	}
	generateCmd := &cobra.Command{
		Use:          "generate",
		Short:        "Generate every division's matches and place them",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: withConfig(func(path string, args []string) error {
			genOpts.verbose = verbose
			return runGenerate(path, genOpts)
		}),
	}
	generateCmd.Flags().StringVarP(&genOpts.output, "output", "o", "schedule.json", "Output path for the scheduled cup (.json or .yaml)")
	generateCmd.Flags().StringVar(&genOpts.xlsx, "xlsx", "", "Also export the schedule to this Excel file")
	generateCmd.Flags().Int64Var(&genOpts.seed, "seed", genOpts.seed, "Base random seed (env CUP_SEED)")
	generateCmd.Flags().IntVar(&genOpts.attempts, "attempts", genOpts.attempts, "Number of independent attempts (env CUP_ATTEMPTS)")
	generateCmd.Flags().IntVar(&genOpts.workers, "workers", genOpts.workers, "Attempts run concurrently (env CUP_WORKERS)")

	validateCmd := &cobra.Command{
		Use:          "validate [schedule.xlsx]",
		Short:        "Validate a scheduled cup, or an edited Excel export of it",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: withConfig(func(path string, args []string) error {
			workbook := ""
			if len(args) == 1 {
				workbook = args[0]
			}
			return runValidate(path, workbook)
		}),
	}

	var mv moveFlags
	moveCmd := &cobra.Command{
		Use:          "move",
		Short:        "Check, and optionally apply, a manual move of one match",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: withConfig(func(path string, args []string) error {
			return runMove(path, mv)
		}),
	}
	moveCmd.Flags().StringVar(&mv.matchID, "match", "", "Match id")
	moveCmd.Flags().StringVar(&mv.pitchID, "pitch", "", "Target pitch id")
	moveCmd.Flags().IntVar(&mv.day, "day", 1, "Target day number, starting at 1")
	moveCmd.Flags().StringVar(&mv.start, "start", "", "Target start time (HH:MM)")
	moveCmd.Flags().BoolVar(&mv.lock, "lock", false, "Lock the match at its new position")
	moveCmd.Flags().BoolVar(&mv.write, "write", false, "Save the move when it has no conflicts")
	_ = moveCmd.MarkFlagRequired("match")
	_ = moveCmd.MarkFlagRequired("pitch")
	_ = moveCmd.MarkFlagRequired("start")

	scheduleCmd.AddCommand(generateCmd, validateCmd, moveCmd)

	feasibilityCmd := &cobra.Command{
		Use:          "feasibility",
		Short:        "Check whether each division can fit before generating",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: withConfig(func(path string, args []string) error {
			return runFeasibility(path)
		}),
	}

	poolsCmd := &cobra.Command{
		Use:   "pools",
		Short: "Assign and check division pools",
	}
	var pf poolFlags
	poolsAssignCmd := &cobra.Command{
		Use:          "assign",
		Short:        "Split a division's teams into pools",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: withConfig(func(path string, args []string) error {
			return runPoolsAssign(path, pf)
		}),
	}
	poolsAssignCmd.Flags().StringVar(&pf.divisionID, "class", "", "Division id")
	poolsAssignCmd.Flags().IntVar(&pf.count, "count", 0, "Number of pools (default: chosen from the team count)")
	poolsAssignCmd.Flags().Int64Var(&pf.seed, "seed", envInt64("CUP_SEED", defaultSeed), "Random seed (env CUP_SEED)")
	poolsAssignCmd.Flags().BoolVar(&pf.write, "write", false, "Save the pools to the cup file")
	_ = poolsAssignCmd.MarkFlagRequired("class")

	poolsValidateCmd := &cobra.Command{
		Use:          "validate",
		Short:        "Check that every pooled division's pools partition its teams",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: withConfig(func(path string, args []string) error {
			return runPoolsValidate(path)
		}),
	}
	poolsCmd.AddCommand(poolsAssignCmd, poolsValidateCmd)

	var standingsClass string
	standingsCmd := &cobra.Command{
		Use:          "standings",
		Short:        "Print pool tables from reported scores",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: withConfig(func(path string, args []string) error {
			return runStandings(path, standingsClass)
		}),
	}
	standingsCmd.Flags().StringVar(&standingsClass, "class", "", "Only print this division")

	schemaCmd := &cobra.Command{
		Use:          "schema",
		Short:        "Print the JSON schema of the cup file",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchema(cmd.OutOrStdout())
		},
	}

	rootCmd.AddCommand(initCmd, scheduleCmd, feasibilityCmd, poolsCmd, standingsCmd, schemaCmd)
	return rootCmd
}
