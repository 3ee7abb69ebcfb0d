package main

import (
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/quantum-menace/qtraj/internal/config"
	"github.com/quantum-menace/qtraj/internal/database"
	"github.com/quantum-menace/qtraj/internal/models"
	"github.com/quantum-menace/qtraj/internal/results"
	"github.com/quantum-menace/qtraj/internal/solver"
	"github.com/quantum-menace/qtraj/pkg/logger"
)

func newRunCmd() *cobra.Command {
	var (
		scenarioPath string
		modelName    string
		trajectories int
		seed         uint64
		save         bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run an ensemble simulation of a built-in model",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.PrettyLogs})

			var sc *Scenario
			if scenarioPath != "" {
				sc, err = loadScenario(scenarioPath)
				if err != nil {
					return err
				}
			} else {
				sc = defaultScenario(modelName)
			}
			// Flags override scenario and config defaults.
			if trajectories > 0 {
				sc.Trajectories = trajectories
			}
			if sc.Trajectories == 0 {
				sc.Trajectories = cfg.Trajectories
			}
			if sc.Workers == 0 {
				sc.Workers = cfg.Workers
			}
			if seed != 0 {
				sc.Seed = seed
			}

			model, err := models.Build(sc.Model, sc.Params)
			if err != nil {
				return err
			}
			times, err := sc.Times.Build()
			if err != nil {
				return err
			}

			opts := solver.DefaultOptions()
			opts.NumTrajectories = sc.Trajectories
			opts.Workers = sc.Workers

			s, err := solver.New(model.Hamiltonian, model.Pairs, opts, log)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			ensemble, err := s.Run(ctx, model.InitialState, times, model.Observables, sc.Seed)
			if err != nil {
				return err
			}

			final := len(times) - 1
			summary := log.Info().
				Str("model", model.Name).
				Int("trajectories", ensemble.NumTrajectories).
				Float64("final_time", times[final]).
				Float64("final_avg_trace", ensemble.AvgTrace[final])
			for _, obs := range model.Observables {
				summary = summary.Float64(obs.Name, ensemble.Expect[obs.Name][final])
			}
			summary.Msg("Simulation finished")

			if save {
				db, err := database.New(database.Config{
					Path: filepath.Join(cfg.DataDir, "results.db"),
					Name: "results",
				})
				if err != nil {
					return err
				}
				defer db.Close()

				repo, err := results.NewRepository(db, log)
				if err != nil {
					return err
				}
				id, err := repo.SaveRun(model.Name, ensemble)
				if err != nil {
					return err
				}
				fmt.Println(id)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&scenarioPath, "scenario", "", "YAML scenario file")
	cmd.Flags().StringVar(&modelName, "model", "damped-qubit", "Built-in model to run when no scenario file is given")
	cmd.Flags().IntVar(&trajectories, "trajectories", 0, "Override the number of trajectories")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "Override the base random seed")
	cmd.Flags().BoolVar(&save, "save", false, "Persist the run to the results database")
	return cmd
}

func newRunsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "runs",
		Short: "List persisted simulation runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.PrettyLogs})

			db, err := database.New(database.Config{
				Path: filepath.Join(cfg.DataDir, "results.db"),
				Name: "results",
			})
			if err != nil {
				return err
			}
			defer db.Close()

			repo, err := results.NewRepository(db, log)
			if err != nil {
				return err
			}
			records, err := repo.ListRuns()
			if err != nil {
				return err
			}
			for _, rec := range records {
				fmt.Printf("%s  %-14s %5d trajectories  %s\n",
					rec.ID, rec.Model, rec.Trajectories, rec.CreatedAt.Format("2006-01-02 15:04:05"))
			}
			return nil
		},
	}
}
