package main

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/inodb/gtload/internal/config"
	"github.com/inodb/gtload/internal/genetrap"
	"github.com/inodb/gtload/internal/store"
)

//go:embed seed.yaml
var defaultSeed []byte

func newInitCmd(v *viper.Viper) *cobra.Command {
	var seedFile string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the database schema and seed the vocabulary",
		Long: `Create the schema of the configured database and add every vocabulary term and
parent cell line a load needs. Existing terms are kept, so init can be rerun
after adding terms to a seed file.`,
		Example: `  gtload init
  gtload init --seed local-vectors.yaml
  gtload init --store-driver sqlite --store-dsn gt.sqlite`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v)
			if err != nil {
				return usageError{err}
			}
			return runInit(cmd, cfg, seedFile)
		},
	}
	cmd.Flags().StringVar(&seedFile, "seed", "", "additional seed YAML file")
	return cmd
}

func runInit(cmd *cobra.Command, cfg config.Config, seedFile string) error {
	seed, err := store.LoadSeed(bytes.NewReader(defaultSeed))
	if err != nil {
		return err
	}
	ip, err := genetrap.NewInterpreter(cfg.GeneTrap, nil)
	if err != nil {
		return err
	}
	seed.Merge(ip.Seed())

	if seedFile != "" {
		f, err := os.Open(seedFile)
		if err != nil {
			return fmt.Errorf("open seed: %w", err)
		}
		extra, err := store.LoadSeed(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("%s: %w", seedFile, err)
		}
		seed.Merge(extra)
	}

	s, err := store.Open(cfg.StoreDriver, cfg.StoreDSN)
	if err != nil {
		return err
	}
	defer s.Close()

	res, err := s.ApplySeed(cmd.Context(), seed, cfg.CreatedBy, time.Now().Format("2006-01-02"))
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Initialized %s database %s: %d terms and %d parent cell lines added\n",
		cfg.StoreDriver, cfg.StoreDSN, res.Terms, res.CellLines)
	return nil
}
