package main

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/renjie/furnace-core/internal/config"
	"github.com/renjie/furnace-core/internal/logging"
	"github.com/renjie/furnace-core/pkg/adapters/memory"
	"github.com/renjie/furnace-core/pkg/core/services"
	"github.com/renjie/furnace-core/pkg/core/services/rules"
)

// app 命令之间共享的运行期依赖，由 PersistentPreRunE 构造
type app struct {
	configPath string
	envFile    string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "furnacectl",
		Short:         "Furnace operations analysis: metrics, insights and benchmarking",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "furnace.yaml", "config file (YAML)")
	root.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "dotenv file loaded before config")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		newAnalyzeCmd(a),
		newColumnsCmd(a),
		newServeCmd(a),
		newSampleCmd(a),
	)
	return root
}

func (a *app) init() error {
	if a.envFile != "" {
		if err := godotenv.Load(a.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", a.envFile, err)
		}
	}

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	a.logger, err = logging.New(cfg.Logging.Level, cfg.Logging.Development, a.verbose)
	return err
}

// analyzer 按配置构造 Analyzer
func (a *app) analyzer() *services.Analyzer {
	return services.NewAnalyzer(
		services.WithTargets(a.cfg.TargetsValue()),
		services.WithCapacityRepository(memory.NewCapacityRepository(a.cfg.Capacities()...)),
		services.WithRuleRepository(memory.NewRuleRepository(rules.DefaultCatalog(), a.cfg.Rules.Disabled...)),
		services.WithConcurrencyLimit(a.cfg.Analysis.Concurrency),
		services.WithGradeAnalysis(a.cfg.Analysis.ByGrade),
		services.WithLogger(a.logger),
	)
}
