package main

import (
	"github.com/kwertop/membench/dataset"
	"github.com/spf13/cobra"
)

var generateConfig struct {
	logins  int
	queries int
	scheme  string
	seed    int64
	dupRate float64
	out     string
	labels  bool
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "write a synthetic logins_N.csv and queries_Q.csv pair",
	Args:  cobra.NoArgs,
	RunE:  runGenerate,
}

func init() {
	f := generateCmd.Flags()
	f.IntVarP(&generateConfig.logins, "logins", "n", 10_000, "number of logins")
	f.IntVarP(&generateConfig.queries, "queries", "q", 1_000, "number of queries")
	f.StringVar(&generateConfig.scheme, "scheme", string(dataset.Mixed),
		"username scheme (sequential, adjnoun, randomish, mixed, fake)")
	f.Int64Var(&generateConfig.seed, "seed", 42, "random seed")
	f.Float64Var(&generateConfig.dupRate, "dup-rate", 0.5, "fraction of queries drawn from the logins")
	f.StringVarP(&generateConfig.out, "out", "o", ".", "output directory")
	f.BoolVar(&generateConfig.labels, "labels", false, "write a username,is_present header and column into the query file")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	scheme, err := dataset.ParseScheme(generateConfig.scheme)
	if err != nil {
		return err
	}
	loginPath, queryPath, err := dataset.Generate(generateConfig.out, dataset.GenerateOptions{
		Logins:  generateConfig.logins,
		Queries: generateConfig.queries,
		Scheme:  scheme,
		Seed:    generateConfig.seed,
		DupRate: generateConfig.dupRate,
		Labels:  generateConfig.labels,
	})
	if err != nil {
		return err
	}
	logger.Info("dataset written", "logins", loginPath, "queries", queryPath,
		"scheme", scheme, "seed", generateConfig.seed)
	return nil
}
