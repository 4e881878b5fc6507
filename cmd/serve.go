package cmd

import (
	"github.com/spf13/cobra"

	"github.com/adlabtools/kwopt/internal/server"
	"github.com/adlabtools/kwopt/pkg/adservice"
	"github.com/adlabtools/kwopt/pkg/keywords"
	"github.com/adlabtools/kwopt/pkg/optimizer"
)

const version = "1.0.0"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the kwopt REST API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		proxy, _ := rootCmd.PersistentFlags().GetString("proxy")
		listenAddr, _ := cmd.Flags().GetString("listen")
		authUser, _ := cmd.Flags().GetString("auth-user")
		authPass, _ := cmd.Flags().GetString("auth-pass")
		cachePath, _ := cmd.Flags().GetString("cache-db")

		client, err := newServiceClient(proxy)
		if err != nil {
			return err
		}
		finder := adservice.NewIdeasFinder(client)

		optimize := func(req server.OptimizeRequest) (*keywords.Population, error) {
			return runAPIRequest(client, finder, cachePath, req)
		}
		return server.New(optimize, authUser, authPass, version).Start(listenAddr)
	},
}

// runAPIRequest builds the collaborator graph for one API call and runs it.
// Each request gets its own estimator chain; only the rate limiters and the
// HTTP client are shared.
func runAPIRequest(client *adservice.Client, finder *adservice.IdeasFinder,
	cachePath string, req server.OptimizeRequest) (*keywords.Population, error) {

	matchTypeNames := req.MatchTypes
	if len(matchTypeNames) == 0 {
		matchTypeNames = []string{"BROAD"}
	}
	matchTypes, err := parseMatchTypes(matchTypeNames)
	if err != nil {
		return nil, err
	}
	campaign, err := buildCampaignConfig(req.MaxCpc, req.Locations, req.Languages)
	if err != nil {
		return nil, err
	}

	scorer := req.Scorer
	if scorer == "" {
		scorer = "clicks"
	}
	evaluator, cleanup, err := buildEvaluator(client, scorer, req.Formula, cachePath)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	params := optimizer.RoundStrategyParams{
		MaxSteps:       req.MaxSteps,
		MinImprovement: -1,
		MaxPopulation:  req.MaxPopulation,
		ReplicateBest:  req.ReplicateBest,
	}
	if params.MaxSteps == 0 {
		params.MaxSteps = 10
	}
	if req.MinImprovement != nil {
		params.MinImprovement = *req.MinImprovement
	}
	if params.MaxPopulation == 0 {
		params.MaxPopulation = 100
	}
	if params.ReplicateBest == 0 {
		params.ReplicateBest = 5
	}
	strategy, err := optimizer.NewRoundStrategy("default", params)
	if err != nil {
		return nil, err
	}

	seedGenerator := adservice.NewSimpleSeedGenerator(req.SeedKeywords, matchTypes, campaign)
	return optimizer.New(seedGenerator, adservice.NewAlternativesFinder(finder),
		evaluator, strategy).Optimize()
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("listen", ":8080", "HTTP listen address")
	serveCmd.Flags().String("auth-user", "", "Basic auth username (empty disables auth)")
	serveCmd.Flags().String("auth-pass", "", "Basic auth password")
	serveCmd.Flags().String("cache-db", "", "Path to a sqlite estimate cache shared across requests")
}
