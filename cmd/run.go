package cmd

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/adlabtools/kwopt/pkg/adservice"
	"github.com/adlabtools/kwopt/pkg/keywords"
	"github.com/adlabtools/kwopt/pkg/optimizer"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one keyword optimization and print the resulting keyword list",
	RunE: func(cmd *cobra.Command, args []string) error {
		proxy, _ := rootCmd.PersistentFlags().GetString("proxy")

		matchTypeNames, _ := cmd.Flags().GetStringSlice("match-types")
		matchTypes, err := parseMatchTypes(matchTypeNames)
		if err != nil {
			return err
		}

		maxCpc, _ := cmd.Flags().GetString("max-cpc")
		locations, _ := cmd.Flags().GetInt64Slice("locations")
		languages, _ := cmd.Flags().GetInt64Slice("languages")
		campaign, err := buildCampaignConfig(maxCpc, locations, languages)
		if err != nil {
			return err
		}

		client, err := newServiceClient(proxy)
		if err != nil {
			return err
		}
		finder := adservice.NewIdeasFinder(client)

		seedGenerator, err := pickSeedGenerator(cmd, finder, matchTypes, campaign)
		if err != nil {
			return err
		}

		scorer, _ := cmd.Flags().GetString("scorer")
		formula, _ := cmd.Flags().GetString("formula")
		cachePath, _ := cmd.Flags().GetString("cache-db")
		evaluator, cleanup, err := buildEvaluator(client, scorer, formula, cachePath)
		if err != nil {
			return err
		}
		defer cleanup()

		maxSteps, _ := cmd.Flags().GetInt("max-steps")
		minImprovement, _ := cmd.Flags().GetFloat64("min-improvement")
		maxPopulation, _ := cmd.Flags().GetInt("max-population")
		replicateBest, _ := cmd.Flags().GetInt("replicate-best")
		strategy, err := optimizer.NewRoundStrategy("default", optimizer.RoundStrategyParams{
			MaxSteps:       maxSteps,
			MinImprovement: minImprovement,
			MaxPopulation:  maxPopulation,
			ReplicateBest:  replicateBest,
		})
		if err != nil {
			return err
		}

		result, err := optimizer.New(seedGenerator, adservice.NewAlternativesFinder(finder),
			evaluator, strategy).Optimize()
		if err != nil {
			return err
		}

		output, _ := cmd.Flags().GetString("output")
		outputFile, _ := cmd.Flags().GetString("output-file")
		return writeResult(result, output, outputFile)
	},
}

// pickSeedGenerator enforces that exactly one seed source is configured and
// builds the matching generator.
func pickSeedGenerator(cmd *cobra.Command, finder *adservice.IdeasFinder,
	matchTypes []keywords.MatchType, campaign *keywords.CampaignConfiguration) (optimizer.SeedGenerator, error) {

	seedKeywords, _ := cmd.Flags().GetStringSlice("seed-keywords")
	seedFile, _ := cmd.Flags().GetString("seed-keywords-file")
	seedTerms, _ := cmd.Flags().GetStringSlice("seed-terms")
	seedURLs, _ := cmd.Flags().GetStringSlice("seed-urls")
	seedCategory, _ := cmd.Flags().GetInt64("seed-category")

	var generators []optimizer.SeedGenerator
	if len(seedKeywords) > 0 {
		generators = append(generators, adservice.NewSimpleSeedGenerator(seedKeywords, matchTypes, campaign))
	}
	if seedFile != "" {
		generators = append(generators, adservice.NewFileSeedGenerator(seedFile, matchTypes, campaign))
	}
	if len(seedTerms) > 0 {
		generators = append(generators, adservice.NewTermsSeedGenerator(finder, seedTerms, matchTypes, campaign))
	}
	if len(seedURLs) > 0 {
		generators = append(generators, adservice.NewURLSeedGenerator(finder, seedURLs, matchTypes, campaign))
	}
	if seedCategory > 0 {
		generators = append(generators, adservice.NewCategorySeedGenerator(finder, seedCategory, matchTypes, campaign))
	}

	if len(generators) == 0 {
		return nil, fmt.Errorf("one seed source is required: --seed-keywords, --seed-keywords-file, --seed-terms, --seed-urls or --seed-category")
	}
	if len(generators) > 1 {
		return nil, fmt.Errorf("only one seed source may be given")
	}
	return generators[0], nil
}

func writeResult(result *keywords.Population, output, outputFile string) error {
	out := os.Stdout
	if outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	switch output {
	case "console":
		for _, info := range result.SortedByScore() {
			fmt.Fprintln(out, info.String())
		}
		return nil
	case "csv":
		return writeCsv(result, out)
	}
	return fmt.Errorf("unknown output format %q (want console or csv)", output)
}

// writeCsv renders the scored population with one column block per statistic,
// min/mean/max each.
func writeCsv(result *keywords.Population, out *os.File) error {
	w := csv.NewWriter(out)
	header := []string{"Keyword", "Match Type", "Score"}
	for _, stat := range []string{"Impressions", "Clicks", "CTR", "Position", "CPC", "Cost"} {
		header = append(header, "Min "+stat, "Mean "+stat, "Max "+stat)
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, info := range result.SortedByScore() {
		record := []string{info.Keyword.Text, info.Keyword.MatchType.String(), formatScore(info.Score)}
		record = append(record, statColumns(info.TrafficEstimate)...)
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func formatScore(score *float64) string {
	if score == nil {
		return ""
	}
	return strconv.FormatFloat(*score, 'f', -1, 64)
}

func statColumns(estimate *keywords.TrafficEstimate) []string {
	var columns []string
	if estimate == nil {
		return make([]string, 18)
	}
	for _, pick := range []func(keywords.StatsEstimate) string{
		func(s keywords.StatsEstimate) string { return formatScore(s.ImpressionsPerDay) },
		func(s keywords.StatsEstimate) string { return formatScore(s.ClicksPerDay) },
		func(s keywords.StatsEstimate) string { return formatScore(s.ClickThroughRate) },
		func(s keywords.StatsEstimate) string { return formatScore(s.AveragePosition) },
		func(s keywords.StatsEstimate) string { return formatMoneyColumn(s.AverageCpc) },
		func(s keywords.StatsEstimate) string { return formatMoneyColumn(s.TotalCost) },
	} {
		for _, stats := range []keywords.StatsEstimate{estimate.Min, estimate.Mean, estimate.Max} {
			columns = append(columns, pick(stats))
		}
	}
	return columns
}

func formatMoneyColumn(m *keywords.Money) string {
	if m == nil {
		return ""
	}
	return strconv.FormatFloat(m.Units(), 'f', 2, 64)
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringSlice("seed-keywords", nil, "Literal seed keywords")
	runCmd.Flags().String("seed-keywords-file", "", "File with seed keywords, one per line")
	runCmd.Flags().StringSlice("seed-terms", nil, "Free-form search terms to derive seeds from")
	runCmd.Flags().StringSlice("seed-urls", nil, "Web pages to scrape for seed terms")
	runCmd.Flags().Int64("seed-category", 0, "Product/service category id to derive seeds from")

	runCmd.Flags().StringSlice("match-types", []string{"BROAD"}, "Match types: EXACT, PHRASE, BROAD")
	runCmd.Flags().String("max-cpc", "", "Maximum cost per click, e.g. 1.50")
	runCmd.Flags().Int64Slice("locations", nil, "Location criterion ids to target")
	runCmd.Flags().Int64Slice("languages", nil, "Language criterion ids to target")

	runCmd.Flags().Int("max-steps", 10, "Maximum number of optimization rounds (0 = unbounded)")
	runCmd.Flags().Float64("min-improvement", 0, "Stop when a round's relative improvement falls below this (negative = disabled)")
	runCmd.Flags().Int("max-population", 100, "Maximum population size")
	runCmd.Flags().Int("replicate-best", 5, "Number of best keywords to derive alternatives from each round")

	runCmd.Flags().String("scorer", "clicks", "Scoring function: clicks, impressions or formula")
	runCmd.Flags().String("formula", "", "Score formula, e.g. 'mean.clicksPerDay/mean.averageCpc' (with --scorer formula)")
	runCmd.Flags().String("cache-db", "", "Path to a sqlite estimate cache (empty = in-memory only)")

	runCmd.Flags().StringP("output", "o", "console", "Output format: console or csv")
	runCmd.Flags().String("output-file", "", "Write output to a file instead of stdout")
}
