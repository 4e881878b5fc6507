package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/adlabtools/kwopt/internal/utils"
	"github.com/adlabtools/kwopt/pkg/adservice"
	"github.com/adlabtools/kwopt/pkg/keywords"
	"github.com/adlabtools/kwopt/pkg/optimizer"
	"github.com/adlabtools/kwopt/pkg/ratelimit"
	"github.com/adlabtools/kwopt/pkg/storage"
)

// newServiceClient builds the ad-service client plus the rate-limiter
// registry shared by every remote call of this process.
func newServiceClient(proxy string) (*adservice.Client, error) {
	timeout, err := time.ParseDuration(viper.GetString("ratelimit.timeout"))
	if err != nil {
		return nil, fmt.Errorf("invalid ratelimit.timeout: %w", err)
	}
	registry := ratelimit.NewRegistry(ratelimit.Config{
		MaxAttempts: viper.GetInt("ratelimit.maxattempts"),
		Timeout:     timeout,
	})

	return adservice.NewClient(adservice.ClientConfig{
		BaseURL:   viper.GetString("adservice.url"),
		Token:     viper.GetString("adservice.token"),
		AccountID: viper.GetInt64("adservice.account"),
		Proxy:     proxy,
	}, registry)
}

func parseMatchTypes(names []string) ([]keywords.MatchType, error) {
	var matchTypes []keywords.MatchType
	for _, name := range names {
		matchType, err := keywords.ParseMatchType(name)
		if err != nil {
			return nil, err
		}
		matchTypes = append(matchTypes, matchType)
	}
	return matchTypes, nil
}

func buildCampaignConfig(maxCpc string, locations, languages []int64) (*keywords.CampaignConfiguration, error) {
	builder := keywords.NewCampaignConfigurationBuilder()
	if maxCpc != "" {
		money, err := keywords.ParseMoney(maxCpc)
		if err != nil {
			return nil, fmt.Errorf("invalid max cpc: %w", err)
		}
		builder.WithMaxCpc(money)
	}
	for _, id := range locations {
		builder.WithLocation(id)
	}
	for _, id := range languages {
		builder.WithLanguage(id)
	}
	return builder.Build(), nil
}

// buildEvaluator assembles the estimator chain: remote estimator, optional
// sqlite-backed persistence, in-process memo, score calculator. The returned
// cleanup releases the cache lock and connection, and is always non-nil.
func buildEvaluator(client *adservice.Client, scorer, formula, cachePath string) (optimizer.Evaluator, func(), error) {
	calculator, err := optimizer.NewScoreCalculator(scorer, formula)
	if err != nil {
		return nil, nil, err
	}

	estimator := adservice.NewEstimator(client)
	if cachePath == "" {
		return optimizer.NewEstimatorBasedEvaluator(
			optimizer.NewCachedEstimator(estimator), calculator), func() {}, nil
	}

	absPath, err := utils.GetAbsDBPath(cachePath)
	if err != nil {
		return nil, nil, err
	}
	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return nil, nil, err
	}
	lock, err := utils.NewDBLock(absPath)
	if err != nil {
		return nil, nil, err
	}
	if err := lock.Lock(); err != nil {
		return nil, nil, err
	}
	store, err := storage.Open(absPath)
	if err != nil {
		lock.Unlock()
		return nil, nil, err
	}

	cleanup := func() {
		store.Close()
		lock.Unlock()
	}
	return optimizer.NewEstimatorBasedEvaluator(
		optimizer.NewPersistentCachedEstimator(estimator, store), calculator), cleanup, nil
}
