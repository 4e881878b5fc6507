package adservice

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/adlabtools/kwopt/internal/utils"
	"github.com/adlabtools/kwopt/pkg/keywords"
	"github.com/adlabtools/kwopt/pkg/ratelimit"
)

const ideasPageSize = 100

// Idea is one suggestion returned by the ideation service.
type Idea struct {
	Text     string
	Estimate keywords.IdeaEstimate
}

// IdeasFinder queries the keyword-ideation service.
type IdeasFinder struct {
	client *Client
}

func NewIdeasFinder(client *Client) *IdeasFinder {
	return &IdeasFinder{client: client}
}

// ideasQuery is the request body of /v1/ideas:search. Exactly one of Seeds
// and CategoryID is set per call.
type ideasQuery struct {
	Seeds      []string `json:"seeds,omitempty"`
	CategoryID int64    `json:"categoryId,omitempty"`
	PageSize   int      `json:"pageSize"`
	PageToken  string   `json:"pageToken,omitempty"`

	MaxCpcMicros int64           `json:"maxCpcMicros,omitempty"`
	Criteria     []queryCriteria `json:"criteria,omitempty"`
}

type queryCriteria struct {
	Kind string `json:"kind"`
	ID   int64  `json:"id"`
}

// Related returns ideas derived from the given seed texts.
func (f *IdeasFinder) Related(texts []string, cfg *keywords.CampaignConfiguration) ([]Idea, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("at least one seed text is required")
	}
	return f.search(ideasQuery{Seeds: texts}, cfg)
}

// ByCategory returns ideas for a product/service category.
func (f *IdeasFinder) ByCategory(categoryID int64, cfg *keywords.CampaignConfiguration) ([]Idea, error) {
	if categoryID <= 0 {
		return nil, fmt.Errorf("invalid category id %d", categoryID)
	}
	return f.search(ideasQuery{CategoryID: categoryID}, cfg)
}

func (f *IdeasFinder) search(query ideasQuery, cfg *keywords.CampaignConfiguration) ([]Idea, error) {
	query.PageSize = ideasPageSize
	if cfg != nil {
		if maxCpc := cfg.MaxCpc(); maxCpc != nil {
			query.MaxCpcMicros = int64(*maxCpc)
		}
		for _, criterion := range cfg.AdditionalCriteria() {
			query.Criteria = append(query.Criteria, queryCriteria{Kind: string(criterion.Kind), ID: criterion.ID})
		}
	}

	var ideas []Idea
	for page := 0; ; page++ {
		body, err := json.Marshal(query)
		if err != nil {
			return nil, err
		}
		response, err := f.client.post(ratelimit.BucketIdeas, "/v1/ideas:search", string(body))
		if err != nil {
			return nil, fmt.Errorf("ideas search failed: %w", err)
		}

		for _, raw := range gjson.Get(response, "ideas").Array() {
			ideas = append(ideas, parseIdea(raw))
		}

		token := gjson.Get(response, "nextPageToken").String()
		if token == "" {
			break
		}
		query.PageToken = token
	}

	utils.Log.Debugf("Ideas search returned %d ideas", len(ideas))
	return ideas, nil
}

func parseIdea(raw gjson.Result) Idea {
	idea := Idea{
		Text: raw.Get("text").String(),
		Estimate: keywords.IdeaEstimate{
			Competition:  raw.Get("competition").Float(),
			SearchVolume: raw.Get("searchVolume").Int(),
			AverageCpc:   keywords.Money(raw.Get("averageCpcMicros").Int()),
		},
	}
	for _, m := range raw.Get("targetedMonthlySearches").Array() {
		idea.Estimate.TargetedMonthlySearches = append(idea.Estimate.TargetedMonthlySearches,
			keywords.MonthlySearchVolume{
				Year:  int(m.Get("year").Int()),
				Month: int(m.Get("month").Int()),
				Count: m.Get("count").Int(),
			})
	}
	return idea
}
