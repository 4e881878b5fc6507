package keywords

// CampaignConfiguration holds the campaign-level settings every derived
// population shares: the maximum cost per click and additional targeting
// criteria. It is immutable and shared by reference across populations.
type CampaignConfiguration struct {
	maxCpc             *Money
	additionalCriteria []Criterion
}

func (c *CampaignConfiguration) MaxCpc() *Money {
	if c == nil {
		return nil
	}
	return c.maxCpc
}

func (c *CampaignConfiguration) AdditionalCriteria() []Criterion {
	if c == nil {
		return nil
	}
	return c.additionalCriteria
}

// CampaignConfigurationBuilder assembles an immutable CampaignConfiguration.
type CampaignConfigurationBuilder struct {
	maxCpc   *Money
	criteria []Criterion
}

func NewCampaignConfigurationBuilder() *CampaignConfigurationBuilder {
	return &CampaignConfigurationBuilder{}
}

func (b *CampaignConfigurationBuilder) WithMaxCpc(maxCpc Money) *CampaignConfigurationBuilder {
	b.maxCpc = &maxCpc
	return b
}

func (b *CampaignConfigurationBuilder) WithCriterion(criterion Criterion) *CampaignConfigurationBuilder {
	b.criteria = append(b.criteria, criterion)
	return b
}

func (b *CampaignConfigurationBuilder) WithLocation(id int64) *CampaignConfigurationBuilder {
	return b.WithCriterion(Criterion{Kind: CriterionLocation, ID: id})
}

func (b *CampaignConfigurationBuilder) WithLanguage(id int64) *CampaignConfigurationBuilder {
	return b.WithCriterion(Criterion{Kind: CriterionLanguage, ID: id})
}

func (b *CampaignConfigurationBuilder) Build() *CampaignConfiguration {
	criteria := make([]Criterion, len(b.criteria))
	copy(criteria, b.criteria)
	return &CampaignConfiguration{maxCpc: b.maxCpc, additionalCriteria: criteria}
}
