package formula

import (
	"math"

	"github.com/adlabtools/kwopt/pkg/keywords"
)

// Context maps identifier names to their numeric values for one evaluation.
type Context struct {
	values map[string]float64
}

func NewContext() *Context {
	return &Context{values: make(map[string]float64)}
}

// Set assigns a variable.
func (c *Context) Set(name string, value float64) {
	c.values[name] = value
}

// Value resolves an identifier; unknown names yield NaN.
func (c *Context) Value(name string) float64 {
	if v, ok := c.values[name]; ok {
		return v
	}
	return math.NaN()
}

// Has reports whether a variable is defined.
func (c *Context) Has(name string) bool {
	_, ok := c.values[name]
	return ok
}

// NewEstimateContext builds a context from a traffic estimate's three stats
// snapshots, exposed under the prefixes "min.", "mean." and "max.". Absent
// fields become NaN; money fields are converted from micros to base units.
func NewEstimateContext(estimate *keywords.TrafficEstimate) *Context {
	ctx := NewContext()
	if estimate == nil {
		return ctx
	}
	ctx.addStats("min", estimate.Min)
	ctx.addStats("mean", estimate.Mean)
	ctx.addStats("max", estimate.Max)
	return ctx
}

func (c *Context) addStats(prefix string, stats keywords.StatsEstimate) {
	c.Set(prefix+".averageCpc", moneyOrNaN(stats.AverageCpc))
	c.Set(prefix+".averagePosition", floatOrNaN(stats.AveragePosition))
	c.Set(prefix+".clickThroughRate", floatOrNaN(stats.ClickThroughRate))
	c.Set(prefix+".clicksPerDay", floatOrNaN(stats.ClicksPerDay))
	c.Set(prefix+".impressionsPerDay", floatOrNaN(stats.ImpressionsPerDay))
	c.Set(prefix+".totalCost", moneyOrNaN(stats.TotalCost))
}

func floatOrNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}

func moneyOrNaN(m *keywords.Money) float64 {
	if m == nil {
		return math.NaN()
	}
	return m.Units()
}
