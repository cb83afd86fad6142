// Package lottery implements the win-probability table and the
// two-step lottery draw.
package lottery

// Band maps an open USD interval (Low, High) to a win percent.
// Both bounds are excluded: a trade of exactly Low or High USD falls
// through to the default percent. The gaps between consecutive bands
// (e.g. [200, 201]) behave the same way. This boundary exclusion is
// intentional and must not be collapsed into closed intervals.
type Band struct {
	Low     float64
	High    float64
	Percent int
}

// Chances is an ascending table of bands plus a top threshold and a
// default percent for everything the bands do not cover.
type Chances struct {
	Bands          []Band
	TopThreshold   float64 // values >= TopThreshold get TopPercent
	TopPercent     int
	DefaultPercent int
}

// DefaultChances returns the production probability table.
func DefaultChances() Chances {
	return Chances{
		Bands: []Band{
			{Low: 97, High: 200, Percent: 1},
			{Low: 201, High: 300, Percent: 2},
			{Low: 301, High: 400, Percent: 3},
			{Low: 401, High: 500, Percent: 4},
			{Low: 501, High: 600, Percent: 5},
			{Low: 601, High: 700, Percent: 6},
			{Low: 701, High: 800, Percent: 7},
			{Low: 801, High: 900, Percent: 8},
			{Low: 901, High: 1000, Percent: 9},
		},
		TopThreshold:   1000,
		TopPercent:     10,
		DefaultPercent: 2,
	}
}

// ChanceFor maps a trade's USD value to a win percent. Pure function;
// never fails. Negative and zero values fall to the default percent.
func (c Chances) ChanceFor(usd float64) int {
	for _, b := range c.Bands {
		if usd > b.Low && usd < b.High {
			return b.Percent
		}
	}
	if usd >= c.TopThreshold && c.TopThreshold > 0 {
		return c.TopPercent
	}
	return c.DefaultPercent
}
