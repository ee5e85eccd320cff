package services

// AnalysisConfig holds the tunable constants of an analysis run. A single
// value is used for the whole run so candidate scores stay comparable.
type AnalysisConfig struct {
	RegularWindowDays  int
	HolidayHorizonDays int
	HolidayBufferDays  int
	MaxIterations      int

	FragmentationPenalty float64
	BonusScale           float64

	MinFreeUnits         int
	SufficiencyThreshold float64
	SampleFraction       float64

	MaxConcurrency int
}

// DefaultAnalysisConfig returns the stock constants.
func DefaultAnalysisConfig() AnalysisConfig {
	return AnalysisConfig{
		RegularWindowDays:    31,
		HolidayHorizonDays:   60,
		HolidayBufferDays:    7,
		MaxIterations:        500,
		FragmentationPenalty: 10,
		BonusScale:           100,
		MinFreeUnits:         3,
		SufficiencyThreshold: 0.70,
		SampleFraction:       0.70,
		MaxConcurrency:       3,
	}
}

// withDefaults fills zero values so a partially populated config is usable.
func (c AnalysisConfig) withDefaults() AnalysisConfig {
	d := DefaultAnalysisConfig()
	if c.RegularWindowDays <= 0 {
		c.RegularWindowDays = d.RegularWindowDays
	}
	if c.HolidayHorizonDays <= 0 {
		c.HolidayHorizonDays = d.HolidayHorizonDays
	}
	if c.HolidayBufferDays < 0 {
		c.HolidayBufferDays = d.HolidayBufferDays
	}
	if c.MaxIterations <= 0 {
		c.MaxIterations = d.MaxIterations
	}
	if c.FragmentationPenalty <= 0 {
		c.FragmentationPenalty = d.FragmentationPenalty
	}
	if c.BonusScale <= 0 {
		c.BonusScale = d.BonusScale
	}
	if c.MinFreeUnits <= 0 {
		c.MinFreeUnits = d.MinFreeUnits
	}
	if c.SufficiencyThreshold <= 0 {
		c.SufficiencyThreshold = d.SufficiencyThreshold
	}
	if c.SampleFraction <= 0 || c.SampleFraction > 1 {
		c.SampleFraction = d.SampleFraction
	}
	if c.MaxConcurrency <= 0 {
		c.MaxConcurrency = d.MaxConcurrency
	}
	return c
}
