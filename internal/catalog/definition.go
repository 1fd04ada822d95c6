// Package catalog holds the static list of indicators the API serves and the
// per-indicator parameters of the strategy used to resolve each value.
package catalog

// Strategy names how an indicator's value is obtained.
type Strategy string

const (
	// StrategyModel grows a base value linearly with time since startup.
	StrategyModel Strategy = "model"
	// StrategyWorldBank reads the latest yearly value from the World Bank API.
	StrategyWorldBank Strategy = "worldbank"
	// StrategyBCB reads the latest observation of a Banco Central SGS series.
	StrategyBCB Strategy = "bcb_sgs"
)

// Params is the strategy-specific part of a Definition. Exactly one of the
// types in this package implements it; the set is closed.
type Params interface {
	Strategy() Strategy
	params()
}

// ModelParams drives the time-based growth model.
type ModelParams struct {
	BaseValue       float64
	GrowthPerSecond float64
}

// WorldBankParams identifies a World Bank country/indicator pair.
type WorldBankParams struct {
	CountryCode   string
	IndicatorCode string
}

// BCBParams identifies a Banco Central SGS series.
type BCBParams struct {
	SeriesID int
}

func (ModelParams) Strategy() Strategy     { return StrategyModel }
func (WorldBankParams) Strategy() Strategy { return StrategyWorldBank }
func (BCBParams) Strategy() Strategy       { return StrategyBCB }

func (ModelParams) params()     {}
func (WorldBankParams) params() {}
func (BCBParams) params()       {}

// Definition describes one indicator. It is immutable once loaded.
type Definition struct {
	ID       string
	Title    string
	Category string
	Unit     string
	Source   string // static label, used by the model strategy
	Params   Params
}

// Strategy returns the strategy tag of the definition.
func (d Definition) Strategy() Strategy {
	if d.Params == nil {
		return ""
	}
	return d.Params.Strategy()
}
