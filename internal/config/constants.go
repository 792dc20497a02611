package config

// Application constants
const (
	AppName = "maizeintel"

	// Currency used for every price figure
	Currency = "TZS"

	// Dataset file names (relative to the data directory)
	DefaultDataDir      = "data"
	DefaultForecastsDir = "forecasts"
	ProductionFileName  = "maize_production.csv"
	PriceFileName       = "maize_prices.csv"
	StorageFileName     = "maize_storage.csv"

	// Trainer artifacts
	ProductionForecastSummaryName  = "forecast_summary.csv"
	PriceForecastSummaryName       = "forecast_summary_all_markets.csv"
	ProductionForecastSeriesPrefix = "forecast_"

	// Analytics defaults
	DefaultPeriod      = "current"
	DefaultPeriodDays  = 30
	TrailingPriceDays  = 7
	ForecastLookahead  = 30
	OpportunityMarkets = 5

	// Price model inventory size when the forecast summary has no market/grade columns
	DefaultPriceModelCount = 36
	ForecastModelType      = "Prophet"
)
