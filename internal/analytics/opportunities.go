package analytics

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"maizeintel/internal/config"
	"maizeintel/pkg/contracts/domain"
)

// Opportunity thresholds, in percent
const (
	strongArbitrageMargin   = 15
	moderateArbitrageMargin = 8
	qualityInvestPremium    = 20
	forecastSignalChange    = 5
)

// InsufficientOpportunityData is reported when fewer than two markets trade grade A
const InsufficientOpportunityData = "Insufficient data for opportunity analysis"

// MarketOpportunities collects trading suggestions. With too little data only
// Message is set.
type MarketOpportunities struct {
	Message               string                `json:"message,omitempty"`
	Arbitrage             *ArbitrageOpportunity `json:"arbitrage_opportunity,omitempty"`
	QualityPremium        *QualityPremium       `json:"quality_premium_opportunity,omitempty"`
	Timing                *TimingAdvice         `json:"timing_recommendation,omitempty"`
	ForecastOpportunities []ForecastSignal      `json:"forecast_opportunities,omitempty"`
	GeneratedAt           string                `json:"generated_at"`
}

// ArbitrageOpportunity pairs the cheapest and the dearest grade A market
type ArbitrageOpportunity struct {
	BuyMarket           string  `json:"buy_market"`
	BuyPriceTZS         float64 `json:"buy_price_tzs"`
	SellMarket          string  `json:"sell_market"`
	SellPriceTZS        float64 `json:"sell_price_tzs"`
	PriceGapTZS         float64 `json:"price_gap_tzs"`
	ProfitMarginPercent float64 `json:"profit_margin_percent"`
	Recommendation      string  `json:"recommendation"`
}

// QualityPremium is the grade A premium over grade C
type QualityPremium struct {
	GradeCPriceTZS float64 `json:"grade_c_price_tzs"`
	GradeAPriceTZS float64 `json:"grade_a_price_tzs"`
	PremiumPercent float64 `json:"premium_percent"`
	Recommendation string  `json:"recommendation"`
}

// TimingAdvice is a selling recommendation for the current month
type TimingAdvice struct {
	CurrentPeriod string `json:"current_period"`
	Action        string `json:"action"`
	Reason        string `json:"reason"`
	Confidence    string `json:"confidence"`
}

// ForecastSignal is a market whose next-month forecast departs from today's price
type ForecastSignal struct {
	Market        string  `json:"market"`
	CurrentPrice  float64 `json:"current_price"`
	ForecastPrice float64 `json:"forecast_price"`
	ChangePercent float64 `json:"change_percent"`
	Action        string  `json:"action"`
}

// MarketOpportunities scans recent prices and forecasts for trading opportunities
func (e *Engine) MarketOpportunities() (*MarketOpportunities, error) {
	prices, err := e.source.Prices()
	if err != nil {
		return nil, fmt.Errorf("market opportunities: %w", err)
	}
	forecasts, found, err := e.source.PriceForecasts()
	if err != nil {
		return nil, fmt.Errorf("market opportunities: %w", err)
	}
	now := e.now()
	cutoff := daysBefore(now, e.trailingDays)

	gradeA := grouped{}
	byGrade := grouped{}
	for _, p := range prices {
		if p.Date.Before(cutoff) {
			continue
		}
		byGrade.add(string(p.QualityGrade), p.PricePerKgTZS)
		if p.QualityGrade == domain.GradeA && p.Market != "" {
			gradeA.add(p.Market, p.PricePerKgTZS)
		}
	}

	marketMeans := gradeA.means()
	if len(marketMeans) < 2 {
		e.logger.Debug("too few grade A markets for opportunities", slog.Int("markets", len(marketMeans)))
		return &MarketOpportunities{Message: InsufficientOpportunityData, GeneratedAt: isoformat(now)}, nil
	}

	report := &MarketOpportunities{
		Arbitrage:   e.arbitrage(marketMeans),
		Timing:      e.timing(now.Month()),
		GeneratedAt: isoformat(now),
	}

	gradeMeans := byGrade.means()
	a, hasA := gradeMeans[string(domain.GradeA)]
	c, hasC := gradeMeans[string(domain.GradeC)]
	if hasA && hasC {
		premium := ratioPercent(a, c)
		rec := "Moderate quality focus"
		if premium > qualityInvestPremium {
			rec = "Invest in quality improvement"
		}
		report.QualityPremium = &QualityPremium{
			GradeCPriceTZS: e.price(c),
			GradeAPriceTZS: e.price(a),
			PremiumPercent: e.percent(premium),
			Recommendation: rec,
		}
	}

	if found {
		report.ForecastOpportunities = e.forecastSignals(marketMeans, forecasts, now)
	}
	return report, nil
}

// arbitrage picks the extreme markets; ties go to the alphabetically first market
func (e *Engine) arbitrage(means map[string]float64) *ArbitrageOpportunity {
	var buy, sell string
	for _, m := range sortedKeys(means) {
		if buy == "" || means[m] < means[buy] {
			buy = m
		}
		if sell == "" || means[m] > means[sell] {
			sell = m
		}
	}
	gap := means[sell] - means[buy]
	margin := 0.0
	if means[buy] > 0 {
		margin = gap / means[buy] * 100
	}

	rec := "Limited opportunity"
	switch {
	case margin > strongArbitrageMargin:
		rec = "Strong opportunity"
	case margin > moderateArbitrageMargin:
		rec = "Moderate opportunity"
	}

	return &ArbitrageOpportunity{
		BuyMarket:           buy,
		BuyPriceTZS:         e.price(means[buy]),
		SellMarket:          sell,
		SellPriceTZS:        e.price(means[sell]),
		PriceGapTZS:         e.price(gap),
		ProfitMarginPercent: e.percent(margin),
		Recommendation:      rec,
	}
}

func (e *Engine) timing(month time.Month) *TimingAdvice {
	switch e.registry.SeasonOf(month) {
	case config.SeasonLean:
		return &TimingAdvice{
			CurrentPeriod: "Lean season",
			Action:        "SELL NOW",
			Reason:        "Prices typically peak during lean season (March-May)",
			Confidence:    "High",
		}
	case config.SeasonMasikaHarvest:
		return &TimingAdvice{
			CurrentPeriod: "Masika harvest",
			Action:        "HOLD or STORE",
			Reason:        "Prices typically drop during harvest. Consider storage for better prices later.",
			Confidence:    "High",
		}
	case config.SeasonVuliHarvest:
		return &TimingAdvice{
			CurrentPeriod: "Vuli harvest",
			Action:        "SELL MODERATE VOLUMES",
			Reason:        "Moderate harvest period. Balance immediate sales with storage.",
			Confidence:    "Medium",
		}
	default:
		return &TimingAdvice{
			CurrentPeriod: "Normal period",
			Action:        "MONITOR",
			Reason:        "Prices stable. Watch for seasonal changes.",
			Confidence:    "Medium",
		}
	}
}

// forecastSignals compares next month's grade A forecast with the current
// grade A mean for the leading markets of the registry
func (e *Engine) forecastSignals(current map[string]float64, forecasts []domain.ForecastRecord, now time.Time) []ForecastSignal {
	month := nextMonth(now)
	markets := e.registry.Markets()
	if len(markets) > config.OpportunityMarkets {
		markets = markets[:config.OpportunityMarkets]
	}

	var signals []ForecastSignal
	for _, market := range markets {
		price, ok := current[market]
		if !ok || math.IsNaN(price) || price <= 0 {
			continue
		}
		forecast, ok := firstForecast(forecasts, month, market, domain.GradeA)
		if !ok {
			continue
		}
		change := ratioPercent(forecast, price)
		if math.Abs(change) <= forecastSignalChange {
			continue
		}
		action := "Consider selling soon"
		if change > forecastSignalChange {
			action = "Consider storing"
		}
		signals = append(signals, ForecastSignal{
			Market:        market,
			CurrentPrice:  e.price(price),
			ForecastPrice: e.price(forecast),
			ChangePercent: e.percent(change),
			Action:        action,
		})
	}
	return signals
}

func firstForecast(rows []domain.ForecastRecord, month time.Time, market string, grade domain.QualityGrade) (float64, bool) {
	for _, f := range rows {
		if f.TimeBucket.Equal(month) && f.Market == market && f.Grade == grade {
			return f.Yhat, true
		}
	}
	return 0, false
}
