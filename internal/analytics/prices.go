package analytics

import (
	"fmt"
	"sort"

	"maizeintel/pkg/contracts/domain"
)

// Labels of unscoped price reports
const (
	AllMarkets = "All Markets"
	AllGrades  = "All Grades"
)

// PriceAnalysis reports trailing prices, rankings, grade premiums and the forecast outlook
type PriceAnalysis struct {
	Market             string                   `json:"market"`
	Grade              string                   `json:"grade"`
	CurrentPrices      CurrentPrices            `json:"current_prices"`
	MarketComparison   []MarketPrice            `json:"market_comparison,omitempty"`
	GradeAnalysis      *GradeAnalysis           `json:"grade_analysis,omitempty"`
	ForecastComparison *PriceForecastComparison `json:"forecast_comparison,omitempty"`
	GeneratedAt        string                   `json:"generated_at"`
}

// CurrentPrices summarizes the trailing window
type CurrentPrices struct {
	AvgPriceTZS float64 `json:"avg_price_tzs"`
	MinPriceTZS float64 `json:"min_price_tzs"`
	MaxPriceTZS float64 `json:"max_price_tzs"`
	Volatility  float64 `json:"volatility"`
	Currency    string  `json:"currency"`
}

// MarketPrice is one entry of the market ranking
type MarketPrice struct {
	Market      string  `json:"market"`
	AvgPriceTZS float64 `json:"avg_price_tzs"`
}

// GradeAnalysis compares observed grade prices with the expected premiums
type GradeAnalysis struct {
	PricesByGrade map[domain.QualityGrade]float64      `json:"prices_by_grade"`
	GradePremiums map[domain.QualityGrade]GradePremium `json:"grade_premiums,omitempty"`
}

// GradePremium is the premium of a grade over grade C
type GradePremium struct {
	ActualPremiumPercent   float64 `json:"actual_premium_percent"`
	ExpectedPremiumPercent float64 `json:"expected_premium_percent"`
	DiscrepancyPercent     float64 `json:"discrepancy_percent"`
}

// PriceForecastComparison is the next-month forecast against the current mean
type PriceForecastComparison struct {
	Month             string  `json:"month"`
	ForecastNextMonth float64 `json:"forecast_next_month"`
	VsCurrent         float64 `json:"vs_current"`
}

// PriceAnalysis analyzes prices of the trailing window, optionally scoped to a
// market and/or a grade
func (e *Engine) PriceAnalysis(market, grade string) (*PriceAnalysis, error) {
	prices, err := e.source.Prices()
	if err != nil {
		return nil, fmt.Errorf("price analysis: %w", err)
	}
	forecasts, found, err := e.source.PriceForecasts()
	if err != nil {
		return nil, fmt.Errorf("price analysis: %w", err)
	}

	now := e.now()
	cutoff := daysBefore(now, e.trailingDays)

	var current []float64
	byMarket := grouped{}
	byGrade := grouped{}
	for _, p := range prices {
		if market != "" && p.Market != market {
			continue
		}
		if grade != "" && string(p.QualityGrade) != grade {
			continue
		}
		if p.Date.Before(cutoff) {
			continue
		}
		current = append(current, p.PricePerKgTZS)
		if p.Market != "" {
			byMarket.add(p.Market, p.PricePerKgTZS)
		}
		if p.QualityGrade != "" {
			byGrade.add(string(p.QualityGrade), p.PricePerKgTZS)
		}
	}

	avg := mean(current)
	lo, hi := minMax(current)

	analysis := &PriceAnalysis{
		Market: orLabel(market, AllMarkets),
		Grade:  orLabel(grade, AllGrades),
		CurrentPrices: CurrentPrices{
			AvgPriceTZS: e.price(avg),
			MinPriceTZS: e.price(lo),
			MaxPriceTZS: e.price(hi),
			Volatility:  e.price(sampleStd(current)),
			Currency:    e.registry.Currency,
		},
		GeneratedAt: isoformat(now),
	}

	if market == "" {
		analysis.MarketComparison = e.rankMarkets(byMarket.means())
	}
	if grade == "" {
		analysis.GradeAnalysis = e.gradeAnalysis(byGrade.means())
	}

	if found {
		month := nextMonth(now)
		var next []float64
		for _, f := range forecasts {
			if !f.TimeBucket.Equal(month) {
				continue
			}
			if market != "" && f.Market != market {
				continue
			}
			if grade != "" && string(f.Grade) != grade {
				continue
			}
			next = append(next, f.Yhat)
		}
		if len(next) > 0 {
			forecastAvg := mean(next)
			analysis.ForecastComparison = &PriceForecastComparison{
				Month:             monthKey(month),
				ForecastNextMonth: e.price(forecastAvg),
				VsCurrent:         e.percent(ratioPercent(forecastAvg, avg)),
			}
		}
	}

	return analysis, nil
}

// rankMarkets orders markets by mean price, highest first
func (e *Engine) rankMarkets(means map[string]float64) []MarketPrice {
	ranking := make([]MarketPrice, 0, len(means))
	for _, m := range sortedKeys(means) {
		ranking = append(ranking, MarketPrice{Market: m, AvgPriceTZS: means[m]})
	}
	sort.SliceStable(ranking, func(i, j int) bool {
		return ranking[i].AvgPriceTZS > ranking[j].AvgPriceTZS
	})
	for i := range ranking {
		ranking[i].AvgPriceTZS = e.price(ranking[i].AvgPriceTZS)
	}
	return ranking
}

// gradeAnalysis reports rounded grade means and, when grade C trades, the
// premium of every grade over it
func (e *Engine) gradeAnalysis(means map[string]float64) *GradeAnalysis {
	ga := &GradeAnalysis{PricesByGrade: make(map[domain.QualityGrade]float64, len(means))}
	for g, v := range means {
		ga.PricesByGrade[domain.QualityGrade(g)] = e.price(v)
	}

	base, ok := ga.PricesByGrade[domain.GradeC]
	if !ok {
		return ga
	}

	ga.GradePremiums = make(map[domain.QualityGrade]GradePremium)
	for _, g := range e.registry.Grades() {
		observed, ok := ga.PricesByGrade[g]
		if !ok {
			continue
		}
		actual := e.percent(ratioPercent(observed, base))
		expected := e.percent(e.registry.ExpectedPremium(g) * 100)
		ga.GradePremiums[g] = GradePremium{
			ActualPremiumPercent:   actual,
			ExpectedPremiumPercent: expected,
			DiscrepancyPercent:     e.percent(actual - expected),
		}
	}
	return ga
}

func orLabel(v, label string) string {
	if v == "" {
		return label
	}
	return v
}
