package analytics

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"maizeintel/internal/config"
)

// Balance statuses
const (
	BalanceSurplus  = "surplus"
	BalanceShortage = "shortage"
	BalanceBalanced = "balanced"
)

// minCorrelationMonths is the number of joined months needed for a correlation
const minCorrelationMonths = 3

// SupplyDemandBalance relates monthly production, prices and stocks
type SupplyDemandBalance struct {
	CurrentBalance      CurrentBalance      `json:"current_balance"`
	CorrelationAnalysis CorrelationAnalysis `json:"correlation_analysis"`
	HistoricalPatterns  HistoricalPatterns  `json:"historical_patterns"`
	GeneratedAt         string              `json:"generated_at"`
}

// CurrentBalance describes the latest month
type CurrentBalance struct {
	Status         string  `json:"status"`
	Message        string  `json:"message"`
	ProductionTons float64 `json:"production_tons"`
	AvgPriceTZS    float64 `json:"avg_price_tzs"`
	StorageTons    float64 `json:"storage_tons"`
}

// CorrelationAnalysis holds the production/price correlation, absent with too few months
type CorrelationAnalysis struct {
	PriceProductionCorrelation *float64 `json:"price_production_correlation,omitempty"`
	Interpretation             string   `json:"interpretation"`
}

// HistoricalPatterns lists months of unusual production
type HistoricalPatterns struct {
	SurplusPeriods       []string `json:"surplus_periods"`
	ShortagePeriods      []string `json:"shortage_periods"`
	AvgProduction        float64  `json:"avg_production"`
	ProductionVolatility float64  `json:"production_volatility"`
}

// SupplyDemandBalance aggregates all history to months and classifies the latest one
func (e *Engine) SupplyDemandBalance() (*SupplyDemandBalance, error) {
	production, err := e.source.Production()
	if err != nil {
		return nil, fmt.Errorf("supply demand balance: %w", err)
	}
	prices, err := e.source.Prices()
	if err != nil {
		return nil, fmt.Errorf("supply demand balance: %w", err)
	}
	stocks, err := e.source.Storage()
	if err != nil {
		return nil, fmt.Errorf("supply demand balance: %w", err)
	}
	now := e.now()

	prodByMonth := grouped{}
	for _, p := range production {
		prodByMonth.add(monthKey(p.Date), p.QuantityTons)
	}
	priceByMonth := grouped{}
	for _, p := range prices {
		priceByMonth.add(monthKey(p.Date), p.PricePerKgTZS)
	}
	stockByMonth := grouped{}
	for _, s := range stocks {
		stockByMonth.add(monthKey(s.Date), s.QuantityStoredTons)
	}

	monthlyProd := prodByMonth.sums()
	monthlyPrice := priceByMonth.means()
	monthlyStock := stockByMonth.means()

	months := sortedKeys(monthlyProd)
	series := make([]float64, len(months))
	var joinedProd, joinedPrice []float64
	for i, m := range months {
		series[i] = monthlyProd[m]
		if p, ok := monthlyPrice[m]; ok {
			joinedProd = append(joinedProd, monthlyProd[m])
			joinedPrice = append(joinedPrice, p)
		}
	}

	avg := mean(series)
	std := sampleStd(series)

	surplus := make([]string, 0)
	shortage := make([]string, 0)
	for i, m := range months {
		switch {
		case series[i] > avg+std:
			surplus = append(surplus, m)
		case series[i] < avg-std:
			shortage = append(shortage, m)
		}
	}

	latestProd := latest(monthlyProd)
	status, message := BalanceBalanced, "Production at normal levels"
	switch {
	case latestProd > avg:
		status, message = BalanceSurplus, "Production above average - favorable supply conditions"
	case latestProd < avg-std:
		status, message = BalanceShortage, "Production below average - potential supply constraints"
	}

	var correlation *float64
	interpretation := "Positive correlation indicates other factors at play"
	if len(joinedProd) >= minCorrelationMonths {
		if r := stat.Correlation(joinedProd, joinedPrice, nil); !math.IsNaN(r) {
			rounded := e.registry.Round(config.MetricCorrelation, r)
			correlation = &rounded
			if r < 0 {
				interpretation = "Negative correlation expected (high production → low prices)"
			}
		}
	}

	return &SupplyDemandBalance{
		CurrentBalance: CurrentBalance{
			Status:         status,
			Message:        message,
			ProductionTons: e.quantity(latestProd),
			AvgPriceTZS:    e.price(latest(monthlyPrice)),
			StorageTons:    e.quantity(latest(monthlyStock)),
		},
		CorrelationAnalysis: CorrelationAnalysis{
			PriceProductionCorrelation: correlation,
			Interpretation:             interpretation,
		},
		HistoricalPatterns: HistoricalPatterns{
			SurplusPeriods:       surplus,
			ShortagePeriods:      shortage,
			AvgProduction:        e.quantity(avg),
			ProductionVolatility: e.quantity(std),
		},
		GeneratedAt: isoformat(now),
	}, nil
}

// latest returns the value of the most recent month, 0 without data
func latest(byMonth map[string]float64) float64 {
	keys := sortedKeys(byMonth)
	if len(keys) == 0 {
		return 0
	}
	return byMonth[keys[len(keys)-1]]
}
