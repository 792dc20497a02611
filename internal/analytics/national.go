package analytics

import (
	"fmt"

	"maizeintel/pkg/contracts/domain"
)

// NationalSummary is the headline KPI report
type NationalSummary struct {
	Period      string             `json:"period"`
	PeriodDays  int                `json:"period_days"`
	Production  NationalProduction `json:"production"`
	Prices      NationalPrices     `json:"prices"`
	Storage     StorageTotals      `json:"storage"`
	GeneratedAt string             `json:"generated_at"`
}

// NationalProduction aggregates production in the period
type NationalProduction struct {
	TotalTons     float64 `json:"total_tons"`
	AvgPerRegion  float64 `json:"avg_per_region"`
	ActiveRegions int     `json:"active_regions"`
}

// NationalPrices aggregates prices in the period
type NationalPrices struct {
	AvgPriceTZS   float64 `json:"avg_price_tzs"`
	Currency      string  `json:"currency"`
	ActiveMarkets int     `json:"active_markets"`
}

// StorageTotals sums the latest stock of each warehouse over all history,
// whatever the period
type StorageTotals struct {
	TotalStoredTons    float64 `json:"total_stored_tons"`
	TotalCapacityTons  float64 `json:"total_capacity_tons"`
	UtilizationPercent float64 `json:"utilization_percent"`
	ActiveWarehouses   int     `json:"active_warehouses"`
}

// NationalSummary reports production, price and storage KPIs for a period token
func (e *Engine) NationalSummary(period string) (*NationalSummary, error) {
	production, err := e.source.Production()
	if err != nil {
		return nil, fmt.Errorf("national summary: %w", err)
	}
	prices, err := e.source.Prices()
	if err != nil {
		return nil, fmt.Errorf("national summary: %w", err)
	}
	storage, err := e.source.Storage()
	if err != nil {
		return nil, fmt.Errorf("national summary: %w", err)
	}

	now := e.now()
	period, days, cutoff := e.window(now, period)

	var total float64
	regions := map[string]struct{}{}
	for _, r := range production {
		if r.Date.Before(cutoff) {
			continue
		}
		total += r.QuantityTons
		if r.Region != "" {
			regions[r.Region] = struct{}{}
		}
	}

	var priceVals []float64
	markets := map[string]struct{}{}
	for _, p := range prices {
		if p.Date.Before(cutoff) {
			continue
		}
		priceVals = append(priceVals, p.PricePerKgTZS)
		if p.Market != "" {
			markets[p.Market] = struct{}{}
		}
	}

	avgPerRegion := 0.0
	if len(regions) > 0 {
		avgPerRegion = total / float64(len(regions))
	}

	return &NationalSummary{
		Period:     period,
		PeriodDays: days,
		Production: NationalProduction{
			TotalTons:     e.quantity(total),
			AvgPerRegion:  e.quantity(avgPerRegion),
			ActiveRegions: len(regions),
		},
		Prices: NationalPrices{
			AvgPriceTZS:   e.price(mean(priceVals)),
			Currency:      e.registry.Currency,
			ActiveMarkets: len(markets),
		},
		Storage:     e.storageTotals(latestPerWarehouse(storage)),
		GeneratedAt: isoformat(now),
	}, nil
}

func (e *Engine) storageTotals(latest []domain.StorageRecord) StorageTotals {
	var stored, capacity float64
	for _, s := range latest {
		stored += s.QuantityStoredTons
		capacity += s.CapacityTons
	}
	utilization := 0.0
	if capacity > 0 {
		utilization = stored / capacity * 100
	}
	return StorageTotals{
		TotalStoredTons:    e.quantity(stored),
		TotalCapacityTons:  e.quantity(capacity),
		UtilizationPercent: e.util(utilization),
		ActiveWarehouses:   len(latest),
	}
}
