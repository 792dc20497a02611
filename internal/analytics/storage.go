package analytics

import (
	"fmt"
	"log/slog"
	"sort"

	"maizeintel/pkg/contracts/domain"
)

// AllWarehouses labels an unscoped storage report
const AllWarehouses = "All Warehouses"

// Alert severities
const (
	SeverityHigh   = "high"
	SeverityMedium = "medium"
)

// StorageStatus reports warehouse utilization and alerts
type StorageStatus struct {
	Warehouse             string            `json:"warehouse"`
	NationalSummary       StorageTotals     `json:"national_summary"`
	UtilizationCategories StorageCategories `json:"utilization_categories"`
	// Warehouses lists every warehouse when unscoped
	Warehouses []WarehouseStatus `json:"warehouses,omitempty"`
	// Selected is the requested warehouse when scoped, nil when unknown
	Selected    *WarehouseStatus `json:"warehouse_status,omitempty"`
	Alerts      []StorageAlert   `json:"alerts"`
	GeneratedAt string           `json:"generated_at"`
}

// StorageCategories counts warehouses per utilization band
type StorageCategories struct {
	Optimal      int `json:"optimal"`
	Overstocked  int `json:"overstocked"`
	Understocked int `json:"understocked"`
}

// WarehouseStatus is the latest snapshot of one warehouse
type WarehouseStatus struct {
	WarehouseID        string  `json:"warehouse_id"`
	Region             string  `json:"region"`
	QuantityStoredTons float64 `json:"quantity_stored_tons"`
	CapacityTons       float64 `json:"capacity_tons"`
	UtilizationPercent float64 `json:"utilization_percent"`
}

// StorageAlert flags a group of warehouses outside the healthy band
type StorageAlert struct {
	Type       string   `json:"type"`
	Severity   string   `json:"severity"`
	Message    string   `json:"message"`
	Warehouses []string `json:"warehouses"`
}

// StorageStatus categorizes the latest record of every warehouse. A non-empty
// warehouse restricts the report to that warehouse.
func (e *Engine) StorageStatus(warehouse string) (*StorageStatus, error) {
	storage, err := e.source.Storage()
	if err != nil {
		return nil, fmt.Errorf("storage status: %w", err)
	}
	now := e.now()

	latest := latestPerWarehouse(storage)
	if warehouse != "" {
		scoped := latest[:0]
		for _, s := range latest {
			if s.WarehouseID == warehouse {
				scoped = append(scoped, s)
			}
		}
		latest = scoped
	}

	thresholds := e.registry.Storage
	var categories StorageCategories
	var over, under []string
	statuses := make([]WarehouseStatus, 0, len(latest))

	for _, s := range latest {
		utilization := e.util(s.UtilizationPercent())
		statuses = append(statuses, WarehouseStatus{
			WarehouseID:        s.WarehouseID,
			Region:             s.Region,
			QuantityStoredTons: e.quantity(s.QuantityStoredTons),
			CapacityTons:       e.quantity(s.CapacityTons),
			UtilizationPercent: utilization,
		})

		// warehouses without capacity cannot be categorized
		if s.CapacityTons <= 0 {
			continue
		}
		switch {
		case utilization > thresholds.CriticalHigh:
			over = append(over, s.WarehouseID)
		case utilization < thresholds.CriticalLow:
			under = append(under, s.WarehouseID)
		}
		if utilization >= thresholds.OptimalMin && utilization <= thresholds.OptimalMax {
			categories.Optimal++
		}
	}
	categories.Overstocked = len(over)
	categories.Understocked = len(under)

	alerts := []StorageAlert{}
	if len(over) > 0 {
		alerts = append(alerts, StorageAlert{
			Type:       "overstocked",
			Severity:   SeverityHigh,
			Message:    fmt.Sprintf("%d warehouse(s) over %s%% capacity", len(over), formatThreshold(thresholds.CriticalHigh)),
			Warehouses: over,
		})
	}
	if len(under) > 0 {
		alerts = append(alerts, StorageAlert{
			Type:       "understocked",
			Severity:   SeverityMedium,
			Message:    fmt.Sprintf("%d warehouse(s) under %s%% capacity", len(under), formatThreshold(thresholds.CriticalLow)),
			Warehouses: under,
		})
	}

	if len(alerts) > 0 {
		e.logger.Debug("storage alerts raised",
			slog.Int("overstocked", len(over)),
			slog.Int("understocked", len(under)))
	}

	status := &StorageStatus{
		Warehouse:             AllWarehouses,
		NationalSummary:       e.storageTotals(latest),
		UtilizationCategories: categories,
		Alerts:                alerts,
		GeneratedAt:           isoformat(now),
	}
	if warehouse == "" {
		status.Warehouses = statuses
	} else {
		status.Warehouse = warehouse
		if len(statuses) > 0 {
			status.Selected = &statuses[0]
		}
	}

	return status, nil
}

// latestPerWarehouse keeps the most recent record of each warehouse, the later
// row winning date ties, ordered by warehouse id
func latestPerWarehouse(records []domain.StorageRecord) []domain.StorageRecord {
	latest := make(map[string]domain.StorageRecord)
	for _, r := range records {
		if r.WarehouseID == "" {
			continue
		}
		if cur, ok := latest[r.WarehouseID]; !ok || !r.Date.Before(cur.Date) {
			latest[r.WarehouseID] = r
		}
	}

	out := make([]domain.StorageRecord, 0, len(latest))
	for _, r := range latest {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WarehouseID < out[j].WarehouseID })
	return out
}

func formatThreshold(v float64) string {
	return fmt.Sprintf("%g", v)
}
