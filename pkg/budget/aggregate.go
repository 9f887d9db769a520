package budget

import (
	"github.com/buoybudget/buoybudget/pkg/types"
)

// LoadTotals is the combined draw of all loads.
type LoadTotals struct {
	AveragePower float64 `json:"averagePower"` // W
	DailyEnergy  float64 `json:"dailyEnergy"`  // Wh
}

// AggregateLoads sums the average power and daily energy of every load.
func AggregateLoads(loads []types.Load) LoadTotals {
	var t LoadTotals
	for _, l := range loads {
		t.AveragePower += l.AveragePower()
		t.DailyEnergy += l.DailyEnergy()
	}
	return t
}

// BankTotals is the combined capacity of the battery bank.
type BankTotals struct {
	TotalCapacityWh  float64 `json:"totalCapacityWh"`
	UsableCapacityWh float64 `json:"usableCapacityWh"`
}

// AggregateBatteries sums the nameplate and usable capacity of every
// battery group.
func AggregateBatteries(batteries []types.Battery) BankTotals {
	var t BankTotals
	for _, b := range batteries {
		t.TotalCapacityWh += b.TotalCapacityWh()
		t.UsableCapacityWh += b.UsableCapacityWh()
	}
	return t
}
