package types

import (
	"encoding/json"
	"math"
)

// MonthlyBudgetRow is the energy balance of a single month. All energies are
// in Wh.
type MonthlyBudgetRow struct {
	Month           int     `json:"month"`
	SolarGeneration float64 `json:"solarGeneration"`
	WindGeneration  float64 `json:"windGeneration"`
	OtherGeneration float64 `json:"otherGeneration"`
	TotalGeneration float64 `json:"totalGeneration"`
	Consumption     float64 `json:"consumption"`
	NetEnergy       float64 `json:"netEnergy"`
	Surplus         bool    `json:"surplus"`
}

// BudgetSummary aggregates the monthly rows over the year.
type BudgetSummary struct {
	AnnualGeneration  float64 `json:"annualGeneration"`
	AnnualSolar       float64 `json:"annualSolar"`
	AnnualWind        float64 `json:"annualWind"`
	AnnualOther       float64 `json:"annualOther"`
	AnnualConsumption float64 `json:"annualConsumption"`
	NetAnnual         float64 `json:"netAnnual"`
	// AveragePower is the combined average draw of all loads in W.
	AveragePower float64 `json:"averagePower"`
	// DailyConsumption is the combined daily energy of all loads in Wh.
	DailyConsumption float64 `json:"dailyConsumption"`
	// BatteryCapacity is the usable capacity of the bank in Wh.
	BatteryCapacity      float64 `json:"batteryCapacity"`
	TotalBatteryCapacity float64 `json:"totalBatteryCapacity"`
	// AutonomyDays is +Inf when the loads draw nothing. It is encoded as
	// null in that case.
	AutonomyDays   float64 `json:"autonomyDays"`
	SystemAdequate bool    `json:"systemAdequate"`
	// WorstMonth is the 1-based month with the lowest net energy.
	WorstMonth          int     `json:"worstMonth"`
	WorstMonthNetEnergy float64 `json:"worstMonthNetEnergy"`
}

// MarshalJSON implements json.Marshaler.
func (s BudgetSummary) MarshalJSON() ([]byte, error) {
	type summary BudgetSummary
	out := struct {
		summary
		AutonomyDays *float64 `json:"autonomyDays"`
	}{summary: summary(s)}
	if !math.IsInf(s.AutonomyDays, 0) && !math.IsNaN(s.AutonomyDays) {
		out.AutonomyDays = &s.AutonomyDays
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *BudgetSummary) UnmarshalJSON(b []byte) error {
	type summary BudgetSummary
	in := struct {
		*summary
		AutonomyDays *float64 `json:"autonomyDays"`
	}{summary: (*summary)(s)}
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	if in.AutonomyDays == nil {
		s.AutonomyDays = math.Inf(1)
	} else {
		s.AutonomyDays = *in.AutonomyDays
	}
	return nil
}

// Reliability flags generation sources that are configured but had no
// measured data to back them. Flagged sources contribute zero energy.
type Reliability struct {
	SolarDataMissing bool `json:"solarDataMissing"`
	WindDataMissing  bool `json:"windDataMissing"`
}

// Reliable reports whether every configured source was backed by data.
func (r Reliability) Reliable() bool {
	return !r.SolarDataMissing && !r.WindDataMissing
}

// BudgetResult is the output of a budget calculation.
type BudgetResult struct {
	Summary     BudgetSummary      `json:"summary"`
	MonthlyData []MonthlyBudgetRow `json:"monthlyData"`
	Reliability Reliability        `json:"reliability"`
}

// SOCTrace is a daily battery state of charge trace over one year.
type SOCTrace struct {
	// Samples holds one SOC value (0-100 %) per day, 365 in total.
	Samples []float64 `json:"samples"`
	MinSOC  float64   `json:"minSOC"`
	// MinDay is the 1-based day of year at which MinSOC was first reached.
	MinDay    int `json:"minDay"`
	DaysEmpty int `json:"daysEmpty"`
	DaysFull  int `json:"daysFull"`
	// CarryDeficit is true when unmet energy was carried between days.
	CarryDeficit bool `json:"carryDeficit"`
}
