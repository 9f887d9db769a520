package budget

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/soniakeys/meeus/v3/julian"
	"gonum.org/v1/gonum/floats"

	"github.com/buoybudget/buoybudget/pkg/log"
	"github.com/buoybudget/buoybudget/pkg/solar"
	"github.com/buoybudget/buoybudget/pkg/types"
	"github.com/buoybudget/buoybudget/pkg/wind"
)

// DefaultAmbientTemperature is used for thermal derating when the solar data
// carries no temperature series.
const DefaultAmbientTemperature = 25.0

// the budget is computed for a 365 day year
var daysInMonth = [12]int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// representativeYear is any non-leap year; only the day-of-year matters.
const representativeYear = 2001

// RepresentativeDay returns the day of year (1-365) used to stand in for the
// whole month (1-12): the 15th.
func RepresentativeDay(month int) int {
	return julian.DayOfYear(representativeYear, month, 15, false)
}

// DaysInMonth returns the number of days of the month (1-12) in a 365 day
// year.
func DaysInMonth(month int) int {
	return daysInMonth[month-1]
}

// Calculator computes energy budgets and battery state of charge traces for
// a project.
type Calculator struct {
}

// NewCalculator creates a new Calculator.
func NewCalculator() *Calculator {
	return &Calculator{}
}

// CalculateBudget computes the monthly energy balance and the annual summary
// of the project.
//
// Projects without loads or without any generation source return a
// *ValidationError. An out of range site latitude, panel tilt, duty cycle,
// depth of discharge or a negative rating returns a *solar.NumericDomainError.
// Sources that are configured without backing measurements contribute
// nothing and are flagged in the result's Reliability. Loads that draw
// nothing give an infinite AutonomyDays.
func (c *Calculator) CalculateBudget(ctx context.Context, cfg types.ProjectConfig) (types.BudgetResult, error) {
	if len(cfg.Loads) == 0 {
		return types.BudgetResult{}, &ValidationError{Err: ErrNoLoads}
	}
	if len(cfg.SolarPanels) == 0 && len(cfg.WindGenerators) == 0 && len(cfg.OtherSources) == 0 {
		return types.BudgetResult{}, &ValidationError{Err: ErrNoGeneration}
	}
	if err := checkEquipment(cfg); err != nil {
		return types.BudgetResult{}, err
	}
	loads := AggregateLoads(cfg.Loads)

	var reliability types.Reliability
	hasSolar := cfg.HasSolarData()
	if len(cfg.SolarPanels) > 0 && !hasSolar {
		reliability.SolarDataMissing = true
		log.Ctx(ctx).WarnContext(ctx, "solar panels configured without solar data", slog.Int("panels", len(cfg.SolarPanels)))
	}
	if hasSolar {
		if err := solar.CheckLatitude(cfg.SolarData.Latitude); err != nil {
			return types.BudgetResult{}, fmt.Errorf("solar data: %w", err)
		}
	}
	hasWind := cfg.HasWindData()
	if len(cfg.WindGenerators) > 0 && !hasWind {
		reliability.WindDataMissing = true
		log.Ctx(ctx).WarnContext(ctx, "wind generators configured without wind data", slog.Int("generators", len(cfg.WindGenerators)))
	}

	var otherDaily float64
	for _, o := range cfg.OtherSources {
		otherDaily += o.DailyEnergy()
	}

	rows := make([]types.MonthlyBudgetRow, 12)
	var solarWh, windWh, otherWh, consumptionWh, netWh [12]float64
	for i := range rows {
		month := i + 1
		days := DaysInMonth(month)

		if hasSolar {
			solarWh[i] = c.solarMonthlyEnergy(cfg.SolarPanels, cfg.SolarData, month)
		}
		if hasWind {
			avg, _ := cfg.WindData.AvgSpeed(month)
			for _, g := range cfg.WindGenerators {
				windWh[i] += wind.MonthlyEnergy(g, avg, days)
			}
		}
		otherWh[i] = otherDaily * float64(days)
		consumptionWh[i] = loads.DailyEnergy * float64(days)

		total := solarWh[i] + windWh[i] + otherWh[i]
		netWh[i] = total - consumptionWh[i]
		rows[i] = types.MonthlyBudgetRow{
			Month:           month,
			SolarGeneration: solarWh[i],
			WindGeneration:  windWh[i],
			OtherGeneration: otherWh[i],
			TotalGeneration: total,
			Consumption:     consumptionWh[i],
			NetEnergy:       netWh[i],
			Surplus:         netWh[i] >= 0,
		}
	}

	bank := AggregateBatteries(cfg.Batteries)
	summary := types.BudgetSummary{
		AnnualSolar:          floats.Sum(solarWh[:]),
		AnnualWind:           floats.Sum(windWh[:]),
		AnnualOther:          floats.Sum(otherWh[:]),
		AnnualConsumption:    floats.Sum(consumptionWh[:]),
		AveragePower:         loads.AveragePower,
		DailyConsumption:     loads.DailyEnergy,
		BatteryCapacity:      bank.UsableCapacityWh,
		TotalBatteryCapacity: bank.TotalCapacityWh,
		SystemAdequate:       true,
	}
	summary.AnnualGeneration = summary.AnnualSolar + summary.AnnualWind + summary.AnnualOther
	summary.NetAnnual = summary.AnnualGeneration - summary.AnnualConsumption
	if summary.AnnualConsumption > 0 {
		summary.AutonomyDays = bank.UsableCapacityWh / (summary.AnnualConsumption / 365)
	} else {
		// loads that draw nothing never empty the bank
		summary.AutonomyDays = math.Inf(1)
	}
	for _, r := range rows {
		if !r.Surplus {
			summary.SystemAdequate = false
			break
		}
	}
	// MinIdx returns the first index on ties so the earliest month wins
	worst := floats.MinIdx(netWh[:])
	summary.WorstMonth = worst + 1
	summary.WorstMonthNetEnergy = netWh[worst]

	log.Ctx(ctx).DebugContext(
		ctx,
		"budget calculated",
		slog.String("project", cfg.Name),
		slog.Float64("annualGeneration", summary.AnnualGeneration),
		slog.Float64("annualConsumption", summary.AnnualConsumption),
		slog.Bool("adequate", summary.SystemAdequate),
		slog.Int("worstMonth", summary.WorstMonth),
	)

	return types.BudgetResult{
		Summary:     summary,
		MonthlyData: rows,
		Reliability: reliability,
	}, nil
}

// solarMonthlyEnergy returns the energy in Wh produced by all panels in the
// month (1-12).
func (c *Calculator) solarMonthlyEnergy(panels []types.SolarPanel, sd *types.SolarData, month int) float64 {
	day := RepresentativeDay(month)
	days := DaysInMonth(month)
	ghi := sd.MonthlyGHI[month-1]
	diffuse := sd.MonthlyDiffuse[month-1]
	ambient := DefaultAmbientTemperature
	if len(sd.MonthlyTemperature) == 12 {
		ambient = sd.MonthlyTemperature[month-1]
	}
	daylight := solar.DaylightHours(sd.Latitude, solar.Declination(day))

	var total float64
	for _, p := range panels {
		// kWh/m²/day is numerically equal to peak sun hours at 1000 W/m²
		poa := solar.IrradianceOnTilt(ghi, diffuse, p.Tilt, p.Azimuth, sd.Latitude, day)

		// cell temperature is driven by the mean irradiance while the sun is up
		var meanIrradiance float64
		if daylight > 0 {
			meanIrradiance = poa * 1000 / daylight
		}
		cellTemp := solar.EstimateCellTemperature(ambient, meanIrradiance, p.NOCT)
		coeff := p.TempCoefficient
		if coeff == 0 {
			coeff = solar.DefaultTempCoefficient
		}

		qty := p.Quantity
		if qty <= 0 {
			qty = 1
		}
		daily := p.STCPower() * poa * float64(qty)
		total += solar.ApplyDerating(daily, cellTemp, coeff, solar.STCTemperature) * float64(days)
	}
	return total
}
