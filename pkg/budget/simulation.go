package budget

import (
	"context"
	"log/slog"
	"math"

	"github.com/buoybudget/buoybudget/pkg/log"
	"github.com/buoybudget/buoybudget/pkg/types"
)

// DaysPerYear is the length of a simulated year.
const DaysPerYear = 365

type simulateOptions struct {
	carryDeficit bool
}

// SimulateOption changes how Simulate treats the battery.
type SimulateOption func(*simulateOptions)

// WithCarryDeficit keeps track of energy the battery could not supply. The
// debt must be repaid by later surpluses before the charge rises again.
// Without this option an empty battery simply stays at 0 % and the shortfall
// is forgotten.
func WithCarryDeficit() SimulateOption {
	return func(o *simulateOptions) {
		o.carryDeficit = true
	}
}

// Simulate replays the monthly net energy of the budget as a daily state of
// charge trace over one year. The battery starts fully charged on day 1 and
// every day of a month receives an equal share of the month's net energy.
// The charge is clamped between empty and the usable capacity; energy above
// the capacity is discarded.
func (c *Calculator) Simulate(ctx context.Context, result types.BudgetResult, usableCapacityWh float64, opts ...SimulateOption) types.SOCTrace {
	var o simulateOptions
	for _, opt := range opts {
		opt(&o)
	}

	var net [12]float64
	for _, r := range result.MonthlyData {
		if r.Month >= 1 && r.Month <= 12 {
			net[r.Month-1] = r.NetEnergy
		}
	}

	trace := types.SOCTrace{
		Samples:      make([]float64, 0, DaysPerYear),
		MinSOC:       math.Inf(1),
		CarryDeficit: o.carryDeficit,
	}

	charge := usableCapacityWh
	var debt float64
	day := 0
	for i := 0; i < 12; i++ {
		days := DaysInMonth(i + 1)
		dailyNet := net[i] / float64(days)
		for d := 0; d < days; d++ {
			day++
			if usableCapacityWh <= 0 {
				record(&trace, 0, day)
				continue
			}

			if o.carryDeficit {
				level := charge - debt + dailyNet
				if level < 0 {
					debt = -level
					charge = 0
				} else {
					debt = 0
					charge = math.Min(level, usableCapacityWh)
				}
			} else {
				charge = math.Max(0, math.Min(charge+dailyNet, usableCapacityWh))
			}
			record(&trace, 100*charge/usableCapacityWh, day)
		}
	}

	log.Ctx(ctx).DebugContext(
		ctx,
		"soc simulated",
		slog.Float64("usableCapacityWh", usableCapacityWh),
		slog.Float64("minSOC", trace.MinSOC),
		slog.Int("minDay", trace.MinDay),
		slog.Int("daysEmpty", trace.DaysEmpty),
		slog.Float64("deficitWh", debt),
	)
	return trace
}

func record(t *types.SOCTrace, soc float64, day int) {
	t.Samples = append(t.Samples, soc)
	if soc < t.MinSOC {
		t.MinSOC = soc
		t.MinDay = day
	}
	if soc <= 0 {
		t.DaysEmpty++
	}
	if soc >= 100 {
		t.DaysFull++
	}
}
