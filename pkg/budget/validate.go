package budget

import (
	"fmt"
	"math"

	"github.com/buoybudget/buoybudget/pkg/solar"
	"github.com/buoybudget/buoybudget/pkg/types"
)

func checkRange(field string, v, min, max float64) error {
	if math.IsNaN(v) || v < min || v > max {
		return &solar.NumericDomainError{Field: field, Value: v, Min: min, Max: max}
	}
	return nil
}

// CheckNonNegative returns a NumericDomainError if v is negative.
func CheckNonNegative(field string, v float64) error {
	return checkRange(field, v, 0, math.Inf(1))
}

// CheckDutyCycle returns a NumericDomainError if the duty cycle is not within
// [0, 100] %.
func CheckDutyCycle(dutyCycle float64) error {
	return checkRange("dutyCycle", dutyCycle, 0, 100)
}

// CheckDepthOfDischarge returns a NumericDomainError if the depth of
// discharge is not within [0, 100] %. Anything above 100 would make the
// usable capacity exceed the nameplate capacity.
func CheckDepthOfDischarge(dod float64) error {
	return checkRange("depthOfDischarge", dod, 0, 100)
}

// checkEquipment rejects physically impossible equipment ratings. Errors
// are wrapped with the kind and id of the offending entity.
func checkEquipment(cfg types.ProjectConfig) error {
	for _, l := range cfg.Loads {
		err := CheckNonNegative("powerOn", l.PowerOn)
		if err == nil {
			err = CheckNonNegative("powerIdle", l.PowerIdle)
		}
		if err == nil {
			err = CheckDutyCycle(l.DutyCycle)
		}
		if err != nil {
			return fmt.Errorf("load %s: %w", l.ID, err)
		}
	}
	for _, b := range cfg.Batteries {
		err := CheckNonNegative("voltage", b.Voltage)
		if err == nil {
			err = CheckNonNegative("capacityAh", b.CapacityAh)
		}
		if err == nil {
			err = CheckNonNegative("quantity", float64(b.Quantity))
		}
		if err == nil {
			err = CheckDepthOfDischarge(b.DepthOfDischarge)
		}
		if err != nil {
			return fmt.Errorf("battery %s: %w", b.ID, err)
		}
	}
	for _, p := range cfg.SolarPanels {
		err := CheckNonNegative("ratedPower", p.RatedPower)
		if err == nil {
			err = CheckNonNegative("area", p.Area)
		}
		if err == nil {
			err = checkRange("efficiency", p.Efficiency, 0, 100)
		}
		if err == nil {
			err = solar.CheckTilt(p.Tilt)
		}
		if err != nil {
			return fmt.Errorf("solar panel %s: %w", p.ID, err)
		}
	}
	for _, g := range cfg.WindGenerators {
		if err := CheckNonNegative("ratedPower", g.RatedPower); err != nil {
			return fmt.Errorf("wind generator %s: %w", g.ID, err)
		}
	}
	for _, o := range cfg.OtherSources {
		err := CheckNonNegative("power", o.Power)
		if err == nil {
			err = checkRange("hoursPerDay", o.HoursPerDay, 0, 24)
		}
		if err != nil {
			return fmt.Errorf("other source %s: %w", o.ID, err)
		}
	}
	return nil
}
