package types

import (
	"fmt"
	"time"
)

// BatteryType is the chemistry of a battery.
type BatteryType string

const (
	BatteryTypeLeadAcid   BatteryType = "Lead-Acid"
	BatteryTypeAGM        BatteryType = "AGM"
	BatteryTypeGel        BatteryType = "Gel"
	BatteryTypeLithiumIon BatteryType = "Lithium-Ion"
	BatteryTypeLiFePO4    BatteryType = "LiFePO4"
)

// DefaultDepthOfDischarge is the recommended depth of discharge (in %) per
// battery chemistry. Lead based chemistries are kept shallow to preserve
// cycle life, lithium chemistries tolerate much deeper discharge.
var DefaultDepthOfDischarge = map[BatteryType]float64{
	BatteryTypeLeadAcid:   50,
	BatteryTypeAGM:        50,
	BatteryTypeGel:        50,
	BatteryTypeLithiumIon: 80,
	BatteryTypeLiFePO4:    90,
}

// ProjectConfig is the complete description of a buoy power system.
type ProjectConfig struct {
	Version        int             `json:"version"`
	Name           string          `json:"name"`
	Loads          []Load          `json:"loads"`
	Batteries      []Battery       `json:"batteries"`
	SolarPanels    []SolarPanel    `json:"solarPanels"`
	WindGenerators []WindGenerator `json:"windGenerators"`
	OtherSources   []OtherSource   `json:"otherSources"`
	SolarData      *SolarData      `json:"solarData,omitempty"`
	WindData       *WindData       `json:"windData,omitempty"`
}

// Load is a piece of equipment that draws power from the battery bank.
type Load struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	PowerOn   float64 `json:"powerOn"`   // W
	PowerIdle float64 `json:"powerIdle"` // W
	DutyCycle float64 `json:"dutyCycle"` // % of time spent in the ON state
}

// AveragePower returns the duty-cycle weighted power draw in W.
func (l Load) AveragePower() float64 {
	d := l.DutyCycle / 100
	return l.PowerOn*d + l.PowerIdle*(1-d)
}

// DailyEnergy returns the energy drawn per day in Wh.
func (l Load) DailyEnergy() float64 {
	return l.AveragePower() * 24
}

// Battery is a group of identical batteries in the bank.
type Battery struct {
	ID               string      `json:"id"`
	Name             string      `json:"name"`
	Type             BatteryType `json:"type"`
	Voltage          float64     `json:"voltage"`
	CapacityAh       float64     `json:"capacityAh"`
	Quantity         int         `json:"quantity"`
	DepthOfDischarge float64     `json:"depthOfDischarge"` // %
}

// TotalCapacityWh returns the nameplate energy of the group.
func (b Battery) TotalCapacityWh() float64 {
	return b.Voltage * b.CapacityAh * float64(b.Quantity)
}

// UsableCapacityWh returns the energy available before reaching the depth of
// discharge limit.
func (b Battery) UsableCapacityWh() float64 {
	return b.TotalCapacityWh() * b.DepthOfDischarge / 100
}

// SetType changes the chemistry and resets the depth of discharge to the
// chemistry default. Callers that want a custom depth of discharge set it
// after calling SetType.
func (b *Battery) SetType(t BatteryType) {
	b.Type = t
	if dod, ok := DefaultDepthOfDischarge[t]; ok {
		b.DepthOfDischarge = dod
	}
}

// SolarPanel is a group of identical PV panels sharing an orientation.
type SolarPanel struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	RatedPower float64 `json:"ratedPower"` // W at STC
	Area       float64 `json:"area"`       // m²
	Efficiency float64 `json:"efficiency"` // %
	Quantity   int     `json:"quantity"`
	Tilt       float64 `json:"tilt"`    // degrees from horizontal
	Azimuth    float64 `json:"azimuth"` // degrees clockwise from north
	// NOCT is the nominal operating cell temperature in °C. Zero means 45.
	NOCT float64 `json:"noct,omitempty"`
	// TempCoefficient is the power temperature coefficient in %/°C. Zero
	// means -0.4.
	TempCoefficient float64 `json:"tempCoefficient,omitempty"`
}

// STCPower returns the output of a single panel at 1000 W/m² and 25 °C.
// Area and efficiency win over the rated power when both are set.
func (p SolarPanel) STCPower() float64 {
	if p.Area > 0 && p.Efficiency > 0 {
		return p.Area * p.Efficiency / 100 * 1000
	}
	return p.RatedPower
}

// WindGenerator is a group of identical wind turbines.
type WindGenerator struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	RatedPower  float64 `json:"ratedPower"`  // W
	CutInSpeed  float64 `json:"cutInSpeed"`  // m/s
	RatedSpeed  float64 `json:"ratedSpeed"`  // m/s
	CutOutSpeed float64 `json:"cutOutSpeed"` // m/s
	Quantity    int     `json:"quantity"`
}

// OtherSource is a constant generator such as a fuel cell or a wave energy
// converter.
type OtherSource struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Power       float64 `json:"power"` // W
	HoursPerDay float64 `json:"hoursPerDay"`
}

// DailyEnergy returns the energy produced per day in Wh.
func (o OtherSource) DailyEnergy() float64 {
	return o.Power * o.HoursPerDay
}

// SolarData holds monthly irradiance for the deployment site. Irradiance is
// daily insolation in kWh/m²/day, which is numerically equal to peak sun
// hours.
type SolarData struct {
	Latitude       float64   `json:"latitude"`
	Longitude      float64   `json:"longitude"`
	MonthlyGHI     []float64 `json:"monthlyGHI"`
	MonthlyDiffuse []float64 `json:"monthlyDiffuse"`
	// MonthlyTemperature is the mean ambient air temperature in °C. It is
	// optional; 25 °C is assumed when absent.
	MonthlyTemperature []float64 `json:"monthlyTemperature,omitempty"`
	FetchedAt          time.Time `json:"fetchedAt"`
	Source             string    `json:"source"`
}

// WindLocation identifies where wind data was measured.
type WindLocation struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// MonthlyWind holds wind speed statistics for a month in m/s.
type MonthlyWind struct {
	Month        int     `json:"month"`
	AvgWindSpeed float64 `json:"avgWindSpeed"`
	MaxWindSpeed float64 `json:"maxWindSpeed"`
	MinWindSpeed float64 `json:"minWindSpeed"`
}

// WindData holds monthly wind statistics for the deployment site.
type WindData struct {
	Location    WindLocation  `json:"location"`
	MonthlyData []MonthlyWind `json:"monthlyData"`
	FetchedAt   time.Time     `json:"fetchedAt"`
	Source      string        `json:"source"`
}

// AvgSpeed returns the average wind speed for the month (1-12) and whether
// the month was present.
func (w WindData) AvgSpeed(month int) (float64, bool) {
	for _, m := range w.MonthlyData {
		if m.Month == month {
			return m.AvgWindSpeed, true
		}
	}
	return 0, false
}

// HasSolarData reports whether the project carries a full year of solar
// measurements.
func (p ProjectConfig) HasSolarData() bool {
	return p.SolarData != nil && len(p.SolarData.MonthlyGHI) == 12 && len(p.SolarData.MonthlyDiffuse) == 12
}

// HasWindData reports whether the project carries a full year of wind
// measurements.
func (p ProjectConfig) HasWindData() bool {
	if p.WindData == nil {
		return false
	}
	for month := 1; month <= 12; month++ {
		if _, ok := p.WindData.AvgSpeed(month); !ok {
			return false
		}
	}
	return true
}

// ValidateProject checks the structural invariants of a project: every
// entity carries an ID that is unique within its collection and attached
// measurement series have one value per month.
func ValidateProject(p ProjectConfig) error {
	check := func(kind string, ids []string) error {
		seen := make(map[string]struct{}, len(ids))
		for i, id := range ids {
			if id == "" {
				return fmt.Errorf("%s %d is missing an id", kind, i)
			}
			if _, ok := seen[id]; ok {
				return fmt.Errorf("duplicate %s id: %s", kind, id)
			}
			seen[id] = struct{}{}
		}
		return nil
	}

	ids := make([]string, 0, len(p.Loads))
	for _, l := range p.Loads {
		ids = append(ids, l.ID)
	}
	if err := check("load", ids); err != nil {
		return err
	}

	ids = ids[:0]
	for _, b := range p.Batteries {
		ids = append(ids, b.ID)
	}
	if err := check("battery", ids); err != nil {
		return err
	}

	ids = ids[:0]
	for _, s := range p.SolarPanels {
		ids = append(ids, s.ID)
	}
	if err := check("solar panel", ids); err != nil {
		return err
	}

	ids = ids[:0]
	for _, w := range p.WindGenerators {
		ids = append(ids, w.ID)
	}
	if err := check("wind generator", ids); err != nil {
		return err
	}

	ids = ids[:0]
	for _, o := range p.OtherSources {
		ids = append(ids, o.ID)
	}
	if err := check("other source", ids); err != nil {
		return err
	}

	if sd := p.SolarData; sd != nil {
		if len(sd.MonthlyGHI) != 12 || len(sd.MonthlyDiffuse) != 12 {
			return fmt.Errorf("solar data must have 12 monthly values (ghi=%d, diffuse=%d)", len(sd.MonthlyGHI), len(sd.MonthlyDiffuse))
		}
		if n := len(sd.MonthlyTemperature); n != 0 && n != 12 {
			return fmt.Errorf("solar data temperature must have 12 monthly values, got %d", n)
		}
	}
	if wd := p.WindData; wd != nil {
		for _, m := range wd.MonthlyData {
			if m.Month < 1 || m.Month > 12 {
				return fmt.Errorf("wind data has invalid month: %d", m.Month)
			}
		}
	}
	return nil
}
