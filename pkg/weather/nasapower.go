package weather

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/levenlabs/go-lflag"

	"github.com/buoybudget/buoybudget/pkg/common"
	"github.com/buoybudget/buoybudget/pkg/log"
	"github.com/buoybudget/buoybudget/pkg/solar"
	"github.com/buoybudget/buoybudget/pkg/types"
)

// NASAPowerName is the registered name of the NASA POWER provider.
const NASAPowerName = "nasa_power"

const (
	paramGHI      = "ALLSKY_SFC_SW_DWN"
	paramDiffuse  = "ALLSKY_SFC_SW_DIFF"
	paramTemp     = "T2M"
	paramWind     = "WS10M"
	paramWindMax  = "WS10M_MAX"
	paramWindMin  = "WS10M_MIN"
	powerFillBase = -999
)

var monthKeys = [12]string{"JAN", "FEB", "MAR", "APR", "MAY", "JUN", "JUL", "AUG", "SEP", "OCT", "NOV", "DEC"}

// NASAPower implements the Provider interface with the NASA POWER
// climatology API. Climatology does not change between requests so
// responses are cached per location for the lifetime of the process.
type NASAPower struct {
	apiURL string
	client *http.Client

	mu    sync.Mutex
	cache map[string]map[string][12]float64
}

// configuredNASAPower sets up flags for NASA POWER and returns the instance.
func configuredNASAPower() *NASAPower {
	n := &NASAPower{
		cache: make(map[string]map[string][12]float64),
	}
	apiURL := lflag.String("nasa-power-api-url", "https://power.larc.nasa.gov/api/temporal/climatology/point", "URL for the NASA POWER climatology API")
	timeout := lflag.Duration("weather-timeout", 30*time.Second, "Timeout for weather provider requests")

	lflag.Do(func() {
		n.apiURL = *apiURL
		n.client = common.HTTPClient(*timeout)
	})
	return n
}

// NewNASAPower returns a NASA POWER provider that queries apiURL with
// client.
func NewNASAPower(apiURL string, client *http.Client) *NASAPower {
	return &NASAPower{
		apiURL: apiURL,
		client: client,
		cache:  make(map[string]map[string][12]float64),
	}
}

// Validate ensures the configuration is valid.
func (n *NASAPower) Validate() error {
	if n.apiURL == "" {
		return fmt.Errorf("nasa-power-api-url is required")
	}
	if _, err := url.Parse(n.apiURL); err != nil {
		return fmt.Errorf("failed to parse nasa power url (%s): %w", n.apiURL, err)
	}
	return nil
}

type powerResponse struct {
	Properties struct {
		Parameter map[string]map[string]float64 `json:"parameter"`
	} `json:"properties"`
	Messages []string `json:"messages"`
}

// GetSolarData returns monthly global and diffuse horizontal irradiance in
// kWh/m²/day and the mean air temperature at 2 m.
func (n *NASAPower) GetSolarData(ctx context.Context, lat, lon float64) (types.SolarData, error) {
	if err := solar.CheckLatitude(lat); err != nil {
		return types.SolarData{}, err
	}
	params, err := n.fetch(ctx, lat, lon)
	if err != nil {
		return types.SolarData{}, err
	}
	ghi := params[paramGHI]
	diffuse := params[paramDiffuse]
	temp := params[paramTemp]
	return types.SolarData{
		Latitude:           lat,
		Longitude:          lon,
		MonthlyGHI:         ghi[:],
		MonthlyDiffuse:     diffuse[:],
		MonthlyTemperature: temp[:],
		FetchedAt:          time.Now().UTC(),
		Source:             NASAPowerName,
	}, nil
}

// GetWindData returns monthly wind speed statistics at 10 m.
func (n *NASAPower) GetWindData(ctx context.Context, lat, lon float64) (types.WindData, error) {
	if err := solar.CheckLatitude(lat); err != nil {
		return types.WindData{}, err
	}
	params, err := n.fetch(ctx, lat, lon)
	if err != nil {
		return types.WindData{}, err
	}
	monthly := make([]types.MonthlyWind, 12)
	for i := range monthly {
		monthly[i] = types.MonthlyWind{
			Month:        i + 1,
			AvgWindSpeed: params[paramWind][i],
			MaxWindSpeed: params[paramWindMax][i],
			MinWindSpeed: params[paramWindMin][i],
		}
	}
	return types.WindData{
		Location: types.WindLocation{
			Name:      NASAPowerName + " " + formatCoord(lat) + "," + formatCoord(lon),
			Latitude:  lat,
			Longitude: lon,
		},
		MonthlyData: monthly,
		FetchedAt:   time.Now().UTC(),
		Source:      NASAPowerName,
	}, nil
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// fetch returns every parameter as a series of 12 monthly values. Solar and
// wind share a single request per location.
func (n *NASAPower) fetch(ctx context.Context, lat, lon float64) (map[string][12]float64, error) {
	key := formatCoord(lat) + "," + formatCoord(lon)

	n.mu.Lock()
	if cached, ok := n.cache[key]; ok {
		n.mu.Unlock()
		return cached, nil
	}
	n.mu.Unlock()

	u, err := url.Parse(n.apiURL)
	if err != nil {
		return nil, fmt.Errorf("invalid api url: %w", err)
	}
	q := url.Values{}
	q.Set("parameters", paramGHI+","+paramDiffuse+","+paramTemp+","+paramWind+","+paramWindMax+","+paramWindMin)
	q.Set("community", "RE")
	q.Set("latitude", formatCoord(lat))
	q.Set("longitude", formatCoord(lon))
	q.Set("format", "JSON")
	u.RawQuery = q.Encode()

	log.Ctx(ctx).DebugContext(ctx, "fetching climatology from nasa power", slog.String("url", u.String()))

	var data powerResponse
	if err := common.GetJSON(ctx, n.client, u.String(), &data); err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to fetch climatology", slog.Any("error", err))
		return nil, fmt.Errorf("failed to fetch nasa power climatology: %w", err)
	}

	params := make(map[string][12]float64, len(data.Properties.Parameter))
	for _, name := range []string{paramGHI, paramDiffuse, paramTemp, paramWind, paramWindMax, paramWindMin} {
		values, ok := data.Properties.Parameter[name]
		if !ok {
			return nil, fmt.Errorf("nasa power response is missing %s", name)
		}
		var series [12]float64
		for i, m := range monthKeys {
			v, ok := values[m]
			// POWER marks missing values with its fill value
			if !ok || v <= powerFillBase {
				return nil, fmt.Errorf("nasa power has no %s value for %s", name, m)
			}
			series[i] = v
		}
		params[name] = series
	}

	log.Ctx(ctx).DebugContext(
		ctx,
		"fetched climatology",
		slog.Float64("latitude", lat),
		slog.Float64("longitude", lon),
	)

	n.mu.Lock()
	n.cache[key] = params
	n.mu.Unlock()

	return params, nil
}
