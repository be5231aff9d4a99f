package weather

// Current is the normalised view of the /weather response.
type Current struct {
	Location      string  `json:"location"`
	Country       string  `json:"country"`
	Temperature   float64 `json:"temperature"`
	FeelsLike     float64 `json:"feels_like"`
	Humidity      float64 `json:"humidity"`
	Pressure      float64 `json:"pressure"`
	Description   string  `json:"description"`
	Icon          string  `json:"icon"`
	WindSpeed     float64 `json:"wind_speed"`
	WindDirection float64 `json:"wind_direction"`
	Visibility    float64 `json:"visibility"` // km
	UVIndex       float64 `json:"uv_index"`
	Timestamp     int64   `json:"timestamp"`
}

type Forecast struct {
	Location  string          `json:"location"`
	Country   string          `json:"country"`
	Forecasts []ForecastEntry `json:"forecasts"`
}

type ForecastEntry struct {
	DateTime    int64   `json:"datetime"`
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	Description string  `json:"description"`
	Icon        string  `json:"icon"`
	WindSpeed   float64 `json:"wind_speed"`
	Rain        float64 `json:"rain"` // mm over the 3h slot
}

type mainBlock struct {
	Temp      float64 `json:"temp"`
	FeelsLike float64 `json:"feels_like"`
	Humidity  float64 `json:"humidity"`
	Pressure  float64 `json:"pressure"`
}

type condition struct {
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type windBlock struct {
	Speed float64 `json:"speed"`
	Deg   float64 `json:"deg"`
}

type sysBlock struct {
	Country string `json:"country"`
}

type currentResponse struct {
	Name       string      `json:"name"`
	Sys        sysBlock    `json:"sys"`
	Main       mainBlock   `json:"main"`
	Weather    []condition `json:"weather"`
	Wind       windBlock   `json:"wind"`
	Visibility float64     `json:"visibility"`
	UVI        float64     `json:"uvi"`
	Dt         int64       `json:"dt"`
}

func (r currentResponse) toCurrent() Current {
	c := Current{
		Location:      r.Name,
		Country:       r.Sys.Country,
		Temperature:   r.Main.Temp,
		FeelsLike:     r.Main.FeelsLike,
		Humidity:      r.Main.Humidity,
		Pressure:      r.Main.Pressure,
		WindSpeed:     r.Wind.Speed,
		WindDirection: r.Wind.Deg,
		Visibility:    r.Visibility / 1000,
		UVIndex:       r.UVI,
		Timestamp:     r.Dt,
	}
	if len(r.Weather) > 0 {
		c.Description = r.Weather[0].Description
		c.Icon = r.Weather[0].Icon
	}
	return c
}

type forecastResponse struct {
	City struct {
		Name    string `json:"name"`
		Country string `json:"country"`
	} `json:"city"`
	List []forecastItem `json:"list"`
}

type forecastItem struct {
	Dt      int64              `json:"dt"`
	Main    mainBlock          `json:"main"`
	Weather []condition        `json:"weather"`
	Wind    windBlock          `json:"wind"`
	Rain    map[string]float64 `json:"rain"`
}

func (r forecastResponse) toForecast() Forecast {
	f := Forecast{
		Location:  r.City.Name,
		Country:   r.City.Country,
		Forecasts: make([]ForecastEntry, 0, len(r.List)),
	}
	for _, item := range r.List {
		e := ForecastEntry{
			DateTime:    item.Dt,
			Temperature: item.Main.Temp,
			Humidity:    item.Main.Humidity,
			WindSpeed:   item.Wind.Speed,
			Rain:        item.Rain["3h"],
		}
		if len(item.Weather) > 0 {
			e.Description = item.Weather[0].Description
			e.Icon = item.Weather[0].Icon
		}
		f.Forecasts = append(f.Forecasts, e)
	}
	return f
}
