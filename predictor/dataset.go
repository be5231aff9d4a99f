package predictor

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"os"
	"strconv"
	"strings"

	"farmeasy/catalog"
	"farmeasy/models"

	"gonum.org/v1/gonum/stat/distuv"
)

// Dataset is a training set. Row i of Features has label Labels[i], yield
// Yields[i] (t/ha) and price Prices[i] (per kg).
type Dataset struct {
	Features [][]float64
	Labels   []string
	Yields   []float64
	Prices   []float64
}

func (d Dataset) Len() int { return len(d.Features) }

func (d Dataset) validate() error {
	n := len(d.Features)
	if n == 0 {
		return errors.New("dataset is empty")
	}
	if len(d.Labels) != n || len(d.Yields) != n || len(d.Prices) != n {
		return fmt.Errorf("dataset columns disagree: %d features, %d labels, %d yields, %d prices",
			n, len(d.Labels), len(d.Yields), len(d.Prices))
	}
	for i, f := range d.Features {
		if len(f) != models.FeatureCount {
			return fmt.Errorf("row %d has %d features, want %d", i, len(f), models.FeatureCount)
		}
	}
	return nil
}

// DefaultSeed makes the synthetic dataset reproducible across restarts.
const DefaultSeed = 42

// bounds keeps synthetic readings physically plausible, in feature order.
var bounds = [models.FeatureCount][2]float64{
	{0, 200}, {0, 150}, {0, 150}, {5, 48}, {10, 100}, {3.5, 9.5}, {0, 600},
}

// Synthesize draws perCrop samples for every catalog crop around the crop's
// climate profile, with yields and prices around its market priors.
func Synthesize(c *catalog.Catalog, perCrop int, seed uint64) Dataset {
	src := rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
	norm := func(mu, sigma float64) float64 {
		return distuv.Normal{Mu: mu, Sigma: sigma, Src: src}.Rand()
	}

	var d Dataset
	for _, p := range c.Profiles() {
		mean := conditionsVector(p.Climate.Mean)
		spread := conditionsVector(p.Climate.Spread)
		for i := 0; i < perCrop; i++ {
			row := make([]float64, models.FeatureCount)
			for j := range row {
				row[j] = clamp(norm(mean[j], spread[j]), bounds[j][0], bounds[j][1])
			}
			d.Features = append(d.Features, row)
			d.Labels = append(d.Labels, p.Name)
			d.Yields = append(d.Yields, math.Max(0.5, norm(p.AvgYieldPerHectare, 0.5)))
			d.Prices = append(d.Prices, math.Max(2.0, norm(p.BasePricePerKg, p.BasePricePerKg*0.1)))
		}
	}
	return d
}

func conditionsVector(c catalog.Conditions) []float64 {
	return models.SoilSample{
		Nitrogen:    c.Nitrogen,
		Phosphorus:  c.Phosphorus,
		Potassium:   c.Potassium,
		Temperature: c.Temperature,
		Humidity:    c.Humidity,
		PH:          c.PH,
		Rainfall:    c.Rainfall,
	}.Features()
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}

var csvFeatureColumns = []string{"N", "P", "K", "temperature", "humidity", "ph", "rainfall"}

// LoadCSV reads a dataset with a header row naming at least the feature
// columns and "label". When "yield" or "price" is absent the crop's catalog
// prior is used instead, so unknown labels are rejected in that case.
func LoadCSV(r io.Reader, c *catalog.Catalog) (Dataset, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err != nil {
		return Dataset{}, fmt.Errorf("read header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(h)] = i
	}
	for _, col := range append(csvFeatureColumns, "label") {
		if _, ok := idx[col]; !ok {
			return Dataset{}, fmt.Errorf("missing column %q", col)
		}
	}
	yieldCol, hasYield := idx["yield"]
	priceCol, hasPrice := idx["price"]

	var d Dataset
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Dataset{}, fmt.Errorf("line %d: %w", line, err)
		}
		row := make([]float64, models.FeatureCount)
		for j, col := range csvFeatureColumns {
			if row[j], err = strconv.ParseFloat(rec[idx[col]], 64); err != nil {
				return Dataset{}, fmt.Errorf("line %d column %s: %w", line, col, err)
			}
		}
		label := catalog.Normalize(rec[idx["label"]])
		profile, known := c.Lookup(label)
		if (!hasYield || !hasPrice) && !known {
			return Dataset{}, fmt.Errorf("line %d: no catalog prior for crop %q", line, label)
		}

		y, p := profile.AvgYieldPerHectare, profile.BasePricePerKg
		if hasYield {
			if y, err = strconv.ParseFloat(rec[yieldCol], 64); err != nil {
				return Dataset{}, fmt.Errorf("line %d column yield: %w", line, err)
			}
		}
		if hasPrice {
			if p, err = strconv.ParseFloat(rec[priceCol], 64); err != nil {
				return Dataset{}, fmt.Errorf("line %d column price: %w", line, err)
			}
		}
		d.Features = append(d.Features, row)
		d.Labels = append(d.Labels, label)
		d.Yields = append(d.Yields, y)
		d.Prices = append(d.Prices, p)
	}
	if err := d.validate(); err != nil {
		return Dataset{}, err
	}
	return d, nil
}

// LoadCSVFile opens path and reads it with LoadCSV.
func LoadCSVFile(path string, c *catalog.Catalog) (Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return Dataset{}, err
	}
	defer f.Close()
	return LoadCSV(f, c)
}
