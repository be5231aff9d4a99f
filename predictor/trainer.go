package predictor

import (
	"fmt"
	"math"
	"time"
)

// Trainer fits Model bundles.
type Trainer struct {
	// Lambda is the ridge penalty for both regressors.
	Lambda float64
	// HoldoutEvery sends every n-th sample of each class to the accuracy
	// holdout. 5 gives a 20% split.
	HoldoutEvery int
	Now          func() time.Time
}

func NewTrainer() *Trainer {
	return &Trainer{Lambda: 1.0, HoldoutEvery: 5, Now: time.Now}
}

// Fit trains every part of the bundle from d in one pass. The classifier
// is fitted on the training split so the holdout accuracy is honest; the
// regressors use every row.
func (t *Trainer) Fit(d Dataset) (*Model, error) {
	if err := d.validate(); err != nil {
		return nil, err
	}

	scaler, err := FitScaler(d.Features)
	if err != nil {
		return nil, err
	}
	enc := FitLabelEncoder(d.Labels)
	if len(enc.Classes) < 2 {
		return nil, fmt.Errorf("need at least 2 crop classes, have %d", len(enc.Classes))
	}

	n := d.Len()
	scaled := make([][]float64, n)
	labels := make([]int, n)
	for i, f := range d.Features {
		if scaled[i], err = scaler.Transform(f); err != nil {
			return nil, err
		}
		if labels[i], err = enc.Encode(d.Labels[i]); err != nil {
			return nil, err
		}
	}

	trainX, trainY, testX, testY := t.split(scaled, labels, len(enc.Classes))
	nb, err := FitGaussianNB(trainX, trainY, len(enc.Classes))
	if err != nil {
		return nil, err
	}

	yieldRows := make([][]float64, n)
	priceRows := make([][]float64, n)
	for i := range scaled {
		yieldRows[i] = append(append([]float64{}, scaled[i]...), enc.OneHot(labels[i])...)
		priceRows[i] = append(append([]float64{}, yieldRows[i]...), d.Yields[i])
	}
	yieldModel, err := FitRidge(yieldRows, d.Yields, t.Lambda)
	if err != nil {
		return nil, fmt.Errorf("yield: %w", err)
	}
	priceModel, err := FitRidge(priceRows, d.Prices, t.Lambda)
	if err != nil {
		return nil, fmt.Errorf("price: %w", err)
	}

	m := &Model{
		Version:   BundleVersion,
		TrainedAt: t.Now().UTC(),
		Scaler:    scaler,
		Encoder:   enc,
		Classes:   nb,
		Yield:     yieldModel,
		Price:     priceModel,
	}
	m.Metrics = Metrics{
		Accuracy:    accuracy(nb, testX, testY),
		YieldRMSE:   rmse(yieldModel, yieldRows, d.Yields),
		PriceRMSE:   rmse(priceModel, priceRows, d.Prices),
		TrainRows:   len(trainX),
		HoldoutRows: len(testX),
	}
	return m, nil
}

// split is deterministic and stratified: within each class every
// HoldoutEvery-th row is held out. Classes with a single row stay in the
// training split.
func (t *Trainer) split(x [][]float64, y []int, classes int) (trainX [][]float64, trainY []int, testX [][]float64, testY []int) {
	every := t.HoldoutEvery
	if every < 2 {
		every = 5
	}
	total := make([]int, classes)
	for _, c := range y {
		total[c]++
	}
	seen := make([]int, classes)
	for i, c := range y {
		seen[c]++
		if total[c] > 1 && seen[c]%every == 0 {
			testX, testY = append(testX, x[i]), append(testY, c)
			continue
		}
		trainX, trainY = append(trainX, x[i]), append(trainY, c)
	}
	return trainX, trainY, testX, testY
}

func accuracy(nb GaussianNB, x [][]float64, y []int) float64 {
	if len(x) == 0 {
		return 0
	}
	hits := 0
	for i, row := range x {
		proba := nb.Proba(row)
		best := 0
		for c, p := range proba {
			if p > proba[best] {
				best = c
			}
		}
		if best == y[i] {
			hits++
		}
	}
	return float64(hits) / float64(len(x))
}

func rmse(r Ridge, x [][]float64, y []float64) float64 {
	sum := 0.0
	for i, row := range x {
		p, err := r.Predict(row)
		if err != nil {
			return math.NaN()
		}
		sum += (p - y[i]) * (p - y[i])
	}
	return math.Sqrt(sum / float64(len(x)))
}
