package predictor

import (
	"fmt"
	"sort"
)

// LabelEncoder maps crop names to dense indices in sorted name order.
type LabelEncoder struct {
	Classes []string `msgpack:"classes"`
}

func FitLabelEncoder(labels []string) LabelEncoder {
	seen := make(map[string]struct{}, len(labels))
	classes := make([]string, 0)
	for _, l := range labels {
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		classes = append(classes, l)
	}
	sort.Strings(classes)
	return LabelEncoder{Classes: classes}
}

func (e LabelEncoder) Encode(label string) (int, error) {
	i := sort.SearchStrings(e.Classes, label)
	if i == len(e.Classes) || e.Classes[i] != label {
		return 0, fmt.Errorf("unknown class %q", label)
	}
	return i, nil
}

// OneHot returns the indicator vector for class index i.
func (e LabelEncoder) OneHot(i int) []float64 {
	v := make([]float64, len(e.Classes))
	v[i] = 1
	return v
}
