package estimator

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

// Bits is a log2 complexity. Non-finite values encode as JSON null and null
// decodes as +Inf.
type Bits float64

func (b Bits) MarshalJSON() ([]byte, error) {
	f := float64(b)
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(f, 'g', -1, 64)), nil
}

func (b *Bits) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*b = Bits(math.Inf(1))
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*b = Bits(f)
	return nil
}

// Finite reports whether b is a real number.
func (b Bits) Finite() bool {
	return !math.IsInf(float64(b), 0) && !math.IsNaN(float64(b))
}

// Entry is one estimate of one algorithm.
type Entry struct {
	Time       Bits               `json:"time"`
	Memory     Bits               `json:"memory"`
	Parameters map[string]float64 `json:"parameters"`
	Error      string             `json:"error,omitempty"`
}

func newEntry(res Result, err error) *Entry {
	e := &Entry{
		Time:       Bits(res.Time),
		Memory:     Bits(res.Memory),
		Parameters: res.Parameters,
	}
	if e.Parameters == nil {
		e.Parameters = map[string]float64{}
	}
	if err != nil {
		e.Time, e.Memory = Bits(math.Inf(1)), Bits(math.Inf(1))
		e.Error = err.Error()
	}
	return e
}

// AlgorithmReport holds the estimates of one algorithm.
type AlgorithmReport struct {
	Name     string `json:"name"`
	Estimate *Entry `json:"estimate"`
	TildeO   *Entry `json:"tilde_o_estimate,omitempty"`
}

// Report is the result of Estimator.Estimate.
type Report struct {
	Problem        string            `json:"problem"`
	ComplexityType string            `json:"complexity_type"`
	Algorithms     []AlgorithmReport `json:"algorithms"`
	Fastest        string            `json:"fastest,omitempty"`
}

// Algorithm returns the entry named name.
func (r Report) Algorithm(name string) (AlgorithmReport, bool) {
	for _, a := range r.Algorithms {
		if a.Name == name {
			return a, true
		}
	}
	return AlgorithmReport{}, false
}
