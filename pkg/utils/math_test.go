package utils

import (
	"testing"
)

func TestVecOps(t *testing.T) {
	v := []float64{1, 2, 3}
	AddVec(v, []float64{0.5, 0.5, 0.5})
	if v[0] != 1.5 || v[1] != 2.5 || v[2] != 3.5 {
		t.Errorf("AddVec result wrong: %v", v)
	}
	SubVec(v, []float64{1.5, 2.5, 3.5})
	for i, x := range v {
		if x != 0 {
			t.Errorf("SubVec component %d = %v, want 0", i, x)
		}
	}
}

func TestMaxVec(t *testing.T) {
	if got := MaxVec(nil); got != 0 {
		t.Errorf("MaxVec(nil) = %v, want 0", got)
	}
	if got := MaxVec([]float64{-3, -1, -2}); got != -1 {
		t.Errorf("MaxVec of negatives = %v, want -1", got)
	}
	if got := MaxVec([]float64{1e-9, 4.5, 2}); got != 4.5 {
		t.Errorf("MaxVec = %v, want 4.5", got)
	}
}

func TestMeanStdDev(t *testing.T) {
	values := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	if got := Mean(values); got != 5 {
		t.Errorf("Mean = %v, want 5", got)
	}
	if got := StdDev(values); got != 2 {
		t.Errorf("StdDev = %v, want 2", got)
	}
	if got := Mean(nil); got != 0 {
		t.Errorf("Mean(nil) = %v, want 0", got)
	}
}

func TestPercentile(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	if got := P50(values); got != 5.5 {
		t.Errorf("P50 = %v, want 5.5", got)
	}
	if got := Percentile(values, 100); got != 10 {
		t.Errorf("P100 = %v, want 10", got)
	}
	if got := Percentile(values, 0); got != 1 {
		t.Errorf("P0 = %v, want 1", got)
	}
}
