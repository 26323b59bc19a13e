package batch

import (
	"context"
	"errors"
	"math"
	"sync/atomic"
	"testing"
	"time"
)

func TestFromFuncsEmpty(t *testing.T) {
	_, err := FromFuncs()
	if !errors.Is(err, ErrEmptyBatch) {
		t.Errorf("Expected ErrEmptyBatch, got %v", err)
	}
}

func TestFromVectorInvalid(t *testing.T) {
	if _, err := FromVector(0, func(x float64) []float64 { return nil }); !errors.Is(err, ErrEmptyBatch) {
		t.Errorf("Expected ErrEmptyBatch for size 0, got %v", err)
	}
	if _, err := FromVector(3, nil); !errors.Is(err, ErrEmptyBatch) {
		t.Errorf("Expected ErrEmptyBatch for nil func, got %v", err)
	}
}

func TestEvaluateFuncs(t *testing.T) {
	b, err := FromFuncs(
		func(x float64) float64 { return x },
		func(x float64) float64 { return x * x },
	)
	if err != nil {
		t.Fatalf("FromFuncs failed: %v", err)
	}

	xs := []float64{0, 1, 2, 3}
	values, err := NewEvaluator(4).Evaluate(context.Background(), xs, b)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	if len(values) != len(xs) {
		t.Fatalf("Expected %d rows, got %d", len(xs), len(values))
	}
	for i, x := range xs {
		if values[i][0] != x {
			t.Errorf("values[%d][0] = %v, want %v", i, values[i][0], x)
		}
		if values[i][1] != x*x {
			t.Errorf("values[%d][1] = %v, want %v", i, values[i][1], x*x)
		}
	}
}

func TestEvaluateVector(t *testing.T) {
	b, err := FromVector(2, func(x float64) []float64 {
		return []float64{math.Cos(x), math.Sin(x)}
	})
	if err != nil {
		t.Fatalf("FromVector failed: %v", err)
	}

	xs := []float64{0, math.Pi / 2}
	values, err := NewEvaluator(0).Evaluate(context.Background(), xs, b)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	if values[0][0] != 1 || values[0][1] != 0 {
		t.Errorf("row 0 = %v, want [1 0]", values[0])
	}
	if math.Abs(values[1][0]) > 1e-15 || values[1][1] != 1 {
		t.Errorf("row 1 = %v, want [~0 1]", values[1])
	}
}

func TestEvaluateVectorSizeMismatch(t *testing.T) {
	b, _ := FromVector(3, func(x float64) []float64 {
		return []float64{x}
	})
	_, err := NewEvaluator(1).Evaluate(context.Background(), []float64{1}, b)
	if !errors.Is(err, ErrVectorSize) {
		t.Errorf("Expected ErrVectorSize, got %v", err)
	}
}

func TestEvaluateNaNAborts(t *testing.T) {
	b, _ := FromFuncs(
		math.Cos,
		func(x float64) float64 {
			if x > 0.5 {
				return math.NaN()
			}
			return x
		},
	)

	_, err := NewEvaluator(2).Evaluate(context.Background(), []float64{0.25, 0.75}, b)
	if err == nil {
		t.Fatal("Expected error for NaN value")
	}

	var ie *IntegrandError
	if !errors.As(err, &ie) {
		t.Fatalf("Expected *IntegrandError, got %T: %v", err, err)
	}
	if ie.Index != 1 {
		t.Errorf("Expected failing index 1, got %d", ie.Index)
	}
	if ie.X != 0.75 {
		t.Errorf("Expected failing abscissa 0.75, got %v", ie.X)
	}
	if !errors.Is(err, ErrNonFinite) {
		t.Error("IntegrandError should unwrap to ErrNonFinite")
	}
}

func TestEvaluateInfAborts(t *testing.T) {
	b, _ := FromVector(1, func(x float64) []float64 {
		return []float64{1 / x}
	})
	_, err := NewEvaluator(1).Evaluate(context.Background(), []float64{0}, b)
	if !errors.Is(err, ErrNonFinite) {
		t.Errorf("Expected ErrNonFinite for 1/0, got %v", err)
	}
}

func TestEvaluatePoolBound(t *testing.T) {
	const workers = 3
	var active, maxActive int64

	b, _ := FromFuncs(func(x float64) float64 {
		n := atomic.AddInt64(&active, 1)
		for {
			m := atomic.LoadInt64(&maxActive)
			if n <= m || atomic.CompareAndSwapInt64(&maxActive, m, n) {
				break
			}
		}
		time.Sleep(time.Millisecond)
		atomic.AddInt64(&active, -1)
		return x
	})

	xs := make([]float64, 50)
	for i := range xs {
		xs[i] = float64(i)
	}
	if _, err := NewEvaluator(workers).Evaluate(context.Background(), xs, b); err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if got := atomic.LoadInt64(&maxActive); got > workers {
		t.Errorf("worker pool exceeded bound: %d active, limit %d", got, workers)
	}
}

func TestEvaluateAmortizesLatency(t *testing.T) {
	const n = 8
	delay := 20 * time.Millisecond

	funcs := make([]Func, n)
	for k := range funcs {
		funcs[k] = func(x float64) float64 {
			time.Sleep(delay)
			return x
		}
	}
	b, _ := FromFuncs(funcs...)

	start := time.Now()
	if _, err := NewEvaluator(n).Evaluate(context.Background(), []float64{1}, b); err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	elapsed := time.Since(start)

	// Serially this costs n*delay; concurrent dispatch should stay
	// well under half of that even on a loaded machine.
	if elapsed > time.Duration(n)*delay/2 {
		t.Errorf("batch took %v, expected concurrent dispatch to beat %v", elapsed, time.Duration(n)*delay/2)
	}
}
