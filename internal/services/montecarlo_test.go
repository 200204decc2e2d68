package services

import (
	"context"
	"math/rand"
	"testing"

	apperrors "procurement-dashboard/internal/errors"
)

func TestSimulateUncertainty_Deterministic(t *testing.T) {
	base := testBase()
	p := DefaultParams()
	p.Trials = 200

	env1, err := simulateUncertainty(context.Background(), base, p)
	if err != nil {
		t.Fatalf("simulateUncertainty() failed: %v", err)
	}
	env2, err := simulateUncertainty(context.Background(), base, p)
	if err != nil {
		t.Fatalf("simulateUncertainty() failed: %v", err)
	}

	// Same seed, same data: bit-identical bounds regardless of scheduling.
	for i := range env1.Bounds {
		if env1.Bounds[i] != env2.Bounds[i] {
			t.Errorf("bound %q differs across runs: %v vs %v",
				env1.Bounds[i].Percentile, env1.Bounds[i].Value, env2.Bounds[i].Value)
		}
	}
	if env1.IntervalWidth != env2.IntervalWidth {
		t.Errorf("interval width differs: %v vs %v", env1.IntervalWidth, env2.IntervalWidth)
	}
}

func TestSimulateUncertainty_SeedChangesEnvelope(t *testing.T) {
	base := testBase()
	p := DefaultParams()
	p.Trials = 200

	env1, err := simulateUncertainty(context.Background(), base, p)
	if err != nil {
		t.Fatalf("simulateUncertainty() failed: %v", err)
	}

	p.Seed = 1234
	env2, err := simulateUncertainty(context.Background(), base, p)
	if err != nil {
		t.Fatalf("simulateUncertainty() failed: %v", err)
	}

	if env1.Bounds[0].Value == env2.Bounds[0].Value && env1.Bounds[2].Value == env2.Bounds[2].Value {
		t.Error("different seeds should produce a different envelope")
	}
}

func TestSimulateUncertainty_BoundsOrdered(t *testing.T) {
	base := testBase()
	p := DefaultParams()
	p.Trials = 500

	env, err := simulateUncertainty(context.Background(), base, p)
	if err != nil {
		t.Fatalf("simulateUncertainty() failed: %v", err)
	}

	if len(env.Bounds) != 3 {
		t.Fatalf("expected 3 bounds, got %d", len(env.Bounds))
	}

	p05, median, p95 := env.Bounds[0], env.Bounds[1], env.Bounds[2]
	if p05.Percentile != PercentileP05 || median.Percentile != PercentileMedian || p95.Percentile != PercentileP95 {
		t.Fatalf("unexpected bound labels: %s, %s, %s", p05.Percentile, median.Percentile, p95.Percentile)
	}

	if p05.Value > median.Value || median.Value > p95.Value {
		t.Errorf("bounds out of order: p05=%.2f median=%.2f p95=%.2f", p05.Value, median.Value, p95.Value)
	}
	if !almostEqual(env.IntervalWidth, p95.Value-p05.Value, 1e-9) {
		t.Errorf("interval width = %.4f, want %.4f", env.IntervalWidth, p95.Value-p05.Value)
	}
	if env.Trials != p.Trials || env.Seed != p.Seed {
		t.Errorf("envelope run parameters = (%d, %d), want (%d, %d)", env.Trials, env.Seed, p.Trials, p.Seed)
	}

	// The nominal total (9900) sits inside the envelope.
	if p05.Value > 9900 || p95.Value < 9900 {
		t.Errorf("nominal total 9900 outside envelope [%.2f, %.2f]", p05.Value, p95.Value)
	}
}

func TestSimulateUncertainty_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := DefaultParams()
	p.Trials = 1000

	_, err := simulateUncertainty(ctx, testBase(), p)
	if err == nil {
		t.Fatal("expected an error for a cancelled simulation")
	}
	if !apperrors.IsCode(err, apperrors.CodeIncompleteSim) {
		t.Errorf("error code should be %s, got: %v", apperrors.CodeIncompleteSim, err)
	}
}

func TestSimulateUncertainty_InvalidParams(t *testing.T) {
	p := DefaultParams()
	p.Trials = 1

	_, err := simulateUncertainty(context.Background(), testBase(), p)
	if !apperrors.IsCode(err, apperrors.CodeConfiguration) {
		t.Errorf("expected configuration error for 1 trial, got: %v", err)
	}
}

func TestPercentile(t *testing.T) {
	sorted := []float64{1, 2, 3, 4, 5}

	tests := []struct {
		q    float64
		want float64
	}{
		{0, 1},
		{5, 1.2},
		{25, 2},
		{50, 3},
		{95, 4.8},
		{100, 5},
	}

	for _, tt := range tests {
		if got := percentile(sorted, tt.q); !almostEqual(got, tt.want, 1e-9) {
			t.Errorf("percentile(%v) = %v, want %v", tt.q, got, tt.want)
		}
	}

	if got := percentile(nil, 50); got != 0 {
		t.Errorf("percentile of empty sample = %v, want 0", got)
	}
	if got := percentile([]float64{7}, 95); got != 7 {
		t.Errorf("percentile of single sample = %v, want 7", got)
	}
}

func TestPerturb(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 1000; i++ {
		v := perturb(rng, 0.05, 0.2)
		if v < 0.05*0.8 || v > 0.05*1.2 {
			t.Fatalf("perturbed value %.6f outside [%.4f, %.4f]", v, 0.05*0.8, 0.05*1.2)
		}
	}
}
