package estimate

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFallbackExact(t *testing.T) {
	e := NewEstimator(Options{})
	got := e.Predict(context.Background(), Features{
		QueueLength:       5,
		AvgServiceMinutes: 10,
		HourOfDay:         9,
		DayOfWeek:         1,
	})
	if got != 50.0 {
		t.Fatalf("expected 50.0, got %v", got)
	}
}

func TestFallbackClampsEmptyQueue(t *testing.T) {
	e := NewEstimator(Options{})
	got := e.Predict(context.Background(), Features{
		QueueLength:       0,
		AvgServiceMinutes: 0.5,
		HourOfDay:         12,
		DayOfWeek:         3,
	})
	if got != 0.0 {
		t.Fatalf("expected 0.0, got %v", got)
	}
}

func TestFallbackMinimumServiceTime(t *testing.T) {
	// avg below one minute is floored to one
	got := Fallback(Features{QueueLength: 3, AvgServiceMinutes: 0.25})
	if got != 3.0 {
		t.Fatalf("expected 3.0, got %v", got)
	}
}

func TestMissingModelPinsFallback(t *testing.T) {
	e := NewEstimator(Options{ModelPath: filepath.Join(t.TempDir(), "absent.json")})
	f := Features{QueueLength: 2, AvgServiceMinutes: 15}
	for i := 0; i < 3; i++ {
		if got := e.Predict(context.Background(), f); got != 30.0 {
			t.Fatalf("call %d: expected 30.0, got %v", i, got)
		}
	}
	if e.model != nil {
		t.Fatalf("failed load should leave no model")
	}
}

func TestCorruptModelPinsFallback(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	if err := os.WriteFile(path, []byte(`{"weights":[1,2]}`), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	e := NewEstimator(Options{ModelPath: path})
	if got := e.Predict(context.Background(), Features{QueueLength: 4, AvgServiceMinutes: 5}); got != 20.0 {
		t.Fatalf("expected fallback 20.0, got %v", got)
	}
}

func TestLinearModelPrediction(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	artifact := `{"weights":[8.0,1.5,0.0,0.0],"bias":2.0}`
	if err := os.WriteFile(path, []byte(artifact), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	e := NewEstimator(Options{ModelPath: path})
	got := e.Predict(context.Background(), Features{QueueLength: 5, AvgServiceMinutes: 10, HourOfDay: 9, DayOfWeek: 1})
	want := 8.0*5 + 1.5*10 + 2.0
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

type stubModel struct {
	minutes float64
	err     error
	delay   time.Duration
}

func (s stubModel) Predict(ctx context.Context, _ [4]float64) (float64, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
	return s.minutes, s.err
}

func TestModelPredictionClampedNonNegative(t *testing.T) {
	e := NewEstimator(Options{})
	e.loadOnce.Do(func() {})
	e.model = stubModel{minutes: -12}
	if got := e.Predict(context.Background(), Features{QueueLength: 1, AvgServiceMinutes: 5}); got != 0 {
		t.Fatalf("expected clamp to 0, got %v", got)
	}
}

func TestModelErrorFallsBack(t *testing.T) {
	e := NewEstimator(Options{})
	e.loadOnce.Do(func() {})
	e.model = stubModel{err: errors.New("remote down")}
	if got := e.Predict(context.Background(), Features{QueueLength: 2, AvgServiceMinutes: 5}); got != 10.0 {
		t.Fatalf("expected fallback 10.0, got %v", got)
	}
}

func TestModelTimeoutFallsBack(t *testing.T) {
	e := NewEstimator(Options{Timeout: 10 * time.Millisecond})
	e.loadOnce.Do(func() {})
	e.model = stubModel{minutes: 999, delay: time.Second}
	start := time.Now()
	got := e.Predict(context.Background(), Features{QueueLength: 3, AvgServiceMinutes: 4})
	if got != 12.0 {
		t.Fatalf("expected fallback 12.0, got %v", got)
	}
	if time.Since(start) > 500*time.Millisecond {
		t.Fatalf("prediction did not respect timeout")
	}
}
