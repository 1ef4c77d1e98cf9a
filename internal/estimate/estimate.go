package estimate

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	logpkg "github.com/waitline/waitline/pkg/log"
)

// Features is the estimator input. Vector order is part of the model
// contract and must not change.
type Features struct {
	QueueLength       int     `json:"queue_length"`
	AvgServiceMinutes float64 `json:"avg_service_time"`
	HourOfDay         int     `json:"time_of_day"`
	DayOfWeek         int     `json:"day_of_week"`
}

// Vector assembles the ordered feature vector fed to the model.
func (f Features) Vector() [4]float64 {
	return [4]float64{
		float64(f.QueueLength),
		f.AvgServiceMinutes,
		float64(f.HourOfDay),
		float64(f.DayOfWeek),
	}
}

// Model predicts minutes from the ordered feature vector. Implementations
// may be remote and must honor ctx.
type Model interface {
	Predict(ctx context.Context, features [4]float64) (float64, error)
}

// Options configures an Estimator.
type Options struct {
	// ModelPath points at an optional model artifact. Empty disables the
	// model tier entirely.
	ModelPath string
	// Timeout bounds a single model prediction. Zero means 500ms.
	Timeout time.Duration
	Logger  logpkg.Logger
}

// Estimator predicts expected wait minutes. A learned model is loaded at
// most once per process; any load failure pins the deterministic fallback
// for the remainder of the process lifetime.
type Estimator struct {
	modelPath string
	timeout   time.Duration
	logger    logpkg.Logger

	loadOnce sync.Once
	model    Model
}

// NewEstimator creates an Estimator. The model artifact is not touched until
// the first prediction.
func NewEstimator(opts Options) *Estimator {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 500 * time.Millisecond
	}
	logger := opts.Logger
	if logger == nil {
		logger = logpkg.NewLogger()
	}
	return &Estimator{
		modelPath: opts.ModelPath,
		timeout:   timeout,
		logger:    logger.With(logpkg.Component("estimate")),
	}
}

// Fallback is the deterministic baseline the learned model approximates:
// max(0, queue_length) * max(1, avg_service_time).
func Fallback(f Features) float64 {
	q := float64(f.QueueLength)
	if q < 0 {
		q = 0
	}
	avg := f.AvgServiceMinutes
	if avg < 1 {
		avg = 1
	}
	return q * avg
}

// Predict returns the expected wait in minutes, never negative and never an
// error: model unavailability or timeout degrades to the fallback formula.
func (e *Estimator) Predict(ctx context.Context, f Features) float64 {
	e.loadOnce.Do(e.loadModel)
	if e.model == nil {
		return Fallback(f)
	}

	mctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	type result struct {
		minutes float64
		err     error
	}
	ch := make(chan result, 1)
	go func() {
		m, err := e.model.Predict(mctx, f.Vector())
		ch <- result{minutes: m, err: err}
	}()

	select {
	case <-mctx.Done():
		e.logger.Warn("model prediction timed out, using fallback", logpkg.Err(mctx.Err()))
		return Fallback(f)
	case res := <-ch:
		if res.err != nil {
			e.logger.Warn("model prediction failed, using fallback", logpkg.Err(res.err))
			return Fallback(f)
		}
		if res.minutes < 0 {
			return 0
		}
		return res.minutes
	}
}

func (e *Estimator) loadModel() {
	if e.modelPath == "" {
		return
	}
	m, err := loadLinearModel(e.modelPath)
	if err != nil {
		e.logger.Warn("wait model unavailable, fallback pinned",
			logpkg.Str("path", e.modelPath), logpkg.Err(err))
		return
	}
	e.logger.Info("wait model loaded", logpkg.Str("path", e.modelPath))
	e.model = m
}

// linearModel is the artifact format shipped today: four weights and a bias
// over the ordered feature vector.
type linearModel struct {
	Weights [4]float64 `json:"weights"`
	Bias    float64    `json:"bias"`
}

func loadLinearModel(path string) (*linearModel, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw struct {
		Weights []float64 `json:"weights"`
		Bias    float64   `json:"bias"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("estimate: parse model: %w", err)
	}
	if len(raw.Weights) != 4 {
		return nil, fmt.Errorf("estimate: model wants 4 weights, has %d", len(raw.Weights))
	}
	m := &linearModel{Bias: raw.Bias}
	copy(m.Weights[:], raw.Weights)
	return m, nil
}

// Predict computes the dot product of weights and features plus bias.
func (m *linearModel) Predict(ctx context.Context, features [4]float64) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	out := m.Bias
	for i, w := range m.Weights {
		out += w * features[i]
	}
	return out, nil
}

var _ Model = (*linearModel)(nil)
