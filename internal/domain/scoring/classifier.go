package scoring

import "context"

// ScoreResult is the classifier's answer for one feature vector
type ScoreResult struct {
	Probability  float64
	Confidence   float64
	ModelVersion string
}

// Classifier scores a feature vector. Implementations are read-only per
// call and versioned; a transient outage surfaces as
// shared.ErrClassifierUnavailable so callers retry with backoff instead of
// silently defaulting a tier. The model version may change mid-batch: each
// prediction records the version that scored it, so mixed-version batches
// remain auditable.
type Classifier interface {
	Score(ctx context.Context, vector *FeatureVector) (*ScoreResult, error)
	ModelVersion() string
}
