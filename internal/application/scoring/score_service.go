package scoring

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/polarisaistudio/tenant-prediction/internal/domain/leasing"
	"github.com/polarisaistudio/tenant-prediction/internal/domain/scoring"
	"github.com/polarisaistudio/tenant-prediction/internal/domain/shared"
)

// ScoreService runs the per-lease scoring pipeline: load the raw bundle,
// derive the feature vector, call the classifier, grade, and record the
// prediction. The lease is hard-required; every other source degrades to
// the deriver's defaults with a warning.
type ScoreService struct {
	leaseRepo      leasing.LeaseRepository
	tenantRepo     leasing.TenantRepository
	propertyRepo   leasing.PropertyRepository
	activityRepo   leasing.ActivityRepository
	marketRepo     leasing.MarketRepository
	predictionRepo scoring.PredictionRepository
	classifier     scoring.Classifier
	grader         scoring.GraderConfig
	logger         *zap.Logger
}

// NewScoreService creates a new ScoreService
func NewScoreService(
	leaseRepo leasing.LeaseRepository,
	tenantRepo leasing.TenantRepository,
	propertyRepo leasing.PropertyRepository,
	activityRepo leasing.ActivityRepository,
	marketRepo leasing.MarketRepository,
	predictionRepo scoring.PredictionRepository,
	classifier scoring.Classifier,
	grader scoring.GraderConfig,
	logger *zap.Logger,
) *ScoreService {
	return &ScoreService{
		leaseRepo:      leaseRepo,
		tenantRepo:     tenantRepo,
		propertyRepo:   propertyRepo,
		activityRepo:   activityRepo,
		marketRepo:     marketRepo,
		predictionRepo: predictionRepo,
		classifier:     classifier,
		grader:         grader,
		logger:         logger,
	}
}

// ScoreLeaseByID loads the lease and scores it as of now
func (s *ScoreService) ScoreLeaseByID(ctx context.Context, leaseID uuid.UUID) (*scoring.Prediction, error) {
	lease, err := s.leaseRepo.FindByID(ctx, leaseID)
	if err != nil {
		return nil, err
	}
	return s.ScoreLease(ctx, lease, time.Now())
}

// ScoreLease scores one lease with its feature sources frozen at asOf and
// records the resulting prediction.
func (s *ScoreService) ScoreLease(ctx context.Context, lease *leasing.Lease, asOf time.Time) (*scoring.Prediction, error) {
	bundle := s.buildBundle(ctx, lease, asOf)

	vector, err := scoring.DeriveFeatures(bundle)
	if err != nil {
		return nil, err
	}

	result, err := s.classifier.Score(ctx, vector)
	if err != nil {
		return nil, err
	}

	prediction, err := scoring.NewPrediction(
		lease.ID, result.Probability, result.Confidence,
		result.ModelVersion, asOf, s.grader,
	)
	if err != nil {
		return nil, err
	}

	if err := s.predictionRepo.Record(ctx, prediction); err != nil {
		return nil, err
	}

	s.logger.Debug("Lease scored",
		zap.String("lease_id", lease.ID.String()),
		zap.Int("risk_score", prediction.RiskScore),
		zap.String("risk_tier", prediction.RiskTier.String()),
		zap.String("model_version", prediction.ModelVersion))

	return prediction, nil
}

// GetCurrentPrediction returns the lease's current prediction
func (s *ScoreService) GetCurrentPrediction(ctx context.Context, leaseID uuid.UUID) (*scoring.Prediction, error) {
	return s.predictionRepo.GetCurrent(ctx, leaseID)
}

// PredictionHistory returns the lease's scoring history, newest first
func (s *ScoreService) PredictionHistory(ctx context.Context, leaseID uuid.UUID, filter shared.Filter) ([]scoring.Prediction, error) {
	return s.predictionRepo.History(ctx, leaseID, filter)
}

// buildBundle assembles the raw records for one lease. Soft sources that
// fail to load are left nil and logged; the deriver fills their defaults.
func (s *ScoreService) buildBundle(ctx context.Context, lease *leasing.Lease, asOf time.Time) scoring.RawBundle {
	bundle := scoring.RawBundle{Lease: lease, AsOf: asOf}

	tenant, err := s.tenantRepo.FindByID(ctx, lease.TenantID)
	if err != nil {
		s.logger.Warn("Tenant record unavailable for scoring",
			zap.String("lease_id", lease.ID.String()),
			zap.String("tenant_id", lease.TenantID.String()),
			zap.Error(err))
	} else {
		bundle.Tenant = tenant
	}

	property, err := s.propertyRepo.FindByID(ctx, lease.PropertyID)
	if err != nil {
		s.logger.Warn("Property record unavailable for scoring",
			zap.String("lease_id", lease.ID.String()),
			zap.String("property_id", lease.PropertyID.String()),
			zap.Error(err))
	} else {
		bundle.Property = property
	}

	payments, err := s.activityRepo.PaymentAggregates(ctx, lease.ID)
	if err != nil {
		s.logger.Warn("Payment aggregates unavailable for scoring",
			zap.String("lease_id", lease.ID.String()), zap.Error(err))
	} else {
		bundle.Payments = payments
	}

	maintenance, err := s.activityRepo.MaintenanceAggregates(ctx, lease.PropertyID)
	if err != nil {
		s.logger.Warn("Maintenance aggregates unavailable for scoring",
			zap.String("lease_id", lease.ID.String()), zap.Error(err))
	} else {
		bundle.Maintenance = maintenance
	}

	if property != nil && property.ZipCode != "" {
		market, err := s.marketRepo.LatestForZip(ctx, property.ZipCode)
		if err != nil {
			s.logger.Warn("Market snapshot unavailable for scoring",
				zap.String("lease_id", lease.ID.String()),
				zap.String("zip_code", property.ZipCode),
				zap.Error(err))
		} else {
			bundle.Market = market
		}
	}

	return bundle
}
