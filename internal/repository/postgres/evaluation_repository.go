// backend-go/internal/repository/postgres/evaluation_repository.go
package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/stockwise/backend-go/internal/domain"
	"github.com/stockwise/backend-go/internal/repository"
)

type evaluationRepository struct {
	db *sqlx.DB
}

func NewEvaluationRepository(db *sqlx.DB) repository.EvaluationWriter {
	return &evaluationRepository{db: db}
}

func (r *evaluationRepository) Upsert(ctx context.Context, metrics domain.EvaluationMetrics) error {
	query := `
		INSERT INTO model_evaluations (product_id, model_name, mae, rmse, r2_score,
		                               train_test_split, training_samples, test_samples, evaluation_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (product_id, model_name) DO UPDATE SET
			mae              = EXCLUDED.mae,
			rmse             = EXCLUDED.rmse,
			r2_score         = EXCLUDED.r2_score,
			train_test_split = EXCLUDED.train_test_split,
			training_samples = EXCLUDED.training_samples,
			test_samples     = EXCLUDED.test_samples,
			evaluation_date  = EXCLUDED.evaluation_date
	`

	if _, err := r.db.ExecContext(ctx, query,
		metrics.ProductID, metrics.Model, metrics.MAE, metrics.RMSE, metrics.R2,
		metrics.TrainTestSplit, metrics.TrainingSamples, metrics.TestSamples, metrics.EvaluatedAt); err != nil {
		return fmt.Errorf("error upserting evaluation for product %d model %s: %w",
			metrics.ProductID, metrics.Model, err)
	}
	return nil
}
