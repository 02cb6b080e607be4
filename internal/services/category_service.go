package services

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-task-tracker/internal/models"
)

type categoryServiceImpl struct {
	logger zerolog.Logger
	pgPool *pgxpool.Pool
}

func NewCategoryService(
	logger zerolog.Logger,
	pgPool *pgxpool.Pool,
) CategoryService {
	return &categoryServiceImpl{
		logger: logger,
		pgPool: pgPool,
	}
}

func (s *categoryServiceImpl) GetCategories(ctx context.Context) ([]models.Category, error) {
	const selectCategoriesQuery = `
SELECT id,
       name,
       color
FROM task_categories
ORDER BY name
`
	rows, err := s.pgPool.Query(ctx, selectCategoriesQuery)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to select categories")
		return nil, err
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var category models.Category
		err = rows.Scan(
			&category.ID,
			&category.Name,
			&category.Color,
		)
		if err != nil {
			s.logger.Error().
				Err(err).
				Msg("failed to scan category")
			return nil, err
		}
		categories = append(categories, category)
	}

	err = rows.Err()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to iterate over rows")
		return nil, err
	}

	s.logger.Info().
		Int("count", len(categories)).
		Msg("fetched categories")
	return categories, nil
}
