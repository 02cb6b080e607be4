package services

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-task-tracker/internal/models"
)

type userServiceImpl struct {
	logger zerolog.Logger
	pgPool *pgxpool.Pool
}

func NewUserService(
	logger zerolog.Logger,
	pgPool *pgxpool.Pool,
) UserService {
	return &userServiceImpl{
		logger: logger,
		pgPool: pgPool,
	}
}

func (s *userServiceImpl) GetUsers(ctx context.Context) ([]models.User, error) {
	const selectUsersQuery = `
SELECT id,
       username
FROM users
ORDER BY username
`
	rows, err := s.pgPool.Query(ctx, selectUsersQuery)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to select users")
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var user models.User
		err = rows.Scan(
			&user.ID,
			&user.Username,
		)
		if err != nil {
			s.logger.Error().
				Err(err).
				Msg("failed to scan user")
			return nil, err
		}
		users = append(users, user)
	}

	err = rows.Err()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to iterate over rows")
		return nil, err
	}

	s.logger.Info().
		Int("count", len(users)).
		Msg("fetched users")
	return users, nil
}
