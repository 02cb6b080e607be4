package services

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

type sessionServiceImpl struct {
	logger zerolog.Logger
	pgPool *pgxpool.Pool
}

func NewSessionService(
	logger zerolog.Logger,
	pgPool *pgxpool.Pool,
) SessionService {
	return &sessionServiceImpl{
		logger: logger,
		pgPool: pgPool,
	}
}

func (s *sessionServiceImpl) GetSessionViewer(ctx context.Context, sessionID string) (*SessionViewer, error) {
	sv := &SessionViewer{}
	sv.Session.ID = sessionID

	const selectSessionViewerQuery = `
SELECT s.user_id,
       s.fingerprint,
       s.refresh_token,
       s.expires_at,
       u.username,
       u.is_admin
FROM sessions s
JOIN users u ON s.user_id = u.id
WHERE s.id = $1
`
	err := s.pgPool.QueryRow(
		ctx,
		selectSessionViewerQuery,
		sessionID,
	).Scan(
		&sv.Session.UserID,
		&sv.Session.Fingerprint,
		&sv.Session.RefreshToken,
		&sv.Session.ExpiresAt,
		&sv.Viewer.Username,
		&sv.Viewer.IsAdmin,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.Error().
				Str("session_id", sessionID).
				Msg("session not found")
			return nil, ErrSessionNotFound
		}

		s.logger.Error().
			Err(err).
			Str("session_id", sessionID).
			Msg("failed to select session")
		return nil, err
	}
	sv.Viewer.ID = sv.Session.UserID

	s.logger.Debug().
		Str("session_id", sessionID).
		Str("user_id", sv.Viewer.ID).
		Bool("is_admin", sv.Viewer.IsAdmin).
		Msg("selected session viewer")
	return sv, nil
}
