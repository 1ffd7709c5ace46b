package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shenikar/guardian_response/internal/models"
	"github.com/sirupsen/logrus"
)

const officerCacheTTL = 5 * time.Minute

// OfficerRepository - справочник офицеров с кешем в Redis.
// Без Redis работает напрямую с бд.
type OfficerRepository struct {
	db          *pgxpool.Pool
	redisClient *redis.Client
	logger      *logrus.Logger
}

func NewOfficerRepository(db *pgxpool.Pool, redisClient *redis.Client, logger *logrus.Logger) *OfficerRepository {
	return &OfficerRepository{
		db:          db,
		redisClient: redisClient,
		logger:      logger,
	}
}

// GetByID возвращает офицера, сначала из кеша
func (r *OfficerRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Officer, error) {
	log := r.logger.WithFields(logrus.Fields{
		"repository": "officer",
		"method":     "GetByID",
		"officer_id": id,
	})

	cached, err := r.getOfficerFromCache(ctx, id)
	if err != nil {
		// кеш не обязателен, идём в бд
		log.WithError(err).Warn("Failed to read officer from cache")
	}
	if cached != nil {
		return cached, nil
	}

	officer := &models.Officer{}
	query := `
		SELECT id, badge_number, full_name, rank, station, phone, is_active, created_at
		FROM police_officers
		WHERE id = $1;
	`
	err = r.db.QueryRow(ctx, query, id).Scan(
		&officer.ID,
		&officer.BadgeNumber,
		&officer.FullName,
		&officer.Rank,
		&officer.Station,
		&officer.Phone,
		&officer.IsActive,
		&officer.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("officer with id %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get officer by id: %w", err)
	}

	if err := r.setOfficerCache(ctx, officer); err != nil {
		log.WithError(err).Warn("Failed to cache officer")
	}
	return officer, nil
}

// getOfficerFromCache пытается получить офицера из Redis
func (r *OfficerRepository) getOfficerFromCache(ctx context.Context, id uuid.UUID) (*models.Officer, error) {
	if r.redisClient == nil {
		return nil, nil
	}
	val, err := r.redisClient.Get(ctx, officerCacheKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get officer from cache: %w", err)
	}

	officer := &models.Officer{}
	if err := json.Unmarshal(val, officer); err != nil {
		return nil, fmt.Errorf("failed to unmarshal officer from cache: %w", err)
	}
	return officer, nil
}

// setOfficerCache сохраняет офицера в Redis на 5 минут
func (r *OfficerRepository) setOfficerCache(ctx context.Context, officer *models.Officer) error {
	if r.redisClient == nil {
		return nil
	}
	val, err := json.Marshal(officer)
	if err != nil {
		return fmt.Errorf("failed to marshal officer for cache: %w", err)
	}
	if err := r.redisClient.Set(ctx, officerCacheKey(officer.ID), val, officerCacheTTL).Err(); err != nil {
		return fmt.Errorf("failed to set officer in cache: %w", err)
	}
	return nil
}

func officerCacheKey(id uuid.UUID) string {
	return fmt.Sprintf("officer:%s", id.String())
}
