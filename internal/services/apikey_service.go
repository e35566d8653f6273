package services

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/dmolenda/achievehub/internal/config"
	"github.com/dmolenda/achievehub/internal/models"
	"github.com/dmolenda/achievehub/internal/scope"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ApiKeyService struct {
	db  *gorm.DB
	cfg *config.Config
}

func NewApiKeyService(db *gorm.DB, cfg *config.Config) *ApiKeyService {
	return &ApiKeyService{db: db, cfg: cfg}
}

// Create issues a new random key scoped to a list. Expiry defaults to the
// configured TTL when the caller does not supply one.
func (s *ApiKeyService) Create(listID uuid.UUID, expDate *time.Time) (*models.ApiKey, error) {
	var list models.AchievementList
	if err := s.db.First(&list, "id = ?", listID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListNotFound
		}
		return nil, fmt.Errorf("failed to load list: %w", err)
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}

	exp := time.Now().Add(s.cfg.APIKeyTTL)
	if expDate != nil {
		exp = *expDate
	}

	key := models.ApiKey{
		ID:      uuid.New(),
		Key:     base64.URLEncoding.EncodeToString(raw),
		ListID:  listID,
		AppID:   list.AppID,
		ExpDate: exp,
	}
	if err := s.db.Create(&key).Error; err != nil {
		return nil, fmt.Errorf("failed to store api key: %w", err)
	}
	return &key, nil
}

// Resolve looks a raw key up and checks expiry. Returns ErrKeyNotFound for an
// unknown token and ErrKeyExpired for a stale one.
func (s *ApiKeyService) Resolve(rawKey string) (*models.ApiKey, error) {
	if rawKey == "" {
		return nil, fmt.Errorf("%w: api key is required", ErrValidation)
	}

	var key models.ApiKey
	if err := s.db.Where("key = ?", rawKey).First(&key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrKeyNotFound
		}
		return nil, fmt.Errorf("failed to load api key: %w", err)
	}

	if key.Expired(time.Now()) {
		return nil, ErrKeyExpired
	}
	return &key, nil
}

func (s *ApiKeyService) ListByList(listID uuid.UUID) ([]models.ApiKey, error) {
	var keys []models.ApiKey
	if err := s.db.Scopes(scope.ForList(listID)).Find(&keys).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch api keys: %w", err)
	}
	return keys, nil
}

func (s *ApiKeyService) Revoke(keyID uuid.UUID) error {
	result := s.db.Where("id = ?", keyID).Delete(&models.ApiKey{})
	if result.Error != nil {
		return fmt.Errorf("failed to revoke api key: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrKeyNotFound
	}
	return nil
}
