package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/stitchforge/embroidery-studio/pkg/db"
	"github.com/stitchforge/embroidery-studio/pkg/logger"
	"github.com/stitchforge/embroidery-studio/pkg/types"
)

// Storage keys. The names survive restarts, so renaming one orphans the
// previously saved value.
const (
	keyAccessToken   = "access_token"
	keyRefreshToken  = "refresh_token"
	keyDesignID      = "current_design_id"
	keyMachineBrand  = "selected_machine_brand"
	keyFormat        = "selected_format"
	keySizeCm        = "embroidery_size_cm"
	keySelectedFmts  = "selected_formats"
	keyAdminRedirect = "admin_redirected"
)

// Entry is one persisted key/value pair.
type Entry struct {
	Key       string    `gorm:"primaryKey;column:key"`
	Value     string    `gorm:"column:value"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

// TableName keeps the table name stable across GORM naming strategies.
func (Entry) TableName() string { return "session_entries" }

// DraftRef is the locally remembered working-state of the design screen:
// which draft the user was editing and the three generation settings. It is
// what lets a restart land back on the same draft.
type DraftRef struct {
	DesignID         *int
	MachineBrand     string
	RequestedFormat  string
	EmbroiderySizeCm int
}

// Store persists session state in the local database. Reads and writes of the
// access token are served from memory so the hot path never touches disk.
type Store struct {
	client *db.Client
	logger *logger.Logger

	mu     sync.RWMutex
	access string
}

// NewStore migrates the backing table and loads the cached token.
func NewStore(ctx context.Context, client *db.Client, logg *logger.Logger) (*Store, error) {
	if client == nil {
		return nil, fmt.Errorf("db client required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if err := client.DB().WithContext(ctx).AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("migrating session table: %w", err)
	}

	s := &Store{client: client, logger: logg}
	if token, err := s.get(ctx, keyAccessToken); err == nil {
		s.access = token
	}
	return s, nil
}

// AccessToken returns the cached bearer token, empty when signed out.
func (s *Store) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.access
}

// SetTokens persists the token pair and refreshes the in-memory cache.
func (s *Store) SetTokens(ctx context.Context, pair types.TokenPair) error {
	if err := s.set(ctx, keyAccessToken, pair.Access); err != nil {
		return err
	}
	if err := s.set(ctx, keyRefreshToken, pair.Refresh); err != nil {
		return err
	}
	s.mu.Lock()
	s.access = pair.Access
	s.mu.Unlock()
	return nil
}

// Tokens loads the persisted token pair.
func (s *Store) Tokens(ctx context.Context) (types.TokenPair, error) {
	access, err := s.get(ctx, keyAccessToken)
	if err != nil {
		return types.TokenPair{}, err
	}
	refresh, err := s.get(ctx, keyRefreshToken)
	if err != nil {
		return types.TokenPair{}, err
	}
	return types.TokenPair{Access: access, Refresh: refresh}, nil
}

// ClearTokens wipes both tokens. Called on sign-out and on any 401.
func (s *Store) ClearTokens(ctx context.Context) {
	s.mu.Lock()
	s.access = ""
	s.mu.Unlock()
	s.deleteSilently(ctx, keyAccessToken)
	s.deleteSilently(ctx, keyRefreshToken)
}

// SaveDraftRef remembers the active draft and its settings. Failures are
// logged and swallowed: losing the ref degrades to a fresh session, it never
// blocks the user's current action.
func (s *Store) SaveDraftRef(ctx context.Context, ref DraftRef) {
	if ref.DesignID != nil {
		s.setSilently(ctx, keyDesignID, strconv.Itoa(*ref.DesignID))
	} else {
		s.deleteSilently(ctx, keyDesignID)
	}
	s.setSilently(ctx, keyMachineBrand, ref.MachineBrand)
	s.setSilently(ctx, keyFormat, ref.RequestedFormat)
	s.setSilently(ctx, keySizeCm, strconv.Itoa(ref.EmbroiderySizeCm))
}

// LoadDraftRef restores the saved draft ref. Missing or corrupt values come
// back zero, not as errors.
func (s *Store) LoadDraftRef(ctx context.Context) DraftRef {
	var ref DraftRef
	if raw, err := s.get(ctx, keyDesignID); err == nil && raw != "" {
		if id, convErr := strconv.Atoi(raw); convErr == nil {
			ref.DesignID = &id
		}
	}
	ref.MachineBrand, _ = s.get(ctx, keyMachineBrand)
	ref.RequestedFormat, _ = s.get(ctx, keyFormat)
	if raw, err := s.get(ctx, keySizeCm); err == nil && raw != "" {
		if size, convErr := strconv.Atoi(raw); convErr == nil {
			ref.EmbroiderySizeCm = size
		}
	}
	return ref
}

// ClearDraftRef drops the remembered draft and its settings.
func (s *Store) ClearDraftRef(ctx context.Context) {
	s.deleteSilently(ctx, keyDesignID)
	s.deleteSilently(ctx, keyMachineBrand)
	s.deleteSilently(ctx, keyFormat)
	s.deleteSilently(ctx, keySizeCm)
}

// SaveSelectedFormats persists the checkout format selection as a comma list.
func (s *Store) SaveSelectedFormats(ctx context.Context, formats []string) {
	s.setSilently(ctx, keySelectedFmts, joinFormats(formats))
}

// LoadSelectedFormats restores the checkout format selection.
func (s *Store) LoadSelectedFormats(ctx context.Context) []string {
	raw, err := s.get(ctx, keySelectedFmts)
	if err != nil || raw == "" {
		return nil
	}
	return splitFormats(raw)
}

// MarkAdminRedirected records that the one-time staff redirect already ran.
func (s *Store) MarkAdminRedirected(ctx context.Context) {
	s.setSilently(ctx, keyAdminRedirect, "1")
}

// AdminRedirected reports whether the staff redirect already ran.
func (s *Store) AdminRedirected(ctx context.Context) bool {
	raw, err := s.get(ctx, keyAdminRedirect)
	return err == nil && raw == "1"
}

// ResetAdminRedirect clears the redirect marker, done on sign-out so the next
// staff sign-in redirects again.
func (s *Store) ResetAdminRedirect(ctx context.Context) {
	s.deleteSilently(ctx, keyAdminRedirect)
}

// Reset wipes every stored entry.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	s.access = ""
	s.mu.Unlock()
	return s.client.DB().WithContext(ctx).Where("1 = 1").Delete(&Entry{}).Error
}

func (s *Store) get(ctx context.Context, key string) (string, error) {
	var entry Entry
	err := s.client.DB().WithContext(ctx).First(&entry, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return entry.Value, nil
}

func (s *Store) set(ctx context.Context, key, value string) error {
	entry := Entry{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	return s.client.DB().WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&entry).Error
}

func (s *Store) setSilently(ctx context.Context, key, value string) {
	if err := s.set(ctx, key, value); err != nil {
		s.logger.Warn(s.logger.WithField(ctx, "key", key), "session write failed")
	}
}

func (s *Store) deleteSilently(ctx context.Context, key string) {
	if err := s.client.DB().WithContext(ctx).Delete(&Entry{}, "key = ?", key).Error; err != nil {
		s.logger.Warn(s.logger.WithField(ctx, "key", key), "session delete failed")
	}
}
