package services

import (
	"context"
	"fmt"
	"time"

	"github.com/harentsoaR/ayursutra-api/internal/logger"
	"github.com/harentsoaR/ayursutra-api/internal/models"
	"github.com/harentsoaR/ayursutra-api/internal/store"
	"go.mongodb.org/mongo-driver/bson"
)

// UsersMigrationVersion tags runs of the move from a single users collection
// to the index plus role collections layout.
const UsersMigrationVersion = "2025-09-role-collections"

type MigrationService struct {
	store store.Store
	log   *logger.Logger
	now   func() time.Time
}

type MigrationResult struct {
	Version       string   `json:"version"`
	MigratedCount int      `json:"migratedCount"`
	Skipped       []string `json:"skipped,omitempty"`
}

// indexKeys is the minimal shape a users row is rewritten to. The tombstone
// fields are carried over so deleted accounts stay deleted.
var indexKeys = []string{"uid", "email", "name", "userType", "createdAt", "active", "deletedAt"}

// MigrateExistingUsers copies each legacy users row that has no role profile
// into its role collection and trims the users row to the index shape. Rows
// that already have a profile are left alone, so a second run migrates nothing.
func (m *MigrationService) MigrateExistingUsers(ctx context.Context) (*MigrationResult, error) {
	var rows []bson.M
	if err := m.store.Find(ctx, models.CollectionUsers, store.NewQuery(), &rows); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	result := &MigrationResult{Version: UsersMigrationVersion}
	for _, row := range rows {
		uid, _ := row["_id"].(string)
		if uid == "" {
			uid, _ = row["uid"].(string)
		}
		typ, _ := row["userType"].(string)
		role := models.Role(typ)
		if uid == "" || !role.Valid() {
			m.log.Warn("skipping user row", "uid", uid, "userType", typ)
			result.Skipped = append(result.Skipped, uid)
			continue
		}

		exists, err := m.store.Exists(ctx, role.Collection(), uid)
		if err != nil {
			return result, fmt.Errorf("check %s profile %s: %w", role, uid, err)
		}
		if exists {
			continue
		}

		now := m.now()
		profile := make(models.Fields, len(row)+2)
		for k, v := range row {
			if k != "_id" {
				profile[k] = v
			}
		}
		profile["uid"] = uid
		profile["updatedAt"] = now
		if role == models.RolePatient {
			if _, ok := profile["allowedPractitionerIds"]; !ok {
				profile["allowedPractitionerIds"] = []string{}
			}
		}
		if err := m.store.Set(ctx, role.Collection(), uid, profile); err != nil {
			return result, fmt.Errorf("write %s profile %s: %w", role, uid, err)
		}
		result.MigratedCount++

		index := models.Fields{"updatedAt": now}
		for _, k := range indexKeys {
			if v, ok := row[k]; ok {
				index[k] = v
			}
		}
		index["uid"] = uid
		if err := m.store.Set(ctx, models.CollectionUsers, uid, index); err != nil {
			return result, fmt.Errorf("rewrite user index %s: %w", uid, err)
		}
		m.log.Info("migrated user", "uid", uid, "role", role)
	}

	run := models.MigrationRun{
		Version:       result.Version,
		MigratedCount: result.MigratedCount,
		Skipped:       result.Skipped,
		RanAt:         m.now(),
	}
	if _, err := m.store.Add(ctx, models.CollectionMigrations, run); err != nil {
		m.log.Error(err, "failed to record migration run")
	}

	m.log.Info("user migration finished", "migrated", result.MigratedCount, "skipped", len(result.Skipped))
	return result, nil
}

// History lists previous runs, newest first.
func (m *MigrationService) History(ctx context.Context) ([]models.MigrationRun, error) {
	var runs []models.MigrationRun
	if err := m.store.Find(ctx, models.CollectionMigrations, store.NewQuery().Sort(store.Desc("ranAt")), &runs); err != nil {
		return nil, fmt.Errorf("list migration runs: %w", err)
	}
	return runs, nil
}
