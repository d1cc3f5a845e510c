//go:build !integration

package postgres

import (
	"context"
	"fmt"
	"testing"

	"silleShop/domain"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	glogger "gorm.io/gorm/logger"
)

func newMatchTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// one shared in-memory database per test, named so tests stay isolated
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: glogger.Default.LogMode(glogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(&domain.Perfume{}, &domain.PerfumeMatch{}); err != nil {
		t.Fatalf("failed to migrate test schema: %v", err)
	}

	return db
}

func storedMatches(t *testing.T, db *gorm.DB, userID uint) []domain.PerfumeMatch {
	t.Helper()

	var rows []domain.PerfumeMatch
	err := db.Where("user_id = ?", userID).Order("perfume_id ASC").Find(&rows).Error
	if err != nil {
		t.Fatalf("failed to read match rows: %v", err)
	}
	return rows
}

func TestReplaceForUser_SwapsWholeSet(t *testing.T) {
	db := newMatchTestDB(t)
	repo := NewMatchRepository(db)
	ctx := context.Background()

	first := []domain.PerfumeMatch{
		{UserID: 1, PerfumeID: 1, Score: 0.9},
		{UserID: 1, PerfumeID: 2, Score: 0.5},
	}
	if _, err := repo.ReplaceForUser(ctx, 1, first); err != nil {
		t.Fatalf("first replace: %v", err)
	}

	second := []domain.PerfumeMatch{
		{UserID: 1, PerfumeID: 3, Score: 0.7},
	}
	count, err := repo.ReplaceForUser(ctx, 1, second)
	if err != nil {
		t.Fatalf("second replace: %v", err)
	}
	if count != 1 {
		t.Errorf("replace reported %d rows, want 1", count)
	}

	rows := storedMatches(t, db, 1)
	if len(rows) != 1 || rows[0].PerfumeID != 3 {
		t.Errorf("previous batch not fully swapped out: %+v", rows)
	}

	if _, err := repo.ReplaceForUser(ctx, 1, nil); err != nil {
		t.Fatalf("empty replace: %v", err)
	}
	if rows := storedMatches(t, db, 1); len(rows) != 0 {
		t.Errorf("empty replace left rows behind: %+v", rows)
	}
}

func TestReplaceForUser_FailedBatchKeepsPriorSetIntact(t *testing.T) {
	db := newMatchTestDB(t)
	repo := NewMatchRepository(db)
	ctx := context.Background()

	prior := []domain.PerfumeMatch{
		{UserID: 1, PerfumeID: 1, Score: 0.9},
		{UserID: 1, PerfumeID: 2, Score: 0.5},
		{UserID: 1, PerfumeID: 3, Score: 0.2},
	}
	if _, err := repo.ReplaceForUser(ctx, 1, prior); err != nil {
		t.Fatalf("seeding prior batch: %v", err)
	}

	// the duplicate key makes the insert fail after the delete already ran
	// inside the transaction
	broken := []domain.PerfumeMatch{
		{UserID: 1, PerfumeID: 4, Score: 0.8},
		{UserID: 1, PerfumeID: 4, Score: 0.6},
	}
	if _, err := repo.ReplaceForUser(ctx, 1, broken); err == nil {
		t.Fatal("replace with duplicate perfume ids should fail")
	}

	rows := storedMatches(t, db, 1)
	if len(rows) != len(prior) {
		t.Fatalf("prior set damaged by failed replace: got %d rows, want %d: %+v", len(rows), len(prior), rows)
	}
	for i, want := range prior {
		if rows[i].PerfumeID != want.PerfumeID || rows[i].Score != want.Score {
			t.Errorf("row %d = %+v, want perfume %d score %v", i, rows[i], want.PerfumeID, want.Score)
		}
	}
}

func TestGetAll_PrunesOrphanRows(t *testing.T) {
	db := newMatchTestDB(t)
	repo := NewMatchRepository(db)
	ctx := context.Background()

	perfumes := []domain.Perfume{
		{ID: 1, Name: "one", Gender: "unisex"},
		{ID: 2, Name: "two", Gender: "unisex"},
	}
	if err := db.Create(&perfumes).Error; err != nil {
		t.Fatalf("seeding perfumes: %v", err)
	}

	matches := []domain.PerfumeMatch{
		{UserID: 1, PerfumeID: 1, Score: 0.4},
		{UserID: 1, PerfumeID: 2, Score: 0.9},
		{UserID: 1, PerfumeID: 7, Score: 0.6}, // perfume 7 no longer exists
	}
	if _, err := repo.ReplaceForUser(ctx, 1, matches); err != nil {
		t.Fatalf("seeding matches: %v", err)
	}

	scores, err := repo.GetAll(ctx, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(scores) != 2 {
		t.Fatalf("orphan row served: %+v", scores)
	}
	if scores[0].PerfumeID != 2 || scores[1].PerfumeID != 1 {
		t.Errorf("scores not ordered score desc: %+v", scores)
	}

	if rows := storedMatches(t, db, 1); len(rows) != 2 {
		t.Errorf("orphan row not pruned from storage: %+v", rows)
	}
}
