//go:build !integration

package matching

import (
	"context"
	"errors"
	"testing"

	"silleShop/domain"

	"gorm.io/datatypes"
)

type fakeSurveyRepo struct {
	responses map[uint]map[string]any
	err       error
}

func (f *fakeSurveyRepo) GetResponse(ctx context.Context, userID uint) (domain.SurveyResponse, bool, error) {
	if f.err != nil {
		return domain.SurveyResponse{}, false, f.err
	}
	data, ok := f.responses[userID]
	if !ok {
		return domain.SurveyResponse{}, false, nil
	}
	return domain.SurveyResponse{UserID: userID, ResponseData: datatypes.JSONMap(data)}, true, nil
}

type fakeMatchRepo struct {
	stored      map[uint][]domain.PerfumeMatch
	deleteCalls int
	replaceErr  error
}

func newFakeMatchRepo() *fakeMatchRepo {
	return &fakeMatchRepo{stored: make(map[uint][]domain.PerfumeMatch)}
}

func (f *fakeMatchRepo) ReplaceForUser(ctx context.Context, userID uint, matches []domain.PerfumeMatch) (int64, error) {
	if f.replaceErr != nil {
		return 0, f.replaceErr
	}
	f.stored[userID] = matches
	return int64(len(matches)), nil
}

func (f *fakeMatchRepo) DeleteForUser(ctx context.Context, userID uint) error {
	f.deleteCalls++
	delete(f.stored, userID)
	return nil
}

func (f *fakeMatchRepo) Get(ctx context.Context, userID uint, perfumeID uint64) (*domain.PerfumeMatch, error) {
	for _, m := range f.stored[userID] {
		if m.PerfumeID == perfumeID {
			match := m
			return &match, nil
		}
	}
	return nil, nil
}

func (f *fakeMatchRepo) GetAll(ctx context.Context, userID uint) ([]domain.MatchScore, error) {
	scores := make([]domain.MatchScore, 0, len(f.stored[userID]))
	for _, m := range f.stored[userID] {
		scores = append(scores, domain.MatchScore{PerfumeID: m.PerfumeID, Score: m.Score})
	}
	return scores, nil
}

type fakeCatalog struct {
	version  string
	perfumes []domain.PerfumeWithAccords
	loads    int
}

func (f *fakeCatalog) CatalogVersion(ctx context.Context) (string, error) {
	return f.version, nil
}

func (f *fakeCatalog) FindAllWithAccords(ctx context.Context) ([]domain.PerfumeWithAccords, error) {
	f.loads++
	return f.perfumes, nil
}

func catalogPerfume(id uint64, gender string, count int, mean float64, accords ...string) domain.PerfumeWithAccords {
	return domain.PerfumeWithAccords{
		Perfume: domain.Perfume{
			ID:          id,
			Name:        "perfume",
			Gender:      gender,
			RatingCount: count,
			RatingMean:  mean,
		},
		Accords: accords,
	}
}

func newTestService(surveyRepo *fakeSurveyRepo, matchRepo *fakeMatchRepo, catalog *fakeCatalog) *MatchService {
	voc := NewAccordVocabulary()
	snapshots := NewSnapshotProvider(catalog, voc)
	return NewMatchService(surveyRepo, matchRepo, nil, snapshots, voc, DefaultConfig())
}

func TestRecomputeUser_WritesGatedSortedMatches(t *testing.T) {
	surveyRepo := &fakeSurveyRepo{responses: map[uint]map[string]any{
		1: {"gender": "male", "citrus": 5.0, "woody": 1.0},
	}}
	matchRepo := newFakeMatchRepo()
	catalog := &fakeCatalog{version: "v1", perfumes: []domain.PerfumeWithAccords{
		catalogPerfume(3, "unisex", 0, 0, "citrus"),
		catalogPerfume(1, "male", 10, 4, "citrus", "woody"),
		catalogPerfume(2, "female", 0, 0, "citrus"), // gated out
	}}

	svc := newTestService(surveyRepo, matchRepo, catalog)
	if err := svc.RecomputeUser(context.Background(), 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	matches := matchRepo.stored[1]
	if len(matches) != 2 {
		t.Fatalf("stored %d matches, want 2 (female perfume gated out): %+v", len(matches), matches)
	}
	if matches[0].PerfumeID != 1 || matches[1].PerfumeID != 3 {
		t.Errorf("matches not sorted by perfume id: %+v", matches)
	}
	for _, m := range matches {
		if m.Score < 0 || m.Score > 1 {
			t.Errorf("score %v outside [0,1]", m.Score)
		}
		if m.UserID != 1 {
			t.Errorf("match attributed to user %d", m.UserID)
		}
	}
}

func TestRecomputeUser_NoSurveyClearsMatches(t *testing.T) {
	surveyRepo := &fakeSurveyRepo{responses: map[uint]map[string]any{}}
	matchRepo := newFakeMatchRepo()
	matchRepo.stored[1] = []domain.PerfumeMatch{{UserID: 1, PerfumeID: 9, Score: 0.4}}
	catalog := &fakeCatalog{version: "v1"}

	svc := newTestService(surveyRepo, matchRepo, catalog)
	if err := svc.RecomputeUser(context.Background(), 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if matchRepo.deleteCalls != 1 {
		t.Errorf("DeleteForUser called %d times, want 1", matchRepo.deleteCalls)
	}
	if len(matchRepo.stored[1]) != 0 {
		t.Errorf("matches not cleared: %+v", matchRepo.stored[1])
	}
}

func TestRecomputeUser_Idempotent(t *testing.T) {
	surveyRepo := &fakeSurveyRepo{responses: map[uint]map[string]any{
		1: {"gender": "unisex", "citrus": 4.0, "amber": 2.0},
	}}
	matchRepo := newFakeMatchRepo()
	catalog := &fakeCatalog{version: "v1", perfumes: []domain.PerfumeWithAccords{
		catalogPerfume(1, "unisex", 25, 3.5, "citrus", "amber"),
		catalogPerfume(2, "unisex", 0, 0, "amber"),
	}}

	svc := newTestService(surveyRepo, matchRepo, catalog)
	if err := svc.RecomputeUser(context.Background(), 1); err != nil {
		t.Fatalf("first run: %v", err)
	}
	first := append([]domain.PerfumeMatch(nil), matchRepo.stored[1]...)

	if err := svc.RecomputeUser(context.Background(), 1); err != nil {
		t.Fatalf("second run: %v", err)
	}
	second := matchRepo.stored[1]

	if len(first) != len(second) {
		t.Fatalf("match count changed between identical runs: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].PerfumeID != second[i].PerfumeID || first[i].Score != second[i].Score {
			t.Errorf("row %d changed between identical runs: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestRecomputeUser_ErrorClassification(t *testing.T) {
	matchRepo := newFakeMatchRepo()
	catalog := &fakeCatalog{version: "v1"}

	// infrastructure failure loading the survey is transient
	svc := newTestService(&fakeSurveyRepo{err: errors.New("connection reset")}, matchRepo, catalog)
	if err := svc.RecomputeUser(context.Background(), 1); !IsTransient(err) {
		t.Errorf("survey load failure should be transient, got %v", err)
	}

	// a stored payload that no longer parses will not improve with retries
	svc = newTestService(&fakeSurveyRepo{responses: map[uint]map[string]any{
		1: {"citrus": 4.0}, // gender missing
	}}, matchRepo, catalog)
	err := svc.RecomputeUser(context.Background(), 1)
	if err == nil || IsTransient(err) {
		t.Errorf("unparseable survey should be a non-transient failure, got %v", err)
	}

	// persistence failure is transient
	failing := newFakeMatchRepo()
	failing.replaceErr = errors.New("deadlock detected")
	svc = newTestService(&fakeSurveyRepo{responses: map[uint]map[string]any{
		1: {"gender": "unisex", "citrus": 5.0},
	}}, failing, &fakeCatalog{version: "v1", perfumes: []domain.PerfumeWithAccords{
		catalogPerfume(1, "unisex", 0, 0, "citrus"),
	}})
	if err := svc.RecomputeUser(context.Background(), 1); !IsTransient(err) {
		t.Errorf("persist failure should be transient, got %v", err)
	}
}

func TestGetMatches_DropsRowsForVanishedPerfumes(t *testing.T) {
	matchRepo := newFakeMatchRepo()
	matchRepo.stored[1] = []domain.PerfumeMatch{
		{UserID: 1, PerfumeID: 1, Score: 0.7},
		{UserID: 1, PerfumeID: 9, Score: 0.6}, // deleted from the catalog since recompute
	}
	catalog := &fakeCatalog{version: "v2", perfumes: []domain.PerfumeWithAccords{
		catalogPerfume(1, "unisex", 0, 0, "citrus"),
	}}

	svc := newTestService(&fakeSurveyRepo{}, matchRepo, catalog)
	ctx := context.Background()

	scores, err := svc.GetMatches(ctx, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(scores) != 1 || scores[0].PerfumeID != 1 {
		t.Errorf("stale row not dropped from list: %+v", scores)
	}

	if _, found, err := svc.GetMatch(ctx, 1, 9); err != nil || found {
		t.Errorf("GetMatch for vanished perfume = (found=%v, err=%v), want not found", found, err)
	}
	if score, found, err := svc.GetMatch(ctx, 1, 1); err != nil || !found || score != 0.7 {
		t.Errorf("GetMatch for live perfume = (%v, %v, %v), want (0.7, true, nil)", score, found, err)
	}
}

func TestSnapshotProvider_RebuildsOnlyOnVersionChange(t *testing.T) {
	catalog := &fakeCatalog{version: "v1", perfumes: []domain.PerfumeWithAccords{
		catalogPerfume(1, "unisex", 0, 0, "citrus"),
	}}
	voc := NewAccordVocabulary()
	provider := NewSnapshotProvider(catalog, voc)
	ctx := context.Background()

	first, err := provider.Snapshot(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := provider.Snapshot(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Error("snapshot rebuilt although version did not move")
	}
	if catalog.loads != 1 {
		t.Errorf("catalog loaded %d times, want 1", catalog.loads)
	}

	catalog.version = "v2"
	third, err := provider.Snapshot(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if third == first {
		t.Error("snapshot not rebuilt after version change")
	}
	if third.Version != "v2" {
		t.Errorf("snapshot version = %q, want v2", third.Version)
	}
}
