package matching

import (
	"context"
	"fmt"
	"sort"

	"silleShop/domain"
	"silleShop/pkg/logger"
)

// ---- Repository interfaces ----

type SurveyReader interface {
	GetResponse(ctx context.Context, userID uint) (domain.SurveyResponse, bool, error)
}

type MatchRepository interface {
	// ReplaceForUser atomically swaps the user's whole match set: either all
	// rows are replaced or none are.
	ReplaceForUser(ctx context.Context, userID uint, matches []domain.PerfumeMatch) (int64, error)
	DeleteForUser(ctx context.Context, userID uint) error
	Get(ctx context.Context, userID uint, perfumeID uint64) (*domain.PerfumeMatch, error)
	// GetAll returns the user's scores ordered score desc, perfume id asc.
	GetAll(ctx context.Context, userID uint) ([]domain.MatchScore, error)
}

type MatchCache interface {
	Get(ctx context.Context, userID uint) ([]domain.MatchScore, bool, error)
	Set(ctx context.Context, userID uint, scores []domain.MatchScore) error
	Invalidate(ctx context.Context, userID uint) error
}

// ---- Usecase / Service ----

type MatchService struct {
	surveyRepo SurveyReader
	matchRepo  MatchRepository
	cache      MatchCache
	snapshots  *SnapshotProvider
	voc        *AccordVocabulary
	scorer     *Scorer
}

func NewMatchService(
	surveyRepo SurveyReader,
	matchRepo MatchRepository,
	cache MatchCache,
	snapshots *SnapshotProvider,
	voc *AccordVocabulary,
	cfg Config,
) *MatchService {
	return &MatchService{
		surveyRepo: surveyRepo,
		matchRepo:  matchRepo,
		cache:      cache,
		snapshots:  snapshots,
		voc:        voc,
		scorer:     NewScorer(cfg),
	}
}

// RecomputeUser rebuilds the user's whole match set from current inputs.
// Deterministic: unchanged inputs always produce the same score set.
func (s *MatchService) RecomputeUser(ctx context.Context, userID uint) error {
	if err := ctx.Err(); err != nil {
		return transientErr("recompute", err)
	}

	resp, found, err := s.surveyRepo.GetResponse(ctx, userID)
	if err != nil {
		return transientErr("load survey response", err)
	}
	if !found {
		// no preference profile means no match rows at all, not zero scores
		if err := s.matchRepo.DeleteForUser(ctx, userID); err != nil {
			return transientErr("clear matches", err)
		}
		s.invalidateCache(ctx, userID)
		return nil
	}

	answers, err := ParseSurveyAnswers(resp.ResponseData)
	if err != nil {
		// the payload was validated at submit time; a bad row will not
		// become valid by retrying
		return fatalErr("parse survey response", err)
	}

	pref, gate := s.voc.VectorizePreference(answers)

	snap, err := s.snapshots.Snapshot(ctx)
	if err != nil {
		return transientErr("load catalog snapshot", err)
	}

	matches := make([]domain.PerfumeMatch, 0, len(snap.Items))
	for i := range snap.Items {
		item := &snap.Items[i]
		score, ok := s.scorer.Score(pref, gate, item, item.Feedback)
		if !ok {
			continue
		}
		matches = append(matches, domain.PerfumeMatch{
			UserID:    userID,
			PerfumeID: item.PerfumeID,
			Score:     score,
		})
	}

	// stable write order keeps batches reproducible
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].PerfumeID < matches[j].PerfumeID
	})

	count, err := s.matchRepo.ReplaceForUser(ctx, userID, matches)
	if err != nil {
		return transientErr("persist matches", err)
	}

	s.invalidateCache(ctx, userID)

	logger.Debug("match recompute finished",
		"user_id", userID,
		"gate", answers.Gender,
		"catalog_version", snap.Version,
		"matches", count,
	)
	return nil
}

// GetMatch returns the stored score for one (user, perfume) pair, or
// found=false when there is no match row.
func (s *MatchService) GetMatch(ctx context.Context, userID uint, perfumeID uint64) (float64, bool, error) {
	if err := ctx.Err(); err != nil {
		return 0, false, fmt.Errorf("context error: %w", err)
	}

	match, err := s.matchRepo.Get(ctx, userID, perfumeID)
	if err != nil {
		return 0, false, fmt.Errorf("failed to get match: %w", err)
	}
	if match == nil {
		return 0, false, nil
	}

	if snap, err := s.snapshots.Snapshot(ctx); err == nil && !snap.Contains(perfumeID) {
		logger.Warn("dropping stale match row",
			"user_id", userID,
			"error", &ConsistencyViolation{PerfumeID: perfumeID},
		)
		return 0, false, nil
	}

	return match.Score, true, nil
}

// GetMatches returns the user's full ranked match list, served from the
// cache when warm.
func (s *MatchService) GetMatches(ctx context.Context, userID uint) ([]domain.MatchScore, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	if s.cache != nil {
		if scores, ok, err := s.cache.Get(ctx, userID); err == nil && ok {
			return s.dropVanished(ctx, userID, scores), nil
		}
	}

	scores, err := s.matchRepo.GetAll(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	scores = s.dropVanished(ctx, userID, scores)

	if s.cache != nil {
		if err := s.cache.Set(ctx, userID, scores); err != nil {
			logger.Warn("failed to warm match cache", "user_id", userID, "error", err)
		}
	}

	return scores, nil
}

// dropVanished filters out rows whose perfume has left the catalog since the
// last recompute. Each one is a consistency violation: logged and skipped,
// never an error for the caller.
func (s *MatchService) dropVanished(ctx context.Context, userID uint, scores []domain.MatchScore) []domain.MatchScore {
	snap, err := s.snapshots.Snapshot(ctx)
	if err != nil {
		logger.Warn("serving matches without catalog check", "user_id", userID, "error", err)
		return scores
	}

	kept := scores[:0]
	for _, sc := range scores {
		if !snap.Contains(sc.PerfumeID) {
			logger.Warn("dropping stale match row",
				"user_id", userID,
				"error", &ConsistencyViolation{PerfumeID: sc.PerfumeID},
			)
			continue
		}
		kept = append(kept, sc)
	}
	return kept
}

func (s *MatchService) invalidateCache(ctx context.Context, userID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, userID); err != nil {
		logger.Warn("failed to invalidate match cache", "user_id", userID, "error", err)
	}
}
