package matching

import (
	"context"
	"fmt"
	"sync"

	"silleShop/domain"
	"silleShop/pkg/logger"
)

// ItemVector is one perfume vectorized into the shared accord space,
// bundled with the metadata scoring needs.
type ItemVector struct {
	PerfumeID uint64
	Gender    string
	Vector    SparseVector
	Feedback  FeedbackSignal
}

// CatalogSnapshot is an immutable vectorized view of the whole catalog,
// keyed by a version token. Scoring reads it by reference; it is replaced
// wholesale when the catalog changes, never mutated in place.
type CatalogSnapshot struct {
	Version string
	Items   []ItemVector

	ids map[uint64]struct{}
}

// Contains reports whether the perfume is present in this snapshot.
func (s *CatalogSnapshot) Contains(perfumeID uint64) bool {
	if s.ids != nil {
		_, ok := s.ids[perfumeID]
		return ok
	}
	for i := range s.Items {
		if s.Items[i].PerfumeID == perfumeID {
			return true
		}
	}
	return false
}

// CatalogSource is the catalog read path the snapshot provider depends on.
type CatalogSource interface {
	CatalogVersion(ctx context.Context) (string, error)
	FindAllWithAccords(ctx context.Context) ([]domain.PerfumeWithAccords, error)
}

// SnapshotProvider caches the current catalog snapshot and rebuilds it only
// when the catalog version token moves.
type SnapshotProvider struct {
	source CatalogSource
	voc    *AccordVocabulary

	mu      sync.Mutex
	current *CatalogSnapshot
}

func NewSnapshotProvider(source CatalogSource, voc *AccordVocabulary) *SnapshotProvider {
	return &SnapshotProvider{
		source: source,
		voc:    voc,
	}
}

// Snapshot returns the current catalog snapshot, rebuilding if stale.
func (p *SnapshotProvider) Snapshot(ctx context.Context) (*CatalogSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	version, err := p.source.CatalogVersion(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog version: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current != nil && p.current.Version == version {
		return p.current, nil
	}

	snap, err := p.build(ctx, version)
	if err != nil {
		return nil, err
	}

	logger.Debug("catalog snapshot rebuilt",
		"version", snap.Version,
		"items", len(snap.Items),
		"vocabulary_size", p.voc.Len(),
	)

	p.current = snap
	return snap, nil
}

func (p *SnapshotProvider) build(ctx context.Context, version string) (*CatalogSnapshot, error) {
	perfumes, err := p.source.FindAllWithAccords(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	items := make([]ItemVector, 0, len(perfumes))
	ids := make(map[uint64]struct{}, len(perfumes))
	for _, pf := range perfumes {
		ids[pf.ID] = struct{}{}
		profile := ItemProfileFromAccords(pf.ID, pf.Accords)
		items = append(items, ItemVector{
			PerfumeID: pf.ID,
			Gender:    pf.Gender,
			Vector:    p.voc.Vectorize(profile),
			Feedback: FeedbackSignal{
				RatingCount: pf.RatingCount,
				RatingMean:  pf.RatingMean,
			},
		})
	}

	return &CatalogSnapshot{Version: version, Items: items, ids: ids}, nil
}
