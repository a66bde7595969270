package match

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/sydlexius/brainzmatch/internal/provider"
)

// discogsRelationType is the URL relation type linking to a Discogs page.
const discogsRelationType = "discogs"

// ReleaseDetailer fetches the full record of a catalog release.
type ReleaseDetailer interface {
	GetRelease(ctx context.Context, mbid string) (*provider.ReleaseDetail, error)
}

// ReleasePolicy tunes the release resolver.
type ReleasePolicy struct {
	// ExamineAllCandidates runs the catalog-number variation stage over every
	// candidate instead of only the first one.
	ExamineAllCandidates bool
}

// ReleaseResolver picks one candidate release through an ordered chain of
// stages: Discogs URL relation, exact catalog number, catalog-number variation.
type ReleaseResolver struct {
	details ReleaseDetailer
	policy  ReleasePolicy
	logger  *slog.Logger
}

// NewReleaseResolver creates a ReleaseResolver.
func NewReleaseResolver(details ReleaseDetailer, policy ReleasePolicy, logger *slog.Logger) *ReleaseResolver {
	return &ReleaseResolver{
		details: details,
		policy:  policy,
		logger:  logger.With(slog.String("component", "release-resolver")),
	}
}

// Resolve returns the first release that a stage accepts.
func (r *ReleaseResolver) Resolve(ctx context.Context, t Target, candidates []provider.CandidateRelease) (ReleaseMatch, bool) {
	if len(candidates) == 0 {
		return ReleaseMatch{}, false
	}
	cache := newDetailCache(r.details, r.logger)
	log := r.logger.With(slog.Int64("release_id", t.ReleaseID))

	if m, ok := r.byURL(ctx, t, candidates, cache); ok {
		log.Debug("release matched", slog.String("mbid", m.MBID), slog.String("method", string(m.Method)))
		return m, true
	}

	target := NormalizeCatNo(t.CatalogNumber)
	if target == "" {
		log.Debug("no catalog number, skipping catalog-number stages")
		return ReleaseMatch{}, false
	}

	if m, ok := r.byCatNo(ctx, target, candidates, cache); ok {
		log.Debug("release matched", slog.String("mbid", m.MBID), slog.String("method", string(m.Method)))
		return m, true
	}

	scope := candidates[:1]
	if r.policy.ExamineAllCandidates {
		scope = candidates
	}
	if m, ok := r.byCatNoVariation(ctx, target, scope, cache); ok {
		log.Debug("release matched", slog.String("mbid", m.MBID), slog.String("method", string(m.Method)))
		return m, true
	}

	log.Debug("no release matched", slog.Int("candidates", len(candidates)), slog.String("catno", target))
	return ReleaseMatch{}, false
}

func (r *ReleaseResolver) byURL(ctx context.Context, t Target, candidates []provider.CandidateRelease, cache *detailCache) (ReleaseMatch, bool) {
	if t.ReleaseID <= 0 {
		return ReleaseMatch{}, false
	}
	id := strconv.FormatInt(t.ReleaseID, 10)
	for _, c := range candidates {
		d := cache.get(ctx, c.MBID)
		if d == nil {
			continue
		}
		for _, rel := range d.URLRelations {
			if rel.Type == discogsRelationType && strings.Contains(rel.Target, id) {
				return ReleaseMatch{MBID: c.MBID, Method: MethodDiscogsURL}, true
			}
		}
	}
	return ReleaseMatch{}, false
}

func (r *ReleaseResolver) byCatNo(ctx context.Context, target string, candidates []provider.CandidateRelease, cache *detailCache) (ReleaseMatch, bool) {
	for _, c := range candidates {
		d := cache.get(ctx, c.MBID)
		if d == nil {
			continue
		}
		for _, cn := range d.CatalogNumbers {
			if NormalizeCatNo(cn) == target {
				return ReleaseMatch{MBID: c.MBID, Method: MethodCatNoExact}, true
			}
		}
	}
	return ReleaseMatch{}, false
}

func (r *ReleaseResolver) byCatNoVariation(ctx context.Context, target string, candidates []provider.CandidateRelease, cache *detailCache) (ReleaseMatch, bool) {
	for _, c := range candidates {
		d := cache.get(ctx, c.MBID)
		if d == nil {
			continue
		}
		for _, cn := range d.CatalogNumbers {
			v, method, ok := CatNoVariation(NormalizeCatNo(cn))
			if ok && v == target {
				return ReleaseMatch{MBID: c.MBID, Method: method}, true
			}
		}
	}
	return ReleaseMatch{}, false
}

// detailCache fetches each candidate's detail at most once per Resolve call.
// Failed fetches are remembered as nil.
type detailCache struct {
	details ReleaseDetailer
	logger  *slog.Logger
	entries map[string]*provider.ReleaseDetail
}

func newDetailCache(details ReleaseDetailer, logger *slog.Logger) *detailCache {
	return &detailCache{
		details: details,
		logger:  logger,
		entries: make(map[string]*provider.ReleaseDetail),
	}
}

func (c *detailCache) get(ctx context.Context, mbid string) *provider.ReleaseDetail {
	if d, ok := c.entries[mbid]; ok {
		return d
	}
	d, err := c.details.GetRelease(ctx, mbid)
	if err != nil {
		c.logger.Warn("fetching candidate release failed",
			slog.String("mbid", mbid),
			slog.String("error", err.Error()))
		d = nil
	}
	c.entries[mbid] = d
	return d
}
