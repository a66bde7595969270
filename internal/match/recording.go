package match

import (
	"context"
	"log/slog"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"

	"github.com/sydlexius/brainzmatch/internal/provider"
)

// RecordingResolver picks one recording within a resolved release, by track
// title first and by track number second.
type RecordingResolver struct {
	details ReleaseDetailer
	logger  *slog.Logger
}

// NewRecordingResolver creates a RecordingResolver.
func NewRecordingResolver(details ReleaseDetailer, logger *slog.Logger) *RecordingResolver {
	return &RecordingResolver{
		details: details,
		logger:  logger.With(slog.String("component", "recording-resolver")),
	}
}

// numberedTrack is a track with its 1-based position across all media.
type numberedTrack struct {
	provider.TrackEntry
	overall int
}

// Resolve returns the recording for t on release releaseMBID. A recording
// override wins without any lookup.
func (r *RecordingResolver) Resolve(ctx context.Context, t Target, releaseMBID string) (RecordingMatch, bool) {
	if t.RecordingOverride != "" {
		return RecordingMatch{MBID: t.RecordingOverride, Method: MethodUserOverride}, true
	}
	if releaseMBID == "" {
		return RecordingMatch{}, false
	}

	log := r.logger.With(
		slog.Int64("release_id", t.ReleaseID),
		slog.String("release_mbid", releaseMBID),
		slog.String("track", t.TrackLabel))

	d, err := r.details.GetRelease(ctx, releaseMBID)
	if err != nil {
		log.Warn("fetching matched release failed", slog.String("error", err.Error()))
		return RecordingMatch{}, false
	}

	tracks := flatten(d.Media)

	if title := normalizeTitle(t.TrackName); title != "" {
		for _, tr := range tracks {
			if tr.RecordingID != "" && normalizeTitle(tr.Title) == title {
				return RecordingMatch{MBID: tr.RecordingID, Method: MethodTrackName}, true
			}
		}
	}

	if label := normalizeLabel(t.TrackLabel); label != "" {
		for _, tr := range tracks {
			if tr.RecordingID != "" && normalizeLabel(tr.Number) == label {
				return RecordingMatch{MBID: tr.RecordingID, Method: MethodTrackNo}, true
			}
		}
	}

	if t.TrackOrdinal > 0 {
		for _, tr := range tracks {
			if tr.RecordingID != "" && tr.overall == t.TrackOrdinal {
				return RecordingMatch{MBID: tr.RecordingID, Method: MethodTrackNoNum}, true
			}
		}
	}

	r.logMiss(log, t, tracks)
	return RecordingMatch{}, false
}

func flatten(media []provider.Medium) []numberedTrack {
	var out []numberedTrack
	for _, m := range media {
		for _, tr := range m.Tracks {
			out = append(out, numberedTrack{TrackEntry: tr, overall: len(out) + 1})
		}
	}
	return out
}

// logMiss records the last examined track and the closest title.
func (r *RecordingResolver) logMiss(log *slog.Logger, t Target, tracks []numberedTrack) {
	if len(tracks) == 0 {
		log.Debug("no recording matched, release has no tracks")
		return
	}
	last := tracks[len(tracks)-1]

	jw := metrics.NewJaroWinkler()
	jw.CaseSensitive = false
	var closest string
	best := -1.0
	for _, tr := range tracks {
		if s := strutil.Similarity(t.TrackName, tr.Title, jw); s > best {
			best, closest = s, tr.Title
		}
	}

	log.Debug("no recording matched",
		slog.String("track_name", t.TrackName),
		slog.Int("track_ordinal", t.TrackOrdinal),
		slog.String("last_number", last.Number),
		slog.String("last_title", last.Title),
		slog.Int("last_position", last.overall),
		slog.String("closest_title", closest),
		slog.Float64("closest_similarity", best))
}
