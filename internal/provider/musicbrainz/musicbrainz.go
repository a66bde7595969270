package musicbrainz

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sydlexius/brainzmatch/internal/provider"
	"github.com/sydlexius/brainzmatch/internal/version"
)

const defaultBaseURL = "https://musicbrainz.org/ws/2"

// Includes requested on release lookups.
const releaseIncludes = "labels+url-rels+recordings"

// Adapter is a client for the MusicBrainz web service. It serves as the
// catalog-search collaborator of the matcher.
type Adapter struct {
	client  *http.Client
	limiter *provider.RateLimiterMap
	logger  *slog.Logger
	baseURL string
	contact string
}

// New creates a MusicBrainz adapter with the default base URL.
func New(limiter *provider.RateLimiterMap, logger *slog.Logger) *Adapter {
	return NewWithBaseURL(limiter, logger, defaultBaseURL)
}

// NewWithBaseURL creates a MusicBrainz adapter with a custom base URL (for testing).
func NewWithBaseURL(limiter *provider.RateLimiterMap, logger *slog.Logger, baseURL string) *Adapter {
	return &Adapter{
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		limiter: limiter,
		logger:  logger.With(slog.String("provider", "musicbrainz")),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// SetContact sets the contact URL or e-mail sent in the User-Agent, as
// MusicBrainz asks of API consumers.
func (a *Adapter) SetContact(contact string) {
	a.contact = contact
}

// Name returns the provider name.
func (a *Adapter) Name() provider.ProviderName { return provider.NameMusicBrainz }

// SearchReleases runs a release search and returns at most q.Limit stubs.
func (a *Adapter) SearchReleases(ctx context.Context, q provider.ReleaseQuery) ([]provider.CandidateRelease, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = 5
	}
	query := BuildQuery(q)
	if query == "" {
		return nil, nil
	}
	params := url.Values{
		"query": {query},
		"fmt":   {"json"},
		"limit": {strconv.Itoa(limit)},
	}
	reqURL := a.baseURL + "/release?" + params.Encode()

	body, err := a.doRequest(ctx, reqURL)
	if err != nil {
		return nil, err
	}

	var resp ReleaseSearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parsing release search response: %w", err)
	}

	results := make([]provider.CandidateRelease, 0, len(resp.Releases))
	for _, r := range resp.Releases {
		if len(results) == limit {
			break
		}
		results = append(results, provider.CandidateRelease{
			MBID:  r.ID,
			Title: r.Title,
			Score: r.Score,
		})
	}
	return results, nil
}

// GetRelease fetches a release with its labels, URL relations and tracklist.
func (a *Adapter) GetRelease(ctx context.Context, mbid string) (*provider.ReleaseDetail, error) {
	params := url.Values{
		"inc": {releaseIncludes},
		"fmt": {"json"},
	}
	reqURL := a.baseURL + "/release/" + url.PathEscape(mbid) + "?" + params.Encode()

	body, err := a.doRequest(ctx, reqURL)
	if err != nil {
		return nil, err
	}

	var rel MBRelease
	if err := json.Unmarshal(body, &rel); err != nil {
		return nil, fmt.Errorf("parsing release response: %w", err)
	}
	return mapRelease(&rel), nil
}

// TestConnection verifies connectivity to the MusicBrainz API.
func (a *Adapter) TestConnection(ctx context.Context) error {
	params := url.Values{
		"query": {"release:test"},
		"fmt":   {"json"},
		"limit": {"1"},
	}
	_, err := a.doRequest(ctx, a.baseURL+"/release?"+params.Encode())
	return err
}

// doRequest executes an HTTP GET with rate limiting and standard headers.
func (a *Adapter) doRequest(ctx context.Context, reqURL string) ([]byte, error) {
	if err := a.limiter.Wait(ctx, provider.NameMusicBrainz); err != nil {
		return nil, &provider.ErrProviderUnavailable{
			Provider: provider.NameMusicBrainz,
			Cause:    fmt.Errorf("rate limiter: %w", err),
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", a.userAgent())
	req.Header.Set("Accept", "application/json")

	a.logger.Debug("requesting", slog.String("url", reqURL))

	resp, err := a.client.Do(req) //nolint:gosec // URL constructed from trusted base + escaped params
	if err != nil {
		return nil, &provider.ErrProviderUnavailable{
			Provider: provider.NameMusicBrainz,
			Cause:    err,
		}
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode == http.StatusNotFound {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &provider.ErrNotFound{
			Provider: provider.NameMusicBrainz,
			ID:       reqURL,
		}
	}

	if resp.StatusCode == http.StatusServiceUnavailable || resp.StatusCode == http.StatusTooManyRequests {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &provider.ErrProviderUnavailable{
			Provider:   provider.NameMusicBrainz,
			Cause:      fmt.Errorf("HTTP %d", resp.StatusCode),
			RetryAfter: 2 * time.Second,
		}
	}

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &provider.ErrProviderUnavailable{
			Provider: provider.NameMusicBrainz,
			Cause:    fmt.Errorf("unexpected HTTP %d", resp.StatusCode),
		}
	}

	return io.ReadAll(io.LimitReader(resp.Body, 2*1024*1024))
}

func (a *Adapter) userAgent() string {
	contact := a.contact
	if contact == "" {
		contact = "https://github.com/sydlexius/brainzmatch"
	}
	return fmt.Sprintf("brainzmatch/%s ( %s )", version.Version, contact)
}

// mapRelease converts a MusicBrainz release into the common ReleaseDetail.
func mapRelease(mb *MBRelease) *provider.ReleaseDetail {
	d := &provider.ReleaseDetail{
		MBID:  mb.ID,
		Title: mb.Title,
	}

	for _, li := range mb.LabelInfo {
		if li.CatalogNumber != "" {
			d.CatalogNumbers = append(d.CatalogNumbers, li.CatalogNumber)
		}
	}

	for _, rel := range mb.Relations {
		if rel.URL == nil || rel.URL.Resource == "" {
			continue
		}
		d.URLRelations = append(d.URLRelations, provider.URLRelation{
			Type:   rel.Type,
			Target: rel.URL.Resource,
		})
	}

	for _, m := range mb.Media {
		medium := provider.Medium{Position: m.Position, Format: m.Format}
		for _, tr := range m.Tracks {
			entry := provider.TrackEntry{
				Number:   tr.Number,
				Title:    tr.Title,
				Position: tr.Position,
			}
			if tr.Recording != nil {
				entry.RecordingID = tr.Recording.ID
				if entry.Title == "" {
					entry.Title = tr.Recording.Title
				}
			}
			medium.Tracks = append(medium.Tracks, entry)
		}
		d.Media = append(d.Media, medium)
	}

	return d
}
