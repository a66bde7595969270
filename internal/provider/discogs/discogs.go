package discogs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/sydlexius/brainzmatch/internal/provider"
	"github.com/sydlexius/brainzmatch/internal/version"
)

// maxBodySize caps how much of a response body is read.
const maxBodySize = 2 * 1024 * 1024

const defaultBaseURL = "https://api.discogs.com"

// disambiguationSuffix matches the " (2)" Discogs appends to duplicate artist names.
var disambiguationSuffix = regexp.MustCompile(`\s+\(\d+\)$`)

// Adapter reads releases from Discogs, the source catalog the local cache is
// built from.
type Adapter struct {
	client  *http.Client
	limiter *provider.RateLimiterMap
	logger  *slog.Logger
	baseURL string
	token   string
}

// New creates a Discogs adapter with the default base URL. The token may be
// empty, in which case requests are sent unauthenticated.
func New(limiter *provider.RateLimiterMap, token string, logger *slog.Logger) *Adapter {
	return NewWithBaseURL(limiter, token, logger, defaultBaseURL)
}

// NewWithBaseURL creates a Discogs adapter with a custom base URL (for testing).
func NewWithBaseURL(limiter *provider.RateLimiterMap, token string, logger *slog.Logger, baseURL string) *Adapter {
	return &Adapter{
		client:  &http.Client{Timeout: 10 * time.Second},
		limiter: limiter,
		logger:  logger.With(slog.String("provider", "discogs")),
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
	}
}

// Name returns the provider name.
func (a *Adapter) Name() provider.ProviderName { return provider.NameDiscogs }

// GetRelease fetches a release by its Discogs ID.
func (a *Adapter) GetRelease(ctx context.Context, id int64) (*provider.SourceRelease, error) {
	if err := a.limiter.Wait(ctx, provider.NameDiscogs); err != nil {
		return nil, &provider.ErrProviderUnavailable{
			Provider: provider.NameDiscogs,
			Cause:    fmt.Errorf("rate limiter: %w", err),
		}
	}

	idStr := strconv.FormatInt(id, 10)
	body, err := a.doRequest(ctx, a.baseURL+"/releases/"+idStr, idStr)
	if err != nil {
		return nil, err
	}

	var detail ReleaseDetail
	if err := json.Unmarshal(body, &detail); err != nil {
		return nil, fmt.Errorf("parsing release response: %w", err)
	}
	return mapRelease(&detail), nil
}

// TestConnection verifies connectivity to the Discogs API and, when a token
// is configured, that it is accepted.
func (a *Adapter) TestConnection(ctx context.Context) error {
	if err := a.limiter.Wait(ctx, provider.NameDiscogs); err != nil {
		return &provider.ErrProviderUnavailable{
			Provider: provider.NameDiscogs,
			Cause:    fmt.Errorf("rate limiter: %w", err),
		}
	}
	_, err := a.doRequest(ctx, a.baseURL+"/", "/")
	return err
}

func (a *Adapter) doRequest(ctx context.Context, reqURL, id string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if a.token != "" {
		req.Header.Set("Authorization", "Discogs token="+a.token)
	}
	req.Header.Set("User-Agent", "brainzmatch/"+version.Version)
	req.Header.Set("Accept", "application/json")

	a.logger.Debug("requesting", slog.String("url", reqURL))

	resp, err := a.client.Do(req) //nolint:gosec // URL constructed from trusted base + numeric ID
	if err != nil {
		return nil, &provider.ErrProviderUnavailable{
			Provider: provider.NameDiscogs,
			Cause:    err,
		}
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode == http.StatusNotFound {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &provider.ErrNotFound{Provider: provider.NameDiscogs, ID: id}
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &provider.ErrAuthRequired{Provider: provider.NameDiscogs}
	}
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &provider.ErrProviderUnavailable{
			Provider: provider.NameDiscogs,
			Cause:    fmt.Errorf("HTTP %d", resp.StatusCode),
		}
	}

	return io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
}

func mapRelease(d *ReleaseDetail) *provider.SourceRelease {
	rel := &provider.SourceRelease{
		ID:     d.ID,
		Title:  d.Title,
		Artist: artistName(d.Artists),
	}

	for _, l := range d.Labels {
		if l.Catno != "" && !strings.EqualFold(l.Catno, "none") {
			rel.CatalogNumber = l.Catno
			break
		}
	}

	ordinal := 0
	for _, t := range d.Tracklist {
		if t.Type != "" && t.Type != "track" {
			continue
		}
		ordinal++
		rel.Tracks = append(rel.Tracks, provider.SourceTrack{
			Position: t.Position,
			Title:    t.Title,
			Ordinal:  ordinal,
		})
	}

	return rel
}

// artistName joins the credited artists the way Discogs prints them.
func artistName(credits []ArtistCredit) string {
	var b strings.Builder
	for i, c := range credits {
		name := c.ANV
		if name == "" {
			name = c.Name
		}
		b.WriteString(disambiguationSuffix.ReplaceAllString(name, ""))
		if i < len(credits)-1 {
			join := strings.TrimSpace(c.Join)
			switch join {
			case "", ",":
				b.WriteString(join + " ")
			default:
				b.WriteString(" " + join + " ")
			}
		}
	}
	return b.String()
}
