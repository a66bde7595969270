package acousticbrainz

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sydlexius/brainzmatch/internal/provider"
	"github.com/sydlexius/brainzmatch/internal/version"
)

const defaultBaseURL = "https://acousticbrainz.org/api/v1"

// Adapter fetches low-level audio analysis from AcousticBrainz.
type Adapter struct {
	client  *http.Client
	limiter *provider.RateLimiterMap
	logger  *slog.Logger
	baseURL string
}

// New creates an AcousticBrainz adapter with the default base URL.
func New(limiter *provider.RateLimiterMap, logger *slog.Logger) *Adapter {
	return NewWithBaseURL(limiter, logger, defaultBaseURL)
}

// NewWithBaseURL creates an AcousticBrainz adapter with a custom base URL (for testing).
func NewWithBaseURL(limiter *provider.RateLimiterMap, logger *slog.Logger, baseURL string) *Adapter {
	return &Adapter{
		client:  &http.Client{Timeout: 10 * time.Second},
		limiter: limiter,
		logger:  logger.With(slog.String("provider", "acousticbrainz")),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Name returns the provider name.
func (a *Adapter) Name() provider.ProviderName { return provider.NameAcousticBrainz }

// GetLowLevel fetches the low-level analysis of a recording. A recording that
// has not been analyzed yet yields *provider.ErrNotFound.
func (a *Adapter) GetLowLevel(ctx context.Context, recordingMBID string) (*provider.LowLevel, error) {
	reqURL := a.baseURL + "/" + url.PathEscape(recordingMBID) + "/low-level"

	body, err := a.doRequest(ctx, reqURL, recordingMBID)
	if err != nil {
		return nil, err
	}

	var doc LowLevelDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("parsing low-level response: %w", err)
	}

	rhythm := a.section(doc, sectionRhythm, recordingMBID)
	tonal := a.section(doc, sectionTonal, recordingMBID)

	return &provider.LowLevel{
		BPM:         rhythm[fieldBPM],
		Key:         tonal[fieldKey],
		KeyScale:    tonal[fieldKeyScale],
		ChordsKey:   tonal[fieldChordsKey],
		ChordsScale: tonal[fieldChordsScale],
	}, nil
}

// section decodes one document section, returning nil when it is absent or
// not an object.
func (a *Adapter) section(doc LowLevelDocument, name, mbid string) map[string]json.RawMessage {
	raw, ok := doc[name]
	if !ok {
		return nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		a.logger.Warn("malformed low-level section",
			slog.String("section", name),
			slog.String("recording", mbid),
			slog.String("error", err.Error()))
		return nil
	}
	return fields
}

func (a *Adapter) doRequest(ctx context.Context, reqURL, id string) ([]byte, error) {
	if err := a.limiter.Wait(ctx, provider.NameAcousticBrainz); err != nil {
		return nil, &provider.ErrProviderUnavailable{
			Provider: provider.NameAcousticBrainz,
			Cause:    fmt.Errorf("rate limiter: %w", err),
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", "brainzmatch/"+version.Version)
	req.Header.Set("Accept", "application/json")

	a.logger.Debug("requesting", slog.String("url", reqURL))

	resp, err := a.client.Do(req) //nolint:gosec // URL constructed from trusted base + escaped MBID
	if err != nil {
		return nil, &provider.ErrProviderUnavailable{
			Provider: provider.NameAcousticBrainz,
			Cause:    err,
		}
	}
	defer resp.Body.Close() //nolint:errcheck

	switch {
	case resp.StatusCode == http.StatusNotFound:
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &provider.ErrNotFound{Provider: provider.NameAcousticBrainz, ID: id}
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusServiceUnavailable:
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &provider.ErrProviderUnavailable{
			Provider:   provider.NameAcousticBrainz,
			Cause:      fmt.Errorf("HTTP %d", resp.StatusCode),
			RetryAfter: 10 * time.Second,
		}
	case resp.StatusCode != http.StatusOK:
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &provider.ErrProviderUnavailable{
			Provider: provider.NameAcousticBrainz,
			Cause:    fmt.Errorf("unexpected HTTP %d", resp.StatusCode),
		}
	}

	return io.ReadAll(io.LimitReader(resp.Body, 4*1024*1024))
}
