// Package rxnav resolves free-text medication names to RxNorm concept
// codes through the NLM RxNav REST API.
package rxnav

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/medsafe/interactions-api/interfaces"
	"github.com/medsafe/interactions-api/metrics"
)

var (
	// ErrNotFound means the vocabulary has no concept for the name,
	// neither by exact nor approximate match.
	ErrNotFound = errors.New("medication not found in vocabulary")

	// ErrUpstream marks transport failures and non-2xx responses from
	// the vocabulary service.
	ErrUpstream = errors.New("vocabulary service unavailable")
)

// Compile-time check to ensure Client implements Vocabulary
var _ interfaces.Vocabulary = (*Client)(nil)

// Client calls the RxNav REST endpoints.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new RxNav client. baseURL defaults to the public
// NLM instance.
func NewClient(baseURL string) *Client {
	baseURL = strings.TrimSuffix(baseURL, "/")
	if baseURL == "" {
		baseURL = "https://rxnav.nlm.nih.gov/REST"
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// FindRxCUI resolves a medication name to its RxNorm concept code.
// It tries an exact name match first and falls back to the closest
// approximate match.
func (c *Client) FindRxCUI(ctx context.Context, name string) (string, error) {
	start := time.Now()

	rxcui, err := c.searchExact(ctx, name)
	if err != nil {
		metrics.VocabularyRequestTotals.WithLabelValues(metrics.OutcomeError).Inc()
		return "", err
	}

	if rxcui == "" {
		rxcui, err = c.searchApproximate(ctx, name)
		if err != nil {
			metrics.VocabularyRequestTotals.WithLabelValues(metrics.OutcomeError).Inc()
			return "", err
		}
	}

	metrics.VocabularyRequestDuration.Observe(time.Since(start).Seconds())

	if rxcui == "" {
		metrics.VocabularyRequestTotals.WithLabelValues(metrics.OutcomeNotFound).Inc()
		return "", fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	metrics.VocabularyRequestTotals.WithLabelValues(metrics.OutcomeSuccess).Inc()
	return rxcui, nil
}

// searchExact queries rxcui.json for an exact name match.
func (c *Client) searchExact(ctx context.Context, name string) (string, error) {
	searchURL := fmt.Sprintf("%s/rxcui.json?name=%s", c.baseURL, url.QueryEscape(name))

	var result struct {
		IdGroup struct {
			RxNormId []string `json:"rxnormId"`
		} `json:"idGroup"`
	}
	if err := c.getJSON(ctx, searchURL, &result); err != nil {
		return "", err
	}

	if len(result.IdGroup.RxNormId) > 0 {
		return result.IdGroup.RxNormId[0], nil
	}
	return "", nil
}

// searchApproximate queries approximateTerm.json for the best candidate.
func (c *Client) searchApproximate(ctx context.Context, term string) (string, error) {
	searchURL := fmt.Sprintf("%s/approximateTerm.json?term=%s&maxEntries=1", c.baseURL, url.QueryEscape(term))

	var result struct {
		ApproximateGroup struct {
			Candidate []struct {
				Rxcui string `json:"rxcui"`
			} `json:"candidate"`
		} `json:"approximateGroup"`
	}
	if err := c.getJSON(ctx, searchURL, &result); err != nil {
		return "", err
	}

	if len(result.ApproximateGroup.Candidate) > 0 {
		return result.ApproximateGroup.Candidate[0].Rxcui, nil
	}
	return "", nil
}

func (c *Client) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("%w: building request: %v", ErrUpstream, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decoding response: %v", ErrUpstream, err)
	}
	return nil
}
