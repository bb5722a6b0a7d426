package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/mbd888/riskscreen/internal/idgen"
	"github.com/mbd888/riskscreen/internal/retry"
	"github.com/mbd888/riskscreen/internal/signal"
)

const (
	mediaRetryAttempts = 3
	mediaRetryBase     = 250 * time.Millisecond
)

// mediaArticle is one hit from the adverse media search API.
type mediaArticle struct {
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"publishedAt"`
	Topics      []string  `json:"topics"`
}

type mediaResponse struct {
	Articles []mediaArticle `json:"articles"`
}

// AdverseMediaSource queries an external news search API for negative
// coverage of the subject. Transient failures are retried; 4xx responses are
// not. Wallet subjects come back clear.
type AdverseMediaSource struct {
	baseURL string
	http    *http.Client
	now     func() time.Time
}

func NewAdverseMediaSource(baseURL string, httpClient *http.Client) *AdverseMediaSource {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &AdverseMediaSource{baseURL: baseURL, http: httpClient, now: time.Now}
}

func (s *AdverseMediaSource) Name() string { return "adverse_media" }

func (s *AdverseMediaSource) Fetch(ctx context.Context, subject signal.Subject) (*signal.Finding, error) {
	if subject.Kind == signal.KindWallet {
		return nil, nil
	}

	var resp mediaResponse
	err := retry.Do(ctx, mediaRetryAttempts, mediaRetryBase, func() error {
		return s.search(ctx, subject.Name, &resp)
	})
	if err != nil {
		return nil, fmt.Errorf("adverse media source: %w", err)
	}
	if len(resp.Articles) == 0 {
		return nil, nil
	}

	refs := make([]string, 0, len(resp.Articles))
	for _, a := range resp.Articles {
		refs = append(refs, a.URL)
	}
	score := 10 + 5*float64(len(resp.Articles)-1)
	if score > 30 {
		score = 30
	}

	return &signal.Finding{
		ID:           idgen.WithPrefix("fnd_"),
		Source:       s.Name(),
		Category:     signal.CategoryAdverseMedia,
		Severity:     signal.SeverityMedium,
		Score:        score,
		Message:      fmt.Sprintf("%d adverse media article(s) referencing subject", len(resp.Articles)),
		EvidenceRefs: refs,
		ObservedAt:   s.now().UTC(),
	}, nil
}

func (s *AdverseMediaSource) search(ctx context.Context, name string, out *mediaResponse) error {
	u := fmt.Sprintf("%s/v1/articles?q=%s", s.baseURL, url.QueryEscape(name))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return retry.Permanent(err)
	}

	res, err := s.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()

	switch {
	case res.StatusCode == http.StatusOK:
		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			return retry.Permanent(fmt.Errorf("decode response: %w", err))
		}
		return nil
	case res.StatusCode >= 400 && res.StatusCode < 500:
		return retry.Permanent(fmt.Errorf("search returned %d", res.StatusCode))
	default:
		return fmt.Errorf("search returned %d", res.StatusCode)
	}
}
