// README: Seoul open-data citydata_ppltn client producing population feed results.
package area

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultArea is the Seoul city-data hotspot polled when none is configured.
const DefaultArea = "강남역"

const seoulBaseURL = "http://openapi.seoul.go.kr:8088"

var (
	ErrFeedUnavailable = errors.New("population feed unavailable")
	ErrFeedMalformed   = errors.New("population feed malformed")
)

// Feed returns the current population reading for an area. Implementations
// never fail: an unreachable upstream yields FallbackResult.
type Feed interface {
	Fetch(ctx context.Context, area string) FeedResult
}

type SeoulFeed struct {
	baseURL string
	apiKey  string
	client  *http.Client
	log     logrus.FieldLogger
	// OnFailure is called with the cause whenever the fallback is returned.
	OnFailure func(error)
}

func NewSeoulFeed(apiKey string, log logrus.FieldLogger) *SeoulFeed {
	return &SeoulFeed{
		baseURL: seoulBaseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
		log:     log,
	}
}

// WithBaseURL points the client at another host; used by tests.
func (f *SeoulFeed) WithBaseURL(u string) *SeoulFeed {
	f.baseURL = strings.TrimRight(u, "/")
	return f
}

type seoulResponse struct {
	Rows []struct {
		AreaName string `json:"AREA_NM"`
		Min      string `json:"AREA_PPLTN_MIN"`
		Max      string `json:"AREA_PPLTN_MAX"`
	} `json:"SeoulRtd.citydata_ppltn"`
}

func (f *SeoulFeed) Fetch(ctx context.Context, area string) FeedResult {
	res, err := f.fetch(ctx, area)
	if err != nil {
		f.log.WithError(err).WithField("area", area).Warn("population feed failed, using backup data")
		if f.OnFailure != nil {
			f.OnFailure(err)
		}
		return FallbackResult()
	}
	return res
}

func (f *SeoulFeed) fetch(ctx context.Context, area string) (FeedResult, error) {
	endpoint := fmt.Sprintf("%s/%s/json/citydata_ppltn/1/5/%s", f.baseURL, url.PathEscape(f.apiKey), url.PathEscape(area))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return FeedResult{}, fmt.Errorf("%w: %v", ErrFeedUnavailable, err)
	}
	req.Header.Set("Cache-Control", "no-store")

	resp, err := f.client.Do(req)
	if err != nil {
		return FeedResult{}, fmt.Errorf("%w: %v", ErrFeedUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return FeedResult{}, fmt.Errorf("%w: status %d", ErrFeedUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return FeedResult{}, fmt.Errorf("%w: %v", ErrFeedUnavailable, err)
	}
	return parseSeoul(body)
}

// parseSeoul decodes a citydata_ppltn body. The upstream embeds raw control
// characters in its strings, so they are removed before decoding.
func parseSeoul(body []byte) (FeedResult, error) {
	var payload seoulResponse
	if err := json.Unmarshal(stripControl(body), &payload); err != nil {
		return FeedResult{}, fmt.Errorf("%w: %v", ErrFeedMalformed, err)
	}
	if len(payload.Rows) == 0 {
		return FeedResult{}, fmt.Errorf("%w: no rows", ErrFeedMalformed)
	}
	row := payload.Rows[0]
	lo, err := strconv.Atoi(strings.TrimSpace(row.Min))
	if err != nil {
		return FeedResult{}, fmt.Errorf("%w: AREA_PPLTN_MIN: %v", ErrFeedMalformed, err)
	}
	hi, err := strconv.Atoi(strings.TrimSpace(row.Max))
	if err != nil {
		return FeedResult{}, fmt.Errorf("%w: AREA_PPLTN_MAX: %v", ErrFeedMalformed, err)
	}

	population := float64(lo+hi) / 2
	return FeedResult{
		Success:    true,
		Status:     Classify(population).Label,
		Population: population,
		Message:    fmt.Sprintf("Live Population: %d ~ %d people", lo, hi),
	}, nil
}

func stripControl(b []byte) []byte {
	out := make([]byte, 0, len(b))
	for _, c := range b {
		if c < 0x20 || c == 0x7f {
			continue
		}
		out = append(out, c)
	}
	return out
}
