package faceit

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/sourcegraph/conc/pool"
	"github.com/valyala/bytebufferpool"

	"github.com/valmyr/matchops/internal/domain/match"
	"github.com/valmyr/matchops/internal/platform/logging"
	"github.com/valmyr/matchops/internal/platform/resilience"
	"github.com/valmyr/matchops/internal/usecase"
)

const (
	defaultBaseURL   = "https://open.faceit.com/data/v4"
	maxResponseBytes = 6 << 20
)

var errFaceitTransient = crerr.New("faceit transient failure")
var errFaceitNotFound = crerr.New("faceit resource not found")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	APIToken       string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client talks to the tactical-FPS platform's open data API. Match detail and
// the per-player scoreboard live on separate endpoints, so an import is two
// upstream calls merged into one normalized match.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	apiToken       string
	maxRetries     int
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 15 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		apiToken:       strings.TrimSpace(cfg.APIToken),
		maxRetries:     maxInt(cfg.MaxRetries, 0),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

func (c *Client) Source() match.Source {
	return match.SourceFaceit
}

// Import fetches the match detail and its scoreboard concurrently and merges
// them into one normalized match.
func (c *Client) Import(ctx context.Context, externalID string) (usecase.NormalizedMatch, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return usecase.NormalizedMatch{}, fmt.Errorf("%w: external match id is required", usecase.ErrInvalidInput)
	}

	var detail matchDetail
	var stats matchStats

	p := pool.New().WithErrors().WithContext(ctx)
	p.Go(func(ctx context.Context) error {
		return c.doJSON(ctx, c.baseURL+"/matches/"+url.PathEscape(externalID), &detail)
	})
	p.Go(func(ctx context.Context) error {
		return c.doJSON(ctx, c.baseURL+"/matches/"+url.PathEscape(externalID)+"/stats", &stats)
	})
	if err := p.Wait(); err != nil {
		if stderrors.Is(err, errFaceitNotFound) {
			return usecase.NormalizedMatch{}, fmt.Errorf("%w: %s", usecase.ErrExternalMatchNotFound, externalID)
		}
		return usecase.NormalizedMatch{}, fmt.Errorf("fetch match %s: %w", externalID, err)
	}

	normalized, err := normalizeMatch(externalID, detail, stats)
	if err != nil {
		return usecase.NormalizedMatch{}, fmt.Errorf("normalize match %s: %w", externalID, err)
	}
	return normalized, nil
}

type Player struct {
	PlayerID string `json:"player_id"`
	Nickname string `json:"nickname"`
	Country  string `json:"country"`
}

// SearchPlayerByNickname resolves a platform nickname to the account id used
// on scoreboards. ok is false when no such account exists.
func (c *Client) SearchPlayerByNickname(ctx context.Context, nickname string) (Player, bool, error) {
	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		return Player{}, false, fmt.Errorf("%w: nickname is required", usecase.ErrInvalidInput)
	}

	var player Player
	err := c.doJSON(ctx, c.baseURL+"/players?nickname="+url.QueryEscape(nickname), &player)
	if err != nil {
		if stderrors.Is(err, errFaceitNotFound) {
			return Player{}, false, nil
		}
		return Player{}, false, fmt.Errorf("lookup player %s: %w", nickname, err)
	}
	return player, player.PlayerID != "", nil
}

func (c *Client) doJSON(ctx context.Context, fullURL string, target any) error {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "faceit circuit breaker rejected request", "state", c.breaker.State())
			return fmt.Errorf("%w: match platform is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	out, err, _ := c.flight.Do(fullURL, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if c.circuitEnabled {
			if reqErr != nil && stderrors.Is(reqErr, errFaceitTransient) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		return err
	}

	raw, ok := out.([]byte)
	if !ok {
		return fmt.Errorf("unexpected response payload type %T", out)
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode faceit payload: %w", err)
	}
	return nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")
		if c.apiToken != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiToken)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %s", errFaceitTransient, sanitizeSensitiveText(err.Error(), c.apiToken))
		} else {
			raw, readErr := readBody(resp.Body)
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = fmt.Errorf("%w: read response body: %v", errFaceitTransient, readErr)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case resp.StatusCode == http.StatusNotFound:
				return nil, fmt.Errorf("%w: status=404", errFaceitNotFound)
			case isRetryableStatus(resp.StatusCode):
				lastErr = fmt.Errorf("%w: platform status=%d body=%s", errFaceitTransient, resp.StatusCode, abbreviateBody(raw))
			default:
				return nil, fmt.Errorf("platform status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
			}
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * 500 * time.Millisecond
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("%w: platform request failed", errFaceitTransient)
	}
	c.logger.WarnContext(ctx, "faceit request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

func readBody(body io.Reader) ([]byte, error) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if _, err := io.Copy(buf, io.LimitReader(body, maxResponseBytes)); err != nil {
		return nil, err
	}
	return append([]byte(nil), buf.B...), nil
}

func isRetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

func abbreviateBody(raw []byte) string {
	const limit = 256
	text := strings.TrimSpace(string(raw))
	if len(text) <= limit {
		return text
	}
	return text[:limit] + "..."
}

func sanitizeSensitiveText(value, secret string) string {
	value = strings.TrimSpace(value)
	if value == "" || secret == "" {
		return value
	}
	return strings.ReplaceAll(value, secret, "REDACTED")
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

type matchDetail struct {
	MatchID    string `json:"match_id"`
	Status     string `json:"status"`
	FinishedAt int64  `json:"finished_at"`
	StartedAt  int64  `json:"started_at"`
	Results    struct {
		Winner string `json:"winner"`
	} `json:"results"`
	Teams map[string]struct {
		Name string `json:"name"`
	} `json:"teams"`
}

type matchStats struct {
	Rounds []statsSegment `json:"rounds"`
}

type statsSegment struct {
	RoundStats struct {
		Map    string `json:"Map"`
		Rounds string `json:"Rounds"`
	} `json:"round_stats"`
	Teams []statsTeam `json:"teams"`
}

type statsTeam struct {
	TeamID  string        `json:"team_id"`
	Players []statsPlayer `json:"players"`
}

type statsPlayer struct {
	PlayerID    string `json:"player_id"`
	Nickname    string `json:"nickname"`
	PlayerStats struct {
		Kills   string `json:"Kills"`
		Deaths  string `json:"Deaths"`
		Assists string `json:"Assists"`
		ADR     string `json:"ADR"`
	} `json:"player_stats"`
}

// normalizeMatch merges the detail and scoreboard payloads. The scoreboard is
// segmented per map; segments are summed so a series played on one match id
// still produces a single row set. The platform reports ADR (average damage
// per round) instead of total damage, so damage is reconstructed as ADR*rounds.
func normalizeMatch(externalID string, detail matchDetail, stats matchStats) (usecase.NormalizedMatch, error) {
	if len(stats.Rounds) == 0 {
		return usecase.NormalizedMatch{}, crerr.New("match scoreboard has no segments")
	}

	type playerAgg struct {
		name    string
		faction int
		kills   int
		deaths  int
		assists int
		damage  int
		rounds  int
	}

	mapName := strings.TrimSpace(stats.Rounds[0].RoundStats.Map)
	byID := make(map[string]*playerAgg)
	order := make([]string, 0, 10)

	for _, segment := range stats.Rounds {
		rounds := atoiLenient(segment.RoundStats.Rounds)
		if rounds <= 0 {
			return usecase.NormalizedMatch{}, crerr.Newf("segment on %s reports no rounds", segment.RoundStats.Map)
		}
		for factionIdx, team := range segment.Teams {
			if factionIdx > 1 {
				return usecase.NormalizedMatch{}, crerr.New("match scoreboard has more than two factions")
			}
			for _, p := range team.Players {
				agg, ok := byID[p.PlayerID]
				if !ok {
					agg = &playerAgg{name: p.Nickname, faction: factionIdx}
					byID[p.PlayerID] = agg
					order = append(order, p.PlayerID)
				}
				adr := atofLenient(p.PlayerStats.ADR)
				agg.kills += atoiLenient(p.PlayerStats.Kills)
				agg.deaths += atoiLenient(p.PlayerStats.Deaths)
				agg.assists += atoiLenient(p.PlayerStats.Assists)
				agg.damage += int(math.Round(adr * float64(rounds)))
				agg.rounds += rounds
			}
		}
	}

	winner := strings.TrimSpace(detail.Results.Winner)
	teams := [2]usecase.NormalizedTeam{
		{Key: "faction1", Won: winner == "faction1"},
		{Key: "faction2", Won: winner == "faction2"},
	}
	for _, id := range order {
		agg := byID[id]
		teams[agg.faction].Players = append(teams[agg.faction].Players, usecase.NormalizedPlayer{
			ExternalID: id,
			Name:       agg.name,
			Kills:      agg.kills,
			Deaths:     agg.deaths,
			Assists:    agg.assists,
			Damage:     agg.damage,
			Rounds:     agg.rounds,
		})
	}

	playedAt := time.Time{}
	switch {
	case detail.StartedAt > 0:
		playedAt = time.Unix(detail.StartedAt, 0).UTC()
	case detail.FinishedAt > 0:
		playedAt = time.Unix(detail.FinishedAt, 0).UTC()
	}

	return usecase.NormalizedMatch{
		Source:     match.SourceFaceit,
		ExternalID: externalID,
		MapName:    mapName,
		PlayedAt:   playedAt,
		Completed:  strings.EqualFold(detail.Status, "finished"),
		Teams:      teams,
	}, nil
}

func atoiLenient(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

func atofLenient(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}
