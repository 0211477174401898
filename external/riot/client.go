package riot

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"

	"github.com/valmyr/matchops/internal/domain/match"
	"github.com/valmyr/matchops/internal/platform/logging"
	"github.com/valmyr/matchops/internal/platform/resilience"
	"github.com/valmyr/matchops/internal/usecase"
)

const (
	defaultClusterURLTemplate = "https://%s.api.riotgames.com"
	defaultVersionsBaseURL    = "https://ddragon.leagueoflegends.com"
	apiKeyHeader              = "X-Riot-Token"
	maxResponseBytes          = 6 << 20

	teamSideBlue = "blue"
	teamSideRed  = "red"
)

var errRiotTransient = crerr.New("riot transient failure")
var errRiotNotFound = crerr.New("riot resource not found")

type ClientConfig struct {
	HTTPClient         *http.Client
	ClusterURLTemplate string
	VersionsBaseURL    string
	APIKey             string
	Timeout            time.Duration
	MaxRetries         int
	Logger             *logging.Logger
	CircuitBreaker     resilience.CircuitBreakerConfig
}

// Client talks to the MOBA platform: match-v5 on the regional cluster hosts,
// account-v1 for player linking and the static-asset version listing.
type Client struct {
	httpClient         *http.Client
	clusterURLTemplate string
	versionsBaseURL    string
	apiKey             string
	maxRetries         int
	logger             *logging.Logger
	breaker            *resilience.CircuitBreaker
	circuitEnabled     bool
	flight             resilience.SingleFlight
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

	template := strings.TrimSpace(cfg.ClusterURLTemplate)
	if template == "" {
		template = defaultClusterURLTemplate
	}
	versionsBaseURL := strings.TrimRight(strings.TrimSpace(cfg.VersionsBaseURL), "/")
	if versionsBaseURL == "" {
		versionsBaseURL = defaultVersionsBaseURL
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:         httpClient,
		clusterURLTemplate: template,
		versionsBaseURL:    versionsBaseURL,
		apiKey:             strings.TrimSpace(cfg.APIKey),
		maxRetries:         maxInt(cfg.MaxRetries, 0),
		logger:             logger,
		breaker:            resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled:     breakerCfg.Enabled,
	}
}

func (c *Client) Source() match.Source {
	return match.SourceRiot
}

// Import fetches one match by its external id and normalizes it.
// The routing cluster is derived from the id's platform prefix.
func (c *Client) Import(ctx context.Context, externalID string) (usecase.NormalizedMatch, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return usecase.NormalizedMatch{}, fmt.Errorf("%w: external match id is required", usecase.ErrInvalidInput)
	}

	cluster := ClusterFor(externalID)
	fullURL := fmt.Sprintf(c.clusterURLTemplate, cluster) + "/lol/match/v5/matches/" + url.PathEscape(externalID)

	var envelope matchEnvelope
	if err := c.doJSON(ctx, fullURL, &envelope); err != nil {
		if stderrors.Is(err, errRiotNotFound) {
			return usecase.NormalizedMatch{}, fmt.Errorf("%w: %s", usecase.ErrExternalMatchNotFound, externalID)
		}
		return usecase.NormalizedMatch{}, fmt.Errorf("fetch match %s via %s: %w", externalID, cluster, err)
	}

	normalized, err := normalizeMatch(externalID, envelope)
	if err != nil {
		return usecase.NormalizedMatch{}, fmt.Errorf("normalize match %s: %w", externalID, err)
	}
	return normalized, nil
}

// ListAssetVersions fetches the ordered version listing, newest first.
// Legacy patch aliases (lolpatch_*) and pre-release 0.* entries are dropped
// before the list reaches the resolver cache.
func (c *Client) ListAssetVersions(ctx context.Context) ([]string, error) {
	var raw []string
	if err := c.doJSON(ctx, c.versionsBaseURL+"/api/versions.json", &raw); err != nil {
		return nil, fmt.Errorf("fetch asset versions: %w", err)
	}

	out := make([]string, 0, len(raw))
	for _, version := range raw {
		version = strings.TrimSpace(version)
		if version == "" || strings.HasPrefix(version, "lolpatch_") || strings.HasPrefix(version, "0.") {
			continue
		}
		out = append(out, version)
	}
	if len(out) == 0 {
		return nil, crerr.New("version listing contained no usable entries")
	}
	return out, nil
}

type Account struct {
	PUUID    string `json:"puuid"`
	GameName string `json:"gameName"`
	TagLine  string `json:"tagLine"`
}

// AccountByRiotID resolves gameName#tagLine to the platform account id used
// on player profiles. ok is false when the account does not exist.
func (c *Client) AccountByRiotID(ctx context.Context, gameName, tagLine string) (Account, bool, error) {
	gameName = strings.TrimSpace(gameName)
	tagLine = strings.TrimSpace(tagLine)
	if gameName == "" || tagLine == "" {
		return Account{}, false, fmt.Errorf("%w: game name and tag line are required", usecase.ErrInvalidInput)
	}

	fullURL := fmt.Sprintf(c.clusterURLTemplate, ClusterAmericas) +
		"/riot/account/v1/accounts/by-riot-id/" + url.PathEscape(gameName) + "/" + url.PathEscape(tagLine)

	var account Account
	if err := c.doJSON(ctx, fullURL, &account); err != nil {
		if stderrors.Is(err, errRiotNotFound) {
			return Account{}, false, nil
		}
		return Account{}, false, fmt.Errorf("lookup account %s#%s: %w", gameName, tagLine, err)
	}
	return account, account.PUUID != "", nil
}

func (c *Client) doJSON(ctx context.Context, fullURL string, target any) error {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "riot circuit breaker rejected request", "state", c.breaker.State())
			return fmt.Errorf("%w: match platform is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	out, err, _ := c.flight.Do(fullURL, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if c.circuitEnabled {
			if reqErr != nil && stderrors.Is(reqErr, errRiotTransient) {
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
		return fmt.Errorf("decode riot payload: %w", err)
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
		if c.apiKey != "" {
			req.Header.Set(apiKeyHeader, c.apiKey)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %s", errRiotTransient, sanitizeSensitiveText(err.Error(), c.apiKey))
		} else {
			raw, readErr := readBody(resp.Body)
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = fmt.Errorf("%w: read response body: %v", errRiotTransient, readErr)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case resp.StatusCode == http.StatusNotFound:
				return nil, fmt.Errorf("%w: status=404", errRiotNotFound)
			case isRetryableStatus(resp.StatusCode):
				lastErr = fmt.Errorf("%w: platform status=%d body=%s", errRiotTransient, resp.StatusCode, abbreviateBody(raw))
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
		lastErr = fmt.Errorf("%w: platform request failed", errRiotTransient)
	}
	c.logger.WarnContext(ctx, "riot request failed", "url", fullURL, "error", lastErr)
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

type matchEnvelope struct {
	Info matchInfo `json:"info"`
}

type matchInfo struct {
	GameStartTimestamp int64              `json:"gameStartTimestamp"`
	GameEndTimestamp   int64              `json:"gameEndTimestamp"`
	MapID              int                `json:"mapId"`
	Participants       []matchParticipant `json:"participants"`
	Teams              []matchTeam        `json:"teams"`
}

type matchParticipant struct {
	PUUID          string `json:"puuid"`
	RiotIDGameName string `json:"riotIdGameName"`
	RiotIDTagline  string `json:"riotIdTagline"`
	SummonerName   string `json:"summonerName"`
	TeamID         int    `json:"teamId"`
	Kills          int    `json:"kills"`
	Deaths         int    `json:"deaths"`
	Assists        int    `json:"assists"`
	Damage         int    `json:"totalDamageDealtToChampions"`
}

type matchTeam struct {
	TeamID int  `json:"teamId"`
	Win    bool `json:"win"`
}

func normalizeMatch(externalID string, envelope matchEnvelope) (usecase.NormalizedMatch, error) {
	info := envelope.Info
	if len(info.Participants) == 0 {
		return usecase.NormalizedMatch{}, crerr.New("match payload has no participants")
	}

	winBySide := make(map[int]bool, len(info.Teams))
	for _, t := range info.Teams {
		winBySide[t.TeamID] = t.Win
	}

	blue := usecase.NormalizedTeam{Key: teamSideBlue, Won: winBySide[100]}
	red := usecase.NormalizedTeam{Key: teamSideRed, Won: winBySide[200]}
	for _, p := range info.Participants {
		row := usecase.NormalizedPlayer{
			ExternalID: p.PUUID,
			Name:       participantName(p),
			Kills:      p.Kills,
			Deaths:     p.Deaths,
			Assists:    p.Assists,
			Damage:     p.Damage,
			// The MOBA has no round concept; one game counts as one round so
			// per-round rates degrade to per-game rates.
			Rounds: 1,
		}
		if p.TeamID == 200 {
			red.Players = append(red.Players, row)
		} else {
			blue.Players = append(blue.Players, row)
		}
	}

	playedAt := time.Time{}
	if info.GameStartTimestamp > 0 {
		playedAt = time.UnixMilli(info.GameStartTimestamp).UTC()
	}

	return usecase.NormalizedMatch{
		Source:     match.SourceRiot,
		ExternalID: externalID,
		MapName:    fmt.Sprintf("map_%d", info.MapID),
		PlayedAt:   playedAt,
		Completed:  info.GameEndTimestamp > 0,
		Teams:      [2]usecase.NormalizedTeam{blue, red},
	}, nil
}

func participantName(p matchParticipant) string {
	name := strings.TrimSpace(p.RiotIDGameName)
	if name == "" {
		return strings.TrimSpace(p.SummonerName)
	}
	if tag := strings.TrimSpace(p.RiotIDTagline); tag != "" {
		return name + "#" + tag
	}
	return name
}
