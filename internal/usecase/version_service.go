package usecase

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/valmyr/matchops/internal/platform/cache"
	"github.com/valmyr/matchops/internal/platform/logging"
)

const versionCacheKey = "asset-versions"

// VersionCacheTTL bounds how often the upstream listing is re-fetched.
const VersionCacheTTL = time.Hour

// fallbackAssetVersion is served only when the listing endpoint has never
// succeeded in the lifetime of the process. Bump it when rotating the
// deployment baseline.
const fallbackAssetVersion = "14.3.1"

// AssetVersionLister returns game-data versions ordered newest first.
type AssetVersionLister interface {
	ListAssetVersions(ctx context.Context) ([]string, error)
}

// VersionService maps noisy client-reported version hints onto the closest
// published game-data version. Resolution is best effort and never fails:
// a degraded upstream downgrades to the last known-good listing, then to a
// pinned fallback.
type VersionService struct {
	lister AssetVersionLister
	cache  *cache.Store
	logger *logging.Logger

	mu       sync.Mutex
	lastGood []string
}

func NewVersionService(lister AssetVersionLister, store *cache.Store, logger *logging.Logger) *VersionService {
	if logger == nil {
		logger = logging.Default()
	}
	return &VersionService{
		lister: lister,
		cache:  store,
		logger: logger,
	}
}

// Resolve picks the newest published version whose MAJOR.MINOR matches the
// hint. An empty or unmatched hint resolves to the newest published version.
func (s *VersionService) Resolve(ctx context.Context, hint string) string {
	ctx, span := startUsecaseSpan(ctx, "VersionService.Resolve")
	defer span.End()

	versions := s.versions(ctx)
	if len(versions) == 0 {
		return fallbackAssetVersion
	}

	prefix := majorMinorPrefix(hint)
	if prefix == "" {
		return versions[0]
	}

	for _, version := range versions {
		if matchesMajorMinor(version, prefix) {
			return version
		}
	}
	return versions[0]
}

func (s *VersionService) versions(ctx context.Context) []string {
	value, err := s.cache.GetOrLoad(ctx, versionCacheKey, func(ctx context.Context) (any, error) {
		listed, listErr := s.lister.ListAssetVersions(ctx)
		if listErr != nil {
			return nil, listErr
		}

		s.mu.Lock()
		s.lastGood = listed
		s.mu.Unlock()
		return listed, nil
	})
	if err == nil {
		if versions, ok := value.([]string); ok {
			return versions
		}
	}

	s.mu.Lock()
	lastGood := s.lastGood
	s.mu.Unlock()
	if len(lastGood) > 0 {
		s.logger.WarnContext(ctx, "version listing unavailable, serving last known-good", "error", err)
		return lastGood
	}

	s.logger.WarnContext(ctx, "version listing unavailable, serving pinned fallback", "error", err)
	return nil
}

// majorMinorPrefix reduces a hint like "14.2.876.123" to "14.2". Hints
// without two leading numeric segments yield "".
func majorMinorPrefix(hint string) string {
	hint = strings.TrimSpace(hint)
	if hint == "" {
		return ""
	}

	parts := strings.SplitN(hint, ".", 3)
	if len(parts) < 2 || !isDigits(parts[0]) || !isDigits(parts[1]) {
		return ""
	}
	return parts[0] + "." + parts[1]
}

func matchesMajorMinor(version, prefix string) bool {
	if !strings.HasPrefix(version, prefix) {
		return false
	}
	rest := version[len(prefix):]
	return rest == "" || rest[0] == '.'
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
