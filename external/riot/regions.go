package riot

import "strings"

// Regional routing clusters for the match-v5 API. Every platform code maps
// to exactly one cluster host; the mapping must stay consistent across all
// outbound calls, which is why it lives here and nowhere else.
const (
	ClusterAmericas = "americas"
	ClusterEurope   = "europe"
	ClusterAsia     = "asia"
	ClusterSEA      = "sea"

	// DefaultCluster serves ids whose platform prefix is missing or unknown.
	// Routing is best-effort: a wrong cluster yields an upstream 404, never
	// a local failure.
	DefaultCluster = ClusterAmericas
)

var clusterByPlatform = map[string]string{
	"na1": ClusterAmericas,
	"br1": ClusterAmericas,
	"la1": ClusterAmericas,
	"la2": ClusterAmericas,

	"euw1": ClusterEurope,
	"eun1": ClusterEurope,
	"tr1":  ClusterEurope,
	"ru":   ClusterEurope,
	"me1":  ClusterEurope,

	"kr":  ClusterAsia,
	"jp1": ClusterAsia,

	"oc1": ClusterSEA,
	"sg2": ClusterSEA,
	"tw2": ClusterSEA,
	"vn2": ClusterSEA,
}

// ClusterFor maps an external match id of the form PLATFORM_GAMEID to its
// routing cluster. Malformed ids fall back to DefaultCluster.
func ClusterFor(externalMatchID string) string {
	platform, _, ok := strings.Cut(externalMatchID, "_")
	if !ok {
		return DefaultCluster
	}

	cluster, ok := clusterByPlatform[strings.ToLower(strings.TrimSpace(platform))]
	if !ok {
		return DefaultCluster
	}
	return cluster
}
