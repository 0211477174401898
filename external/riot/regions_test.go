package riot

import "testing"

func TestClusterFor(t *testing.T) {
	t.Parallel()

	cases := []struct {
		id   string
		want string
	}{
		{"NA1_12345", ClusterAmericas},
		{"na1_12345", ClusterAmericas},
		{"BR1_4411223344", ClusterAmericas},
		{"EUW1_12345", ClusterEurope},
		{"EUN1_998877", ClusterEurope},
		{"KR_7654321", ClusterAsia},
		{"JP1_111", ClusterAsia},
		{"OC1_42", ClusterSEA},
		{"XYZ9_12345", DefaultCluster},
		{"12345", DefaultCluster},
		{"", DefaultCluster},
	}

	for _, tc := range cases {
		if got := ClusterFor(tc.id); got != tc.want {
			t.Fatalf("ClusterFor(%q): got=%s want=%s", tc.id, got, tc.want)
		}
	}
}
