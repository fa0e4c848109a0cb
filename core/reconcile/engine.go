package reconcile

import (
	"sort"
	"strconv"
	"strings"

	"mod-sync/core/modhash"
)

// Compare produces one Result per remote record, in remote order.
//
// Status resolution follows a trust hierarchy: content hash (when hashing is
// enabled and both sides carry one), then dotted numeric version, then an
// ordinal string comparison of the versions, and finally UpdateAvailable when
// no signal is usable.
func Compare(remote []RemoteMod, local []LocalMod, algo modhash.Algorithm) []Result {
	// Index local mods by lowercase name; first occurrence wins.
	index := make(map[string]int, len(local))
	for i := range local {
		key := strings.ToLower(local[i].Name)
		if _, exists := index[key]; !exists {
			index[key] = i
		}
	}

	results := make([]Result, 0, len(remote))
	for _, r := range remote {
		var lm *LocalMod
		if i, ok := index[strings.ToLower(r.Name)]; ok {
			copied := local[i]
			lm = &copied
		}

		status, reason := determineStatus(r, lm, algo)
		results = append(results, Result{
			Remote: r,
			Local:  lm,
			Status: status,
			Reason: reason,
		})
	}

	return results
}

func determineStatus(remote RemoteMod, local *LocalMod, algo modhash.Algorithm) (Status, Reason) {
	if local == nil {
		return StatusMissing, ReasonNoLocal
	}

	if algo.Enabled() && remote.Hash != "" && local.Hash != "" {
		if modhash.Equal(remote.Hash, local.Hash) {
			return StatusLatest, ReasonHashMatch
		}
		return StatusUpdateAvailable, ReasonHashMismatch
	}

	if remote.Version != "" && local.Version != "" {
		if CompareVersions(local.Version, remote.Version) >= 0 {
			return StatusLatest, ReasonVersionCurrent
		}
		return StatusUpdateAvailable, ReasonVersionOlder
	}

	return StatusUpdateAvailable, ReasonUnknown
}

// CompareVersions returns -1, 0 or 1 as a is lower than, equal to, or greater
// than b. Both are parsed as dotted numeric versions; if either fails to parse
// the comparison falls back to a case-insensitive ordinal string comparison.
func CompareVersions(a, b string) int {
	va, okA := parseVersion(a)
	vb, okB := parseVersion(b)
	if !okA || !okB {
		return strings.Compare(strings.ToLower(a), strings.ToLower(b))
	}

	n := len(va)
	if len(vb) > n {
		n = len(vb)
	}
	for i := 0; i < n; i++ {
		var x, y int
		if i < len(va) {
			x = va[i]
		}
		if i < len(vb) {
			y = vb[i]
		}
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
	}
	return 0
}

// parseVersion accepts 2 to 4 non-negative integer components ("1.2", "1.0.0.3").
func parseVersion(s string) ([]int, bool) {
	parts := strings.Split(strings.TrimSpace(s), ".")
	if len(parts) < 2 || len(parts) > 4 {
		return nil, false
	}

	out := make([]int, len(parts))
	for i, p := range parts {
		if p == "" || strings.TrimSpace(p) != p {
			return nil, false
		}
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return nil, false
		}
		out[i] = n
	}
	return out, true
}

// SortByStatus orders results Missing, UpdateAvailable, Latest. The sort is
// stable, so within a status the manifest order is preserved.
func SortByStatus(results []Result) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Status < results[j].Status
	})
}

// Find returns the result whose remote name matches name case-insensitively.
func Find(results []Result, name string) (int, bool) {
	for i := range results {
		if strings.EqualFold(results[i].Remote.Name, name) {
			return i, true
		}
	}
	return -1, false
}
