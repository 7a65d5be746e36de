package workload

import "github.com/flanksource/postgres/pkg/suggestion"

// correlate cross-references proposed indexes against SeqScanHotspot
// findings on the same table. A match boosts the finding to Important (if
// not already more severe) and links the two by fingerprint, giving the
// reader direct evidence that a specific slow query is driving the scan.
func correlate(findings []suggestion.Finding, candidates []suggestion.IndexCandidate) {
	hotspotsByTable := map[string][]int{}
	for i, f := range findings {
		if f.Kind == suggestion.SeqScanHotspot {
			key := f.Schema + "." + f.Relation
			hotspotsByTable[key] = append(hotspotsByTable[key], i)
		}
	}
	if len(hotspotsByTable) == 0 {
		return
	}

	for _, c := range candidates {
		key := c.Schema + "." + c.Table
		idxs, ok := hotspotsByTable[key]
		if !ok {
			continue
		}
		for _, i := range idxs {
			if findings[i].Level < suggestion.Important {
				findings[i].Level = suggestion.Important
			}
			findings[i].LinkedFingerprints = appendUniqueAll(findings[i].LinkedFingerprints, c.SourceFingerprints)
		}
	}
}

func appendUniqueAll(dst []string, src []string) []string {
	for _, v := range src {
		dst = appendUnique(dst, v)
	}
	return dst
}
