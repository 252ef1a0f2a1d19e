package compose

import "go.uber.org/zap"

// resolve settles which value occupies key on target when candidate arrives
// from a behavior bundle and key already holds a distinct existing value.
//
// An own declaration on the merging source is an explicit override and wins,
// recording existing as its predecessor. A Required placeholder is satisfied
// by any candidate. Otherwise an inherited candidate must prove
// ancestry: whichever of the two already supersedes the other is kept. With
// no provable ancestry the key gets a placeholder that fails when called.
func resolve(candidate Callable, key string, existing any, own bool, target *Object) any {
	if m, ok := candidate.(*Method); ok && m == Required {
		return existing
	}
	if own {
		if prior, ok := callableOf(target.Get(key)); ok && candidate.link(prior) {
			logger.Debug("recorded override",
				zap.String("key", key),
				zap.String("method", candidate.ID()),
				zap.String("overrides", prior.ID()))
		}
		return candidate
	}
	if existing == nil || existing == any(Required) {
		return candidate
	}
	prior, ok := callableOf(existing)
	if ok {
		if Supersedes(candidate, prior) {
			return candidate
		}
		if Supersedes(prior, candidate) {
			return existing
		}
	}
	logger.Debug("conflicted method",
		zap.String("key", key),
		zap.String("candidate", candidate.ID()),
		zap.String("existing", label(prior)))
	return conflictMethod(key, candidate, prior)
}

// Supersedes reports whether ancestor appears in the override lineage of c,
// not counting c itself.
func Supersedes(c, ancestor Callable) bool {
	if c == nil || ancestor == nil {
		return false
	}
	seen := map[Callable]bool{c: true}
	for cur := c.Overrides(); cur != nil; cur = cur.Overrides() {
		if cur == ancestor {
			return true
		}
		if seen[cur] {
			return false
		}
		seen[cur] = true
	}
	return false
}

// Lineage returns c followed by every callable it transitively overrides,
// most specific first. A cycle ends the walk.
func Lineage(c Callable) []Callable {
	var chain []Callable
	seen := make(map[Callable]bool)
	for cur := c; cur != nil && !seen[cur]; cur = cur.Overrides() {
		seen[cur] = true
		chain = append(chain, cur)
	}
	return chain
}
