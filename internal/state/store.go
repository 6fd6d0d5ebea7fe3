// Package state persists the set of dedup keys already sent to the
// channel. The set is loaded once at startup, mutated in memory, and
// written back once after a successful publish.
package state

// Store is the load/save contract over the published-keys document.
// Load returns keys in insertion order; Save replaces the stored
// document with the given ordered list.
type Store interface {
	Load() ([]string, error)
	Save(keys []string) error
	Close() error
}

// Append unions added keys into existing, preserving insertion order and
// skipping keys already present, then truncates to the most recently
// inserted max entries. max <= 0 means unbounded.
func Append(existing, added []string, max int) []string {
	seen := make(map[string]struct{}, len(existing)+len(added))
	out := make([]string, 0, len(existing)+len(added))
	for _, k := range existing {
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	for _, k := range added {
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	if max > 0 && len(out) > max {
		out = out[len(out)-max:]
	}
	return out
}
