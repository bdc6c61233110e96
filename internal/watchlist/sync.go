package watchlist

import (
	"context"
)

// SyncResult reports what a raw list edit changed
type SyncResult struct {
	Added   []string `json:"added"`
	Failed  []string `json:"failed"`
	Removed []string `json:"removed"`
	Invalid []string `json:"invalid"`
	Changed bool     `json:"changed"`
}

// Sync makes the follower's watch list equal to the newline separated names in raw.
// Lines that do not name an existing account are reported as Invalid and ignored.
// Targets that refused to be watched end up in Failed. A list with no valid name
// clears the watch list.
func (s *Store) Sync(ctx context.Context, follower uint, raw string) (SyncResult, error) {
	result := SyncResult{
		Added:   []string{},
		Failed:  []string{},
		Removed: []string{},
		Invalid: []string{},
	}

	wanted, invalid, err := s.extractNames(ctx, raw)
	if err != nil {
		return result, err
	}
	result.Invalid = invalid

	current, err := s.ListFollowingNames(ctx, follower)
	if err != nil {
		return result, err
	}

	if len(wanted) == 0 {
		if err := s.ClearAll(ctx, follower); err != nil {
			return result, err
		}
		result.Removed = current
		result.Changed = len(current) > 0
		return result, nil
	}

	toFollow := difference(wanted, current)
	toUnfollow := difference(current, wanted)

	accepted, err := s.Follow(ctx, follower, ByNames(toFollow))
	if err != nil {
		return result, err
	}
	for _, ref := range accepted {
		result.Added = append(result.Added, ref.String())
	}
	result.Failed = difference(toFollow, result.Added)

	if err := s.Unfollow(ctx, follower, ByNames(toUnfollow)); err != nil {
		return result, err
	}
	result.Removed = toUnfollow
	result.Changed = len(toFollow) > 0 || len(toUnfollow) > 0
	return result, nil
}

// Remove unfollows the given names and echoes them back
func (s *Store) Remove(ctx context.Context, follower uint, names []string) ([]string, error) {
	if err := s.Unfollow(ctx, follower, ByNames(names)); err != nil {
		return nil, err
	}
	return names, nil
}

// Clear empties the watch list and returns the names that were on it
func (s *Store) Clear(ctx context.Context, follower uint) ([]string, error) {
	current, err := s.ListFollowingNames(ctx, follower)
	if err != nil {
		return nil, err
	}
	if err := s.ClearAll(ctx, follower); err != nil {
		return nil, err
	}
	return current, nil
}

// extractNames turns raw lines into unique canonical names of existing accounts
func (s *Store) extractNames(ctx context.Context, raw string) (names, invalid []string, err error) {
	names = []string{}
	invalid = []string{}
	seen := make(map[string]struct{})

	for _, line := range ParseRawList(raw) {
		user, err := s.resolve(ctx, ByName(line))
		if err != nil {
			return nil, nil, err
		}
		if user == nil {
			invalid = append(invalid, line)
			continue
		}
		if _, dup := seen[user.Name]; dup {
			continue
		}
		seen[user.Name] = struct{}{}
		names = append(names, user.Name)
	}
	return names, invalid, nil
}

// difference keeps the elements of a missing from b, preserving a's order
func difference(a, b []string) []string {
	skip := make(map[string]struct{}, len(b))
	for _, v := range b {
		skip[v] = struct{}{}
	}
	out := make([]string, 0, len(a))
	for _, v := range a {
		if _, ok := skip[v]; !ok {
			out = append(out, v)
		}
	}
	return out
}
