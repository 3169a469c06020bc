package media

import "context"

// IndexEntry associates an external id with the local record mirroring it.
type IndexEntry struct {
	ExternalID string
	LocalID    string
}

// MirrorIndex is a point-in-time map of external id to local id over all external records.
type MirrorIndex struct {
	byExternal map[string]string
	order      []string
}

// BuildIndex scans the store once. A storage failure yields no index at all.
func BuildIndex(ctx context.Context, store Store) (*MirrorIndex, error) {
	entries, err := store.ExternalIndex(ctx)
	if err != nil {
		return nil, &PersistenceError{Op: OpIndex, Err: err}
	}

	idx := &MirrorIndex{
		byExternal: make(map[string]string, len(entries)),
		order:      make([]string, 0, len(entries)),
	}
	for _, e := range entries {
		if _, seen := idx.byExternal[e.ExternalID]; !seen {
			idx.order = append(idx.order, e.ExternalID)
		}
		idx.byExternal[e.ExternalID] = e.LocalID
	}
	return idx, nil
}

// Lookup returns the local id mirroring externalID.
func (i *MirrorIndex) Lookup(externalID string) (string, bool) {
	localID, ok := i.byExternal[externalID]
	return localID, ok
}

// ExternalIDs lists indexed external ids in scan order.
func (i *MirrorIndex) ExternalIDs() []string {
	out := make([]string, len(i.order))
	copy(out, i.order)
	return out
}

func (i *MirrorIndex) Len() int {
	return len(i.order)
}
