package core

// Container is a user-defined folder grouping freeform items. Containers
// form a strictly acyclic tree; RemoteID correlates a container with a
// remote folder once one has been materialized.
type Container struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ParentID string `json:"parentId,omitempty"`
	RemoteID string `json:"remoteId,omitempty"`
}

// WouldCycle reports whether re-parenting child under parent would make
// the child its own ancestor.
func WouldCycle(containers []Container, childID, parentID string) bool {
	byID := make(map[string]Container, len(containers))
	for _, c := range containers {
		byID[c.ID] = c
	}
	for cur := parentID; cur != ""; {
		if cur == childID {
			return true
		}
		next, ok := byID[cur]
		if !ok {
			return false
		}
		cur = next.ParentID
	}
	return false
}
