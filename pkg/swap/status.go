package swap

import (
	"fmt"
	"sort"
	"strings"
)

// Coarse activity filters attached to statuses
const (
	FilterPending   = "PENDING"
	FilterCompleted = "COMPLETED"
	FilterRefunded  = "REFUNDED"
	FilterFailed    = "FAILED"
)

// Notification is a user facing message raised when a swap enters a status
type Notification struct {
	Title   string
	Message string
}

// StatusDescriptor describes one status value
type StatusDescriptor struct {
	Step         int
	Label        string
	FilterStatus string
	Terminal     bool
	Failed       bool

	// Notification is optional. It must only read from the swap.
	Notification func(s *Swap) Notification
}

// StatusTable maps status keys to descriptors
type StatusTable map[string]StatusDescriptor

// Has reports whether the table defines the status
func (t StatusTable) Has(status string) bool {
	_, ok := t[status]
	return ok
}

// IsTerminal reports whether the status ends a swap
func (t StatusTable) IsTerminal(status string) bool {
	return t[status].Terminal
}

// Keys returns the status keys ordered by step, then name
func (t StatusTable) Keys() []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if t[keys[i]].Step != t[keys[j]].Step {
			return t[keys[i]].Step < t[keys[j]].Step
		}
		return keys[i] < keys[j]
	})
	return keys
}

// Layer is a named status table taking part in a registry merge
type Layer struct {
	Name     string
	Statuses StatusTable
}

// Override derives a descriptor from the same key in the named base layer
type Override struct {
	Base string
	Edit func(StatusDescriptor) StatusDescriptor
}

// BuildRegistry merges the base layers in order, later layers winning per
// key, then applies the overrides. Every override must name a key present in
// its base layer.
func BuildRegistry(layers []Layer, overrides map[string]Override) (StatusTable, error) {
	byName := make(map[string]StatusTable, len(layers))
	merged := make(StatusTable)
	for _, layer := range layers {
		byName[layer.Name] = layer.Statuses
		for k, d := range layer.Statuses {
			merged[k] = d
		}
	}

	for key, o := range overrides {
		base, ok := byName[o.Base]
		if !ok {
			return nil, fmt.Errorf("status override %s: unknown base layer %q", key, o.Base)
		}
		d, ok := base[key]
		if !ok {
			return nil, fmt.Errorf("status override %s: not defined in layer %q", key, o.Base)
		}
		if o.Edit != nil {
			d = o.Edit(d)
		}
		merged[key] = d
	}

	return merged, nil
}

// RenderLabel fills the {from}, {to} and {bridgeAsset} placeholders
func RenderLabel(label string, s *Swap) string {
	r := strings.NewReplacer(
		"{from}", s.From,
		"{to}", s.To,
		"{bridgeAsset}", s.BridgeAsset,
	)
	return r.Replace(label)
}
