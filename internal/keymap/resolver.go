package keymap

import (
	"strings"

	"github.com/samber/lo"
)

// Resolver maps key strings to actions.
type Resolver struct {
	bindings []Binding
	byKey    map[string]Action
	byAction map[Action][]string
}

// NewResolver creates a resolver from bindings. A key bound twice resolves
// to the later binding.
func NewResolver(bindings []Binding) *Resolver {
	r := &Resolver{
		bindings: bindings,
		byKey:    make(map[string]Action),
		byAction: make(map[Action][]string),
	}
	for _, b := range bindings {
		for _, key := range b.Keys {
			r.byKey[key] = b.Action
		}
		r.byAction[b.Action] = lo.Uniq(append(r.byAction[b.Action], b.Keys...))
	}
	return r
}

// Resolve returns the action for a key, or "" if unbound.
func (r *Resolver) Resolve(key string) Action {
	return r.byKey[key]
}

// KeysFor returns the keys bound to an action.
func (r *Resolver) KeysFor(action Action) []string {
	return r.byAction[action]
}

// Help renders "key description" pairs for the given actions, in order.
func (r *Resolver) Help(actions ...Action) string {
	parts := lo.FilterMap(actions, func(a Action, _ int) (string, bool) {
		keys := r.byAction[a]
		b, ok := lo.Find(r.bindings, func(b Binding) bool { return b.Action == a })
		if !ok || len(keys) == 0 {
			return "", false
		}
		return displayKey(keys[0]) + " " + strings.ToLower(b.Description), true
	})
	return strings.Join(parts, " · ")
}

func displayKey(k string) string {
	if k == " " {
		return "space"
	}
	return k
}
