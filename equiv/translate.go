package equiv

import (
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"qpiler/circuit"
	"qpiler/qerr"
	"qpiler/target"
)

const defaultCacheSize = 512

// Translator rewrites operations into one target's native basis. Path
// costs over the rule graph are solved once at construction; concrete
// expansions are memoized in an LRU cache keyed by the operation's
// name and parameter values, so repeated gates translate at lookup
// cost.
type Translator struct {
	lib    *Library
	tgt    *target.Target
	cost   map[string]int
	chosen map[string]Rule
	cache  *lru.Cache[string, []circuit.Operation]
}

// NewTranslator builds a translator for one target. A nil library
// selects the standard identity set.
func NewTranslator(lib *Library, tgt *target.Target) *Translator {
	if lib == nil {
		lib = Standard()
	}
	t := &Translator{
		lib:    lib,
		tgt:    tgt,
		cost:   make(map[string]int),
		chosen: make(map[string]Rule),
	}
	t.cache, _ = lru.New[string, []circuit.Operation](defaultCacheSize)
	t.solveCosts()
	return t
}

// solveCosts runs shortest-path relaxation over the rule graph: basis
// gates cost zero, a rule costs one plus the summed cost of what it
// produces, and relaxation repeats until no gate gets cheaper.
func (t *Translator) solveCosts() {
	for _, name := range t.tgt.Basis {
		t.cost[name] = 0
	}
	for changed := true; changed; {
		changed = false
		for _, r := range t.lib.rules {
			if c, ok := t.cost[r.Src]; ok && c == 0 {
				continue // already native
			}
			cand := 1
			feasible := true
			for _, gate := range r.Produces {
				gc, ok := t.cost[gate]
				if !ok {
					feasible = false
					break
				}
				cand += gc
			}
			if !feasible {
				continue
			}
			if have, ok := t.cost[r.Src]; !ok || cand < have {
				t.cost[r.Src] = cand
				t.chosen[r.Src] = r
				changed = true
			}
		}
	}
}

// Translatable reports whether a gate name can reach the basis at
// all.
func (t *Translator) Translatable(name string) bool {
	_, ok := t.cost[name]
	return ok
}

func cacheKey(op circuit.Operation) string {
	var sb strings.Builder
	sb.WriteString(op.Name)
	for _, p := range op.Params {
		if p.Symbolic() {
			fmt.Fprintf(&sb, "|s:%s", p.Name)
		} else {
			fmt.Fprintf(&sb, "|%.15g", p.Value)
		}
	}
	return sb.String()
}

// Translate rewrites one operation into the target basis, returning
// the replacement over the operation's own qubit operands. Native
// operations and directives pass through unchanged. A gate with no
// path into the basis, or whose only identities need arithmetic on a
// symbolic parameter, returns an UnsupportedOperationError.
func (t *Translator) Translate(op circuit.Operation) ([]circuit.Operation, error) {
	if op.Directive() || t.tgt.Supports(op.Name) {
		return []circuit.Operation{op.Clone()}, nil
	}
	if !t.Translatable(op.Name) {
		return nil, &qerr.UnsupportedOperationError{Op: op.Name, Basis: t.tgt.Basis}
	}

	local, err := t.TranslateLocal(op)
	if err != nil {
		return nil, err
	}

	out := make([]circuit.Operation, len(local))
	for i, lop := range local {
		mapped := lop.Clone()
		for j, q := range mapped.Qubits {
			mapped.Qubits[j] = op.Qubits[q]
		}
		if op.Cond != nil {
			cond := *op.Cond
			mapped.Cond = &cond
		}
		out[i] = mapped
	}
	return out, nil
}

// TranslateLocal is Translate over local qubit indices 0..arity-1,
// without guard propagation. Graph substitution uses this form.
func (t *Translator) TranslateLocal(op circuit.Operation) ([]circuit.Operation, error) {
	key := cacheKey(op)
	if local, ok := t.cache.Get(key); ok {
		return local, nil
	}
	local, err := t.expand(op.Name, op.Params, 0)
	if err != nil {
		return nil, err
	}
	t.cache.Add(key, local)
	return local, nil
}

const maxExpandDepth = 16

// expand rewrites one gate name recursively until everything is
// native, over local qubit indices.
func (t *Translator) expand(name string, params []circuit.Param, depth int) ([]circuit.Operation, error) {
	if t.tgt.Supports(name) {
		arity := circuit.StandardQubitArity(name)
		qs := make([]int, arity)
		for i := range qs {
			qs[i] = i
		}
		return []circuit.Operation{{Name: name, Qubits: qs, Params: append([]circuit.Param(nil), params...)}}, nil
	}
	if depth > maxExpandDepth {
		return nil, &qerr.UnsupportedOperationError{Op: name, Basis: t.tgt.Basis}
	}

	r, ok := t.chosen[name]
	if !ok {
		return nil, &qerr.UnsupportedOperationError{Op: name, Basis: t.tgt.Basis}
	}
	seq, ok := r.Expand(params)
	if !ok {
		// The cheapest identity cannot take this parameter; fall back
		// to any registered alternative that can.
		var err error
		seq, err = t.expandAlternative(name, params)
		if err != nil {
			return nil, err
		}
	}

	var out []circuit.Operation
	for _, sub := range seq {
		inner, err := t.expand(sub.Name, sub.Params, depth+1)
		if err != nil {
			return nil, err
		}
		for _, iop := range inner {
			mapped := iop.Clone()
			for j, q := range mapped.Qubits {
				mapped.Qubits[j] = sub.Qubits[q]
			}
			out = append(out, mapped)
		}
	}
	return out, nil
}

func (t *Translator) expandAlternative(name string, params []circuit.Param) ([]circuit.Operation, error) {
	for _, r := range t.lib.Rules(name) {
		feasible := true
		for _, gate := range r.Produces {
			if _, ok := t.cost[gate]; !ok {
				feasible = false
				break
			}
		}
		if !feasible {
			continue
		}
		if seq, ok := r.Expand(params); ok {
			return seq, nil
		}
	}
	return nil, &qerr.UnsupportedOperationError{Op: name, Basis: t.tgt.Basis}
}
