// Package route maps logical qubits onto physical ones and inserts
// swaps until every two-qubit operation sits on a coupled pair.
package route

import (
	"fmt"
	"math/rand"

	"qpiler/qerr"
)

// Layout is a bijection between virtual (logical) and physical
// qubits. V2P and P2V stay mutually inverse through every move.
type Layout struct {
	V2P []int
	P2V []int
}

// Trivial maps virtual qubit i onto physical qubit i.
func Trivial(virt, phys int) (*Layout, error) {
	if virt > phys {
		return nil, &qerr.ValidationError{Detail: fmt.Sprintf("circuit needs %d qubits, target has %d", virt, phys)}
	}
	l := &Layout{V2P: make([]int, phys), P2V: make([]int, phys)}
	for i := 0; i < phys; i++ {
		l.V2P[i] = i
		l.P2V[i] = i
	}
	return l, nil
}

// Random returns a seeded random bijection. Unused physical qubits
// still appear in the mapping so swaps may route through them.
func Random(virt, phys int, rng *rand.Rand) (*Layout, error) {
	l, err := Trivial(virt, phys)
	if err != nil {
		return nil, err
	}
	perm := rng.Perm(phys)
	for v := 0; v < phys; v++ {
		l.V2P[v] = perm[v]
		l.P2V[perm[v]] = v
	}
	return l, nil
}

// Clone deep-copies the layout.
func (l *Layout) Clone() *Layout {
	return &Layout{
		V2P: append([]int(nil), l.V2P...),
		P2V: append([]int(nil), l.P2V...),
	}
}

// SwapPhys exchanges the virtual qubits sitting on two physical
// qubits, mirroring an emitted swap gate.
func (l *Layout) SwapPhys(p1, p2 int) {
	v1, v2 := l.P2V[p1], l.P2V[p2]
	l.P2V[p1], l.P2V[p2] = v2, v1
	l.V2P[v1], l.V2P[v2] = p2, p1
}

// Phys returns the physical qubit currently holding a virtual qubit.
func (l *Layout) Phys(v int) int { return l.V2P[v] }
