// Package dag holds the circuit graph every pass operates on: a
// directed acyclic graph with one input and one output node per wire,
// interior operation nodes, and edges labeled by the wire they carry.
//
// The graph is an arena of nodes addressed by stable indices with
// adjacency lists. Removed nodes become tombstones; indices are never
// reused within one graph, so substitution is index bookkeeping rather
// than pointer surgery.
//
// A DAG is owned exclusively by one pipeline run. It is not safe for
// concurrent structural mutation.
package dag

import (
	"container/heap"
	"fmt"

	"qpiler/circuit"
	"qpiler/qerr"
)

// WireKind distinguishes qubit wires from classical-bit wires.
type WireKind uint8

const (
	QubitWire WireKind = iota
	ClbitWire
)

// Wire is the logical identity of a qubit or classical bit. Each wire
// carries exactly one ordered sequence of operations through time.
type Wire struct {
	Kind  WireKind
	Index int
}

// Q returns the qubit wire with the given index.
func Q(i int) Wire { return Wire{Kind: QubitWire, Index: i} }

// C returns the classical-bit wire with the given index.
func C(i int) Wire { return Wire{Kind: ClbitWire, Index: i} }

func (w Wire) String() string {
	if w.Kind == QubitWire {
		return fmt.Sprintf("q%d", w.Index)
	}
	return fmt.Sprintf("c%d", w.Index)
}

// NodeID is a stable index into the graph's node arena.
type NodeID int

// NodeKind classifies arena entries.
type NodeKind uint8

const (
	KindIn NodeKind = iota
	KindOut
	KindOp
	kindDead
)

// Node is one arena entry. For KindIn/KindOut nodes only Wire is
// meaningful; for KindOp nodes only Op is.
type Node struct {
	ID   NodeID
	Kind NodeKind
	Wire Wire
	Op   circuit.Operation

	seq int // insertion order, breaks topological ties
}

type edge struct {
	wire Wire
	to   NodeID
}

// DAG is the circuit graph.
type DAG struct {
	NumQubits int
	NumClbits int

	nodes []Node
	succ  [][]edge
	pred  [][]edge

	in  map[Wire]NodeID
	out map[Wire]NodeID

	seqCounter int
	opCount    int
}

// New returns an empty graph over the given register sizes, with the
// input node of every wire connected directly to its output node.
func New(numQubits, numClbits int) *DAG {
	d := &DAG{
		NumQubits: numQubits,
		NumClbits: numClbits,
		in:        make(map[Wire]NodeID),
		out:       make(map[Wire]NodeID),
	}
	for _, w := range d.wires() {
		inID := d.newNode(Node{Kind: KindIn, Wire: w})
		outID := d.newNode(Node{Kind: KindOut, Wire: w})
		d.in[w] = inID
		d.out[w] = outID
		d.addEdge(inID, outID, w)
	}
	return d
}

// FromCircuit ingests a flat operation list. The circuit is validated
// first; a malformed list returns a ValidationError.
func FromCircuit(c *circuit.Circuit) (*DAG, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	d := New(c.NumQubits, c.NumClbits)
	for _, op := range c.Ops {
		if _, err := d.Append(op.Clone()); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func (d *DAG) wires() []Wire {
	ws := make([]Wire, 0, d.NumQubits+d.NumClbits)
	for i := 0; i < d.NumQubits; i++ {
		ws = append(ws, Q(i))
	}
	for i := 0; i < d.NumClbits; i++ {
		ws = append(ws, C(i))
	}
	return ws
}

func (d *DAG) newNode(n Node) NodeID {
	n.ID = NodeID(len(d.nodes))
	n.seq = d.seqCounter
	d.seqCounter++
	d.nodes = append(d.nodes, n)
	d.succ = append(d.succ, nil)
	d.pred = append(d.pred, nil)
	return n.ID
}

func (d *DAG) addEdge(from, to NodeID, w Wire) {
	d.succ[from] = append(d.succ[from], edge{wire: w, to: to})
	d.pred[to] = append(d.pred[to], edge{wire: w, to: from})
}

func (d *DAG) removeEdge(from, to NodeID, w Wire) {
	d.succ[from] = deleteEdge(d.succ[from], w, to)
	d.pred[to] = deleteEdge(d.pred[to], w, from)
}

func deleteEdge(edges []edge, w Wire, target NodeID) []edge {
	for i, e := range edges {
		if e.wire == w && e.to == target {
			return append(edges[:i], edges[i+1:]...)
		}
	}
	return edges
}

// opWires lists the wires an operation touches, in operand order: its
// qubits, its classical bits, and its guard bit if any. A barrier with
// no explicit operands spans every qubit wire.
func (d *DAG) opWires(op circuit.Operation) []Wire {
	var ws []Wire
	if op.Name == "barrier" && len(op.Qubits) == 0 {
		for i := 0; i < d.NumQubits; i++ {
			ws = append(ws, Q(i))
		}
	} else {
		for _, q := range op.Qubits {
			ws = append(ws, Q(q))
		}
	}
	for _, b := range op.Clbits {
		ws = append(ws, C(b))
	}
	if op.Cond != nil {
		w := C(op.Cond.Clbit)
		dup := false
		for _, have := range ws {
			if have == w {
				dup = true
				break
			}
		}
		if !dup {
			ws = append(ws, w)
		}
	}
	return ws
}

// Append adds an operation at the end of its wires, preserving
// per-wire program order.
func (d *DAG) Append(op circuit.Operation) (NodeID, error) {
	for _, q := range op.Qubits {
		if q < 0 || q >= d.NumQubits {
			return 0, &qerr.ValidationError{Op: op.Name, Detail: fmt.Sprintf("unknown qubit wire %d", q)}
		}
	}
	for _, b := range op.Clbits {
		if b < 0 || b >= d.NumClbits {
			return 0, &qerr.ValidationError{Op: op.Name, Detail: fmt.Sprintf("unknown clbit wire %d", b)}
		}
	}
	if op.Cond != nil && (op.Cond.Clbit < 0 || op.Cond.Clbit >= d.NumClbits) {
		return 0, &qerr.ValidationError{Op: op.Name, Detail: fmt.Sprintf("unknown guard wire %d", op.Cond.Clbit)}
	}

	id := d.newNode(Node{Kind: KindOp, Op: op})
	for _, w := range d.opWires(op) {
		outID := d.out[w]
		prev := d.predOn(outID, w)
		d.removeEdge(prev, outID, w)
		d.addEdge(prev, id, w)
		d.addEdge(id, outID, w)
	}
	d.opCount++
	return id, nil
}

// Node returns the arena entry for an id.
func (d *DAG) Node(id NodeID) *Node { return &d.nodes[id] }

// NumOps returns the number of live operation nodes.
func (d *DAG) NumOps() int { return d.opCount }

// InNode returns the input node of a wire.
func (d *DAG) InNode(w Wire) NodeID { return d.in[w] }

// OutNode returns the output node of a wire.
func (d *DAG) OutNode(w Wire) NodeID { return d.out[w] }

func (d *DAG) predOn(id NodeID, w Wire) NodeID {
	for _, e := range d.pred[id] {
		if e.wire == w {
			return e.to
		}
	}
	return -1
}

func (d *DAG) succOn(id NodeID, w Wire) NodeID {
	for _, e := range d.succ[id] {
		if e.wire == w {
			return e.to
		}
	}
	return -1
}

// PredOn returns the node immediately before id on the given wire, or
// -1 when id does not touch the wire.
func (d *DAG) PredOn(id NodeID, w Wire) NodeID { return d.predOn(id, w) }

// SuccOn returns the node immediately after id on the given wire, or
// -1 when id does not touch the wire.
func (d *DAG) SuccOn(id NodeID, w Wire) NodeID { return d.succOn(id, w) }

// Predecessors returns the distinct immediate predecessors of a node,
// in wire-operand order.
func (d *DAG) Predecessors(id NodeID) []NodeID {
	return uniqueTargets(d.pred[id])
}

// Successors returns the distinct immediate successors of a node, in
// wire-operand order.
func (d *DAG) Successors(id NodeID) []NodeID {
	return uniqueTargets(d.succ[id])
}

func uniqueTargets(edges []edge) []NodeID {
	var out []NodeID
	for _, e := range edges {
		dup := false
		for _, have := range out {
			if have == e.to {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, e.to)
		}
	}
	return out
}

// TerminalOp returns the last operation node on a wire (the node just
// before the wire's output node), or -1 when the wire is empty. Used
// to detect final measurements and barriers.
func (d *DAG) TerminalOp(w Wire) NodeID {
	prev := d.predOn(d.out[w], w)
	if prev < 0 || d.nodes[prev].Kind != KindOp {
		return -1
	}
	return prev
}

// RemoveOp deletes an operation node, splicing its wires back
// together.
func (d *DAG) RemoveOp(id NodeID) error {
	n := &d.nodes[id]
	if n.Kind != KindOp {
		return &qerr.StructuralError{Detail: fmt.Sprintf("node %d is not an operation", id)}
	}
	for _, w := range d.opWires(n.Op) {
		prev := d.predOn(id, w)
		next := d.succOn(id, w)
		d.removeEdge(prev, id, w)
		d.removeEdge(id, next, w)
		d.addEdge(prev, next, w)
	}
	n.Kind = kindDead
	n.Op = circuit.Operation{}
	d.opCount--
	return nil
}

// seqHeap is a min-heap of node ids ordered by insertion sequence.
type seqHeap struct {
	ids  []NodeID
	seqs []int
}

func (h *seqHeap) Len() int            { return len(h.ids) }
func (h *seqHeap) Less(i, j int) bool  { return h.seqs[h.ids[i]] < h.seqs[h.ids[j]] }
func (h *seqHeap) Swap(i, j int)       { h.ids[i], h.ids[j] = h.ids[j], h.ids[i] }
func (h *seqHeap) Push(x any)          { h.ids = append(h.ids, x.(NodeID)) }
func (h *seqHeap) Pop() any {
	last := h.ids[len(h.ids)-1]
	h.ids = h.ids[:len(h.ids)-1]
	return last
}

// Topological returns every live node in a stable topological order:
// dependency order, ties broken by original insertion order rather
// than arbitrarily.
func (d *DAG) Topological() []NodeID {
	indeg := make([]int, len(d.nodes))
	h := &seqHeap{seqs: make([]int, len(d.nodes))}
	for id := range d.nodes {
		if d.nodes[id].Kind == kindDead {
			continue
		}
		h.seqs[id] = d.nodes[id].seq
		indeg[id] = len(uniqueTargets(d.pred[id]))
		if indeg[id] == 0 {
			h.ids = append(h.ids, NodeID(id))
		}
	}
	heap.Init(h)

	order := make([]NodeID, 0, len(d.nodes))
	for h.Len() > 0 {
		id := heap.Pop(h).(NodeID)
		order = append(order, id)
		for _, s := range d.Successors(id) {
			indeg[s]--
			if indeg[s] == 0 {
				heap.Push(h, s)
			}
		}
	}
	return order
}

// OpsInOrder returns the live operation nodes in stable topological
// order.
func (d *DAG) OpsInOrder() []NodeID {
	var ops []NodeID
	for _, id := range d.Topological() {
		if d.nodes[id].Kind == KindOp {
			ops = append(ops, id)
		}
	}
	return ops
}

// ToCircuit linearizes the graph back into a flat operation list.
func (d *DAG) ToCircuit() *circuit.Circuit {
	c := circuit.New(d.NumQubits, d.NumClbits)
	for _, id := range d.OpsInOrder() {
		c.Ops = append(c.Ops, d.nodes[id].Op.Clone())
	}
	return c
}

// Clone deep-copies the graph, preserving ids and sequence numbers.
func (d *DAG) Clone() *DAG {
	out := &DAG{
		NumQubits:  d.NumQubits,
		NumClbits:  d.NumClbits,
		nodes:      make([]Node, len(d.nodes)),
		succ:       make([][]edge, len(d.succ)),
		pred:       make([][]edge, len(d.pred)),
		in:         make(map[Wire]NodeID, len(d.in)),
		out:        make(map[Wire]NodeID, len(d.out)),
		seqCounter: d.seqCounter,
		opCount:    d.opCount,
	}
	for i, n := range d.nodes {
		n.Op = n.Op.Clone()
		out.nodes[i] = n
	}
	for i := range d.succ {
		out.succ[i] = append([]edge(nil), d.succ[i]...)
		out.pred[i] = append([]edge(nil), d.pred[i]...)
	}
	for w, id := range d.in {
		out.in[w] = id
	}
	for w, id := range d.out {
		out.out[w] = id
	}
	return out
}

// Validate checks the structural invariants: acyclicity and, for every
// operation node, in-degree and out-degree equal to its wire count.
func (d *DAG) Validate() error {
	live := 0
	for id := range d.nodes {
		n := &d.nodes[id]
		if n.Kind == kindDead {
			continue
		}
		live++
		if n.Kind == KindOp {
			want := len(d.opWires(n.Op))
			if len(d.succ[id]) != want || len(d.pred[id]) != want {
				return &qerr.StructuralError{Detail: fmt.Sprintf(
					"node %d degree %d/%d, want %d per side", id, len(d.pred[id]), len(d.succ[id]), want)}
			}
		}
	}
	if len(d.Topological()) != live {
		return &qerr.StructuralError{Detail: "graph contains a cycle"}
	}
	return nil
}
