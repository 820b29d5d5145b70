package solver

import (
	"container/heap"
	"fmt"

	"github.com/norraist/PaxDei-Planner/internal/models"
)

// ExactSolver runs Dijkstra over (level, XP) states. An edge runs one recipe until the
// current level completes and weighs the weighted material cost of those batches.
type ExactSolver struct {
	MaxExpansions int
}

// NewExact creates an exact solver with the default expansion budget
func NewExact() *ExactSolver {
	return &ExactSolver{MaxExpansions: DefaultMaxExpansions}
}

// Name returns the strategy name
func (e *ExactSolver) Name() string {
	return StrategyDijkstra
}

// searchNode is a reached state and the edge that reached it
type searchNode struct {
	state  State
	cost   float64
	parent int // index into the node arena, -1 for the start
	step   models.PlanStep
	alts   []models.Alternative
}

// queueItem orders arena nodes by cost, then insertion sequence
type queueItem struct {
	node     int
	cost     float64
	sequence int64
}

type nodeHeap []queueItem

func (h nodeHeap) Len() int { return len(h) }

func (h nodeHeap) Less(i, j int) bool {
	if h[i].cost != h[j].cost {
		return h[i].cost < h[j].cost
	}
	return h[i].sequence < h[j].sequence
}

func (h nodeHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *nodeHeap) Push(x any) {
	*h = append(*h, x.(queueItem))
}

func (h *nodeHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[0 : n-1]
	return x
}

// Search finds the minimum-cost plan from the start state to the target level
func (e *ExactSolver) Search(p *Problem) ([]models.PlanStep, error) {
	if err := p.prepare(); err != nil {
		return nil, err
	}
	if p.done(p.Start) {
		return nil, nil
	}

	budget := e.MaxExpansions
	if budget <= 0 {
		budget = DefaultMaxExpansions
	}

	nodes := []searchNode{{state: p.Start, parent: -1}}
	best := map[visitKey]float64{p.Start.key(): 0}
	settled := make(map[visitKey]bool)

	var sequence int64
	queue := &nodeHeap{}
	heap.Init(queue)
	heap.Push(queue, queueItem{node: 0})

	furthest := p.Start
	expansions := 0

	for queue.Len() > 0 {
		item := heap.Pop(queue).(queueItem)
		cur := nodes[item.node]
		key := cur.state.key()
		if settled[key] {
			continue
		}
		settled[key] = true

		if p.done(cur.state) {
			return e.reconstruct(nodes, item.node), nil
		}
		if ahead(cur.state, furthest) {
			furthest = cur.state
		}

		expansions++
		if expansions > budget {
			return nil, fmt.Errorf("%w for %s after %d states (reached level %d)", ErrSearchBudget, p.Skill, budget, furthest.Level)
		}

		opts := p.options(cur.state)
		for _, o := range opts {
			next, step := p.apply(cur.state, o)
			nextKey := next.key()
			if settled[nextKey] {
				continue
			}
			cost := cur.cost + step.Cost
			if prev, seen := best[nextKey]; seen && prev <= cost {
				continue
			}
			best[nextKey] = cost
			nodes = append(nodes, searchNode{
				state:  next,
				cost:   cost,
				parent: item.node,
				step:   step,
				alts:   p.alternatives(opts, o.recipe.ID),
			})
			sequence++
			heap.Push(queue, queueItem{node: len(nodes) - 1, cost: cost, sequence: sequence})
		}
	}

	return nil, p.stall(furthest)
}

// reconstruct walks parent links back to the start and merges consecutive steps
func (e *ExactSolver) reconstruct(nodes []searchNode, end int) []models.PlanStep {
	var path []int
	for i := end; nodes[i].parent >= 0; i = nodes[i].parent {
		path = append(path, i)
	}
	var steps []models.PlanStep
	for i := len(path) - 1; i >= 0; i-- {
		n := nodes[path[i]]
		step := n.step
		step.Alternatives = n.alts
		steps = appendMerged(steps, step)
	}
	return steps
}

func ahead(a, b State) bool {
	if a.Level != b.Level {
		return a.Level > b.Level
	}
	return a.XP > b.XP
}
