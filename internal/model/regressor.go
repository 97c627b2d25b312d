package model

import (
	"errors"
	"fmt"
	"slices"
)

type regressor interface {
	predict(x []float64) float64
}

func newRegressor(spec RegressorSpec, width int) (regressor, error) {
	switch spec.Type {
	case "linear":
		if len(spec.Coef) != width {
			return nil, fmt.Errorf("linear regressor has %d coefficients for %d encoded features", len(spec.Coef), width)
		}
		return linear{intercept: spec.Intercept, coef: slices.Clone(spec.Coef)}, nil
	case "forest":
		if len(spec.Trees) == 0 {
			return nil, errors.New("forest has no trees")
		}
		f := forest{trees: make([][]NodeSpec, len(spec.Trees))}
		for i, t := range spec.Trees {
			if err := checkTree(t.Nodes, width); err != nil {
				return nil, fmt.Errorf("tree %d: %w", i, err)
			}
			f.trees[i] = slices.Clone(t.Nodes)
		}
		return f, nil
	}
	return nil, fmt.Errorf("unknown regressor type %q", spec.Type)
}

type linear struct {
	intercept float64
	coef      []float64
}

func (l linear) predict(x []float64) float64 {
	y := l.intercept
	for i, c := range l.coef {
		y += c * x[i]
	}
	return y
}

// forest averages the leaf values reached in each tree.
type forest struct {
	trees [][]NodeSpec
}

func (f forest) predict(x []float64) float64 {
	var sum float64
	for _, nodes := range f.trees {
		sum += walk(nodes, x)
	}
	return sum / float64(len(f.trees))
}

func isLeaf(n NodeSpec) bool { return n.Left == -1 && n.Right == -1 }

// walk descends from the root, going left when x[feature] <= threshold.
func walk(nodes []NodeSpec, x []float64) float64 {
	i := 0
	for {
		n := nodes[i]
		if isLeaf(n) {
			return n.Value
		}
		if x[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

// checkTree requires children to come after their parent, which rules out
// cycles and guarantees walk terminates.
func checkTree(nodes []NodeSpec, width int) error {
	if len(nodes) == 0 {
		return errors.New("no nodes")
	}
	for i, n := range nodes {
		if isLeaf(n) {
			continue
		}
		if n.Feature < 0 || n.Feature >= width {
			return fmt.Errorf("node %d splits on feature %d, encoded width is %d", i, n.Feature, width)
		}
		for _, child := range []int{n.Left, n.Right} {
			if child <= i || child >= len(nodes) {
				return fmt.Errorf("node %d has child %d out of order", i, child)
			}
		}
	}
	return nil
}
