package model

import (
	"fmt"
	"math"
	"sort"
)

// GBDTParams configures the boosted-tree classifier.
type GBDTParams struct {
	Rounds         int
	MaxDepth       int
	LearningRate   float64
	MinSamplesLeaf int
	Lambda         float64
}

// DefaultGBDTParams mirrors the deployed configuration.
func DefaultGBDTParams() GBDTParams {
	return GBDTParams{
		Rounds:         100,
		MaxDepth:       5,
		LearningRate:   0.1,
		MinSamplesLeaf: 5,
		Lambda:         1.0,
	}
}

// GBDT is a gradient-boosted decision tree binary classifier with
// logistic loss. Training is fully deterministic: features are scanned
// in index order and a split is replaced only on strictly greater gain.
type GBDT struct {
	params GBDTParams
	bias   float64
	trees  []*gbNode
}

type gbNode struct {
	leaf      bool
	value     float64
	feature   int
	threshold float64
	left      *gbNode
	right     *gbNode
}

func sigmoid(z float64) float64 {
	return 1.0 / (1.0 + math.Exp(-z))
}

// TrainGBDT fits the classifier. X rows must be fully defined (no NaN)
// and y entries must be 0 or 1.
func TrainGBDT(X [][]float64, y []int, params GBDTParams) (*GBDT, error) {
	n := len(X)
	if n == 0 || n != len(y) {
		return nil, fmt.Errorf("gbdt: bad training shape (%d rows, %d labels)", n, len(y))
	}

	pos := 0
	for _, v := range y {
		if v == 1 {
			pos++
		}
	}
	// Log-odds prior, clamped so a single-class fold stays finite.
	p0 := (float64(pos) + 1.0) / (float64(n) + 2.0)
	m := &GBDT{params: params, bias: math.Log(p0 / (1.0 - p0))}

	scores := make([]float64, n)
	for i := range scores {
		scores[i] = m.bias
	}

	grads := make([]float64, n)
	hess := make([]float64, n)
	idx := make([]int, n)

	for round := 0; round < params.Rounds; round++ {
		for i := 0; i < n; i++ {
			p := sigmoid(scores[i])
			grads[i] = p - float64(y[i])
			hess[i] = p * (1.0 - p)
			idx[i] = i
		}
		root := buildTree(X, grads, hess, idx, 0, params)
		m.trees = append(m.trees, root)
		for i := 0; i < n; i++ {
			scores[i] += params.LearningRate * predictNode(root, X[i])
		}
	}
	return m, nil
}

// PredictProb returns P(label = 1 | x).
func (m *GBDT) PredictProb(x []float64) float64 {
	score := m.bias
	for _, t := range m.trees {
		score += m.params.LearningRate * predictNode(t, x)
	}
	return sigmoid(score)
}

// NumTrees reports the fitted ensemble size.
func (m *GBDT) NumTrees() int { return len(m.trees) }

func predictNode(n *gbNode, x []float64) float64 {
	for !n.leaf {
		if x[n.feature] <= n.threshold {
			n = n.left
		} else {
			n = n.right
		}
	}
	return n.value
}

// leafValue is the Newton step for logistic loss: -G / (H + lambda).
func leafValue(X [][]float64, grads, hess []float64, idx []int, lambda float64) float64 {
	var g, h float64
	for _, i := range idx {
		g += grads[i]
		h += hess[i]
	}
	return -g / (h + lambda)
}

type split struct {
	feature   int
	threshold float64
	gain      float64
	left      []int
	right     []int
}

func buildTree(X [][]float64, grads, hess []float64, idx []int, depth int, params GBDTParams) *gbNode {
	if depth >= params.MaxDepth || len(idx) < 2*params.MinSamplesLeaf {
		return &gbNode{leaf: true, value: leafValue(X, grads, hess, idx, params.Lambda)}
	}
	best := findBestSplit(X, grads, hess, idx, params)
	if best == nil {
		return &gbNode{leaf: true, value: leafValue(X, grads, hess, idx, params.Lambda)}
	}
	return &gbNode{
		feature:   best.feature,
		threshold: best.threshold,
		left:      buildTree(X, grads, hess, best.left, depth+1, params),
		right:     buildTree(X, grads, hess, best.right, depth+1, params),
	}
}

func findBestSplit(X [][]float64, grads, hess []float64, idx []int, params GBDTParams) *split {
	nFeatures := len(X[idx[0]])

	var gTotal, hTotal float64
	for _, i := range idx {
		gTotal += grads[i]
		hTotal += hess[i]
	}
	baseScore := gTotal * gTotal / (hTotal + params.Lambda)

	var best *split
	order := make([]int, len(idx))

	for f := 0; f < nFeatures; f++ {
		copy(order, idx)
		sort.SliceStable(order, func(a, b int) bool {
			return X[order[a]][f] < X[order[b]][f]
		})

		var gLeft, hLeft float64
		for pos := 0; pos < len(order)-1; pos++ {
			i := order[pos]
			gLeft += grads[i]
			hLeft += hess[i]

			// No split between equal feature values.
			if X[order[pos]][f] == X[order[pos+1]][f] {
				continue
			}
			nLeft := pos + 1
			nRight := len(order) - nLeft
			if nLeft < params.MinSamplesLeaf || nRight < params.MinSamplesLeaf {
				continue
			}

			gRight := gTotal - gLeft
			hRight := hTotal - hLeft
			gain := gLeft*gLeft/(hLeft+params.Lambda) +
				gRight*gRight/(hRight+params.Lambda) - baseScore
			if gain <= 1e-12 {
				continue
			}
			if best == nil || gain > best.gain {
				threshold := (X[order[pos]][f] + X[order[pos+1]][f]) / 2.0
				left := make([]int, nLeft)
				right := make([]int, nRight)
				copy(left, order[:nLeft])
				copy(right, order[nLeft:])
				best = &split{feature: f, threshold: threshold, gain: gain, left: left, right: right}
			}
		}
	}
	return best
}
