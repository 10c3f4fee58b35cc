// internal/engine/forecast/ensemble.go
package forecast

import (
	"math"
	"math/rand"

	"github.com/pharmalytics/inventory-engine/internal/domain"
)

const ModelEnsemble = "lagged_ensemble"

const (
	ensembleTrees    = 8
	ensembleMaxDepth = 2
	ensembleSeed     = 42
	rollingWindow    = 3
	featureCount     = 4 // lag1, lag2, rolling mean, season index
)

// LaggedEnsemble is a bagged ensemble of shallow regression trees over lagged
// features: previous two periods, a short rolling mean, and a season index.
// The bootstrap is seeded so identical inputs always produce identical
// forecasts.
type LaggedEnsemble struct {
	seasonLen int
	trees     []*treeNode
	history   []float64
}

func NewLaggedEnsemble(seasonLen int) *LaggedEnsemble {
	if seasonLen < 2 {
		seasonLen = 2
	}
	return &LaggedEnsemble{seasonLen: seasonLen}
}

func (m *LaggedEnsemble) Name() string { return ModelEnsemble }

func (m *LaggedEnsemble) Fit(series []float64) error {
	rows, targets := m.buildRows(series)
	if len(rows) < 4 {
		return &domain.ComputationError{Model: m.Name(), Reason: "too few periods for lagged features"}
	}

	rng := rand.New(rand.NewSource(ensembleSeed))
	m.trees = make([]*treeNode, ensembleTrees)
	for i := range m.trees {
		sampleRows := make([][]float64, len(rows))
		sampleTargets := make([]float64, len(rows))
		for j := range rows {
			k := rng.Intn(len(rows))
			sampleRows[j] = rows[k]
			sampleTargets[j] = targets[k]
		}
		m.trees[i] = buildTree(sampleRows, sampleTargets, ensembleMaxDepth)
	}

	m.history = append([]float64(nil), series...)
	return nil
}

func (m *LaggedEnsemble) Predict(horizon int) []float64 {
	out := make([]float64, horizon)
	recent := append([]float64(nil), m.history...)
	for i := range out {
		t := len(recent)
		features := m.featuresAt(recent, t)
		var sum float64
		for _, tree := range m.trees {
			sum += tree.predict(features)
		}
		pred := clipNonNegative(sum / float64(len(m.trees)))
		out[i] = pred
		// Feed the prediction back so later lags see it.
		recent = append(recent, pred)
	}
	return out
}

// buildRows turns the series into supervised (features, target) pairs
// starting at the first index with two lags available.
func (m *LaggedEnsemble) buildRows(series []float64) ([][]float64, []float64) {
	var rows [][]float64
	var targets []float64
	for t := 2; t < len(series); t++ {
		rows = append(rows, m.featuresAt(series, t))
		targets = append(targets, series[t])
	}
	return rows, targets
}

func (m *LaggedEnsemble) featuresAt(series []float64, t int) []float64 {
	f := make([]float64, featureCount)
	f[0] = series[t-1]
	f[1] = series[t-2]
	start := t - rollingWindow
	if start < 0 {
		start = 0
	}
	f[2] = mean(series[start:t])
	f[3] = float64(t % m.seasonLen)
	return f
}

type treeNode struct {
	leaf      bool
	value     float64
	feature   int
	threshold float64
	left      *treeNode
	right     *treeNode
}

func (n *treeNode) predict(features []float64) float64 {
	for !n.leaf {
		if features[n.feature] <= n.threshold {
			n = n.left
		} else {
			n = n.right
		}
	}
	return n.value
}

func buildTree(rows [][]float64, targets []float64, depth int) *treeNode {
	if depth == 0 || len(rows) < 2 {
		return &treeNode{leaf: true, value: mean(targets)}
	}

	bestSSE := math.Inf(1)
	bestFeature, bestThreshold := -1, 0.0
	for f := 0; f < featureCount; f++ {
		for _, threshold := range splitCandidates(rows, f) {
			sse := splitSSE(rows, targets, f, threshold)
			if sse < bestSSE {
				bestSSE = sse
				bestFeature = f
				bestThreshold = threshold
			}
		}
	}
	if bestFeature < 0 {
		return &treeNode{leaf: true, value: mean(targets)}
	}

	var leftRows, rightRows [][]float64
	var leftTargets, rightTargets []float64
	for i, row := range rows {
		if row[bestFeature] <= bestThreshold {
			leftRows = append(leftRows, row)
			leftTargets = append(leftTargets, targets[i])
		} else {
			rightRows = append(rightRows, row)
			rightTargets = append(rightTargets, targets[i])
		}
	}
	if len(leftRows) == 0 || len(rightRows) == 0 {
		return &treeNode{leaf: true, value: mean(targets)}
	}

	return &treeNode{
		feature:   bestFeature,
		threshold: bestThreshold,
		left:      buildTree(leftRows, leftTargets, depth-1),
		right:     buildTree(rightRows, rightTargets, depth-1),
	}
}

// splitCandidates returns midpoints between consecutive distinct feature
// values.
func splitCandidates(rows [][]float64, feature int) []float64 {
	seen := make(map[float64]bool, len(rows))
	var vals []float64
	for _, row := range rows {
		v := row[feature]
		if !seen[v] {
			seen[v] = true
			vals = append(vals, v)
		}
	}
	if len(vals) < 2 {
		return nil
	}
	for i := 1; i < len(vals); i++ {
		for j := i; j > 0 && vals[j] < vals[j-1]; j-- {
			vals[j], vals[j-1] = vals[j-1], vals[j]
		}
	}
	mids := make([]float64, 0, len(vals)-1)
	for i := 1; i < len(vals); i++ {
		mids = append(mids, (vals[i-1]+vals[i])/2)
	}
	return mids
}

func splitSSE(rows [][]float64, targets []float64, feature int, threshold float64) float64 {
	var left, right []float64
	for i, row := range rows {
		if row[feature] <= threshold {
			left = append(left, targets[i])
		} else {
			right = append(right, targets[i])
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return math.Inf(1)
	}
	return sse(left) + sse(right)
}

func sse(vals []float64) float64 {
	m := mean(vals)
	var sum float64
	for _, v := range vals {
		d := v - m
		sum += d * d
	}
	return sum
}
