package engine

import (
	"math"

	"stokhos/domain/analysis"
	"stokhos/domain/dist"
	"stokhos/domain/model"
	"stokhos/domain/variable"
)

// EvaluatedModel pairs a valid model with its evaluated analysis
type EvaluatedModel struct {
	Def      *model.Def
	Analysis *analysis.DistributionAnalysis
}

// CompareModels validates and evaluates each model, then ranks the valid
// ones against the empirical distribution. Invalid models are recorded
// as excluded with their validation error; they never abort the ranking
// of their siblings.
func CompareModels(empirical *analysis.DistributionAnalysis, models []*model.Def) *analysis.ComparisonReport {
	evaluated := make([]EvaluatedModel, 0, len(models))
	excluded := make([]*model.Def, 0)
	for _, m := range models {
		ma, err := EvaluateModel(m)
		if err != nil {
			excluded = append(excluded, m)
			continue
		}
		evaluated = append(evaluated, EvaluatedModel{Def: m, Analysis: ma})
	}
	return RankModels(empirical, evaluated, excluded)
}

// RankModels scores already-evaluated models. Split out from
// CompareModels so callers may evaluate models concurrently first.
func RankModels(empirical *analysis.DistributionAnalysis, evaluated []EvaluatedModel, excluded []*model.Def) *analysis.ComparisonReport {
	report := &analysis.ComparisonReport{}

	comparisons := make([]*analysis.ModelComparison, len(evaluated))
	for i, em := range evaluated {
		comparisons[i] = &analysis.ModelComparison{
			ModelID:   em.Def.ID,
			ModelName: em.Def.Name,
			Metrics:   scoreModel(empirical, em.Analysis),
		}
	}

	markWinners(comparisons)

	best := ""
	bestWins := -1
	for _, c := range comparisons {
		for _, metric := range c.Metrics {
			if metric.IsWinner {
				c.Wins++
			}
		}
		// First model reaching the max keeps the title on ties.
		if c.Wins > bestWins {
			bestWins = c.Wins
			best = c.ModelName
		}
	}
	report.BestModel = best

	for _, c := range comparisons {
		report.Models = append(report.Models, *c)
	}
	for _, m := range excluded {
		report.Models = append(report.Models, analysis.ModelComparison{
			ModelID:         m.ID,
			ModelName:       m.Name,
			Excluded:        true,
			ExclusionReason: m.ValidationError,
		})
	}
	return report
}

// scoreModel computes every metric applicable to the dataset. Hellinger
// and Jensen-Shannon distances always apply; MSE applies per numerical
// variable, averaged, and only when the dataset has at least one
// numerical variable - categorical-only datasets never receive it.
func scoreModel(empirical, m *analysis.DistributionAnalysis) []analysis.ComparisonMetric {
	metrics := []analysis.ComparisonMetric{
		{Name: analysis.MetricHellinger, Value: analysis.JSONFloat(dist.HellingerDistance(m.Joint, empirical.Joint))},
		{Name: analysis.MetricJensenShannon, Value: analysis.JSONFloat(dist.JensenShannonDistance(m.Joint, empirical.Joint))},
	}
	if mse, ok := numericalMSE(empirical, m); ok {
		metrics = append(metrics, analysis.ComparisonMetric{
			Name:  analysis.MetricMSE,
			Value: analysis.JSONFloat(mse),
		})
	}
	return metrics
}

// numericalMSE averages the per-variable marginal MSE over the dataset's
// numerical variables.
func numericalMSE(empirical, m *analysis.DistributionAnalysis) (float64, bool) {
	sum := 0.0
	count := 0
	for i, v := range empirical.Variables {
		if v.Measurement != variable.Numerical || i >= len(m.Summaries) {
			continue
		}
		sum += dist.MeanSquaredError(m.Summaries[i].Marginal, empirical.Summaries[i].Marginal)
		count++
	}
	if count == 0 {
		return 0, false
	}
	return sum / float64(count), true
}

// markWinners flags, per metric independently, every model attaining the
// minimum value. Ties produce multiple winners.
func markWinners(comparisons []*analysis.ModelComparison) {
	if len(comparisons) == 0 {
		return
	}
	metricCount := len(comparisons[0].Metrics)
	for mi := 0; mi < metricCount; mi++ {
		best := math.Inf(1)
		for _, c := range comparisons {
			if v := float64(c.Metrics[mi].Value); v < best {
				best = v
			}
		}
		for _, c := range comparisons {
			if float64(c.Metrics[mi].Value) == best {
				c.Metrics[mi].IsWinner = true
			}
		}
	}
}
