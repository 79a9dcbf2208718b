package engine

import (
	"stokhos/domain/analysis"
	"stokhos/domain/dist"
	"stokhos/domain/model"
)

// EvaluateModel reshapes a declared probability table into the same
// DistributionAnalysis structure the empirical builder produces, so that
// comparison is format-agnostic. The model must have passed validation;
// invalid models are the caller's exclusion concern, not an error here.
func EvaluateModel(m *model.Def) (*analysis.DistributionAnalysis, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	joint := m.Table.Distribution()

	summaries := make([]analysis.VariableSummary, len(m.Variables))
	for i, v := range m.Variables {
		marginal := joint.Marginal(i)
		summaries[i] = analysis.VariableSummary{
			Variable: v,
			Marginal: marginal,
			Moments:  dist.ComputeMoments(marginal, v),
			CMF:      dist.CumulativeMass(marginal, v),
		}
	}

	return &analysis.DistributionAnalysis{
		Mode:      analysis.ModeCrossSectional,
		Variables: m.Variables,
		Joint:     joint,
		Summaries: summaries,
	}, nil
}
