package engine

import (
	"fmt"

	"stokhos/domain/analysis"
	"stokhos/domain/core"
	"stokhos/domain/dist"
	"stokhos/domain/variable"
)

// BuildEmpirical converts tabular rows into the joint/marginal/moment
// structure of a DistributionAnalysis. Input shape problems fail fast;
// no partial analysis is attempted.
func BuildEmpirical(rows [][]string, vars []variable.Info, mode analysis.Mode) (*analysis.DistributionAnalysis, error) {
	if !mode.Valid() {
		return nil, core.NewInputError(fmt.Sprintf("unknown analysis mode %q", mode))
	}
	if len(vars) == 0 {
		return nil, core.NewInputError("no variables declared")
	}
	if len(rows) == 0 {
		return nil, core.ErrEmptyDataset
	}
	for _, v := range vars {
		if err := v.Validate(); err != nil {
			return nil, err
		}
	}
	for i, row := range rows {
		if len(row) != len(vars) {
			return nil, fmt.Errorf("%w: row %d has %d cells, expected %d", core.ErrRowWidth, i, len(row), len(vars))
		}
	}

	keys := make([]string, len(rows))
	for i, row := range rows {
		keys[i] = variable.JoinKey(row)
	}
	joint := dist.Normalize(dist.CountStates(keys))

	summaries := make([]analysis.VariableSummary, len(vars))
	for i, v := range vars {
		marginal := marginalFor(joint, rows, i, mode)
		summaries[i] = analysis.VariableSummary{
			Variable: v,
			Marginal: marginal,
			Moments:  dist.ComputeMoments(marginal, v),
			CMF:      dist.CumulativeMass(marginal, v),
		}
	}

	return &analysis.DistributionAnalysis{
		Mode:       mode,
		Variables:  vars,
		Joint:      joint,
		Summaries:  summaries,
		SampleSize: len(rows),
	}, nil
}

// marginalFor derives one variable's marginal. Cross-sectional data
// marginalizes the joint; time-series data counts the column directly,
// because its rows are consecutive time steps of a single trace, not
// independent joint samples. This asymmetry is intentional.
func marginalFor(joint dist.Distribution, rows [][]string, position int, mode analysis.Mode) dist.Distribution {
	if mode == analysis.ModeCrossSectional {
		return joint.Marginal(position)
	}
	column := make([]string, len(rows))
	for i, row := range rows {
		column[i] = row[position]
	}
	return dist.Normalize(dist.CountStates(column))
}
