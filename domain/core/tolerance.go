package core

// Floating-point tolerances used across the engine. Each constant has a
// single owner concern so callers never have to guess which threshold
// applies where.
const (
	// NormalizationTolerance bounds how far a normalized distribution's
	// mass may drift from 1.0 due to float accumulation.
	NormalizationTolerance = 1e-9

	// ModelSumTolerance is the user-facing check that a declared
	// probability table sums to 1. Looser than NormalizationTolerance
	// because table entries are typically hand-entered decimals.
	ModelSumTolerance = 1e-4

	// CMFSignificantDigits is the significant-digit rounding applied to
	// cumulative mass values to suppress float noise in display output.
	CMFSignificantDigits = 15
)
