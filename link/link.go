package link

import "math"

// Link is one evaluated point in parameter space: the parameters, the
// forward-model output, an optional quantity of interest, and the three
// log-densities that drive every acceptance test.
//
// A Link is immutable after construction. The engine treats Links as
// values: a rejected candidate is dropped, an accepted one replaces the
// current state wholesale, and corrected variants are fresh copies.
type Link struct {
	// Parameters is the point at which the model was evaluated.
	Parameters []float64

	// ModelOutput is the raw forward-model output at Parameters
	// (nil when the prior short-circuit fired).
	ModelOutput []float64

	// QoI is a derived quantity of interest, NaN when absent.
	QoI float64

	// PriorLogPDF is the log prior density at Parameters.
	PriorLogPDF float64

	// LogLikelihood is the log-likelihood of the data given ModelOutput.
	// It may be an error-model-corrected value (see WithLogLikelihood).
	LogLikelihood float64

	// Posterior is PriorLogPDF + LogLikelihood, with -Inf dominating.
	Posterior float64
}

// New assembles a Link from its evaluated parts, computing the posterior.
// A non-finite prior forces Posterior = -Inf regardless of the likelihood,
// so out-of-support points can never be accepted.
func New(params, output []float64, qoi, priorLogPDF, logLikelihood float64) *Link {
	post := priorLogPDF + logLikelihood
	if math.IsInf(priorLogPDF, -1) || math.IsNaN(post) {
		post = math.Inf(-1)
	}

	return &Link{
		Parameters:    params,
		ModelOutput:   output,
		QoI:           qoi,
		PriorLogPDF:   priorLogPDF,
		LogLikelihood: logLikelihood,
		Posterior:     post,
	}
}

// OutOfSupport builds the short-circuit Link for a point whose prior
// density is non-finite: no model output, Posterior = -Inf.
func OutOfSupport(params []float64, priorLogPDF float64) *Link {
	return &Link{
		Parameters:    params,
		ModelOutput:   nil,
		QoI:           math.NaN(),
		PriorLogPDF:   priorLogPDF,
		LogLikelihood: math.Inf(-1),
		Posterior:     math.Inf(-1),
	}
}

// WithLogLikelihood returns a copy of l carrying the given (corrected)
// log-likelihood and a recomputed posterior. The receiver is untouched;
// parameter and output slices are shared, never copied, because Links
// are read-only by contract.
func (l *Link) WithLogLikelihood(logLikelihood float64) *Link {
	c := *l
	c.LogLikelihood = logLikelihood
	c.Posterior = c.PriorLogPDF + logLikelihood
	if math.IsInf(c.PriorLogPDF, -1) || math.IsNaN(c.Posterior) {
		c.Posterior = math.Inf(-1)
	}

	return &c
}
