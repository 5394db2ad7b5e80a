package solver

import (
	"math"

	"github.com/davidkleiven/gononlin/nonlin"
	"github.com/onosproject/onos-lib-go/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	// residual accepted on the loss equation, in dB
	tolerance = 1e-6
	maxIter   = 200
)

// CoverageRadius finds the distance in metres at which loss(d) equals
// budgetDB, typically transmit power minus receiver sensitivity. loss must
// increase with distance. The search runs on ln(d) so the iterate stays
// positive.
func CoverageRadius(loss func(float64) float64, budgetDB, guess float64) (float64, error) {
	if !(guess > 0) {
		return 0, errors.NewInvalid("initial distance guess must be positive, got %v", guess)
	}
	problem := nonlin.Problem{
		F: func(out, x []float64) {
			out[0] = loss(math.Exp(x[0])) - budgetDB
		},
	}
	solver := nonlin.NewtonKrylov{
		Maxiter:  maxIter,
		StepSize: 1e-3,
		Tol:      tolerance,
	}
	res := solver.Solve(problem, []float64{math.Log(guess)})

	radius := math.Exp(res.X[0])
	if math.IsNaN(res.F[0]) || math.Abs(res.F[0]) > 1e-3 || math.IsInf(radius, 0) {
		return 0, errors.NewNotFound("no coverage radius for a %.2f dB budget (residual %v)", budgetDB, res.F[0])
	}
	log.Debugf("coverage radius %.2f m for %.2f dB budget", radius, budgetDB)
	return radius, nil
}
