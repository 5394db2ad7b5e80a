package signal

import (
	"math"
	"strings"

	"github.com/nfvri/ris-simulator/pkg/model"
	"github.com/onosproject/onos-lib-go/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// SpeedOfLight in m/s
const SpeedOfLight = 3e8

// Path-loss model types accepted in a PathlossSpec
const (
	ReferenceType   = "reference"
	FreeSpaceType   = "free-space"
	FriisType       = "friis"
	LogDistanceType = "log-distance"
	UrbanType       = "uma"
	RuralType       = "rma"
)

const (
	defaultHeightBS = 25.0
	defaultHeightUT = 1.5
)

// GetPathLoss returns the path loss in dB at distance metres for a carrier
// of frequency Hz. src feeds the shadowing term of the log-distance model.
// Distance and frequency are not validated.
func GetPathLoss(distance float64, spec model.PathlossSpec, frequency float64, src rand.Source) (float64, error) {
	var pathLoss float64

	switch strings.ToLower(spec.Type) {
	case ReferenceType, FreeSpaceType:
		pathLoss = GetReferencePathLoss(distance, spec.Alpha, spec.P0)
	case FriisType:
		pathLoss = GetFriisPathLoss(distance, frequency)
	case LogDistanceType:
		pathLoss = GetLogDistancePathLoss(distance, frequency, spec.D0, spec.Alpha, spec.Sigma, src)
	case UrbanType:
		if spec.LOS {
			pathLoss = getUrbanLOSPathLoss(distance, frequency, spec)
		} else {
			pathLoss = getUrbanNLOSPathLoss(distance, frequency, spec)
		}
	case RuralType:
		if spec.LOS {
			pathLoss = getRuralLOSPathLoss(distance, frequency, spec)
		} else {
			pathLoss = getRuralNLOSPathLoss(distance, frequency, spec)
		}
	default:
		return 0, errors.NewNotSupported("pathloss model %q not implemented", spec.Type)
	}

	log.Debugf("pathloss %s d=%.2f f=%.3g: %.2f dB", spec.Type, distance, frequency, pathLoss)
	return pathLoss, nil
}

// GetReferencePathLoss is p0 + 10·alpha·log10(d), p0 being the loss at 1 m
func GetReferencePathLoss(distance, alpha, p0 float64) float64 {
	return p0 + 10*alpha*math.Log10(distance)
}

// GetFriisPathLoss is the free-space loss 20·log10(4πd/λ)
func GetFriisPathLoss(distance, frequency float64) float64 {
	lambda := SpeedOfLight / frequency
	return 20 * math.Log10(4*math.Pi*distance/lambda)
}

// GetLogDistancePathLoss adds a log-normal shadowing draw to the Friis loss
// at the reference distance d0
func GetLogDistancePathLoss(distance, frequency, d0, alpha, sigma float64, src rand.Source) float64 {
	shadowing := 0.0
	if sigma > 0 {
		shadowing = distuv.Normal{Mu: 0, Sigma: sigma, Src: src}.Rand()
	}
	return GetFriisPathLoss(d0, frequency) + 10*alpha*math.Log10(distance/d0) + shadowing
}

func heights(spec model.PathlossSpec) (float64, float64) {
	hBS, hUT := spec.HeightBS, spec.HeightUT
	if hBS == 0 {
		hBS = defaultHeightBS
	}
	if hUT == 0 {
		hUT = defaultHeightUT
	}
	return hBS, hUT
}

// ground distance from the 3D distance and the antenna heights
func get2dDistance(d3D, hBS, hUT float64) float64 {
	dh := hBS - hUT
	return math.Sqrt(math.Max(d3D*d3D-dh*dh, 0))
}

// Breakpoint distance function
func getBreakpointDistance(frequency, hBS, hUT float64) float64 {
	return 2 * math.Pi * hBS * hUT * frequency / SpeedOfLight
}

// Breakpoint distance function with effective heights
func getBreakpointPrimeDistance(frequency, hBS, hUT float64) float64 {
	hE := 1.0 // assuming environment height is 1m
	return 4 * (hBS - hE) * (hUT - hE) * frequency / SpeedOfLight
}

// getRuralLOSPathLoss calculates the RMa LOS path loss
func getRuralLOSPathLoss(d3D, frequency float64, spec model.PathlossSpec) float64 {
	hBS, hUT := heights(spec)
	d2D := get2dDistance(d3D, hBS, hUT)
	dBP := getBreakpointDistance(frequency, hBS, hUT)

	if d2D <= dBP {
		return rmaLOSPL1(frequency, d3D)
	}
	return rmaLOSPL1(frequency, dBP) + 40*math.Log10(d3D/dBP)
}

// calculates PL1 for RMa LOS path loss
func rmaLOSPL1(frequency, d float64) float64 {
	fc := frequency / 1e9 // frequency in GHz
	h := 5.0              // average building height in m

	return 20*math.Log10(40*math.Pi*d*fc/3) + math.Min(0.03*math.Pow(h, 1.72), 10)*math.Log10(d) -
		math.Min(0.044*math.Pow(h, 1.72), 14.77) + 0.002*math.Log10(h)*d
}

// getRuralNLOSPathLoss calculates the RMa NLOS path loss
func getRuralNLOSPathLoss(d3D, frequency float64, spec model.PathlossSpec) float64 {
	hBS, hUT := heights(spec)
	W := 20.0 // average street width 5m <= W <= 50m
	h := 5.0  // average building height 5m <= h <= 50m

	plLOS := getRuralLOSPathLoss(d3D, frequency, spec)
	plNLOS := 161.04 - 7.1*math.Log10(W) + 7.5*math.Log10(h) -
		(24.37-3.7*math.Pow(h/hBS, 2))*math.Log10(hBS) +
		(43.42-3.1*math.Log10(hBS))*(math.Log10(d3D)-3) +
		20*math.Log10(frequency/1e9) -
		(math.Pow(3.2*math.Log10(11.75*hUT), 2) - 4.97)

	return math.Max(plLOS, plNLOS)
}

// getUrbanLOSPathLoss calculates the UMa LOS path loss
func getUrbanLOSPathLoss(d3D, frequency float64, spec model.PathlossSpec) float64 {
	hBS, hUT := heights(spec)
	d2D := get2dDistance(d3D, hBS, hUT)
	dBP := getBreakpointPrimeDistance(frequency, hBS, hUT)
	fc := frequency / 1e9

	log.Debugf("dBP:%v d2D:%v", dBP, d2D)
	if d2D <= dBP {
		return 28.0 + 22*math.Log10(d3D) + 20*math.Log10(fc)
	}
	return 28.0 + 40*math.Log10(d3D) + 20*math.Log10(fc) - 9*math.Log10(dBP*dBP+(hBS-hUT)*(hBS-hUT))
}

// getUrbanNLOSPathLoss calculates the UMa NLOS path loss
func getUrbanNLOSPathLoss(d3D, frequency float64, spec model.PathlossSpec) float64 {
	_, hUT := heights(spec)
	fc := frequency / 1e9

	plLOS := getUrbanLOSPathLoss(d3D, frequency, spec)
	plNLOS := 13.54 + 39.08*math.Log10(d3D) + 20*math.Log10(fc) - 0.6*(hUT-1.5)

	log.Debugf("plLOS:%v plNLOS:%v", plLOS, plNLOS)
	return math.Max(plLOS, plNLOS)
}
