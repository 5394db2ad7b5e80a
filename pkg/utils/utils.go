// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0
//

package utils

import (
	"math"
	"os"
)

// RoundToDecimal rounds value to the given number of decimals
func RoundToDecimal(value float64, decimals int) float64 {
	intValue := value * math.Pow10(decimals)
	return math.Round(intValue) / math.Pow10(decimals)
}

func GetEnv(key string, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func If[T any](cond bool, vtrue, vfalse T) T {
	if cond {
		return vtrue
	}
	return vfalse
}

// DbToPow converts decibels to a linear power ratio
func DbToPow(db float64) float64 {
	return math.Pow(10, db/10)
}

// PowToDb converts a linear power ratio to decibels
func PowToDb(pow float64) float64 {
	return 10 * math.Log10(pow)
}

// DbmToPow converts dBm to Watts
func DbmToPow(dbm float64) float64 {
	return math.Pow(10, (dbm-30)/10)
}

// PowToDbm converts Watts to dBm
func PowToDbm(pow float64) float64 {
	return 10 * math.Log10(pow*1000)
}

func MwToDbm(mw float64) float64 {
	return 10 * math.Log10(mw)
}

func DbmToMw(dbm float64) float64 {
	return math.Pow(10, dbm/10)
}

// WrapTo2Pi wraps an angle in radians into [0, 2π)
func WrapTo2Pi(theta float64) float64 {
	wrapped := math.Mod(theta, 2*math.Pi)
	if wrapped < 0 {
		wrapped += 2 * math.Pi
	}
	if wrapped >= 2*math.Pi {
		wrapped = 0
	}
	return wrapped
}

// QFunc is the tail probability of the standard normal distribution
func QFunc(x float64) float64 {
	return 0.5 * math.Erfc(x/math.Sqrt2)
}

// InverseQFunc returns x such that QFunc(x) = p
func InverseQFunc(p float64) float64 {
	return math.Sqrt2 * math.Erfcinv(2*p)
}
