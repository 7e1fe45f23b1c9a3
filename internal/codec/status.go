package codec

import (
	"math/rand/v2"
	"strconv"
)

const (
	successModulus = 19
	failureModulus = 17
	minCode        = 1000
	maxCode        = 9999
)

type Status int

const (
	StatusUnknown Status = iota
	StatusSuccess
	StatusFailure
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusFailure:
		return "failure"
	default:
		return "unknown"
	}
}

var (
	successCodes = codeFamily(successModulus, failureModulus)
	failureCodes = codeFamily(failureModulus, successModulus)
)

// codeFamily lists the four-digit multiples of mod that are not multiples of
// exclude, so a decoder testing either modulus first classifies them the same way.
func codeFamily(mod, exclude int) []int {
	var out []int
	for n := (minCode + mod - 1) / mod * mod; n <= maxCode; n += mod {
		if n%exclude != 0 {
			out = append(out, n)
		}
	}
	return out
}

// SuccessCode returns a random member of the success family.
func SuccessCode() int {
	return successCodes[rand.IntN(len(successCodes))]
}

// FailureCode returns a random member of the failure family.
func FailureCode() int {
	return failureCodes[rand.IntN(len(failureCodes))]
}

// Classify maps a decrypted status code back to its family. Failure is
// checked first to stay compatible with deployed clients.
func Classify(code int) Status {
	switch {
	case code < minCode || code > maxCode:
		return StatusUnknown
	case code%failureModulus == 0:
		return StatusFailure
	case code%successModulus == 0:
		return StatusSuccess
	default:
		return StatusUnknown
	}
}

// ClassifyText parses a decrypted status field. Non-numeric text (the
// human-readable failure messages) is reported as a failure.
func ClassifyText(v string) Status {
	n, err := strconv.Atoi(v)
	if err != nil {
		if v == "" {
			return StatusUnknown
		}
		return StatusFailure
	}
	return Classify(n)
}
