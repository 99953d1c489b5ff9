package batteryaging

import (
	"fmt"
	"math"

	"github.com/maorshutman/lm"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat"
)

type TrendMethod string

const (
	TrendExp    TrendMethod = "exp"
	TrendLinear TrendMethod = "linear"
	TrendNone   TrendMethod = "none"
)

// ParseTrendMethod maps a configuration value onto a TrendMethod.
func ParseTrendMethod(s string) (TrendMethod, error) {
	switch TrendMethod(s) {
	case TrendExp, TrendLinear, TrendNone:
		return TrendMethod(s), nil
	case "":
		return TrendExp, nil
	}
	return "", fmt.Errorf("unknown trend method %q (want exp, linear or none)", s)
}

// Status values of a TrendResult.
const (
	OK    = "OK"
	ERROR = "ERROR"
)

// MinTrendPoints is the smallest series a trend is fitted to. The exponential
// model has three parameters.
const MinTrendPoints = 3

// TrendResult describes a fitted aging curve.
//
// For the linear model Params is [intercept, slope]. For the exponential
// model y = a + b*exp(c*age) Params is [a, b, c].
type TrendResult struct {
	Method   TrendMethod
	Solver   string
	Params   []float64
	Min      float64
	MinUnit  string
	RSquared float64
	Points   int
	Status   string
}

// Slope is the rate of change of the fitted curve at the last observed age.
func (r TrendResult) Slope(age float64) float64 {
	if r.Status != OK {
		return math.NaN()
	}
	switch r.Method {
	case TrendLinear:
		return r.Params[1]
	case TrendExp:
		return r.Params[1] * r.Params[2] * math.Exp(r.Params[2]*age)
	}
	return math.NaN()
}

type TrendFitter struct {
	Ages       []float64
	Observed   []float64
	InitValues []float64
	Method     TrendMethod
}

func NewTrendFitter(ages, observed []float64, method TrendMethod) *TrendFitter {
	return &TrendFitter{ages, observed, make([]float64, 0), method}
}

// FitTrend fits method to the (age, value) series.
func FitTrend(ages, observed []float64, method TrendMethod) TrendResult {
	return NewTrendFitter(ages, observed, method).Fit()
}

func (f *TrendFitter) Fit() TrendResult {
	if len(f.Ages) != len(f.Observed) {
		return errorResult(f.Method, len(f.Observed))
	}
	if len(f.Observed) < MinTrendPoints {
		logrus.Debugf("trend: %d points, need %d", len(f.Observed), MinTrendPoints)
		return errorResult(f.Method, len(f.Observed))
	}

	switch f.Method {
	case TrendLinear:
		return f.linearFit()
	case TrendExp:
		return f.expFit()
	}
	return errorResult(f.Method, len(f.Observed))
}

func (f *TrendFitter) linearFit() TrendResult {
	alpha, beta := stat.LinearRegression(f.Ages, f.Observed, nil, false)
	params := []float64{alpha, beta}
	return TrendResult{
		Method:   TrendLinear,
		Solver:   "ols",
		Params:   params,
		Min:      ChiSq(f.Observed, evaluate(TrendLinear, params, f.Ages)),
		MinUnit:  "ChiSq",
		RSquared: stat.RSquared(f.Ages, f.Observed, nil, alpha, beta),
		Points:   len(f.Observed),
		Status:   OK,
	}
}

// expFit works on data normalised to [-1, 1] so that one set of solver
// tolerances fits impedances and resistances alike.
func (f *TrendFitter) expFit() TrendResult {
	scaleCoef := maxAbs(f.Observed)
	if scaleCoef == 0 {
		scaleCoef = 1
	}
	scaled := make([]float64, len(f.Observed))
	for i, v := range f.Observed {
		scaled[i] = v / scaleCoef
	}

	init := f.InitValues
	if len(init) == 0 {
		init = f.findInitValues(scaled)
	}

	params, solver, ok := f.lmSolve(scaled, init)
	if !ok {
		logrus.Debugf("trend: LM failed, falling back to Nelder-Mead")
		params, solver, ok = f.nmSolve(scaled, init)
	}
	if !ok {
		return errorResult(TrendExp, len(f.Observed))
	}

	params[0] *= scaleCoef
	params[1] *= scaleCoef
	calculated := evaluate(TrendExp, params, f.Ages)
	return TrendResult{
		Method:  TrendExp,
		Solver:  solver,
		Params:  params,
		Min:     ChiSq(f.Observed, calculated),
		MinUnit: "ChiSq",
		Points:  len(f.Observed),
		Status:  OK,
	}
}

func (f *TrendFitter) lmSolve(observed, init []float64) (params []float64, solver string, ok bool) {
	fnc := func(dst, x []float64) {
		for i, age := range f.Ages {
			dst[i] = expModel(x, age) - observed[i]
		}
	}

	jac := lm.NumJac{Func: fnc}

	problem := lm.LMProblem{
		Dim:        len(init),
		Size:       len(observed),
		Func:       fnc,
		Jac:        jac.Jac,
		InitParams: append([]float64(nil), init...),
		Tau:        1e-6,
		Eps1:       1e-10,
		Eps2:       1e-10,
	}

	// Singular Jacobians make the LM implementation panic.
	defer func() {
		if r := recover(); r != nil {
			logrus.Debugf("trend: LM panicked: %v", r)
			params, solver, ok = nil, "", false
		}
	}()

	res, err := lm.LM(problem, &lm.Settings{Iterations: 10000, ObjectiveTol: 1e-16})
	if err != nil {
		logrus.Debugf("trend: LM failed: %v", err)
		return nil, "", false
	}
	if !finite(res.X) {
		return nil, "", false
	}
	return res.X, "lm", true
}

func (f *TrendFitter) nmSolve(observed, init []float64) ([]float64, string, bool) {
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			return ChiSq(observed, evaluate(TrendExp, x, f.Ages))
		},
	}

	settings := &optimize.Settings{
		FuncEvaluations: 20000,
	}

	res, err := optimize.Minimize(problem, init, settings, &optimize.NelderMead{})
	if err != nil {
		logrus.Debugf("trend: Nelder-Mead failed: %v", err)
		return nil, "", false
	}
	if !finite(res.X) {
		return nil, "", false
	}
	return res.X, "nelder-mead", true
}

// findInitValues matches the exponential model to the least-squares line at
// the first age: a+b equals the intercept and b*c equals the slope.
func (f *TrendFitter) findInitValues(observed []float64) []float64 {
	intercept, slope := stat.LinearRegression(f.Ages, observed, nil, false)
	lo, hi := minMax(f.Ages)
	span := hi - lo
	if span <= 0 {
		span = 1
	}
	c := 1 / span
	b := slope / c
	a := intercept - b
	return []float64{a, b, c}
}

// ChiSq is the mean squared residual between observed and calculated.
func ChiSq(observed, calculated []float64) float64 {
	if len(observed) != len(calculated) {
		panic("trend chiSq: slice length mismatch")
	}
	chiSq := 0.0
	for i, o := range observed {
		chiSq += math.Pow(o-calculated[i], 2)
	}
	return chiSq / float64(len(observed))
}

func expModel(params []float64, age float64) float64 {
	return params[0] + params[1]*math.Exp(params[2]*age)
}

func evaluate(method TrendMethod, params []float64, ages []float64) []float64 {
	res := make([]float64, len(ages))
	for i, age := range ages {
		switch method {
		case TrendLinear:
			res[i] = params[0] + params[1]*age
		case TrendExp:
			res[i] = expModel(params, age)
		}
	}
	return res
}

func errorResult(method TrendMethod, points int) TrendResult {
	return TrendResult{
		Method:  method,
		Params:  []float64{},
		Min:     math.Inf(1),
		MinUnit: "ChiSq",
		Points:  points,
		Status:  ERROR,
	}
}

func minMax(a []float64) (float64, float64) {
	if len(a) < 1 {
		return 0, 0
	}
	lo, hi := a[0], a[0]
	for _, v := range a[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

func maxAbs(a []float64) float64 {
	m := 0.0
	for _, v := range a {
		m = math.Max(m, math.Abs(v))
	}
	return m
}

func finite(x []float64) bool {
	for _, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
