package ir

import "fmt"

// Op identifies the operator of a Node.
type Op uint16

// Class groups operators by how the transformer and evaluator treat them.
type Class uint8

// Operator classes.
const (
	// Leaf operators read from the evaluation environment.
	Leaf Class = iota
	// Structural operators shape control flow (select, cond, each).
	Structural
	// Predicate operators evaluate to 1 or 0.
	Predicate
	// Arith operators compute numbers.
	Arith
)

// Variadic is the arity of operators that fold over any number of operands.
const Variadic = -1

// Leaves.
const (
	OpInvalid Op = iota
	OpConst
	OpArg
	OpTangent
	OpCotangent
	OpRef
	OpPrimal
	OpArgs
	OpTangents
	OpSlotArg
	OpSlotTangent
	OpOthers

	// Structural.
	OpSelect
	OpCond
	OpEach

	// Predicates.
	OpIsZero
	OpIsOne
	OpIsInteger
	OpIsNoTangent
	OpNot
	OpAnd
	OpOr
	OpEq
	OpLt
	OpGt
	OpLe
	OpGe

	// Arithmetic.
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpNeg
	OpInv
	OpPow
	OpSqrt
	OpCbrt
	OpMuladd
	OpFma
	OpAbs
	OpAbs2
	OpConj
	OpReal
	OpImag
	OpCmplx
	OpAngle
	OpSign
	OpHypot
	OpMax
	OpMin
	OpFloor
	OpMod
	OpRem2Pi
	OpDeg2Rad
	OpRad2Deg

	// Transcendental.
	OpSin
	OpCos
	OpSinCos
	OpTan
	OpAsin
	OpAcos
	OpAtan
	OpAtan2
	OpSinh
	OpCosh
	OpTanh
	OpExp
	OpExp2
	OpExp10
	OpExpm1
	OpLog
	OpLog2
	OpLog10
	OpLog1p

	// Relaxed-arithmetic counterparts.
	OpEqFast
	OpLtFast
	OpGtFast
	OpLeFast
	OpGeFast
	OpAddFast
	OpSubFast
	OpMulFast
	OpDivFast
	OpNegFast
	OpInvFast
	OpPowFast
	OpSqrtFast
	OpCbrtFast
	OpAbsFast
	OpAbs2Fast
	OpConjFast
	OpAngleFast
	OpSignFast
	OpHypotFast
	OpMaxFast
	OpMinFast
	OpModFast
	OpSinFast
	OpCosFast
	OpSinCosFast
	OpTanFast
	OpAsinFast
	OpAcosFast
	OpAtanFast
	OpAtan2Fast
	OpSinhFast
	OpCoshFast
	OpTanhFast
	OpExpFast
	OpExp2Fast
	OpExp10Fast
	OpExpm1Fast
	OpLogFast
	OpLog2Fast
	OpLog10Fast
	OpLog1pFast

	numOps
)

type opInfo struct {
	name  string // rendered name
	fn    string // catalogue function symbol, when the op is a callable function
	arity int
	class Class
	fast  bool
}

var opTable = [numOps]opInfo{
	OpInvalid: {name: "invalid"},

	OpConst:       {name: "const", class: Leaf},
	OpArg:         {name: "arg", class: Leaf},
	OpTangent:     {name: "dt", class: Leaf},
	OpCotangent:   {name: "ct", class: Leaf},
	OpRef:         {name: "ref", class: Leaf},
	OpPrimal:      {name: "Ω", class: Leaf},
	OpArgs:        {name: "args", class: Leaf},
	OpTangents:    {name: "dts", class: Leaf},
	OpSlotArg:     {name: "arg[k]", class: Leaf},
	OpSlotTangent: {name: "dt[k]", class: Leaf},
	OpOthers:      {name: "others", class: Leaf},

	OpSelect: {name: "ifelse", arity: 3, class: Structural},
	OpCond:   {name: "if", arity: 3, class: Structural},
	OpEach:   {name: "each", arity: 1, class: Structural},

	OpIsZero:      {name: "iszero", arity: 1, class: Predicate},
	OpIsOne:       {name: "isone", arity: 1, class: Predicate},
	OpIsInteger:   {name: "isinteger", arity: 1, class: Predicate},
	OpIsNoTangent: {name: "isnotangent", arity: 1, class: Predicate},
	OpNot:         {name: "!", arity: 1, class: Predicate},
	OpAnd:         {name: "&", arity: Variadic, class: Predicate},
	OpOr:          {name: "|", arity: Variadic, class: Predicate},
	OpEq:          {name: "==", arity: 2, class: Predicate},
	OpLt:          {name: "<", arity: 2, class: Predicate},
	OpGt:          {name: ">", arity: 2, class: Predicate},
	OpLe:          {name: "<=", arity: 2, class: Predicate},
	OpGe:          {name: ">=", arity: 2, class: Predicate},

	OpAdd:     {name: "+", fn: "+", arity: Variadic, class: Arith},
	OpSub:     {name: "-", fn: "-", arity: 2, class: Arith},
	OpMul:     {name: "*", fn: "*", arity: Variadic, class: Arith},
	OpDiv:     {name: "/", fn: "/", arity: 2, class: Arith},
	OpNeg:     {name: "neg", fn: "neg", arity: 1, class: Arith},
	OpInv:     {name: "inv", fn: "inv", arity: 1, class: Arith},
	OpPow:     {name: "^", fn: "^", arity: 2, class: Arith},
	OpSqrt:    {name: "sqrt", fn: "sqrt", arity: 1, class: Arith},
	OpCbrt:    {name: "cbrt", fn: "cbrt", arity: 1, class: Arith},
	OpMuladd:  {name: "muladd", fn: "muladd", arity: 3, class: Arith},
	OpFma:     {name: "fma", fn: "fma", arity: 3, class: Arith},
	OpAbs:     {name: "abs", fn: "abs", arity: 1, class: Arith},
	OpAbs2:    {name: "abs2", fn: "abs2", arity: 1, class: Arith},
	OpConj:    {name: "conj", fn: "conj", arity: 1, class: Arith},
	OpReal:    {name: "real", fn: "real", arity: 1, class: Arith},
	OpImag:    {name: "imag", fn: "imag", arity: 1, class: Arith},
	OpCmplx:   {name: "complex", arity: 2, class: Arith},
	OpAngle:   {name: "angle", fn: "angle", arity: 1, class: Arith},
	OpSign:    {name: "sign", fn: "sign", arity: 1, class: Arith},
	OpHypot:   {name: "hypot", fn: "hypot", arity: Variadic, class: Arith},
	OpMax:     {name: "max", fn: "max", arity: 2, class: Arith},
	OpMin:     {name: "min", fn: "min", arity: 2, class: Arith},
	OpFloor:   {name: "floor", arity: 1, class: Arith},
	OpMod:     {name: "mod", fn: "mod", arity: 2, class: Arith},
	OpRem2Pi:  {name: "rem2pi", fn: "rem2pi", arity: 2, class: Arith},
	OpDeg2Rad: {name: "deg2rad", fn: "deg2rad", arity: 1, class: Arith},
	OpRad2Deg: {name: "rad2deg", fn: "rad2deg", arity: 1, class: Arith},

	OpSin:    {name: "sin", fn: "sin", arity: 1, class: Arith},
	OpCos:    {name: "cos", fn: "cos", arity: 1, class: Arith},
	OpSinCos: {name: "sincos", arity: 1, class: Arith},
	OpTan:    {name: "tan", fn: "tan", arity: 1, class: Arith},
	OpAsin:   {name: "asin", fn: "asin", arity: 1, class: Arith},
	OpAcos:   {name: "acos", fn: "acos", arity: 1, class: Arith},
	OpAtan:   {name: "atan", fn: "atan", arity: 1, class: Arith},
	OpAtan2:  {name: "atan2", fn: "atan", arity: 2, class: Arith},
	OpSinh:   {name: "sinh", fn: "sinh", arity: 1, class: Arith},
	OpCosh:   {name: "cosh", fn: "cosh", arity: 1, class: Arith},
	OpTanh:   {name: "tanh", fn: "tanh", arity: 1, class: Arith},
	OpExp:    {name: "exp", fn: "exp", arity: 1, class: Arith},
	OpExp2:   {name: "exp2", fn: "exp2", arity: 1, class: Arith},
	OpExp10:  {name: "exp10", fn: "exp10", arity: 1, class: Arith},
	OpExpm1:  {name: "expm1", fn: "expm1", arity: 1, class: Arith},
	OpLog:    {name: "log", fn: "log", arity: 1, class: Arith},
	OpLog2:   {name: "log2", fn: "log2", arity: 1, class: Arith},
	OpLog10:  {name: "log10", fn: "log10", arity: 1, class: Arith},
	OpLog1p:  {name: "log1p", fn: "log1p", arity: 1, class: Arith},

	OpEqFast: {name: "eq_fast", arity: 2, class: Predicate, fast: true},
	OpLtFast: {name: "lt_fast", arity: 2, class: Predicate, fast: true},
	OpGtFast: {name: "gt_fast", arity: 2, class: Predicate, fast: true},
	OpLeFast: {name: "le_fast", arity: 2, class: Predicate, fast: true},
	OpGeFast: {name: "ge_fast", arity: 2, class: Predicate, fast: true},

	OpAddFast:    {name: "add_fast", fn: "+", arity: Variadic, class: Arith, fast: true},
	OpSubFast:    {name: "sub_fast", fn: "-", arity: 2, class: Arith, fast: true},
	OpMulFast:    {name: "mul_fast", fn: "*", arity: Variadic, class: Arith, fast: true},
	OpDivFast:    {name: "div_fast", fn: "/", arity: 2, class: Arith, fast: true},
	OpNegFast:    {name: "neg_fast", fn: "neg", arity: 1, class: Arith, fast: true},
	OpInvFast:    {name: "inv_fast", fn: "inv", arity: 1, class: Arith, fast: true},
	OpPowFast:    {name: "pow_fast", fn: "^", arity: 2, class: Arith, fast: true},
	OpSqrtFast:   {name: "sqrt_fast", fn: "sqrt", arity: 1, class: Arith, fast: true},
	OpCbrtFast:   {name: "cbrt_fast", fn: "cbrt", arity: 1, class: Arith, fast: true},
	OpAbsFast:    {name: "abs_fast", fn: "abs", arity: 1, class: Arith, fast: true},
	OpAbs2Fast:   {name: "abs2_fast", fn: "abs2", arity: 1, class: Arith, fast: true},
	OpConjFast:   {name: "conj_fast", fn: "conj", arity: 1, class: Arith, fast: true},
	OpAngleFast:  {name: "angle_fast", fn: "angle", arity: 1, class: Arith, fast: true},
	OpSignFast:   {name: "sign_fast", fn: "sign", arity: 1, class: Arith, fast: true},
	OpHypotFast:  {name: "hypot_fast", fn: "hypot", arity: Variadic, class: Arith, fast: true},
	OpMaxFast:    {name: "max_fast", fn: "max", arity: 2, class: Arith, fast: true},
	OpMinFast:    {name: "min_fast", fn: "min", arity: 2, class: Arith, fast: true},
	OpModFast:    {name: "mod_fast", fn: "mod", arity: 2, class: Arith, fast: true},
	OpSinFast:    {name: "sin_fast", fn: "sin", arity: 1, class: Arith, fast: true},
	OpCosFast:    {name: "cos_fast", fn: "cos", arity: 1, class: Arith, fast: true},
	OpSinCosFast: {name: "sincos_fast", arity: 1, class: Arith, fast: true},
	OpTanFast:    {name: "tan_fast", fn: "tan", arity: 1, class: Arith, fast: true},
	OpAsinFast:   {name: "asin_fast", fn: "asin", arity: 1, class: Arith, fast: true},
	OpAcosFast:   {name: "acos_fast", fn: "acos", arity: 1, class: Arith, fast: true},
	OpAtanFast:   {name: "atan_fast", fn: "atan", arity: 1, class: Arith, fast: true},
	OpAtan2Fast:  {name: "atan2_fast", fn: "atan", arity: 2, class: Arith, fast: true},
	OpSinhFast:   {name: "sinh_fast", fn: "sinh", arity: 1, class: Arith, fast: true},
	OpCoshFast:   {name: "cosh_fast", fn: "cosh", arity: 1, class: Arith, fast: true},
	OpTanhFast:   {name: "tanh_fast", fn: "tanh", arity: 1, class: Arith, fast: true},
	OpExpFast:    {name: "exp_fast", fn: "exp", arity: 1, class: Arith, fast: true},
	OpExp2Fast:   {name: "exp2_fast", fn: "exp2", arity: 1, class: Arith, fast: true},
	OpExp10Fast:  {name: "exp10_fast", fn: "exp10", arity: 1, class: Arith, fast: true},
	OpExpm1Fast:  {name: "expm1_fast", fn: "expm1", arity: 1, class: Arith, fast: true},
	OpLogFast:    {name: "log_fast", fn: "log", arity: 1, class: Arith, fast: true},
	OpLog2Fast:   {name: "log2_fast", fn: "log2", arity: 1, class: Arith, fast: true},
	OpLog10Fast:  {name: "log10_fast", fn: "log10", arity: 1, class: Arith, fast: true},
	OpLog1pFast:  {name: "log1p_fast", fn: "log1p", arity: 1, class: Arith, fast: true},
}

// String returns the rendered operator name.
func (op Op) String() string {
	if op < numOps && opTable[op].name != "" {
		return opTable[op].name
	}
	return fmt.Sprintf("Op(%d)", uint16(op))
}

// Valid reports whether op is a known operator.
func (op Op) Valid() bool {
	return op > OpInvalid && op < numOps
}

// Arity returns the number of operands op takes, or Variadic.
func (op Op) Arity() int {
	if !op.Valid() {
		return 0
	}
	return opTable[op].arity
}

// Class returns the operator class.
func (op Op) Class() Class {
	if !op.Valid() {
		return Leaf
	}
	return opTable[op].class
}

// Fast reports whether op is a relaxed-arithmetic counterpart.
func (op Op) Fast() bool {
	return op.Valid() && opTable[op].fast
}

// Func returns the catalogue function symbol that op computes, or "" when
// op has no catalogue entry of its own. An op and its relaxed counterpart
// share the same symbol.
func (op Op) Func() string {
	if !op.Valid() {
		return ""
	}
	return opTable[op].fn
}

// Ops returns every valid operator in declaration order.
func Ops() []Op {
	out := make([]Op, 0, numOps-1)
	for op := OpInvalid + 1; op < numOps; op++ {
		out = append(out, op)
	}
	return out
}
