package lang

import (
	"log/slog"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Eval parses and evaluates a single expression (the text between ${ and })
// against the given bindings.
func Eval(src string, env Env) (any, error) {
	n, err := parse(src)
	if err != nil {
		return nil, err
	}

	return evalNode(n, env)
}

// evalNode evaluates an AST node.
func evalNode(n node, env Env) (any, error) {
	switch x := n.(type) {
	case *litNode:
		return x.val, nil

	case *identNode:
		v, ok := env.Lookup(x.name)
		if !ok {
			return nil, ErrUndefinedName.With(env.suggestAttrs(x.name)...)
		}

		return v, nil

	case *unaryNode:
		return evalNegate(x, env)

	case *binaryNode:
		return evalBinary(x, env)

	case *indexNode:
		return evalIndex(x, env)

	case *sliceNode:
		return evalSlice(x, env)

	case *callNode:
		return evalCall(x, env)

	case *methodNode:
		return evalMethod(x, env)

	default:
		return nil, ErrDisallowed.With(slog.String("detail", "unknown construct"))
	}
}

func evalNegate(n *unaryNode, env Env) (any, error) {
	v, err := evalNode(n.x, env)
	if err != nil {
		return nil, err
	}

	if i, ok := toInt64(v); ok {
		return -i, nil
	}

	if f, ok := toFloat64(v); ok {
		return -f, nil
	}

	return nil, ErrEvaluate.With(
		slog.String("detail", "unary minus on non-numeric value"),
		slog.String("type", typeName(v)),
	)
}

func evalBinary(n *binaryNode, env Env) (any, error) {
	x, err := evalNode(n.x, env)
	if err != nil {
		return nil, err
	}

	y, err := evalNode(n.y, env)
	if err != nil {
		return nil, err
	}

	// String concatenation and repetition.
	if sx, ok := x.(string); ok {
		switch n.op {
		case "+":
			sy, ok := y.(string)
			if !ok {
				return nil, typeError(n.op, x, y)
			}

			return sx + sy, nil

		case "*":
			count, ok := toInt64(y)
			if !ok {
				return nil, typeError(n.op, x, y)
			}

			return repeatString(sx, count), nil
		}

		return nil, typeError(n.op, x, y)
	}

	if sy, ok := y.(string); ok {
		if n.op == "*" {
			count, ok := toInt64(x)
			if !ok {
				return nil, typeError(n.op, x, y)
			}

			return repeatString(sy, count), nil
		}

		return nil, typeError(n.op, x, y)
	}

	fx, okx := toFloat64(x)

	fy, oky := toFloat64(y)
	if !okx || !oky {
		return nil, typeError(n.op, x, y)
	}

	// Integer arithmetic stays integral except for true division.
	ix, isIntX := toInt64(x)
	iy, isIntY := toInt64(y)
	bothInt := isIntX && isIntY && !isFloat(x) && !isFloat(y)

	switch n.op {
	case "+":
		if bothInt {
			return ix + iy, nil
		}

		return fx + fy, nil

	case "-":
		if bothInt {
			return ix - iy, nil
		}

		return fx - fy, nil

	case "*":
		if bothInt {
			return ix * iy, nil
		}

		return fx * fy, nil

	case "/":
		if fy == 0 {
			return nil, ErrEvaluate.With(slog.String("detail", "division by zero"))
		}

		return fx / fy, nil

	case "**":
		if bothInt && iy >= 0 {
			return intPow(ix, iy), nil
		}

		return math.Pow(fx, fy), nil
	}

	return nil, ErrDisallowed.With(slog.String("operator", n.op))
}

func typeError(op string, x, y any) error {
	return ErrEvaluate.With(
		slog.String("detail", "unsupported operand types"),
		slog.String("operator", op),
		slog.String("left", typeName(x)),
		slog.String("right", typeName(y)),
	)
}

func repeatString(s string, count int64) string {
	if count <= 0 {
		return ""
	}

	return strings.Repeat(s, int(count))
}

func evalIndex(n *indexNode, env Env) (any, error) {
	recv, err := evalNode(n.x, env)
	if err != nil {
		return nil, err
	}

	s, ok := recv.(string)
	if !ok {
		return nil, ErrEvaluate.With(
			slog.String("detail", "indexing requires a string"),
			slog.String("type", typeName(recv)),
		)
	}

	iv, err := evalNode(n.idx, env)
	if err != nil {
		return nil, err
	}

	i, ok := toInt64(iv)
	if !ok {
		return nil, ErrEvaluate.With(
			slog.String("detail", "index must be an integer"),
			slog.String("type", typeName(iv)),
		)
	}

	runes := []rune(s)

	if i < 0 {
		i += int64(len(runes))
	}

	if i < 0 || i >= int64(len(runes)) {
		return nil, ErrEvaluate.With(
			slog.String("detail", "string index out of range"),
			slog.Int64("index", i),
			slog.Int("length", len(runes)),
		)
	}

	return string(runes[i]), nil
}

func evalSlice(n *sliceNode, env Env) (any, error) {
	recv, err := evalNode(n.x, env)
	if err != nil {
		return nil, err
	}

	s, ok := recv.(string)
	if !ok {
		return nil, ErrEvaluate.With(
			slog.String("detail", "slicing requires a string"),
			slog.String("type", typeName(recv)),
		)
	}

	runes := []rune(s)
	length := int64(len(runes))

	bound := func(b node, fallback int64) (int64, error) {
		if b == nil {
			return fallback, nil
		}

		bv, err := evalNode(b, env)
		if err != nil {
			return 0, err
		}

		i, ok := toInt64(bv)
		if !ok {
			return 0, ErrEvaluate.With(
				slog.String("detail", "slice bound must be an integer"),
				slog.String("type", typeName(bv)),
			)
		}

		if i < 0 {
			i += length
		}

		return min(max(i, 0), length), nil
	}

	lo, err := bound(n.lo, 0)
	if err != nil {
		return nil, err
	}

	hi, err := bound(n.hi, length)
	if err != nil {
		return nil, err
	}

	if lo > hi {
		return "", nil
	}

	return string(runes[lo:hi]), nil
}

// evalCall dispatches on the function allow-list.
func evalCall(n *callNode, env Env) (any, error) {
	fn, ok := functions[n.fn]
	if !ok {
		return nil, ErrDisallowed.With(
			slog.String("function", n.fn),
			slog.String("detail", "function is not in the allow-list"),
		)
	}

	args, err := evalArgs(n.args, env)
	if err != nil {
		return nil, err
	}

	return fn(args)
}

// evalMethod dispatches on the string-method allow-list.
func evalMethod(n *methodNode, env Env) (any, error) {
	m, ok := methods[n.name]
	if !ok {
		return nil, ErrDisallowed.With(
			slog.String("method", n.name),
			slog.String("detail", "method is not in the allow-list"),
		)
	}

	recv, err := evalNode(n.recv, env)
	if err != nil {
		return nil, err
	}

	s, ok := recv.(string)
	if !ok {
		return nil, ErrEvaluate.With(
			slog.String("method", n.name),
			slog.String("detail", "string method called on non-string value"),
			slog.String("type", typeName(recv)),
		)
	}

	args, err := evalArgs(n.args, env)
	if err != nil {
		return nil, err
	}

	return m(s, args)
}

func evalArgs(nodes []node, env Env) ([]any, error) {
	args := make([]any, len(nodes))

	for i, n := range nodes {
		v, err := evalNode(n, env)
		if err != nil {
			return nil, err
		}

		args[i] = v
	}

	return args, nil
}

// arity returns an evaluation error for a bad argument count.
func arity(name string, want string, got int) error {
	return ErrEvaluate.With(
		slog.String("function", name),
		slog.String("detail", "wrong number of arguments"),
		slog.String("expected", want),
		slog.Int("got", got),
	)
}

// functions is the allow-list of callable conversion functions.
//
//nolint:gochecknoglobals
var functions = map[string]func(args []any) (any, error){
	"str":   fnStr,
	"int":   fnInt,
	"float": fnFloat,
	"len":   fnLen,
	"abs":   fnAbs,
	"round": fnRound,
}

func fnStr(args []any) (any, error) {
	if len(args) != 1 {
		return nil, arity("str", "1", len(args))
	}

	return Normalize(args[0]), nil
}

func fnInt(args []any) (any, error) {
	if len(args) != 1 {
		return nil, arity("int", "1", len(args))
	}

	switch x := args[0].(type) {
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		if err != nil {
			return nil, ErrEvaluate.With(
				slog.String("function", "int"),
				slog.String("detail", "cannot convert string to int"),
				slog.String("value", x),
			)
		}

		return i, nil

	case bool:
		if x {
			return int64(1), nil
		}

		return int64(0), nil

	case float32:
		return int64(math.Trunc(float64(x))), nil

	case float64:
		return int64(math.Trunc(x)), nil

	default:
		if i, ok := toInt64(x); ok {
			return i, nil
		}

		return nil, ErrEvaluate.With(
			slog.String("function", "int"),
			slog.String("detail", "cannot convert value to int"),
			slog.String("type", typeName(x)),
		)
	}
}

func fnFloat(args []any) (any, error) {
	if len(args) != 1 {
		return nil, arity("float", "1", len(args))
	}

	switch x := args[0].(type) {
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return nil, ErrEvaluate.With(
				slog.String("function", "float"),
				slog.String("detail", "cannot convert string to float"),
				slog.String("value", x),
			)
		}

		return f, nil

	default:
		if f, ok := toFloat64(x); ok {
			return f, nil
		}

		return nil, ErrEvaluate.With(
			slog.String("function", "float"),
			slog.String("detail", "cannot convert value to float"),
			slog.String("type", typeName(x)),
		)
	}
}

func fnLen(args []any) (any, error) {
	if len(args) != 1 {
		return nil, arity("len", "1", len(args))
	}

	s, ok := args[0].(string)
	if !ok {
		return nil, ErrEvaluate.With(
			slog.String("function", "len"),
			slog.String("detail", "len requires a string"),
			slog.String("type", typeName(args[0])),
		)
	}

	return int64(len([]rune(s))), nil
}

func fnAbs(args []any) (any, error) {
	if len(args) != 1 {
		return nil, arity("abs", "1", len(args))
	}

	if i, ok := toInt64(args[0]); ok && !isFloat(args[0]) {
		if i < 0 {
			return -i, nil
		}

		return i, nil
	}

	if f, ok := toFloat64(args[0]); ok {
		return math.Abs(f), nil
	}

	return nil, ErrEvaluate.With(
		slog.String("function", "abs"),
		slog.String("detail", "abs requires a number"),
		slog.String("type", typeName(args[0])),
	)
}

func fnRound(args []any) (any, error) {
	if len(args) < 1 || len(args) > 2 {
		return nil, arity("round", "1 or 2", len(args))
	}

	f, ok := toFloat64(args[0])
	if !ok {
		return nil, ErrEvaluate.With(
			slog.String("function", "round"),
			slog.String("detail", "round requires a number"),
			slog.String("type", typeName(args[0])),
		)
	}

	if len(args) == 1 {
		return int64(math.Round(f)), nil
	}

	digits, ok := toInt64(args[1])
	if !ok {
		return nil, ErrEvaluate.With(
			slog.String("function", "round"),
			slog.String("detail", "digit count must be an integer"),
			slog.String("type", typeName(args[1])),
		)
	}

	scale := math.Pow(10, float64(digits))

	return math.Round(f*scale) / scale, nil
}

// methods is the allow-list of string methods.
//
//nolint:gochecknoglobals
var methods = map[string]func(recv string, args []any) (any, error){
	"upper":      mUpper,
	"lower":      mLower,
	"title":      mTitle,
	"capitalize": mCapitalize,
	"strip":      mStrip,
	"lstrip":     mLStrip,
	"rstrip":     mRStrip,
	"zfill":      mZfill,
	"ljust":      mLJust,
	"rjust":      mRJust,
}

func mUpper(recv string, args []any) (any, error) {
	if len(args) != 0 {
		return nil, arity("upper", "0", len(args))
	}

	return strings.ToUpper(recv), nil
}

func mLower(recv string, args []any) (any, error) {
	if len(args) != 0 {
		return nil, arity("lower", "0", len(args))
	}

	return strings.ToLower(recv), nil
}

// mTitle upper-cases the first letter of every alphabetic run and
// lower-cases the rest.
func mTitle(recv string, args []any) (any, error) {
	if len(args) != 0 {
		return nil, arity("title", "0", len(args))
	}

	var sb strings.Builder

	prevLetter := false

	for _, r := range recv {
		isLetter := unicode.IsLetter(r)

		switch {
		case isLetter && !prevLetter:
			sb.WriteRune(unicode.ToUpper(r))
		case isLetter:
			sb.WriteRune(unicode.ToLower(r))
		default:
			sb.WriteRune(r)
		}

		prevLetter = isLetter
	}

	return sb.String(), nil
}

func mCapitalize(recv string, args []any) (any, error) {
	if len(args) != 0 {
		return nil, arity("capitalize", "0", len(args))
	}

	if recv == "" {
		return "", nil
	}

	runes := []rune(strings.ToLower(recv))
	runes[0] = unicode.ToUpper(runes[0])

	return string(runes), nil
}

// stripArgs resolves the optional cutset argument shared by the strip
// family. A missing argument means trim whitespace.
func stripArgs(name string, args []any) (string, bool, error) {
	switch len(args) {
	case 0:
		return "", false, nil
	case 1:
		cutset, ok := args[0].(string)
		if !ok {
			return "", false, ErrEvaluate.With(
				slog.String("function", name),
				slog.String("detail", "cutset must be a string"),
				slog.String("type", typeName(args[0])),
			)
		}

		return cutset, true, nil
	default:
		return "", false, arity(name, "0 or 1", len(args))
	}
}

func mStrip(recv string, args []any) (any, error) {
	cutset, have, err := stripArgs("strip", args)
	if err != nil {
		return nil, err
	}

	if have {
		return strings.Trim(recv, cutset), nil
	}

	return strings.TrimSpace(recv), nil
}

func mLStrip(recv string, args []any) (any, error) {
	cutset, have, err := stripArgs("lstrip", args)
	if err != nil {
		return nil, err
	}

	if have {
		return strings.TrimLeft(recv, cutset), nil
	}

	return strings.TrimLeft(recv, " \t\n\r"), nil
}

func mRStrip(recv string, args []any) (any, error) {
	cutset, have, err := stripArgs("rstrip", args)
	if err != nil {
		return nil, err
	}

	if have {
		return strings.TrimRight(recv, cutset), nil
	}

	return strings.TrimRight(recv, " \t\n\r"), nil
}

// mZfill pads with leading zeros to the requested width, keeping a sign
// prefix in front of the padding.
func mZfill(recv string, args []any) (any, error) {
	if len(args) != 1 {
		return nil, arity("zfill", "1", len(args))
	}

	width, ok := toInt64(args[0])
	if !ok {
		return nil, ErrEvaluate.With(
			slog.String("function", "zfill"),
			slog.String("detail", "width must be an integer"),
			slog.String("type", typeName(args[0])),
		)
	}

	runes := []rune(recv)
	if int64(len(runes)) >= width {
		return recv, nil
	}

	sign := ""
	body := recv

	if strings.HasPrefix(recv, "+") || strings.HasPrefix(recv, "-") {
		sign, body = recv[:1], recv[1:]
	}

	pad := strings.Repeat("0", int(width)-len(runes))

	return sign + pad + body, nil
}

// justArgs resolves the width and optional single-character fill shared
// by ljust/rjust.
func justArgs(name string, args []any) (int64, string, error) {
	if len(args) < 1 || len(args) > 2 {
		return 0, "", arity(name, "1 or 2", len(args))
	}

	width, ok := toInt64(args[0])
	if !ok {
		return 0, "", ErrEvaluate.With(
			slog.String("function", name),
			slog.String("detail", "width must be an integer"),
			slog.String("type", typeName(args[0])),
		)
	}

	fill := " "

	if len(args) == 2 {
		s, ok := args[1].(string)
		if !ok || len([]rune(s)) != 1 {
			return 0, "", ErrEvaluate.With(
				slog.String("function", name),
				slog.String("detail", "fill must be a single character"),
			)
		}

		fill = s
	}

	return width, fill, nil
}

func mLJust(recv string, args []any) (any, error) {
	width, fill, err := justArgs("ljust", args)
	if err != nil {
		return nil, err
	}

	n := int(width) - len([]rune(recv))
	if n <= 0 {
		return recv, nil
	}

	return recv + strings.Repeat(fill, n), nil
}

func mRJust(recv string, args []any) (any, error) {
	width, fill, err := justArgs("rjust", args)
	if err != nil {
		return nil, err
	}

	n := int(width) - len([]rune(recv))
	if n <= 0 {
		return recv, nil
	}

	return strings.Repeat(fill, n) + recv, nil
}
