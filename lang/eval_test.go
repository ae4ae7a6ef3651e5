package lang

import (
	"errors"
	"testing"
)

// TestEval_Arithmetic verifies operator semantics over the environment.
func TestEval_Arithmetic(t *testing.T) {
	env := Env{"item": "3", "n": int64(4), "f": 2.5, "s": "ab"}

	tests := []struct {
		name string
		src  string
		want any
	}{
		{name: "int literal", src: "7", want: int64(7)},
		{name: "addition", src: "1+2", want: int64(3)},
		{name: "subtraction", src: "10 - 4", want: int64(6)},
		{name: "multiplication", src: "int(item)*2", want: int64(6)},
		{name: "true division", src: "3/2", want: 1.5},
		{name: "division stays float", src: "4/2", want: 2.0},
		{name: "power int", src: "2**10", want: int64(1024)},
		{name: "power right assoc", src: "2**3**2", want: int64(512)},
		{name: "power float", src: "2**-1", want: 0.5},
		{name: "unary minus", src: "-n", want: int64(-4)},
		{name: "mixed promotes", src: "n + f", want: 6.5},
		{name: "precedence", src: "1 + 2 * 3", want: int64(7)},
		{name: "parens", src: "(1 + 2) * 3", want: int64(9)},
		{name: "string concat", src: "s + 'c'", want: "abc"},
		{name: "string repeat", src: "s * 3", want: "ababab"},
		{name: "string repeat reversed", src: "2 * s", want: "abab"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Eval(tt.src, env)
			if err != nil {
				t.Fatalf("Eval(%q) returned error: %v", tt.src, err)
			}

			if got != tt.want {
				t.Errorf("Eval(%q) = %v (%T), want %v (%T)", tt.src, got, got, tt.want, tt.want)
			}
		})
	}
}

// TestEval_Functions verifies the function allow-list.
func TestEval_Functions(t *testing.T) {
	env := Env{"item": "chr21", "n": -3.7}

	tests := []struct {
		name string
		src  string
		want any
	}{
		{name: "len", src: "len(item)", want: int64(5)},
		{name: "str of int", src: "str(42)", want: "42"},
		{name: "str of whole float", src: "str(3.0)", want: "3"},
		{name: "int truncates", src: "int(n)", want: int64(-3)},
		{name: "int of string", src: "int('12')", want: int64(12)},
		{name: "float of string", src: "float('1.5')", want: 1.5},
		{name: "abs int", src: "abs(-4)", want: int64(4)},
		{name: "abs float", src: "abs(n)", want: 3.7},
		{name: "round", src: "round(3.6)", want: int64(4)},
		{name: "round digits", src: "round(3.14159, 2)", want: 3.14},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Eval(tt.src, env)
			if err != nil {
				t.Fatalf("Eval(%q) returned error: %v", tt.src, err)
			}

			if got != tt.want {
				t.Errorf("Eval(%q) = %v, want %v", tt.src, got, tt.want)
			}
		})
	}
}

// TestEval_Methods verifies the string-method allow-list.
func TestEval_Methods(t *testing.T) {
	env := Env{"item": "chr21", "pad": "  x  "}

	tests := []struct {
		name string
		src  string
		want any
	}{
		{name: "upper", src: "item.upper()", want: "CHR21"},
		{name: "lower", src: "'ABC'.lower()", want: "abc"},
		{name: "title", src: "'hello world'.title()", want: "Hello World"},
		{name: "capitalize", src: "'hello WORLD'.capitalize()", want: "Hello world"},
		{name: "strip", src: "pad.strip()", want: "x"},
		{name: "strip cutset", src: "'xxaxx'.strip('x')", want: "a"},
		{name: "lstrip", src: "pad.lstrip()", want: "x  "},
		{name: "rstrip", src: "pad.rstrip()", want: "  x"},
		{name: "zfill", src: "'7'.zfill(3)", want: "007"},
		{name: "zfill sign", src: "'-5'.zfill(4)", want: "-005"},
		{name: "zfill wide enough", src: "item.zfill(3)", want: "chr21"},
		{name: "ljust", src: "'ab'.ljust(4)", want: "ab  "},
		{name: "rjust fill", src: "'ab'.rjust(4, '.')", want: "..ab"},
		{name: "chained", src: "item.upper().lower()", want: "chr21"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Eval(tt.src, env)
			if err != nil {
				t.Fatalf("Eval(%q) returned error: %v", tt.src, err)
			}

			if got != tt.want {
				t.Errorf("Eval(%q) = %v, want %v", tt.src, got, tt.want)
			}
		})
	}
}

// TestEval_IndexSlice verifies rune-based indexing and slicing.
func TestEval_IndexSlice(t *testing.T) {
	env := Env{"item": "chr21"}

	tests := []struct {
		name string
		src  string
		want any
	}{
		{name: "index", src: "item[0]", want: "c"},
		{name: "negative index", src: "item[-1]", want: "1"},
		{name: "slice", src: "item[0:3]", want: "chr"},
		{name: "slice open end", src: "item[3:]", want: "21"},
		{name: "slice open start", src: "item[:3]", want: "chr"},
		{name: "slice negative", src: "item[-2:]", want: "21"},
		{name: "slice clamped", src: "item[2:100]", want: "r21"},
		{name: "slice empty", src: "item[3:1]", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Eval(tt.src, env)
			if err != nil {
				t.Fatalf("Eval(%q) returned error: %v", tt.src, err)
			}

			if got != tt.want {
				t.Errorf("Eval(%q) = %v, want %v", tt.src, got, tt.want)
			}
		})
	}
}

// TestEval_Errors verifies rejection of disallowed and invalid
// expressions.
func TestEval_Errors(t *testing.T) {
	env := Env{"item": "abc"}

	tests := []struct {
		name string
		src  string
		want error
	}{
		{name: "unknown function", src: "eval(item)", want: ErrDisallowed},
		{name: "unknown method", src: "item.encode()", want: ErrDisallowed},
		{name: "attribute access", src: "item.upper", want: ErrDisallowed},
		{name: "call on literal", src: "'x'()", want: ErrDisallowed},
		{name: "undefined name", src: "missing + 1", want: ErrUndefinedName},
		{name: "division by zero", src: "1/0", want: ErrEvaluate},
		{name: "index out of range", src: "item[9]", want: ErrEvaluate},
		{name: "type mismatch", src: "item + 1", want: ErrEvaluate},
		{name: "syntax error", src: "1 +", want: ErrSyntax},
		{name: "dangling token", src: "1 2", want: ErrSyntax},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Eval(tt.src, env)
			if err == nil {
				t.Fatalf("Eval(%q) succeeded, want error", tt.src)
			}

			if !errors.Is(err, tt.want) {
				t.Errorf("Eval(%q) error = %v, want %v", tt.src, err, tt.want)
			}
		})
	}
}
