package lang

import "testing"

// TestNormalize verifies canonical string rendering of scalar values.
func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{name: "int", in: 42, want: "42"},
		{name: "int64", in: int64(-7), want: "-7"},
		{name: "uint", in: uint(9), want: "9"},
		{name: "whole float", in: 3.0, want: "3"},
		{name: "whole float large", in: 5.0, want: "5"},
		{name: "fractional float", in: 3.14, want: "3.14"},
		{name: "negative float", in: -0.5, want: "-0.5"},
		{name: "bool true", in: true, want: "true"},
		{name: "bool false", in: false, want: "false"},
		{name: "nil", in: nil, want: "null"},
		{name: "string passthrough", in: "7.0", want: "7.0"},
		{name: "empty string", in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// TestToNumber verifies numeric coercion of scalars and numeric strings.
func TestToNumber(t *testing.T) {
	tests := []struct {
		name    string
		in      any
		wantInt bool
		want    float64
		wantErr bool
	}{
		{name: "int", in: 3, wantInt: true, want: 3},
		{name: "float", in: 0.5, wantInt: false, want: 0.5},
		{name: "whole float stays float", in: 2.0, wantInt: false, want: 2},
		{name: "int string", in: "12", wantInt: true, want: 12},
		{name: "float string", in: "1.5", wantInt: false, want: 1.5},
		{name: "negative string", in: "-4", wantInt: true, want: -4},
		{name: "non-numeric string", in: "abc", wantErr: true},
		{name: "bool", in: true, wantErr: true},
		{name: "nil", in: nil, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := ToNumber(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ToNumber(%v) = %v, want error", tt.in, n)
				}

				return
			}

			if err != nil {
				t.Fatalf("ToNumber(%v) returned error: %v", tt.in, err)
			}

			if n.IsInt != tt.wantInt {
				t.Errorf("ToNumber(%v).IsInt = %v, want %v", tt.in, n.IsInt, tt.wantInt)
			}

			if n.Float != tt.want {
				t.Errorf("ToNumber(%v).Float = %v, want %v", tt.in, n.Float, tt.want)
			}
		})
	}
}
