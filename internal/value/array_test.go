package value

import "testing"

func TestConcatArray_LenIsCorrectAcrossAChain(t *testing.T) {
	// Build ((([1] + [2]) + [3]) + [4]), a left-leaning chain of Concats,
	// the shape repeated `+` actually produces.
	arr := NewEagerArray([]Value{Number(1)})
	for _, n := range []float64{2, 3, 4} {
		arr = Concat(arr, NewEagerArray([]Value{Number(n)}))
	}

	if got := arr.Len(); got != 4 {
		t.Fatalf("expected length 4, got %d", got)
	}
	for i, want := range []float64{1, 2, 3, 4} {
		v, err := arr.At(i).Force()
		if err != nil {
			t.Fatalf("unexpected error at %d: %v", i, err)
		}
		if float64(v.(Number)) != want {
			t.Errorf("element %d: expected %v, got %v", i, want, v)
		}
	}
}

func TestConcatArray_LenMatchesRightLeaningChain(t *testing.T) {
	// [1] + ([2] + ([3] + [4])), a right-leaning chain.
	tail := NewEagerArray([]Value{Number(4)})
	tail = Concat(NewEagerArray([]Value{Number(3)}), tail)
	tail = Concat(NewEagerArray([]Value{Number(2)}), tail)
	arr := Concat(NewEagerArray([]Value{Number(1)}), tail)

	if got := arr.Len(); got != 4 {
		t.Fatalf("expected length 4, got %d", got)
	}
}
