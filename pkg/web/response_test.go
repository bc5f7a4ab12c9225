package web

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
)

func TestGetErrorMsg(t *testing.T) {
	type input struct {
		Label  string `validate:"required"`
		Length int32  `validate:"min=1"`
	}

	testCases := []struct {
		name  string
		input input
		want  string
	}{
		{
			name:  "Required",
			input: input{Length: 1},
			want:  "Label field is required",
		},
		{
			name:  "Min",
			input: input{Label: "main"},
			want:  "Length must be at least 1",
		},
	}

	v := validator.New()

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			err := v.Struct(tc.input)

			ve, ok := err.(validator.ValidationErrors)
			if !ok {
				t.Fatalf("v.Struct(%+v) returned %v, want validator.ValidationErrors", tc.input, err)
			}

			if got := GetErrorMsg(ve); got != tc.want {
				t.Errorf("GetErrorMsg() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestBindingError(t *testing.T) {
	type input struct {
		Label string `validate:"required"`
	}

	err := validator.New().Struct(input{})

	if got, want := BindingError(err).Error, "Label field is required"; got != want {
		t.Errorf("BindingError(%v).Error = %q, want %q", err, got, want)
	}

	err = errors.New("unexpected EOF")

	if got, want := BindingError(err).Error, ErrInvalidRequest.Error(); got != want {
		t.Errorf("BindingError(%v).Error = %q, want %q", err, got, want)
	}
}
