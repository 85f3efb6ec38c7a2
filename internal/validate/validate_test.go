package validate

import (
	"errors"
	"testing"

	"github.com/go-playground/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type link struct {
	Text string `validate:"required"`
	URL  string `validate:"required,safeurl"`
}

type page struct {
	Title string `validate:"pagetitle"`
}

func TestValidate(t *testing.T) {
	v := New()
	tests := []struct {
		name   string
		in     any
		fields []string
	}{
		{"valid link", link{Text: "go", URL: "https://go.dev"}, nil},
		{"relative url", link{Text: "go", URL: "/docs"}, nil},
		{"mailto", link{Text: "me", URL: "mailto:me@example.com"}, nil},
		{"missing text", link{URL: "https://go.dev"}, []string{"Text"}},
		{"missing both", link{}, []string{"Text", "URL"}},
		{"script scheme", link{Text: "x", URL: "javascript:alert(1)"}, []string{"URL"}},
		{"whitespace", link{Text: "x", URL: "http://a b"}, []string{"URL"}},
		{"title", page{Title: "Notes"}, nil},
		{"blank title", page{Title: "   "}, []string{"Title"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.in)
			if tt.fields == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalid)
			var ve *Error
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.fields, ve.Fields)
			var verrs validator.ValidationErrors
			assert.True(t, errors.As(err, &verrs))
		})
	}
}
