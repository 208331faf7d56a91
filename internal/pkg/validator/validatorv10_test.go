package validator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shandysiswandi/otpgate/internal/pkg/validator"
)

type sample struct {
	RecipientID string `validate:"required,min=5"`
	Code        string `validate:"required,digits"`
}

func TestV10Validator_Validate(t *testing.T) {
	v, err := validator.NewV10Validator()
	require.NoError(t, err)

	tests := []struct {
		name    string
		in      sample
		wantErr map[string]string
	}{
		{
			name: "valid",
			in:   sample{RecipientID: "user-1", Code: "012345"},
		},
		{
			name: "missing fields",
			in:   sample{},
			wantErr: map[string]string{
				"recipient_id": "RecipientID is a required field",
				"code":         "Code is a required field",
			},
		},
		{
			name: "non digit code",
			in:   sample{RecipientID: "user-1", Code: "12a4"},
			wantErr: map[string]string{
				"code": "Code must contain only digits",
			},
		},
		{
			name: "signed code",
			in:   sample{RecipientID: "user-1", Code: "-1234"},
			wantErr: map[string]string{
				"code": "Code must contain only digits",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.in)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}

			var verr validator.V10ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantErr, verr.Values())
			assert.NotEmpty(t, verr.Error())
		})
	}
}

func TestV10Validator_NonStruct(t *testing.T) {
	v, err := validator.NewV10Validator()
	require.NoError(t, err)

	err = v.Validate("not a struct")
	require.Error(t, err)

	var verr validator.V10ValidationError
	assert.NotErrorAs(t, err, &verr)
}

func TestV10ValidationError_Error(t *testing.T) {
	assert.Equal(t, "validation error", validator.V10ValidationError{}.Error())
	assert.JSONEq(t, `{"code":"bad"}`, validator.V10ValidationError{"code": "bad"}.Error())
}
