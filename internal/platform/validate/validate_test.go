// Copyright (c) 2026 Medibank. All rights reserved.

package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/the-capital-hub/medibank-backend/internal/platform/apperr"
	"github.com/the-capital-hub/medibank-backend/internal/platform/validate"
)

func TestValidator_Required(t *testing.T) {
	t.Run("passes on non-empty value", func(t *testing.T) {
		v := &validate.Validator{}
		err := v.Required("name", "Asha").Err()
		assert.NoError(t, err)
	})

	t.Run("fails on whitespace-only value", func(t *testing.T) {
		v := &validate.Validator{}
		err := v.Required("name", "   ").Err()
		require.Error(t, err)

		appErr := apperr.As(err)
		require.NotNil(t, appErr)
		assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
		require.Len(t, appErr.Details, 1)
		assert.Equal(t, "name", appErr.Details[0].Field)
	})
}

func TestValidator_Email(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{name: "valid address", email: "asha@example.com", wantErr: false},
		{name: "missing at sign", email: "asha.example.com", wantErr: true},
		{name: "missing domain", email: "asha@", wantErr: true},
		{name: "empty", email: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			err := v.Email("email", tt.email).Err()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidator_Mobile(t *testing.T) {
	tests := []struct {
		name    string
		mobile  string
		wantErr bool
	}{
		{name: "bare 10 digits", mobile: "9876501234", wantErr: false},
		{name: "already normalized", mobile: "+919876501234", wantErr: false},
		{name: "too short", mobile: "98765", wantErr: true},
		{name: "contains letters", mobile: "98765o1234", wantErr: true},
		{name: "foreign country code", mobile: "+19876501234", wantErr: true},
		{name: "repeated digits", mobile: "1111111111", wantErr: true},
		{name: "repeated digits normalized", mobile: "+919999999999", wantErr: true},
		{name: "consecutive ascending", mobile: "1234567890", wantErr: true},
		{name: "ascending wrapping through zero", mobile: "8901234567", wantErr: true},
		{name: "near-consecutive is fine", mobile: "1234567891", wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			err := v.Mobile("mobileNumber", tt.mobile).Err()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNormalizeMobile(t *testing.T) {
	t.Run("prefixes bare national number", func(t *testing.T) {
		got, ok := validate.NormalizeMobile("9876501234")
		require.True(t, ok)
		assert.Equal(t, "+919876501234", got)
	})

	t.Run("keeps normalized form unchanged", func(t *testing.T) {
		got, ok := validate.NormalizeMobile("+919876501234")
		require.True(t, ok)
		assert.Equal(t, "+919876501234", got)
	})

	t.Run("trims surrounding whitespace", func(t *testing.T) {
		got, ok := validate.NormalizeMobile("  9876501234 ")
		require.True(t, ok)
		assert.Equal(t, "+919876501234", got)
	})

	t.Run("rejects non-numeric input", func(t *testing.T) {
		_, ok := validate.NormalizeMobile("not-a-number")
		assert.False(t, ok)
	})
}

func TestValidator_OTPCode(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantErr bool
	}{
		{name: "six digits", code: "042917", wantErr: false},
		{name: "five digits", code: "04291", wantErr: true},
		{name: "seven digits", code: "0429171", wantErr: true},
		{name: "letters", code: "04a917", wantErr: true},
		{name: "empty", code: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			err := v.OTPCode("code", tt.code).Err()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestIsOTPCode(t *testing.T) {
	assert.True(t, validate.IsOTPCode("042917"))
	assert.False(t, validate.IsOTPCode("04291"))
	assert.False(t, validate.IsOTPCode("0429171"))
	assert.False(t, validate.IsOTPCode("04a917"))
	assert.False(t, validate.IsOTPCode(""))
}

func TestValidator_Chaining(t *testing.T) {
	v := &validate.Validator{}
	err := v.
		Required("email", "").
		Mobile("mobileNumber", "12345").
		MinLen("password", "pw", 8).
		Err()

	require.Error(t, err)

	appErr := apperr.As(err)
	require.NotNil(t, appErr)
	assert.Len(t, appErr.Details, 3)
	assert.True(t, v.HasErrors())
}

func TestIsBareMobile(t *testing.T) {
	assert.True(t, validate.IsBareMobile("9876501234"))
	assert.False(t, validate.IsBareMobile("+919876501234"))
	assert.False(t, validate.IsBareMobile("asha@example.com"))
}
