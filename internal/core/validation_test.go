package core

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRecord(t *testing.T) {
	t.Run("Should accept a complete customer", func(t *testing.T) {
		assert.NoError(t, ValidateRecord(Customer{Firstname: "A", Lastname: "B", Email: "a@b.fi"}))
	})

	t.Run("Should report fields by JSON name", func(t *testing.T) {
		err := ValidateRecord(Customer{Email: "nope"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidInput))

		var verrs ValidationErrors
		require.True(t, errors.As(err, &verrs))
		byField := verrs.ByField()
		assert.Equal(t, "is required", byField["firstname"])
		assert.Equal(t, "is required", byField["lastname"])
		assert.Equal(t, "must be a valid email address", byField["email"])
	})
}

func TestValidateTraining(t *testing.T) {
	date := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		training  Training
		wantField string
	}{
		{"missing activity", Training{Date: date, Duration: 30, OwnerHref: "x"}, "activity"},
		{"zero duration", Training{Activity: "Gym", Date: date, OwnerHref: "x"}, "duration"},
		{"negative duration", Training{Activity: "Gym", Date: date, Duration: -5, OwnerHref: "x"}, "duration"},
		{"missing date", Training{Activity: "Gym", Duration: 30, OwnerHref: "x"}, "date"},
		{"missing customer", Training{Activity: "Gym", Date: date, Duration: 30}, "customer"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := TrainingKind.Validate(tt.training)
			var verrs ValidationErrors
			require.True(t, errors.As(err, &verrs), "got %v", err)
			assert.Contains(t, verrs.ByField(), tt.wantField)
		})
	}

	t.Run("valid", func(t *testing.T) {
		err := TrainingKind.Validate(Training{Activity: "Gym", Date: date, Duration: 30, OwnerHref: "http://x/customers/1"})
		assert.NoError(t, err)
	})
}
