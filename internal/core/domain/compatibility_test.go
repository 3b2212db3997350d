package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompatibleDonors(t *testing.T) {
	tests := []struct {
		requested BloodGroup
		want      []BloodGroup
	}{
		{APositive, []BloodGroup{APositive, ONegative, OPositive}},
		{ANegative, []BloodGroup{ANegative, ONegative}},
		{BPositive, []BloodGroup{BPositive, ONegative, OPositive}},
		{BNegative, []BloodGroup{BNegative, ONegative}},
		{ABPositive, []BloodGroup{ABPositive, ONegative, OPositive}},
		{ABNegative, []BloodGroup{ABNegative, ONegative}},
		{OPositive, []BloodGroup{OPositive, ONegative}},
		{ONegative, []BloodGroup{ONegative}},
	}

	for _, tt := range tests {
		t.Run(string(tt.requested), func(t *testing.T) {
			assert.Equal(t, tt.want, CompatibleDonors(tt.requested))
		})
	}
}

func TestBloodGroupIsValid(t *testing.T) {
	for _, g := range AllBloodGroups {
		assert.True(t, g.IsValid(), "expected %s to be valid", g)
	}
	assert.False(t, BloodGroup("C+").IsValid())
	assert.False(t, BloodGroup("").IsValid())
}

func TestBloodGroupIsPositive(t *testing.T) {
	assert.True(t, OPositive.IsPositive())
	assert.True(t, ABPositive.IsPositive())
	assert.False(t, ONegative.IsPositive())
	assert.False(t, BloodGroup("").IsPositive())
}
