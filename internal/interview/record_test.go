package interview

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBasicInfoValidate(t *testing.T) {
	tests := []struct {
		name    string
		info    BasicInfo
		wantErr bool
	}{
		{name: "minimal", info: BasicInfo{Name: "Kim"}},
		{name: "missing name", info: BasicInfo{Position: "Chef"}, wantErr: true},
		{name: "bad email", info: BasicInfo{Name: "Kim", Email: "not-an-email"}, wantErr: true},
		{name: "known visa", info: BasicInfo{Name: "Kim", VisaStatus: "Working Holiday"}},
		{name: "unknown visa", info: BasicInfo{Name: "Kim", VisaStatus: "Tourist"}, wantErr: true},
		{name: "bad type", info: BasicInfo{Name: "Kim", InterviewType: "PANEL"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.info.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestParseInterviewType(t *testing.T) {
	got, err := ParseInterviewType("depth")
	require.NoError(t, err)
	assert.Equal(t, TypeDepth, got)

	got, err = ParseInterviewType("")
	require.NoError(t, err)
	assert.Equal(t, TypeStandard, got)

	_, err = ParseInterviewType("panel")
	assert.Error(t, err)
}

func TestNeedsVisaExpiry(t *testing.T) {
	assert.False(t, NeedsVisaExpiry(VisaCitizen))
	assert.False(t, NeedsVisaExpiry(VisaPermanentResident))
	assert.True(t, NeedsVisaExpiry("Working Holiday"))
}
