package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateTitle(t *testing.T) {
	assert.NoError(t, ValidateTitle("Annual hull inspection"))
	assert.NoError(t, ValidateTitle(strings.Repeat("a", 200)))
	assert.Error(t, ValidateTitle(strings.Repeat("a", 201)))
	assert.Error(t, ValidateTitle(""))
	assert.Error(t, ValidateTitle("   "))
}

func TestValidateTitle_CountsRunes(t *testing.T) {
	// 200 multi-byte runes are within the limit even though the byte
	// length exceeds it.
	assert.NoError(t, ValidateTitle(strings.Repeat("å", 200)))
	assert.Error(t, ValidateTitle(strings.Repeat("å", 201)))
}

func TestValidateVesselName(t *testing.T) {
	assert.NoError(t, ValidateVesselName(strings.Repeat("b", 100)))
	assert.Error(t, ValidateVesselName(strings.Repeat("b", 101)))
	assert.Error(t, ValidateVesselName(""))
}

func TestValidateLocation(t *testing.T) {
	assert.NoError(t, ValidateLocation(strings.Repeat("c", 200)))
	assert.Error(t, ValidateLocation(strings.Repeat("c", 201)))
	assert.Error(t, ValidateLocation(""))
}

func TestValidateDescription(t *testing.T) {
	assert.NoError(t, ValidateDescription(""))
	assert.NoError(t, ValidateDescription(strings.Repeat("d", 2000)))
	assert.Error(t, ValidateDescription(strings.Repeat("d", 2001)))
}

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("skipper@example.com"))
	assert.Error(t, ValidateEmail(""))
	assert.Error(t, ValidateEmail("not-an-email"))
	assert.Error(t, ValidateEmail("a@b"))
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, ValidatePassword("anchor-chain-9"))
	assert.Error(t, ValidatePassword("short"))
	assert.Error(t, ValidatePassword(strings.Repeat("p", 129)))
}
