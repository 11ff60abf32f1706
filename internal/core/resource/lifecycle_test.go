// Copyright (c) 2026 Encre. All rights reserved.
// Author: Encre maintainers

package resource

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

/*
TestValidateTitle_Trimmed verifies that bounds apply to the title without surrounding blanks.
*/
func TestValidateTitle_Trimmed(t *testing.T) {
	blocklist := NewBlocklist()

	assert.Error(t, validateTitle(blocklist, " a "))
	assert.Error(t, validateTitle(blocklist, "   "))
	assert.NoError(t, validateTitle(blocklist, "  ab  "))
	assert.Error(t, validateTitle(blocklist, "\tadmin\n"))
}
