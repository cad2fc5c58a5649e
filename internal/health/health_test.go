package health

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckCacheReportsDisabledWithoutRedis(t *testing.T) {
	h := &HealthChecker{}
	assert.Equal(t, "disabled", h.checkCache().Status)
}
