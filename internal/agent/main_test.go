package agent

import (
	"testing"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	// The pipeline is strictly sequential; no goroutine may outlive a
	// run.
	goleak.VerifyTestMain(m)
}
