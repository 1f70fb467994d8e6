package timecheck

import (
	"os"
	"testing"

	"github.com/rs/zerolog"
)

func TestMain(m *testing.M) {
	// decisions are traced on the global logger
	zerolog.SetGlobalLevel(zerolog.Disabled)
	os.Exit(m.Run())
}
