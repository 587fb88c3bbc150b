package sdk

import (
	"os"

	"github.com/celerix-dev/cadastro/internal/validator"
)

// New returns a remote client when CADASTRO_ADDR names a reachable daemon,
// and an embedded checker otherwise. The app doesn't care which.
func New(opts validator.Options, workers int) Checker {
	if addr := os.Getenv("CADASTRO_ADDR"); addr != "" {
		if client, err := Connect(addr); err == nil {
			return client
		}
	}
	return NewLocal(opts, workers)
}
