// Package bootstrap builds the ledger API for serverless hosts, which cannot
// import internal packages directly.
package bootstrap

import (
	"net/http"
	"sync"

	"ledger-backend/internal/config"
	"ledger-backend/internal/interfaces/router"

	"github.com/rs/zerolog/log"
)

var (
	once    sync.Once
	handler http.Handler
	initErr error
)

// Handler returns the API as an http.Handler, building it on first use.
// Cold starts share one app; a failed build is reported on every call.
func Handler() (http.Handler, error) {
	once.Do(func() {
		cfg, err := config.Load()
		if err != nil {
			initErr = err
			return
		}
		app, _, _, err := router.CreateApp(cfg)
		if err != nil {
			initErr = err
			log.Error().Err(err).Msg("ledger api bootstrap failed")
			return
		}
		handler = router.Handler(app)
	})
	return handler, initErr
}
