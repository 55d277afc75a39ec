package httpapi

import (
	"net/http"
	"sync/atomic"

	"jobalert/internal/config"
)

const redacted = "********"

type ConfigHandler struct {
	CfgVal *atomic.Value // stores config.Config
}

// Get serves the running config with credentials masked.
func (h ConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	cur, ok := h.CfgVal.Load().(config.Config)
	if !ok {
		WriteError(w, r, http.StatusServiceUnavailable, CodeNoConfig, "config not loaded")
		return
	}
	writeJSON(w, redact(cur))
}

func (h ConfigHandler) Validate(w http.ResponseWriter, r *http.Request) {
	cur, ok := h.CfgVal.Load().(config.Config)
	if !ok {
		WriteError(w, r, http.StatusServiceUnavailable, CodeNoConfig, "config not loaded")
		return
	}
	_, vr := config.NormalizeAndValidate(cur)
	status := http.StatusOK
	if !vr.OK() {
		status = http.StatusUnprocessableEntity
	}
	WriteJSON(w, status, vr)
}

func redact(c config.Config) config.Config {
	if c.Notify.SendGrid.APIKey != "" {
		c.Notify.SendGrid.APIKey = redacted
	}
	if c.Notify.Telegram.Token != "" {
		c.Notify.Telegram.Token = redacted
	}
	if c.Cache.RedisURL != "" {
		c.Cache.RedisURL = redacted
	}
	return c
}
