package util

import (
	"jobalert/internal/classify"
	"jobalert/internal/logger"
)

// DefaultMaxPages bounds pagination when Deps.MaxPages is unset.
const DefaultMaxPages = 3

// Deps is what every adapter shares.
type Deps struct {
	Client     *Client
	Classifier *classify.Classifier
	MaxPages   int
	Logger     logger.Logger
}

func (d Deps) Pages() int {
	if d.MaxPages <= 0 {
		return DefaultMaxPages
	}
	return d.MaxPages
}

func (d Deps) Log() logger.Logger {
	if d.Logger == nil {
		return logger.NewNop()
	}
	return d.Logger
}
