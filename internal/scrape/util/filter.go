package util

import (
	"jobalert/internal/classify"
	"jobalert/internal/domain"
	"jobalert/internal/logger"
)

// KeepRelevant drops postings the classifier rejects, using the source's
// declared location for postings that carry none. Input order is kept.
func KeepRelevant(cls *classify.Classifier, src domain.Source, in []domain.Posting, log logger.Logger) []domain.Posting {
	if cls == nil {
		return in
	}
	out := make([]domain.Posting, 0, len(in))
	rejected := map[classify.Reason]int{}
	for _, p := range in {
		keep, reason := cls.Keep(p, src.Location)
		if !keep {
			rejected[reason]++
			continue
		}
		if p.Location == "" {
			p.Location = src.Location
		}
		out = append(out, p)
	}
	if log != nil {
		log.Debug("classified",
			logger.String("source", src.Name),
			logger.Int("fetched", len(in)),
			logger.Int("kept", len(out)),
			logger.Any("rejected", rejected))
	}
	return out
}
