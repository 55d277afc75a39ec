package scrape_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobalert/internal/config"
	"jobalert/internal/domain"
	"jobalert/internal/logger"
	"jobalert/internal/scrape"
	"jobalert/internal/scrape/types"
)

type stubFetcher struct {
	kind domain.ProviderKind
	err  error
}

func (s stubFetcher) Kind() domain.ProviderKind { return s.kind }

func (s stubFetcher) Fetch(_ context.Context, src domain.Source) ([]domain.Posting, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []domain.Posting{{Title: "Data Analyst", Source: src.Name}}, nil
}

func TestBuild_RegistersEveryKind(t *testing.T) {
	cfg := config.Default()
	r := scrape.Build(cfg, scrape.NewClient(cfg.HTTP, logger.NewNop()), scrape.NewClassifier(cfg.Filters), logger.NewNop())
	assert.ElementsMatch(t, domain.AllKinds, r.Kinds())
}

func TestRegistry_Fetch(t *testing.T) {
	r := scrape.NewRegistry(stubFetcher{kind: domain.KindLever})

	got, err := r.Fetch(context.Background(), domain.Source{Name: "Acme", Kind: domain.KindLever})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestRegistry_MissingAdapterIsUnavailable(t *testing.T) {
	r := scrape.NewRegistry()

	_, err := r.Fetch(context.Background(), domain.Source{Name: "Acme", Kind: domain.KindGoogle})
	var sue *types.SourceUnavailableError
	require.True(t, errors.As(err, &sue))
	assert.ErrorIs(t, err, types.ErrNoAdapter)
	assert.Equal(t, domain.KindGoogle, sue.Kind)
}

func TestRegistry_WrapsAdapterErrors(t *testing.T) {
	boom := errors.New("boom")
	r := scrape.NewRegistry(stubFetcher{kind: domain.KindHTML, err: boom})

	_, err := r.Fetch(context.Background(), domain.Source{Name: "Acme", Kind: domain.KindHTML})
	var sue *types.SourceUnavailableError
	require.True(t, errors.As(err, &sue))
	assert.ErrorIs(t, err, boom)
}
