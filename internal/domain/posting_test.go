package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"jobalert/internal/domain"
)

func TestPostingKey(t *testing.T) {
	tests := []struct {
		name string
		p    domain.Posting
		want domain.PostingKey
	}{
		{
			name: "native id wins",
			p:    domain.Posting{Source: "Acme", NativeID: "123", Link: "https://acme.test/jobs/123", Title: "Data Analyst"},
			want: "Acme:123",
		},
		{
			name: "link fallback",
			p:    domain.Posting{Source: "Acme", Link: "https://acme.test/jobs/9", Title: "Data Analyst"},
			want: "Acme:https://acme.test/jobs/9",
		},
		{
			name: "title fallback is normalized",
			p:    domain.Posting{Source: "Acme", Title: "  Data   Analyst "},
			want: "Acme:data analyst",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.p.Key())
		})
	}
}

func TestPostingKey_StableAcrossCalls(t *testing.T) {
	p := domain.Posting{Source: "Lever", NativeID: "abc"}
	assert.Equal(t, p.Key(), p.Key())
}

func TestParseKind(t *testing.T) {
	k, err := domain.ParseKind(" Greenhouse ")
	assert.NoError(t, err)
	assert.Equal(t, domain.KindGreenhouse, k)

	_, err = domain.ParseKind("dice")
	assert.Error(t, err)
}
