package voice

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/windoze95/chefremy-api/internal/ai"
	"github.com/windoze95/chefremy-api/internal/testutil"
)

func TestReplyFilter_KeepsOrdinaryProse(t *testing.T) {
	f := NewReplyFilter()
	for _, s := range []string{
		"Yes, you can use olive oil.",
		"Bake at 350F for 25 minutes, then brush with butter.",
		"Peel the cucumber and add a cocktail of lemon and basil.",
	} {
		assert.Equal(t, s, f.Clean(s))
	}
}

func TestReplyFilter_MasksProfaneWords(t *testing.T) {
	f := NewReplyFilter()
	assert.Equal(t, "well **** happens", f.Clean("well shit happens"))
}

func TestRoute_ReplyIsNotGarbled(t *testing.T) {
	text := &testutil.MockTextProvider{
		CompleteFunc: func(ctx context.Context, req ai.CompletionRequest) (string, error) {
			return "Yes, you can use olive oil.", nil
		},
	}
	r := NewRouter(Deps{Text: text, Prompts: testutil.TestPrompts()})

	resp, err := r.Route(context.Background(), Request{Command: "can I swap butter for olive oil?"})
	require.NoError(t, err)
	assert.Equal(t, "Yes, you can use olive oil.", resp.Response)
}
