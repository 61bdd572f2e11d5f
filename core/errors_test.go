package core_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/layer-3/sigil/core"
	"github.com/stretchr/testify/assert"
)

func TestReasonOf(t *testing.T) {
	cases := []struct {
		err  error
		want core.Reason
	}{
		{core.ErrMissingParameter, core.ReasonMissingParameter},
		{fmt.Errorf("decode: %w", core.ErrMalformedInput), core.ReasonMalformedInput},
		{fmt.Errorf("got 64 bytes: %w", core.ErrInvalidSignatureLength), core.ReasonInvalidSignatureLength},
		{core.ErrChallengeExpired, core.ReasonChallengeExpired},
		{core.ErrInvalidTimestampFormat, core.ReasonInvalidTimestampFormat},
		{core.ErrSignatureMismatch, core.ReasonSignatureMismatch},
		{core.ErrNonceReused, core.ReasonNonceReused},
		{errors.New("boom"), core.ReasonInternalError},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, core.ReasonOf(tc.err), tc.err.Error())
	}
}

func TestParseChainType(t *testing.T) {
	assert.Equal(t, core.ChainTypeEthereum, core.ParseChainType("eip155"))
	assert.Equal(t, core.ChainTypeCosmos, core.ParseChainType(""))
	assert.Equal(t, core.ChainTypeCosmos, core.ParseChainType("cosmos"))
	assert.Equal(t, core.ChainTypeCosmos, core.ParseChainType("EIP155"))
	assert.Equal(t, "ethereum", core.ChainTypeEthereum.String())
}
