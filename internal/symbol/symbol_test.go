package symbol_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"stockdash/internal/provider"
	"stockdash/internal/symbol"
)

var primary = []string{"AAPL", "MSFT", "AMZN", "GOOGL", "META", "TSLA", "NFLX"}

func TestNormalize_EmptyInput(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	lookup := NewMockLookup(ctrl)
	// No EXPECT: empty input must short-circuit before any lookup.

	n := symbol.NewNormalizer(lookup, ".NS", primary)

	for _, in := range []string{"", "   ", "\t\n"} {
		out, err := n.Normalize(context.Background(), in)
		require.ErrorIs(t, err, symbol.ErrNoSymbol)
		require.Empty(t, out)
	}
}

func TestNormalize_PrimarySymbolsSkipLookup(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	lookup := NewMockLookup(ctrl)
	// No EXPECT: allow-listed symbols never hit the provider.

	n := symbol.NewNormalizer(lookup, ".NS", primary)

	out, err := n.Normalize(context.Background(), "aapl")
	require.NoError(t, err)
	require.Equal(t, "AAPL", out)

	out, err = n.Normalize(context.Background(), "  Tsla ")
	require.NoError(t, err)
	require.Equal(t, "TSLA", out)
}

func TestNormalize_SuffixedAndNonAlphabeticPassThrough(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	lookup := NewMockLookup(ctrl)

	n := symbol.NewNormalizer(lookup, ".NS", primary)

	for in, want := range map[string]string{
		"reliance.ns": "RELIANCE.NS",
		"RELIANCE.BO": "RELIANCE.BO",
		"BRK.B":       "BRK.B",
		"7203.T":      "7203.T",
	} {
		out, err := n.Normalize(context.Background(), in)
		require.NoError(t, err)
		require.Equal(t, want, out)
	}
}

func TestNormalize_SecondaryLookupSucceeds(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	lookup := NewMockLookup(ctrl)
	lookup.EXPECT().
		Info(gomock.Any(), "RELIANCE.NS").
		Return(&provider.CompanyInfo{Symbol: "RELIANCE.NS", ShortName: "Reliance Industries"}, nil).
		Times(1)

	n := symbol.NewNormalizer(lookup, ".NS", primary)

	out, err := n.Normalize(context.Background(), "reliance")
	require.NoError(t, err)
	require.Equal(t, "RELIANCE.NS", out)
}

func TestNormalize_Idempotent(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	lookup := NewMockLookup(ctrl)
	lookup.EXPECT().
		Info(gomock.Any(), "RELIANCE.NS").
		Return(&provider.CompanyInfo{ShortName: "Reliance Industries"}, nil).
		Times(1)

	n := symbol.NewNormalizer(lookup, ".NS", primary)

	first, err := n.Normalize(context.Background(), "reliance")
	require.NoError(t, err)

	// The suffixed form no longer matches the bare pattern, so a second
	// pass returns it unchanged without another lookup.
	second, err := n.Normalize(context.Background(), first)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestNormalize_LookupFailureFallsBack(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	lookup := NewMockLookup(ctrl)
	lookup.EXPECT().
		Info(gomock.Any(), "VOD.NS").
		Return(nil, errors.New("upstream timeout")).
		Times(1)

	n := symbol.NewNormalizer(lookup, ".NS", primary)

	out, err := n.Normalize(context.Background(), "vod")
	require.NoError(t, err)
	require.Equal(t, "VOD", out)
}

func TestNormalize_LookupWithoutNameFallsBack(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	lookup := NewMockLookup(ctrl)
	lookup.EXPECT().
		Info(gomock.Any(), "VOD.NS").
		Return(nil, nil).
		Times(1)
	lookup.EXPECT().
		Info(gomock.Any(), "KO.NS").
		Return(&provider.CompanyInfo{Symbol: "KO.NS"}, nil).
		Times(1)

	n := symbol.NewNormalizer(lookup, ".NS", primary)

	out, err := n.Normalize(context.Background(), "vod")
	require.NoError(t, err)
	require.Equal(t, "VOD", out)

	// A hit without a short name does not count as a resolution either.
	out, err = n.Normalize(context.Background(), "ko")
	require.NoError(t, err)
	require.Equal(t, "KO", out)
}

func TestNormalize_NoLookupConfigured(t *testing.T) {
	t.Parallel()

	n := symbol.NewNormalizer(nil, ".NS", primary)

	out, err := n.Normalize(context.Background(), "reliance")
	require.NoError(t, err)
	require.Equal(t, "RELIANCE", out)
}
