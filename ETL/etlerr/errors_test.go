package etlerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindFatal(t *testing.T) {
	tests := []struct {
		kind  Kind
		fatal bool
	}{
		{KindConnectivity, true},
		{KindDataQuality, false},
		{KindTransformIntegrity, true},
		{KindReferentialIntegrity, true},
		{KindUnknown, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			require.Equal(t, tt.fatal, tt.kind.Fatal())
		})
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := Wrap(KindConnectivity, StageExtract, "customers query failed", cause)

	require.ErrorIs(t, err, cause)
	require.Contains(t, err.Error(), "connection refused")
	require.Contains(t, err.Error(), StageExtract)
}

func TestKindOfThroughWrapping(t *testing.T) {
	inner := New(KindReferentialIntegrity, StageLoad, "2 facts unresolved")
	outer := fmt.Errorf("boundary B: %w", inner)

	require.Equal(t, KindReferentialIntegrity, KindOf(outer))
	require.True(t, IsKind(outer, KindReferentialIntegrity))
	require.False(t, IsKind(outer, KindConnectivity))
	require.Equal(t, KindUnknown, KindOf(errors.New("plain")))
	require.Equal(t, Kind(""), KindOf(nil))
}

func TestIsMatchesStageWhenGiven(t *testing.T) {
	err := Newf(KindTransformIntegrity, StageTransform, "bad date %q", "yesterday")

	require.True(t, errors.Is(err, &Error{Kind: KindTransformIntegrity, Stage: StageTransform}))
	require.False(t, errors.Is(err, &Error{Kind: KindTransformIntegrity, Stage: StageLoad}))
}
