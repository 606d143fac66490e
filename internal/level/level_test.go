package level

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRequiredQuestions(t *testing.T) {
	for l := 1; l <= 5; l++ {
		require.Equal(t, 10+10*l, RequiredQuestions(l), "level %d", l)
	}
	for l := 6; l <= 50; l++ {
		require.Equal(t, 100, RequiredQuestions(l), "level %d", l)
	}
	for l := 51; l <= 120; l++ {
		require.Equal(t, 100+200*(l-50), RequiredQuestions(l), "level %d", l)
	}

	require.Equal(t, 20, RequiredQuestions(1))
	require.Equal(t, 60, RequiredQuestions(5))
	require.Equal(t, 300, RequiredQuestions(51))
}

func TestCreditReward(t *testing.T) {
	for l := 1; l <= 200; l++ {
		require.Equal(t, 50*l, CreditReward(l))
	}
}

func TestPassed(t *testing.T) {
	cases := []struct {
		score, total int
		want         bool
	}{
		{7, 10, true},
		{6, 10, false},
		{10, 10, true},
		{2, 3, false},
		{3, 3, true},
		{4, 5, true},
		{3, 5, false},
		{0, 0, false},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, Passed(tc.score, tc.total), "%d/%d", tc.score, tc.total)
	}
}

func TestAccuracy(t *testing.T) {
	require.Equal(t, 67, Accuracy(2, 3))
	require.Equal(t, 100, Accuracy(5, 5))
	require.Equal(t, 0, Accuracy(0, 0))
	require.Equal(t, 33, Accuracy(1, 3))
}

func TestCatalog(t *testing.T) {
	tiers := Catalog(1, MaxVisible, 2)
	require.Len(t, tiers, MaxVisible)
	require.Equal(t, Tier{Level: 1, RequiredQuestions: 20, Credits: 50, Unlocked: true}, tiers[0])
	require.True(t, tiers[1].Unlocked)
	require.False(t, tiers[2].Unlocked)
	require.Equal(t, 100, tiers[9].RequiredQuestions)

	require.Nil(t, Catalog(5, 4, 1))
}
