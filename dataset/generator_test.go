package dataset

import (
	"math/rand/v2"
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMakeLoginsSchemes(t *testing.T) {
	for _, tc := range []struct {
		scheme  Scheme
		pattern string
	}{
		{Sequential, `^user\d+$`},
		{AdjNoun, `^[a-z]+_[a-z]+_\d+$`},
		{Randomish, `^[a-z0-9]{6}_\d+$`},
		{Mixed, `^(user\d+|[a-z]+_[a-z]+_\d+|[a-z0-9]{6}_\d+)$`},
		{Fake, `_\d+$`},
	} {
		t.Run(string(tc.scheme), func(t *testing.T) {
			logins, err := MakeLogins(500, tc.scheme, 42)
			require.NoError(t, err)
			require.Len(t, logins, 500)

			re := regexp.MustCompile(tc.pattern)
			seen := make(map[string]struct{}, len(logins))
			for _, u := range logins {
				require.Regexp(t, re, u)
				_, dup := seen[u]
				require.False(t, dup, "duplicate username %q", u)
				seen[u] = struct{}{}
			}

			again, err := MakeLogins(500, tc.scheme, 42)
			require.NoError(t, err)
			require.Equal(t, logins, again)
		})
	}
}

func TestMakeLoginsNamesDependOnIndexOnly(t *testing.T) {
	short, err := MakeLogins(10, Mixed, 7)
	require.NoError(t, err)
	long, err := MakeLogins(100, Mixed, 7)
	require.NoError(t, err)
	require.Equal(t, short, long[:10])
	require.Equal(t, "brave_otter_11", adjNounName(11))
}

func TestParseScheme(t *testing.T) {
	s, err := ParseScheme("adjnoun")
	require.NoError(t, err)
	require.Equal(t, AdjNoun, s)
	_, err = ParseScheme("emoji")
	require.Error(t, err)
	_, err = MakeLogins(1, Scheme("emoji"), 1)
	require.Error(t, err)
}

func TestMakeQueries(t *testing.T) {
	logins, err := MakeLogins(1000, Mixed, 42)
	require.NoError(t, err)
	set := make(map[string]struct{}, len(logins))
	for _, u := range logins {
		set[u] = struct{}{}
	}

	queries := MakeQueries(logins, 2000, 0.5, rand.New(rand.NewPCG(42, 0)))
	require.Len(t, queries, 2000)
	present := 0
	for _, q := range queries {
		_, ok := set[q.Username]
		require.Equal(t, ok, q.Present, "label of %q", q.Username)
		if q.Present {
			present++
		}
	}
	require.InDelta(t, 1000, present, 150)

	none := MakeQueries(logins, 100, 0, rand.New(rand.NewPCG(1, 0)))
	for _, q := range none {
		require.False(t, q.Present)
	}
}

func TestGenerateRoundTrip(t *testing.T) {
	for _, labels := range []bool{false, true} {
		dir := t.TempDir()
		loginPath, queryPath, err := Generate(dir, GenerateOptions{
			Logins: 200, Queries: 50, Scheme: Mixed, Seed: 42, DupRate: 0.5, Labels: labels,
		})
		require.NoError(t, err)
		require.Equal(t, LoginFile(dir, 200), loginPath)
		require.Equal(t, QueryFile(dir, 50), queryPath)

		d, err := Load(loginPath, queryPath, LoadOptions{VerifyLabels: true})
		require.NoError(t, err)
		require.Len(t, d.Logins, 200)
		require.Len(t, d.Queries, 50)

		want, err := MakeLogins(200, Mixed, 42)
		require.NoError(t, err)
		require.Equal(t, want, d.Logins)
	}
}

func TestGenerateRejectsBadOptions(t *testing.T) {
	_, _, err := Generate(t.TempDir(), GenerateOptions{Logins: 0, Queries: 1, Scheme: Mixed})
	require.Error(t, err)
	_, _, err = Generate(t.TempDir(), GenerateOptions{Logins: 1, Queries: 1, Scheme: Mixed, DupRate: 2})
	require.Error(t, err)
}
