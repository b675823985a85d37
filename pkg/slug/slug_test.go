package slug

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFrom(t *testing.T) {
	cases := map[string]string{
		"Hello, World!":          "hello-world",
		"  Café   au lait  ":     "cafe-au-lait",
		"Dhaka -- Election 2026": "dhaka-election-2026",
		"ঢাকা":                   "",
		"Über_Straße/Ärger":      "uber-stra-e-arger",
	}
	for in, want := range cases {
		require.Equal(t, want, From(in), in)
	}
	long := From(strings.Repeat("ab ", 100))
	require.LessOrEqual(t, len(long), MaxLen)
	require.False(t, strings.HasSuffix(long, "-"))
}

func TestFold(t *testing.T) {
	require.Equal(t, "resume naive", Fold("Résumé NAÏVE"))
	require.Equal(t, "ঢাকা", Fold("ঢাকা"))
	require.Equal(t, "কৃষি বিজ্ঞান", Fold("কৃষি বিজ্ঞান"))
	require.Equal(t, "שלום", Fold("שָׁלוֹם"))
	require.Equal(t, "pho", Fold("Phở"))
}
