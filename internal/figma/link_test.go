// File: internal/figma/link_test.go
package figma

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLink(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name string
		raw  string
		want Link
	}{
		{
			"design url",
			"https://www.figma.com/design/AbC123xyz/Landing-Page?node-id=12-34&t=XYZ-0",
			Link{FileKey: "AbC123xyz", NodeID: "12:34", Name: "Landing-Page"},
		},
		{
			"legacy file url",
			"https://www.figma.com/file/KEY/Name?type=design&node-id=1-2",
			Link{FileKey: "KEY", NodeID: "1:2", Name: "Name"},
		},
		{
			"api form node id",
			"https://figma.com/design/KEY?node-id=7:8",
			Link{FileKey: "KEY", NodeID: "7:8"},
		},
		{
			"surrounding whitespace and escaped slug",
			"  https://www.figma.com/design/KEY/My%20File?node-id=3-4 \n",
			Link{FileKey: "KEY", NodeID: "3:4", Name: "My File"},
		},
		{
			"plain http",
			"http://www.figma.com/design/KEY/x?node-id=0-1",
			Link{FileKey: "KEY", NodeID: "0:1", Name: "x"},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseLink(tc.raw)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseLink_Invalid(t *testing.T) {
	t.Parallel()
	testCases := map[string]string{
		"not a url":       "::::",
		"wrong scheme":    "ftp://www.figma.com/design/KEY/x?node-id=1-2",
		"wrong host":      "https://figma.com.example.org/design/KEY/x?node-id=1-2",
		"prototype path":  "https://www.figma.com/proto/KEY/x?node-id=1-2",
		"missing key":     "https://www.figma.com/design/?node-id=1-2",
		"missing node id": "https://www.figma.com/design/KEY/x",
		"bad node id":     "https://www.figma.com/design/KEY/x?node-id=abc",
		"empty":           "",
	}
	for name, raw := range testCases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseLink(raw)
			assert.ErrorIs(t, err, ErrInvalidLink)
		})
	}
}

func TestLink_String(t *testing.T) {
	t.Parallel()
	link := Link{FileKey: "KEY", NodeID: "12:34", Name: "My File"}
	assert.Equal(t, "https://www.figma.com/design/KEY/My%20File?node-id=12-34", link.String())

	back, err := ParseLink(link.String())
	require.NoError(t, err)
	assert.Equal(t, link, back)

	assert.Contains(t, Link{FileKey: "K", NodeID: "1:2"}.String(), "/design/K/frame?")
}

func TestLooksLikeDesignLink(t *testing.T) {
	t.Parallel()
	assert.True(t, LooksLikeDesignLink("https://www.figma.com/design/KEY/x?node-id=1-2"))
	assert.True(t, LooksLikeDesignLink("  http://www.figma.com/file/KEY?node-id=1-2"))
	assert.True(t, LooksLikeDesignLink("https://figma.com/design/KEY?node-id=1-2"))
	assert.False(t, LooksLikeDesignLink("https://www.figma.com/design/KEY/x"), "a file link without a node is not a frame")
	assert.False(t, LooksLikeDesignLink("convert frame.json"))
	assert.False(t, LooksLikeDesignLink("see https://www.figma.com/design/KEY?node-id=1-2"), "the link must be the whole paste")
}
