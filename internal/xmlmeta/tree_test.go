package xmlmeta

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const streamHeader = `<?xml version="1.0"?>
<info>
	<name>EEG</name>
	<type>EEG</type>
	<channel_count>2</channel_count>
	<nominal_srate>256.0</nominal_srate>
	<channel_format>float32</channel_format>
	<desc><channels><channel><label>Fz</label><unit>uV</unit></channel><channel><label>Cz</label></channel></channels></desc>
</info>`

func TestParse_StreamHeader(t *testing.T) {
	doc, err := Parse([]byte(streamHeader))
	require.NoError(t, err)

	info := doc.Child("info")
	require.NotNil(t, info)
	require.Equal(t, "EEG", info.Child("name").Text())
	require.Equal(t, 2, info.Child("channel_count").Int())
	require.InDelta(t, 256.0, info.Child("nominal_srate").Float(), 1e-12)

	channels := info.Path("desc", "channels").ChildrenNamed("channel")
	require.Len(t, channels, 2)
	require.Equal(t, "Fz", channels[0].Child("label").Text())
	require.Equal(t, "uV", channels[0].Child("unit").Text())
	require.Equal(t, "", channels[1].Child("unit").Text())

	require.Equal(t,
		`<channels><channel><label>Fz</label><unit>uV</unit></channel><channel><label>Cz</label></channel></channels>`,
		info.Child("desc").InnerXML())
}

func TestNode_NilSafe(t *testing.T) {
	var n *Node

	require.Nil(t, n.Child("x"))
	require.Nil(t, n.Path("a", "b"))
	require.Empty(t, n.ChildrenNamed("x"))
	require.Equal(t, "", n.Text())
	require.Equal(t, 0.0, n.Float())
	require.Equal(t, 0, n.Int())
	require.Equal(t, "", n.InnerXML())
}

func TestNode_NumericFallbacks(t *testing.T) {
	tests := []struct {
		name    string
		xml     string
		wantInt int
		wantF   float64
	}{
		{"integer", "<v>32</v>", 32, 32},
		{"decimal int", "<v>32.0</v>", 32, 32},
		{"padded", "<v>  7 </v>", 7, 7},
		{"garbage", "<v>n/a</v>", 0, 0},
		{"empty", "<v></v>", 0, 0},
		{"self closing", "<v/>", 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse([]byte(tt.xml))
			require.NoError(t, err)
			v := doc.Child("v")
			require.NotNil(t, v)
			require.Equal(t, tt.wantInt, v.Int())
			require.InDelta(t, tt.wantF, v.Float(), 1e-12)
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	doc, err := Parse([]byte("<info><name>x</name><type>"))
	require.Error(t, err)
	require.NotNil(t, doc)
	require.Equal(t, "x", doc.Path("info", "name").Text())
}

func TestParse_Empty(t *testing.T) {
	doc, err := Parse(nil)
	require.NoError(t, err)
	require.Empty(t, doc.Children)
	require.Nil(t, doc.Child("info"))
}
