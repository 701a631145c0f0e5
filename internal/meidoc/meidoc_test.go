package meidoc_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/emamei/internal/meidoc"
	"github.com/dgallion1/emamei/internal/meitest"
)

func TestDocumentInfo_Generated(t *testing.T) {
	doc := meitest.Parse(t, meitest.Generated(3, 2, 3, 4))
	info, err := doc.DocumentInfo()
	require.NoError(t, err)

	assert.Equal(t, 3, info.MeasureCount)
	assert.Equal(t, []string{"1", "2", "3"}, info.MeasureLabels)
	assert.Equal(t, map[int][]string{0: {"Staff 1", "Staff 2"}}, info.Staves)
	assert.Equal(t, map[int]meidoc.Meter{0: {Count: 3, Unit: 4}}, info.Beats)
}

func TestDocumentInfo_MeterChanges(t *testing.T) {
	src := meitest.Wrap(meitest.ScoreDef(1, 4, 4) + "<section>" +
		meitest.Measure(1, 1, 4, 4) +
		meitest.Measure(2, 1, 4, 4) +
		`<scoreDef><meterSig count="6" unit="8"/></scoreDef>` +
		meitest.Measure(3, 1, 6, 8) +
		"</section>")
	info, err := meitest.Parse(t, src).DocumentInfo()
	require.NoError(t, err)

	assert.Equal(t, meidoc.Meter{Count: 6, Unit: 8}, info.Beats[2])

	m, ok := info.MeterAt(2)
	require.True(t, ok)
	assert.Equal(t, meidoc.Meter{Count: 4, Unit: 4}, m)
	m, _ = info.MeterAt(3)
	assert.Equal(t, meidoc.Meter{Count: 6, Unit: 8}, m)

	assert.Len(t, info.StavesAt(3), 1, "staff labels carry over when a definition has no staffGrp")
	_, hasStaves := info.Staves[2]
	assert.False(t, hasStaves)
}

func TestDocumentInfo_StaffLabels(t *testing.T) {
	src := meitest.Wrap(`<scoreDef meter.count="4" meter.unit="4"><staffGrp>
<staffDef n="1" label="Violin"/>
<staffDef n="2"><label>  Primo
  Violino </label></staffDef>
<staffDef n="3" label.abbr="Vc."/>
<staffDef n="4"/>
</staffGrp></scoreDef><section>` + meitest.Measure(1, 4, 4, 4) + `</section>`)
	info, err := meitest.Parse(t, src).DocumentInfo()
	require.NoError(t, err)
	assert.Equal(t, []string{"Violin", "Primo Violino", "Vc.", ""}, info.Staves[0])
}

func TestDocumentInfo_IsMemoized(t *testing.T) {
	doc := meitest.Parse(t, meitest.Generated(2, 1, 4, 4))
	first, err := doc.DocumentInfo()
	require.NoError(t, err)
	second, err := doc.DocumentInfo()
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestDocumentInfo_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want error
	}{
		{
			"mixed meter",
			meitest.Wrap(`<scoreDef><meterSigGrp><meterSig count="3" unit="4"/><meterSig count="2" unit="4"/></meterSigGrp></scoreDef><section>` +
				meitest.Measure(1, 1, 4, 4) + `</section>`),
			meidoc.ErrMixedMeter,
		},
		{
			"meter unresolved",
			meitest.Wrap(`<scoreDef><staffGrp><staffDef n="1"/></staffGrp></scoreDef><section>` +
				meitest.Measure(1, 1, 4, 4) + `</section>`),
			meidoc.ErrMeterUnresolved,
		},
		{
			"definition without measure",
			meitest.Wrap(`<section>` + meitest.Measure(1, 1, 4, 4) + `</section>` + meitest.ScoreDef(1, 4, 4)),
			meidoc.ErrStructure,
		},
		{
			"no music",
			`<mei xmlns="http://www.music-encoding.org/ns/mei"><meiHead/></mei>`,
			meidoc.ErrStructure,
		},
		{
			"music outside MEI namespace",
			`<mei xmlns="http://www.music-encoding.org/ns/mei"><x:music xmlns:x="urn:other"/></mei>`,
			meidoc.ErrStructure,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := meitest.Parse(t, tt.src).DocumentInfo()
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParse_RejectsMalformed(t *testing.T) {
	_, err := meidoc.Parse(strings.NewReader("<mei><music></mei>"))
	assert.Error(t, err)
}

func TestParseLeadingInt(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"3", 3, true},
		{" 12 ", 12, true},
		{"3+2", 3, true},
		{"-1", -1, true},
		{"x", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := meidoc.ParseLeadingInt(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
	}
}
