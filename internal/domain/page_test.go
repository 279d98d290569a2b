package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePageID(t *testing.T) {
	for _, p := range AllPages() {
		parsed, err := ParsePageID(p.String())
		require.NoError(t, err)
		assert.Equal(t, p, parsed)
	}

	_, err := ParsePageID("reports")
	assert.Error(t, err)
	_, err = ParsePageID("")
	assert.Error(t, err)
}

func TestPageIDTitles(t *testing.T) {
	assert.Equal(t, "Supply Chain", PageSupplyChain.Title())
	assert.Equal(t, "What-If Analysis", PageWhatIf.Title())
	assert.Equal(t, "", PageID(0).Title())
	assert.False(t, PageID(0).Valid())
	assert.False(t, PageID(7).Valid())
}

func TestPageSetUnmarshalDropsUnknownPages(t *testing.T) {
	var s PageSet
	require.NoError(t, json.Unmarshal([]byte(`["home","reports","admin","what-if"]`), &s))

	assert.Equal(t, []PageID{PageHome, PageWhatIf, PageAdmin}, s.Pages())

	out, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `["home","what-if","admin"]`, string(out))
}

func TestPageSetEmptyMarshalsAsArray(t *testing.T) {
	out, err := json.Marshal(PageSet(0))
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(out))
}

func TestParsePageSetReportsUnknown(t *testing.T) {
	s, unknown := ParsePageSet([]string{"projects", "Admin", "financials"})
	assert.Equal(t, NewPageSet(PageProjects, PageFinancials), s)
	assert.Equal(t, []string{"Admin"}, unknown)
}

func TestPageSetAddIgnoresInvalid(t *testing.T) {
	s := NewPageSet(PageHome, PageID(0), PageID(42))
	assert.Equal(t, []PageID{PageHome}, s.Pages())

	s = s.Add(PageAdmin).Add(PageID(9))
	assert.Equal(t, []PageID{PageHome, PageAdmin}, s.Pages())
	assert.Len(t, NewPageSet(AllPages()...).Pages(), 6)
}
