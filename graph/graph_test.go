package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNode_BuilderMethods(t *testing.T) {
	n := NewNode("n1", NodeOrganization).
		WithName("Acme GmbH").
		WithJurisdiction("DE").
		WithIdentifier(NewIdentifier("lei", "5493006MHB84DD0ZWV18")).
		WithLabel("sector", "automotive").
		WithProperty("address", "Musterstr. 1")

	assert.Equal(t, "n1", n.ID)
	assert.Equal(t, NodeOrganization, n.Type)
	assert.Equal(t, "Acme GmbH", n.Name)
	assert.Equal(t, "DE", n.Jurisdiction)
	assert.Equal(t, "Musterstr. 1", n.Address)
	require.Len(t, n.Identifiers, 1)
	assert.Equal(t, "lei", n.Identifiers[0].Scheme)
	require.Len(t, n.Labels, 1)
	assert.Equal(t, "sector", n.Labels[0].Key)
}

func TestNode_Validate(t *testing.T) {
	tests := []struct {
		name    string
		node    Node
		wantErr error
	}{
		{
			name: "valid organization",
			node: NewNode("n1", NodeOrganization).
				WithIdentifier(NewIdentifier("lei", "5493006MHB84DD0ZWV18")),
		},
		{
			name:    "empty id",
			node:    NewNode("", NodeOrganization),
			wantErr: ErrInvalidNode,
		},
		{
			name:    "empty type",
			node:    NewNode("n1", ""),
			wantErr: ErrInvalidNode,
		},
		{
			name: "duplicate identifier triple",
			node: NewNode("n1", NodeOrganization).
				WithIdentifier(
					NewIdentifier("vat", "DE123456789").WithAuthority("DE"),
					NewIdentifier("vat", "DE123456789").WithAuthority("de"),
				),
			wantErr: ErrInvalidNode,
		},
		{
			name: "same scheme and value under different authorities is fine",
			node: NewNode("n1", NodeOrganization).
				WithIdentifier(
					NewIdentifier("nat-reg", "12345").WithAuthority("RA000001"),
					NewIdentifier("nat-reg", "12345").WithAuthority("RA000002"),
				),
		},
		{
			name: "identifier with empty value",
			node: NewNode("n1", NodeOrganization).
				WithIdentifier(NewIdentifier("lei", "")),
			wantErr: ErrInvalidNode,
		},
		{
			name: "inverted validity window",
			node: NewNode("n1", NodeOrganization).
				WithIdentifier(NewIdentifier("lei", "5493006MHB84DD0ZWV18").
					WithValidity(MustDate("2024-06-01"), MustDate("2024-01-01"))),
			wantErr: ErrInvalidNode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.node.Validate()
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestParseCalendarDate(t *testing.T) {
	d, err := ParseCalendarDate("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", d.String())

	for _, bad := range []string{"2023-02-29", "2024-13-01", "20240101", "2024-1-1", ""} {
		_, err := ParseCalendarDate(bad)
		assert.ErrorIs(t, err, ErrInvalidDate, "input %q", bad)
	}

	assert.True(t, MustDate("2024-01-01").Before(MustDate("2024-01-02")))
	assert.True(t, MustDate("2024-01-02").After(MustDate("2024-01-01")))
}

func TestParseFileSalt(t *testing.T) {
	const salt = "00112233445566778899aabbccddeeff00112233445566778899aabbccddeeff"

	s, err := ParseFileSalt(salt)
	require.NoError(t, err)

	raw, err := s.Bytes()
	require.NoError(t, err)
	assert.Len(t, raw, 32)
	assert.Equal(t, byte(0x00), raw[0])
	assert.Equal(t, byte(0xff), raw[31])

	tests := []struct {
		name  string
		input string
	}{
		{"too short", "0011"},
		{"uppercase hex", "00112233445566778899AABBCCDDEEFF00112233445566778899AABBCCDDEEFF"},
		{"non-hex character", "zz112233445566778899aabbccddeeff00112233445566778899aabbccddeeff"},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFileSalt(tt.input)
			assert.ErrorIs(t, err, ErrInvalidSalt)
		})
	}
}

func TestFile_Validate(t *testing.T) {
	good := NewFile().
		WithNode(
			NewNode("a", NodeOrganization),
			NewNode("b", NodeFacility),
		).
		WithEdge(NewEdge("e1", EdgeOperates, "a", "b"))
	require.NoError(t, good.Validate())

	dup := NewFile().WithNode(NewNode("a", NodeOrganization), NewNode("a", NodeGood))
	require.ErrorIs(t, dup.Validate(), ErrInvalidFile)

	dangling := NewFile().
		WithNode(NewNode("a", NodeOrganization)).
		WithEdge(NewEdge("e1", EdgeSupplies, "a", "missing"))
	require.ErrorIs(t, dangling.Validate(), ErrInvalidFile)
}

func TestNode_CloneIsDeep(t *testing.T) {
	n := NewNode("n1", NodeOrganization).
		WithIdentifier(NewIdentifier("lei", "5493006MHB84DD0ZWV18")).
		WithLabel("k", "v")
	n.Extra = map[string]any{"x": "y"}

	c := n.Clone()
	c.Identifiers[0].Value = "changed"
	c.Labels[0].Value = "changed"
	c.Extra["x"] = "changed"

	assert.Equal(t, "5493006MHB84DD0ZWV18", n.Identifiers[0].Value)
	assert.Equal(t, "v", n.Labels[0].Value)
	assert.Equal(t, "y", n.Extra["x"])
}

func TestNode_PropertiesRoundTrip(t *testing.T) {
	n := NewNode("n1", NodeFacility).
		WithName("Plant 7").
		WithProperty("address", "Dock Rd").
		WithProperty("capacity", 1200)

	props := n.Properties()
	assert.Equal(t, "Plant 7", props["name"])
	assert.Equal(t, "Dock Rd", props["address"])
	assert.Equal(t, 1200, props["capacity"])

	// Engine annotations never surface as properties.
	n.Extra["_conflicts"] = []any{"x"}
	_, ok := n.Properties()["_conflicts"]
	assert.False(t, ok)

	n.ClearProperty("name")
	assert.Empty(t, n.Name)
}

func TestEdge_Properties(t *testing.T) {
	e := NewEdge("e1", EdgeSupplies, "a", "b").
		WithTier(2).
		WithProperty("commodity", "coffee").
		WithProperty("contract_ref", "C-99")

	props := e.Properties()
	assert.Equal(t, 2, props["tier"])
	assert.Equal(t, "coffee", props["commodity"])
	assert.Equal(t, "C-99", props["contract_ref"])

	e.ClearProperty("tier")
	assert.Nil(t, e.Tier)
}

func TestConfidence_AtLeast(t *testing.T) {
	assert.True(t, ConfidenceDefinite.AtLeast(ConfidencePossible))
	assert.True(t, ConfidenceProbable.AtLeast(ConfidenceProbable))
	assert.False(t, ConfidencePossible.AtLeast(ConfidenceProbable))
	assert.False(t, Confidence("").AtLeast(ConfidencePossible))
}

func TestDisclosureScope_Admits(t *testing.T) {
	assert.True(t, ScopePublic.Admits(SensitivityPublic))
	assert.False(t, ScopePublic.Admits(SensitivityRestricted))
	assert.True(t, ScopePartner.Admits(SensitivityRestricted))
	assert.False(t, ScopePartner.Admits(SensitivityConfidential))
	assert.True(t, ScopePrivate.Admits(SensitivityConfidential))
}
