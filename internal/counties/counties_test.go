package counties

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	r, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 32, r.Len())

	all := r.All()
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].Name, all[i].Name, "All must be sorted by name")
	}
}

func TestLookup(t *testing.T) {
	r := MustLoad()

	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"Cork", "Cork", true},
		{"  cork ", "Cork", true},
		{"KERRY", "Kerry", true},
		{"Londonderry", "Derry", true},
		{"londonderry", "Derry", true},
		{"Derry", "Derry", true},
		{"", "", false},
		{"Atlantis", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			c, ok := r.Lookup(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, c.Name)
		})
	}
}

func TestAliasSharesCoordinates(t *testing.T) {
	r := MustLoad()
	derry, _ := r.Lookup("Derry")
	londonderry, _ := r.Lookup("Londonderry")
	assert.Equal(t, derry, londonderry)
	assert.Contains(t, r.Names(), "Londonderry")
	assert.Len(t, r.All(), 32, "aliases are not part of the ordered universe")
}

func TestDistanceProperties(t *testing.T) {
	r := MustLoad()
	for _, a := range r.All() {
		assert.Equal(t, 0.0, Distance(a, a))
		for _, b := range r.All() {
			d := Distance(a, b)
			assert.Equal(t, d, Distance(b, a))
			assert.LessOrEqual(t, d, MaxDistanceKm, "%s-%s", a.Name, b.Name)
		}
	}
}

func TestIsAdjacent(t *testing.T) {
	r := MustLoad()

	assert.True(t, r.IsAdjacent("Kerry", "Cork"))
	assert.True(t, r.IsAdjacent("cork", "KERRY"))
	assert.True(t, r.IsAdjacent("Londonderry", "Tyrone"))
	assert.True(t, r.IsAdjacent("Antrim", "Londonderry"))
	assert.False(t, r.IsAdjacent("Kerry", "Dublin"))
	assert.False(t, r.IsAdjacent("Derry", "Londonderry"))
	assert.False(t, r.IsAdjacent("Cork", ""))
	assert.False(t, r.IsAdjacent("", "Cork"))
	assert.False(t, r.IsAdjacent("Cork", "Atlantis"))
}

func TestAdjacencyInvariants(t *testing.T) {
	r := MustLoad()
	for _, a := range r.All() {
		assert.False(t, r.IsAdjacent(a.Name, a.Name))
		assert.NotEmpty(t, r.Neighbors(a.Name), a.Name)
		for _, b := range r.All() {
			assert.Equal(t, r.IsAdjacent(a.Name, b.Name), r.IsAdjacent(b.Name, a.Name), "%s-%s", a.Name, b.Name)
		}
	}
}

func TestParseRejectsBadGraphs(t *testing.T) {
	countyLines := []string{
		"A|1|1|P|fact",
		"B|2|2|P|fact",
		"C|3|3|P|fact",
	}
	tests := []struct {
		name    string
		borders []string
	}{
		{"asymmetric", []string{"A: B", "B: C", "C: B"}},
		{"self loop", []string{"A: A"}},
		{"duplicate neighbour", []string{"A: B, B", "B: A"}},
		{"unknown neighbour", []string{"A: Z"}},
		{"missing colon", []string{"A B"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(countyLines, tt.borders)
			assert.Error(t, err)
		})
	}
}

func TestParseRejectsBadCounties(t *testing.T) {
	_, err := Parse([]string{"A|x|1|P|fact"}, nil)
	assert.Error(t, err)

	_, err = Parse([]string{"A|1|1|P"}, nil)
	assert.Error(t, err)

	_, err = Parse([]string{"A|1|1|P|f", "Z=Missing"}, nil)
	assert.ErrorIs(t, err, ErrUnknownCounty)

	_, err = Parse(nil, nil)
	assert.Error(t, err)
}

func TestRandomIsMember(t *testing.T) {
	r := MustLoad()
	for i := 0; i < 50; i++ {
		c := r.Random()
		got, ok := r.Lookup(c.Name)
		require.True(t, ok)
		assert.Equal(t, c, got)
	}
}
