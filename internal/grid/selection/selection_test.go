package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type item struct {
	ID   string
	Name string
}

func itemID(i item) string { return i.ID }

func TestSet_Toggle(t *testing.T) {
	s := &Set{}

	s.Toggle("a")
	assert.True(t, s.IsSelected("a"))
	assert.Equal(t, 1, s.Len())

	s.Toggle("a")
	assert.False(t, s.IsSelected("a"))
	assert.Zero(t, s.Len())
}

func TestSet_ToggleIsXOR(t *testing.T) {
	// Membership after a toggle sequence is the XOR-reduction of the toggles.
	seq := []string{"a", "b", "a", "c", "b", "a"}
	s := New()
	for _, id := range seq {
		s.Toggle(id)
	}
	assert.Equal(t, []string{"a", "c"}, s.IDs())
}

func TestSet_ToggleAllOnPage(t *testing.T) {
	tests := []struct {
		name        string
		initial     []string
		page        []string
		want        []string
		wantChanged bool
	}{
		{
			name:        "none selected selects all",
			page:        []string{"1", "2", "3"},
			want:        []string{"1", "2", "3"},
			wantChanged: true,
		},
		{
			name:        "some selected selects the rest",
			initial:     []string{"2", "x"},
			page:        []string{"1", "2", "3"},
			want:        []string{"1", "2", "3", "x"},
			wantChanged: true,
		},
		{
			name:        "all selected deselects page only",
			initial:     []string{"1", "2", "3", "x"},
			page:        []string{"1", "2", "3"},
			want:        []string{"x"},
			wantChanged: true,
		},
		{
			name:    "empty page",
			initial: []string{"x"},
			want:    []string{"x"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(tt.initial...)
			changed := s.ToggleAllOnPage(tt.page)
			assert.Equal(t, tt.wantChanged, changed)
			assert.Equal(t, tt.want, s.IDs())
		})
	}
}

func TestSet_AllAndSomeSelected(t *testing.T) {
	s := New("1", "2")
	assert.True(t, s.AllSelected([]string{"1", "2"}))
	assert.False(t, s.AllSelected([]string{"1", "3"}))
	assert.False(t, s.AllSelected(nil))
	assert.True(t, s.SomeSelected([]string{"1", "3"}))
	assert.False(t, s.SomeSelected([]string{"1", "2"}))
	assert.False(t, s.SomeSelected([]string{"3"}))
}

func TestSet_ClearAndRetain(t *testing.T) {
	s := New("1", "2", "3")
	assert.True(t, s.Retain([]string{"2", "3", "4"}))
	assert.Equal(t, []string{"2", "3"}, s.IDs())
	assert.False(t, s.Retain([]string{"2", "3"}))

	assert.True(t, s.Clear())
	assert.False(t, s.Clear())
	assert.Zero(t, s.Len())
}

func TestSet_CloneAndEqual(t *testing.T) {
	s := New("1", "2")
	c := s.Clone()
	assert.True(t, s.Equal(c))

	c.Toggle("3")
	assert.False(t, s.Equal(c))
	assert.False(t, s.IsSelected("3"))

	var zero Set
	assert.True(t, zero.Equal(nil))
	assert.True(t, zero.Equal(New()))
}

func TestSelectedRows(t *testing.T) {
	known := []item{{ID: "1", Name: "a"}, {ID: "2", Name: "b"}, {ID: "3", Name: "c"}}
	s := New("3", "1", "gone")

	rows := SelectedRows(s, known, itemID)
	assert.Equal(t, []item{{ID: "1", Name: "a"}, {ID: "3", Name: "c"}}, rows)
	assert.Equal(t, []string{"1", "2", "3"}, IDsOf(known, itemID))
}
