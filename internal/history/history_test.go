package history

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Ring_Record(t *testing.T) {
	testCases := []struct {
		name   string
		record []string
		expect []string
	}{
		{
			name:   "nothing",
			expect: []string{},
		},
		{
			name:   "most recent first",
			record: []string{"n", "get sword", "i"},
			expect: []string{"i", "get sword", "n"},
		},
		{
			name:   "blank lines are skipped",
			record: []string{"n", "", "   ", "s"},
			expect: []string{"s", "n"},
		},
		{
			name:   "duplicates are kept",
			record: []string{"n", "n"},
			expect: []string{"n", "n"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)
			r := NewRing(0)

			for _, line := range tc.record {
				r.Record(line)
			}

			assert.Equal(tc.expect, r.Lines())
			assert.Equal(-1, r.Cursor())
		})
	}
}

func Test_Ring_Record_evictsOldest(t *testing.T) {
	assert := assert.New(t)
	r := NewRing(0)

	for i := 1; i <= 11; i++ {
		r.Record(fmt.Sprintf("line %d", i))
	}

	expect := []string{}
	for i := 11; i >= 2; i-- {
		expect = append(expect, fmt.Sprintf("line %d", i))
	}
	assert.Equal(10, r.Len())
	assert.Equal(expect, r.Lines())
}

func Test_Ring_Navigate(t *testing.T) {
	assert := assert.New(t)
	r := NewRing(0)
	for i := 1; i <= 11; i++ {
		r.Record(fmt.Sprintf("line %d", i))
	}

	var last string
	for i := 0; i < 10; i++ {
		last = r.Navigate(Older)
	}
	assert.Equal(9, r.Cursor())
	assert.Equal("line 2", last)

	// stops at the oldest line
	assert.Equal("line 2", r.Navigate(Older))
	assert.Equal(9, r.Cursor())

	for i := 0; i < 10; i++ {
		last = r.Navigate(Newer)
	}
	assert.Equal(-1, r.Cursor())
	assert.Equal("", last)

	// stops at the fresh line
	assert.Equal("", r.Navigate(Newer))
	assert.Equal(-1, r.Cursor())
}

func Test_Ring_Navigate_empty(t *testing.T) {
	assert := assert.New(t)
	r := NewRing(0)

	assert.Equal("", r.Navigate(Older))
	assert.Equal(-1, r.Cursor())
	assert.Equal("", r.Navigate(Newer))
	assert.Equal(-1, r.Cursor())
}

func Test_Ring_Record_resetsCursor(t *testing.T) {
	assert := assert.New(t)
	r := NewRing(0)
	r.Record("n")
	r.Record("s")

	assert.Equal("s", r.Navigate(Older))
	assert.Equal("n", r.Navigate(Older))

	r.Record("e")

	assert.Equal(-1, r.Cursor())
	assert.Equal("e", r.Navigate(Older))
}

func Test_Ring_concurrentUse(t *testing.T) {
	assert := assert.New(t)
	r := NewRing(0)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			r.Record(fmt.Sprintf("line %d", i))
		}
	}()
	for i := 0; i < 200; i++ {
		r.Navigate(Older)
		r.Navigate(Newer)
	}
	<-done

	assert.Equal(Capacity, r.Len())
	assert.Equal("line 199", r.Lines()[0])
}

func Test_Ring_Rewind(t *testing.T) {
	assert := assert.New(t)
	r := NewRing(0)
	r.Record("n")
	r.Record("s")
	r.Navigate(Older)

	r.Rewind()

	assert.Equal(-1, r.Cursor())
	assert.Equal([]string{"s", "n"}, r.Lines())
}
