package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_MakeTextList(t *testing.T) {
	testCases := []struct {
		name   string
		items  []string
		conj   string
		expect string
	}{
		{name: "empty", items: nil, conj: "and", expect: ""},
		{name: "one", items: []string{"name"}, conj: "and", expect: "name"},
		{name: "two", items: []string{"male", "female"}, conj: "or", expect: "male or female"},
		{name: "three", items: []string{"name", "password", "sex"}, conj: "and", expect: "name, password, and sex"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			actual := MakeTextList(tc.items, tc.conj)

			assert.Equal(tc.expect, actual)
		})
	}
}

func Test_MakeTextList_doesNotModifyInput(t *testing.T) {
	items := []string{"a", "b", "c"}

	MakeTextList(items, "and")

	assert.Equal(t, []string{"a", "b", "c"}, items)
}
