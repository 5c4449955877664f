package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Resolve(t *testing.T) {
	testCases := []struct {
		name   string
		input  string
		expect Verb
	}{
		{name: "canonical", input: "attack", expect: VerbAttack},
		{name: "upper case", input: "ATTACK", expect: VerbAttack},
		{name: "mixed case alias", input: "Kill", expect: VerbAttack},
		{name: "inventory short", input: "i", expect: VerbInventory},
		{name: "direction", input: "n", expect: VerbMove},
		{name: "unknown passes through unchanged", input: "Dance", expect: Verb("Dance")},
		{name: "no prefix matching", input: "atta", expect: Verb("atta")},
		{name: "empty", input: "", expect: Verb("")},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			actual := Resolve(tc.input)

			assert.Equal(tc.expect, actual)
		})
	}
}

func Test_Resolve_manyToOne(t *testing.T) {
	assert := assert.New(t)

	expect := Resolve("attack")

	for _, tok := range []string{"att", "a", "kill", "k"} {
		assert.Equal(expect, Resolve(tok), "token %q", tok)
	}
}

func Test_Verb_Known(t *testing.T) {
	assert := assert.New(t)

	assert.True(Resolve("get").Known())
	assert.True(Resolve("s").Known())
	assert.False(Resolve("wave").Known())
}

func Test_Direction(t *testing.T) {
	assert := assert.New(t)

	dir, ok := Direction("U")
	assert.True(ok)
	assert.Equal("up", dir)

	_, ok = Direction("sideways")
	assert.False(ok)
}

func Test_Aliases_isCopy(t *testing.T) {
	assert := assert.New(t)

	all := Aliases()
	assert.Equal([]string{"a", "att", "attack", "k", "kill"}, all[VerbAttack])

	all[VerbAttack] = nil
	assert.Equal(VerbAttack, Resolve("k"))
	assert.Len(Aliases()[VerbAttack], 5)
}

func Test_Action_Passthrough(t *testing.T) {
	assert := assert.New(t)

	assert.False(GetAll.Passthrough())
	assert.True(Action("wave").Passthrough())
}
