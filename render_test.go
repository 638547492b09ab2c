package cao

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderPrimitives(t *testing.T) {
	assert.Equal(t, "()", Render(UnitValue()))
	assert.Equal(t, "true", Render(BoolValue(true)))
	assert.Equal(t, "false", Render(BoolValue(false)))
	assert.Equal(t, "7", Render(NatValue(7)))
	assert.Equal(t, "hello", Render(StrValue("hello")))
}

func TestRenderQuote(t *testing.T) {
	q := QuoteValue([]Token{litTok(NatValue(2), 0), wordTok("*", 0)})
	assert.Equal(t, "[ 2 * ]", Render(q))
}

func TestRenderOptionResult(t *testing.T) {
	assert.Equal(t, "Some(1)", Render(SomeValue(NatValue(1))))
	assert.Equal(t, "None", Render(NoneValue()))
	assert.Equal(t, "Ok(1)", Render(OkValue(NatValue(1))))
	assert.Equal(t, "Err(0)", Render(ErrValue(NatValue(0))))
}

func TestRenderList(t *testing.T) {
	l := ListValue([]Value{NatValue(1), NatValue(2), NatValue(3)})
	assert.Equal(t, "[1, 2, 3]", Render(l))
}

func TestRenderComposite(t *testing.T) {
	c := CompositeVal(&CompositeValue{Name: "Point", Fields: []Field{
		{Name: "x", Value: NatValue(1)}, {Name: "y", Value: NatValue(2)},
	}})
	assert.Equal(t, "Point{ x:1 y:2 }", Render(c))
}

func TestRenderOrdinal(t *testing.T) {
	assert.Equal(t, "0", Render(OrdinalValue(Zero())))
	assert.Equal(t, "ω", Render(OrdinalValue(Omega())))
}

func TestRenderStackFormat(t *testing.T) {
	s := []Value{NatValue(1), NatValue(2)}
	assert.Equal(t, "2 1 2", RenderStack(s))
	assert.Equal(t, "0", RenderStack(nil))
}

func TestRenderTokenString(t *testing.T) {
	tok := litTok(StrValue("hi"), 0)
	assert.Equal(t, `"hi"`, RenderToken(tok))
}
