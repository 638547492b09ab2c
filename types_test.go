package cao

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypeEqualComposite(t *testing.T) {
	a := CompositeType("Point", map[string]Type{"x": concreteType(KNat), "y": concreteType(KNat)})
	b := CompositeType("Point", map[string]Type{"y": concreteType(KNat), "x": concreteType(KNat)})
	c := CompositeType("Point3", map[string]Type{"x": concreteType(KNat), "y": concreteType(KNat)})
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestTypeEqualDistinctVarsUnequal(t *testing.T) {
	assert.False(t, VarType("a").Equal(VarType("b")))
	assert.True(t, VarType("a").Equal(VarType("a")))
}

func TestTypeSigEqual(t *testing.T) {
	s1 := TypeSig{Inputs: []Type{concreteType(KNat)}, Outputs: []Type{concreteType(KNat)}}
	s2 := TypeSig{Inputs: []Type{concreteType(KNat)}, Outputs: []Type{concreteType(KNat)}}
	s3 := TypeSig{Inputs: []Type{concreteType(KBool)}, Outputs: []Type{concreteType(KNat)}}
	assert.True(t, s1.Equal(s2))
	assert.False(t, s1.Equal(s3))
}

func TestTypeSigEmpty(t *testing.T) {
	assert.True(t, TypeSig{}.Empty())
	assert.False(t, TypeSig{Inputs: []Type{concreteType(KNat)}}.Empty())
}

func TestNamedTypeMapsBuiltinKeywords(t *testing.T) {
	assert.Equal(t, KNat, namedType("Nat").Kind)
	assert.Equal(t, KBool, namedType("Bool").Kind)
	assert.Equal(t, KUnit, namedType("Unit").Kind)
	assert.Equal(t, KOrdinal, namedType("Ordinal").Kind)
	assert.Equal(t, KQuote, namedType("Quote").Kind)
	assert.Equal(t, KStr, namedType("Str").Kind)
}

func TestNamedTypeOtherIdentifierBecomesVar(t *testing.T) {
	ty := namedType("whatever")
	assert.Equal(t, KVar, ty.Kind)
	assert.Equal(t, "whatever", ty.Name)
}

func TestTypeSigString(t *testing.T) {
	sig := TypeSig{Inputs: []Type{concreteType(KNat)}, Outputs: []Type{concreteType(KNat)}}
	assert.Equal(t, "( Nat -> Nat )", sig.String())
}
