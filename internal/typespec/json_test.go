package typespec

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestType_JSONConstructorParams(t *testing.T) {
	tests := []struct {
		name string
		typ  *Type
		want string
	}{
		{"no constructor", Class(), "class"},
		{"empty constructor", &Type{Kind: ClassKind, ConstructorParams: []*Param{}}, "class()"},
		{"constructor params", &Type{Kind: ClassKind, ConstructorParams: []*Param{{Name: "x", Type: Named("number")}}}, "class(x: number)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.typ)
			require.NoError(t, err)

			var got *Type
			require.NoError(t, json.Unmarshal(data, &got))
			assert.Equal(t, tt.want, got.String())
			assert.Equal(t, tt.typ, got)
		})
	}
}

func TestType_JSONNested(t *testing.T) {
	fn := Function([]*Param{{Name: "a", Type: Nullable(Named("Object"))}}, Named("ContentMatch"))

	data, err := json.Marshal(fn)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "constructorParams")

	var got *Type
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, fn, got)
}
