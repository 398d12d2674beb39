package keys

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestFromID(t *testing.T) {
	assert.Equal(t, "struct_42", FromID(42))
	assert.Equal(t, FromID(42), FromID(42))
	assert.Equal(t, "struct_0", FromID(0))
}

func TestFromUID(t *testing.T) {
	uid := uuid.MustParse("6F9619FF-8B86-D011-B42D-00C04FC964FF")
	assert.Equal(t, "6f9619ff-8b86-d011-b42d-00c04fc964ff", FromUID(uid))
}

func TestFromString(t *testing.T) {
	assert.Equal(t, "shoes", FromString("Shoes"))
}

func TestToStructID_RoundTrip(t *testing.T) {
	for _, id := range []int{0, 1, 42, 1000, 987654321} {
		assert.Equal(t, id, ToStructID(FromID(id)))
	}
}

func TestToStructID_Malformed(t *testing.T) {
	cases := []string{"", "struct_", "struct_abc", "42", "other_42", "struct_-5", "struct_4 2"}
	for _, c := range cases {
		t.Run(c, func(t *testing.T) {
			assert.NotPanics(t, func() { ToStructID(c) })
			assert.Equal(t, Invalid, ToStructID(c))
		})
	}
}

func TestToStructID_CaseInsensitivePrefix(t *testing.T) {
	assert.Equal(t, 7, ToStructID("STRUCT_7"))
}
