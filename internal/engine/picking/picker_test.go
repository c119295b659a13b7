package picking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPickerResolve(t *testing.T) {
	p := NewPicker("Base", map[string]string{
		"Base001": "Gotinha 1",
		"Base002": "Gotinha 2",
	})

	assert.Equal(t, "Gotinha 1", p.Resolve("Base001"))
	assert.Equal(t, "Gotinha 2", p.Resolve("Base002"))
	assert.Equal(t, "", p.Resolve("Base003"), "prefix match without a message")
	assert.Equal(t, "", p.Resolve("Roof"), "no prefix")
}

func TestPickerUpdate(t *testing.T) {
	p := NewPicker("Base", map[string]string{"Base001": "Gotinha 1"})

	msg, changed := p.Update("Base001", true)
	assert.Equal(t, "Gotinha 1", msg)
	assert.True(t, changed)

	_, changed = p.Update("Base001", true)
	assert.False(t, changed, "same hit twice")

	msg, changed = p.Update("", false)
	assert.Equal(t, "", msg, "a miss clears the message")
	assert.True(t, changed)
	assert.Equal(t, "", p.Message())
}

func TestPickerCopiesMessages(t *testing.T) {
	messages := map[string]string{"Base001": "one"}
	p := NewPicker("Base", messages)
	messages["Base001"] = "changed"
	assert.Equal(t, "one", p.Resolve("Base001"))
}
