package schema_test

import (
	"testing"

	"github.com/gnames/gnbundle/pkg/schema"
	"github.com/stretchr/testify/assert"
)

type tabler interface {
	TableName() string
}

func TestTableNames(t *testing.T) {
	want := []string{
		"terms", "term_meta", "items", "item_meta",
		"item_terms", "media", "kv_entries",
	}
	models := schema.AllModels()
	assert.Len(t, models, len(want))
	for i, m := range models {
		tb, ok := m.(tabler)
		assert.True(t, ok)
		assert.Equal(t, want[i], tb.TableName())
	}
}
