package paging

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromQuery(t *testing.T) {
	assert.Equal(t, Params{Page: 1, Limit: 10}, FromQuery("", ""))
	assert.Equal(t, Params{Page: 1, Limit: 10}, FromQuery("-3", "abc"))
	assert.Equal(t, Params{Page: 2, Limit: 25}, FromQuery("2", "25"))
	assert.Equal(t, Params{Page: 4, Limit: MaxLimit}, FromQuery("4", "1000"))
}

func TestFromQueryCapsHugePage(t *testing.T) {
	p := FromQuery("9223372036854775807", "100")
	assert.Equal(t, MaxPage, p.Page)
	assert.Equal(t, (MaxPage-1)*100, p.Offset())
	assert.Positive(t, p.Offset())

	assert.Equal(t, MaxPage, FromQuery("99999999999999999999999", "10").Page)
	assert.Equal(t, DefaultPage, FromQuery("-99999999999999999999999", "10").Page)
	assert.Equal(t, 1_000, FromQuery("1000", "10").Page)
}

func TestOffset(t *testing.T) {
	assert.Equal(t, 0, Params{Page: 1, Limit: 10}.Offset())
	assert.Equal(t, 10, Params{Page: 2, Limit: 10}.Offset())
}

func TestNewResult(t *testing.T) {
	r := NewResult([]int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 25, Params{Page: 2, Limit: 10})
	assert.Len(t, r.Data, 10)
	assert.Equal(t, int64(25), r.TotalCount)
	assert.Equal(t, 3, r.TotalPages)
	assert.Equal(t, 2, r.CurrentPage)
	assert.Equal(t, 10, r.Limit)

	empty := NewResult[int](nil, 0, Params{Page: 1, Limit: 10})
	assert.NotNil(t, empty.Data)
	assert.Equal(t, 0, empty.TotalPages)
}
