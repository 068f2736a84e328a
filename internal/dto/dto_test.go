package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDate_In(t *testing.T) {
	jst := time.FixedZone("JST", 9*60*60)
	ny := time.FixedZone("EST", -5*60*60)

	var d Date
	require.NoError(t, json.Unmarshal([]byte(`"2025-03-10"`), &d))
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, ny), *d.In(ny))
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, jst), *d.In(jst))

	require.NoError(t, json.Unmarshal([]byte(`"2025-03-10T20:00:00Z"`), &d))
	assert.Equal(t, time.Date(2025, 3, 11, 0, 0, 0, 0, jst), *d.In(jst))

	require.NoError(t, json.Unmarshal([]byte(`null`), &d))
	assert.Nil(t, d.In(jst))

	assert.Error(t, json.Unmarshal([]byte(`"10/03/2025"`), &d))
}

func TestFeedRequest_Decode(t *testing.T) {
	var req FeedRequest
	body := `{"cat_id":3,"overlay":[{"key":"task:7:morning:0","value":"done","since":"2025-03-10T08:00:00+09:00"}]}`
	require.NoError(t, json.Unmarshal([]byte(body), &req))
	assert.Equal(t, int64(3), req.CatID)
	require.Len(t, req.Overlay, 1)
	assert.Equal(t, "", req.Overlay[0].Phase)
}
