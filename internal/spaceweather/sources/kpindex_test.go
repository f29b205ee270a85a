package sources

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/aurora-bot/internal/observability"
	"github.com/i474232898/aurora-bot/internal/spaceweather"
)

const kpTable = `[
  ["time_tag","Kp","a_running","station_count"],
  ["2024-05-10 12:00:00.000","3.67","22","8"],
  ["2024-05-10 15:00:00.000","4.33","32","8"],
  ["2024-05-10 18:00:00.000","8.67","400","8"]
]`

func testKpIndex(baseURL string, m *observability.Metrics) *KpIndexSource {
	s := NewKpIndexSource(testHTTPClient(), testLogger(), m)
	s.baseURL = baseURL
	return s
}

func TestParseKpTable_TakesLastRow(t *testing.T) {
	idx, err := parseKpTable([]byte(kpTable))

	require.NoError(t, err)
	assert.Equal(t, spaceweather.PlanetaryIndex{Kp: 8.67, Timestamp: "2024-05-10 18:00:00.000"}, idx)
}

func TestParseKpTable_ColumnOrderFollowsHeader(t *testing.T) {
	body := `[["Kp","time_tag"],["1.0","a"],["2.33","b"]]`

	idx, err := parseKpTable([]byte(body))

	require.NoError(t, err)
	assert.Equal(t, 2.33, idx.Kp)
	assert.Equal(t, "b", idx.Timestamp)
}

func TestParseKpTable_NumericKp(t *testing.T) {
	body := `[["time_tag","Kp"],["2024-05-10 18:00:00.000",4]]`

	idx, err := parseKpTable([]byte(body))

	require.NoError(t, err)
	assert.Equal(t, 4.0, idx.Kp)
}

func TestParseKpTable_Rejects(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not a list", `{"Kp":"3"}`},
		{"list of objects", `[{"time_tag":"x","Kp":"3"}]`},
		{"header only", `[["time_tag","Kp"]]`},
		{"empty list", `[]`},
		{"missing Kp column", `[["time_tag","a_running"],["x","3"]]`},
		{"missing time_tag column", `[["Kp"],["3"]]`},
		{"short last row", `[["time_tag","Kp"],["x","3"],["y"]]`},
		{"non numeric Kp", `[["time_tag","Kp"],["x","high"]]`},
		{"null Kp", `[["time_tag","Kp"],["x",null]]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseKpTable([]byte(tt.body))
			assert.ErrorIs(t, err, errKpTable)
		})
	}
}

func TestKpIndexSource_Success(t *testing.T) {
	srv := serve(t, http.StatusOK, contentTypeJSON, kpTable)
	m := observability.NewMetricsForTesting()

	idx, ok := testKpIndex(srv.URL, m).PlanetaryIndex(t.Context())

	assert.True(t, ok)
	assert.Equal(t, 8.67, idx.Kp)
	assert.Equal(t, 1.0, fetchCount(m, "planetary", "ok"))
}

func TestKpIndexSource_Unavailable(t *testing.T) {
	srv := serve(t, http.StatusServiceUnavailable, contentTypeJSON, `[]`)
	m := observability.NewMetricsForTesting()

	_, ok := testKpIndex(srv.URL, m).PlanetaryIndex(t.Context())

	assert.False(t, ok)
	assert.Equal(t, 1.0, fetchCount(m, "planetary", "unavailable"))
}
