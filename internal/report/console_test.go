package report

import (
	"bytes"
	"strings"
	"testing"
	"time"
	"youtube-tracker/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintSummary(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 1, 2, 9, 30, 0, 0, jst)
	windows := []domain.Window{
		{Kind: domain.WindowDaily, Group: "日本グループ", Deltas: domain.DeltaSet{
			{Name: "AKB48", Value: 0},
			{Name: "乃木坂46", Value: 4321},
		}},
		{Kind: domain.WindowWeekly, Group: "日本グループ"},
	}

	var buf bytes.Buffer
	require.NoError(t, PrintSummary(&buf, windows, now, jst))

	out := buf.String()
	assert.Contains(t, out, "2024-01-02 09:30 の日本グループ日別再生数ランキング")
	assert.Contains(t, out, "1位")
	assert.Contains(t, out, "+4,321回")
	assert.Contains(t, out, "未更新")
	assert.Less(t, strings.Index(out, "乃木坂46"), strings.Index(out, "AKB48"))
	assert.Contains(t, out, "前回データがないため、日本グループの週間ランキングは表示できません。")
}
