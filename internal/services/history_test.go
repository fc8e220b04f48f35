package services

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedHistoryService() *HistoryService {
	svc := NewHistoryService(&fakeVisitRepo{}, logrus.New())
	// 2025-06-15 15:00 local time
	svc.now = func() time.Time {
		return time.Date(2025, 6, 15, 15, 0, 0, 0, time.Local)
	}
	return svc
}

func TestTimeFilter_Yesterday(t *testing.T) {
	svc := fixedHistoryService()

	since := svc.timeFilter([]string{"time:昨天"})
	require.NotNil(t, since)
	assert.Equal(t, time.Date(2025, 6, 14, 0, 0, 0, 0, time.Local), *since)
}

func TestTimeFilter_LastWeekAndRecent(t *testing.T) {
	svc := fixedHistoryService()

	lastWeek := svc.timeFilter([]string{"time:上周"})
	require.NotNil(t, lastWeek)
	assert.Equal(t, time.Date(2025, 6, 8, 15, 0, 0, 0, time.Local), *lastWeek)

	recent := svc.timeFilter([]string{"time:最近"})
	require.NotNil(t, recent)
	assert.Equal(t, time.Date(2025, 6, 12, 15, 0, 0, 0, time.Local), *recent)
}

func TestTimeFilter_NoTimeModifier(t *testing.T) {
	svc := fixedHistoryService()

	assert.Nil(t, svc.timeFilter(nil))
	assert.Nil(t, svc.timeFilter([]string{"topic:关于"}))
}

func TestFormatDate_Relative(t *testing.T) {
	svc := fixedHistoryService()

	assert.Equal(t, "今天", svc.formatDate(time.Date(2025, 6, 15, 9, 0, 0, 0, time.Local)))
	assert.Equal(t, "昨天", svc.formatDate(time.Date(2025, 6, 14, 23, 0, 0, 0, time.Local)))
	assert.Equal(t, "3天前", svc.formatDate(time.Date(2025, 6, 12, 12, 0, 0, 0, time.Local)))
}
