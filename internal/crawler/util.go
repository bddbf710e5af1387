package crawler

import (
	"context"
	"sort"
	"time"
)

func (m *Miner) logCrawlResults(ctx context.Context, session *CrawlSession) {
	st := session.Status()
	endTime := m.Now()

	m.Logger.Info(ctx, "==== KẾT QUẢ CRAWL %s ====", st.RunID)
	m.Logger.Info(ctx, "Thời gian bắt đầu: %s", st.StartedAt.Format(time.RFC3339))
	m.Logger.Info(ctx, "Thời gian kết thúc: %s", endTime.Format(time.RFC3339))
	m.Logger.Info(ctx, "Tổng thời gian thực hiện: %v", endTime.Sub(st.StartedAt).Round(time.Second))
	m.Logger.Info(ctx, "Số repositories đã phân tích: %d", st.Analyzed)
	m.Logger.Info(ctx, "Số repositories đã lưu: %d", st.Saved)
	m.Logger.Info(ctx, "Số repositories đã xử lý (tổng): %d", st.Processed)

	reasons := make([]string, 0, len(st.Skipped))
	for r := range st.Skipped {
		reasons = append(reasons, r)
	}
	sort.Strings(reasons)
	for _, r := range reasons {
		m.Logger.Info(ctx, "Bỏ qua (%s): %d", r, st.Skipped[r])
	}
}
