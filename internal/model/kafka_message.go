package model

import (
	"strings"
	"time"
)

// DetectionMessage là dữ liệu một repository đã lưu, gửi tới Kafka.
type DetectionMessage struct {
	RunID      string          `json:"run_id"`
	FullName   string          `json:"full_name"`
	Stars      int             `json:"stars"`
	LastCommit time.Time       `json:"last_commit"`
	Language   string          `json:"language"`
	Tools      map[string]bool `json:"tools"`
	// ToolOrder keeps catalog order for consumers that rebuild ledger rows.
	ToolOrder []string `json:"tool_order"`
}

// DetectedTools returns the detected tool names in catalog order.
func (m DetectionMessage) DetectedTools() []string {
	var out []string
	for _, name := range m.ToolOrder {
		if m.Tools[name] {
			out = append(out, name)
		}
	}
	return out
}

func (m DetectionMessage) ToDetection() Detection {
	return Detection{
		FullName:   TruncateString(m.FullName, 250),
		Stars:      m.Stars,
		LastCommit: m.LastCommit,
		Language:   TruncateString(m.Language, 60),
		Tools:      TruncateString(strings.Join(m.DetectedTools(), ","), 500),
		RunID:      m.RunID,
	}
}
