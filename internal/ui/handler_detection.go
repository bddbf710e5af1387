package ui

import (
	"net/http"
	"strconv"

	"github.com/thep200/a11y-miner/internal/model"
)

type Detection struct {
	FullName   string   `json:"fullName"`
	Stars      int      `json:"stars"`
	LastCommit string   `json:"lastCommit"`
	Language   string   `json:"language"`
	Tools      []string `json:"tools"`
	RunID      string   `json:"runId"`
	UpdatedAt  string   `json:"updatedAt"`
}

func (h *Handler) getDetections(w http.ResponseWriter, r *http.Request) {
	if h.Detections == nil {
		unavailable(w, r)
		return
	}

	// Parse query parameters
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}
	pageSize, err := strconv.Atoi(r.URL.Query().Get("pageSize"))
	if err != nil || pageSize < 1 || pageSize > 100 {
		pageSize = 50
	}

	rows, totalCount, err := h.Detections.List(r.Context(), model.DetectionFilter{
		Search:   r.URL.Query().Get("search"),
		Tool:     r.URL.Query().Get("tool"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		h.Logger.Error(r.Context(), "Failed to fetch detections: %v", err)
		http.Error(w, "Failed to fetch detections", http.StatusInternalServerError)
		return
	}

	// Response format
	detections := make([]Detection, 0, len(rows))
	for _, d := range rows {
		detections = append(detections, Detection{
			FullName:   d.FullName,
			Stars:      d.Stars,
			LastCommit: d.LastCommit.Format("2006-01-02"),
			Language:   d.Language,
			Tools:      d.ToolList(),
			RunID:      d.RunID,
			UpdatedAt:  d.UpdatedAt.Format("2006-01-02"),
		})
	}

	h.writeJSON(w, r, map[string]interface{}{
		"detections": detections,
		"pagination": map[string]interface{}{
			"page":       page,
			"pageSize":   pageSize,
			"totalCount": totalCount,
			"totalPages": (totalCount + int64(pageSize) - 1) / int64(pageSize),
		},
	})
}
