package model

import (
	"strings"
	"time"
)

// Repository là bản ghi chuẩn hoá của một repository, không phụ thuộc vào
// việc dữ liệu đến từ GraphQL hay REST. Không sửa đổi sau khi tạo.
type Repository struct {
	FullName    string
	Stars       int
	Description string
	Homepage    string
	Language    string
	Topics      []string
	LastCommit  time.Time
	Archived    bool
	Fork        bool
}

// Name returns the part after the slash.
func (r *Repository) Name() string {
	if i := strings.IndexByte(r.FullName, '/'); i >= 0 {
		return r.FullName[i+1:]
	}
	return r.FullName
}

// Owner returns the part before the slash.
func (r *Repository) Owner() string {
	if i := strings.IndexByte(r.FullName, '/'); i >= 0 {
		return r.FullName[:i]
	}
	return ""
}

// CombinedText joins description, name and topics, lower-cased.
func (r *Repository) CombinedText() string {
	parts := make([]string, 0, 2+len(r.Topics))
	parts = append(parts, r.Description, r.Name())
	parts = append(parts, r.Topics...)
	return strings.ToLower(strings.Join(parts, " "))
}
