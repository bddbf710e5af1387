package model

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/thep200/a11y-miner/pkg/db"
	"github.com/thep200/a11y-miner/pkg/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Detection is the MySQL mirror of one ledger row.
type Detection struct {
	Model
	FullName   string    `json:"full_name" gorm:"column:full_name;type:varchar(255);uniqueIndex;not null"`
	Stars      int       `json:"stars" gorm:"column:stars;default:0"`
	LastCommit time.Time `json:"last_commit" gorm:"column:last_commit"`
	Language   string    `json:"language" gorm:"column:language;type:varchar(64)"`
	Tools      string    `json:"tools" gorm:"column:tools;type:varchar(512)"`
	RunID      string    `json:"run_id" gorm:"column:run_id;type:varchar(36)"`
}

func (d *Detection) TableName() string {
	return "detections"
}

// ToolList splits the comma separated Tools column.
func (d *Detection) ToolList() []string {
	if d.Tools == "" {
		return nil
	}
	return strings.Split(d.Tools, ",")
}

// DetectionStore upserts detections keyed by full name.
type DetectionStore struct {
	Logger log.Logger
	Mysql  *db.Mysql
}

func NewDetectionStore(logger log.Logger, mysql *db.Mysql) (*DetectionStore, error) {
	return &DetectionStore{Logger: logger, Mysql: mysql}, nil
}

func (s *DetectionStore) Upsert(ctx context.Context, msg DetectionMessage) error {
	return s.UpsertBatch(ctx, []DetectionMessage{msg})
}

func (s *DetectionStore) UpsertBatch(ctx context.Context, msgs []DetectionMessage) error {
	if len(msgs) == 0 {
		return nil
	}
	conn, err := s.Mysql.Db()
	if err != nil {
		return fmt.Errorf("failed to get database connection: %w", err)
	}

	rows := make([]Detection, 0, len(msgs))
	for _, m := range msgs {
		rows = append(rows, m.ToDetection())
	}

	return conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "full_name"}},
			DoUpdates: clause.AssignmentColumns([]string{"stars", "last_commit", "language", "tools", "run_id", "updated_at"}),
		}).CreateInBatches(rows, 100)
		if result.Error != nil {
			return fmt.Errorf("failed to upsert detections: %w", result.Error)
		}
		return nil
	})
}

// DetectionFilter selects a page of detections, most starred first.
type DetectionFilter struct {
	Search   string
	Tool     string
	Page     int
	PageSize int
}

func (s *DetectionStore) List(ctx context.Context, f DetectionFilter) ([]Detection, int64, error) {
	conn, err := s.Mysql.Db()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get database connection: %w", err)
	}

	query := conn.WithContext(ctx).Model(&Detection{})
	if f.Search != "" {
		query = query.Where("full_name LIKE ?", "%"+f.Search+"%")
	}
	if f.Tool != "" {
		query = query.Where("FIND_IN_SET(?, tools) > 0", f.Tool)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count detections: %w", err)
	}

	var rows []Detection
	offset := (f.Page - 1) * f.PageSize
	if err := query.Order("stars DESC").Offset(offset).Limit(f.PageSize).Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch detections: %w", err)
	}
	return rows, total, nil
}
