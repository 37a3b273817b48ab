package storage

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"resume-match-go/internal/config"
	"resume-match-go/internal/storage/models"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// ErrRecordNotFound 查询无结果时返回，等价于 gorm.ErrRecordNotFound
var ErrRecordNotFound = gorm.ErrRecordNotFound

// Database 关系数据库接口
type Database interface {
	// DB 返回GORM数据库连接实例
	DB() *gorm.DB

	// Close 关闭数据库连接
	Close() error
}

// 确保MySQL实现了Database接口
var _ Database = (*MySQL)(nil)

// MySQL 提供关系数据库功能
type MySQL struct {
	db  *gorm.DB
	cfg *config.MySQLConfig
}

// NewMySQL 创建MySQL客户端并自动迁移表结构
func NewMySQL(cfg *config.MySQLConfig) (*MySQL, error) {
	if cfg == nil {
		return nil, fmt.Errorf("MySQL配置不能为空")
	}

	// 构建DSN，附带超时设置
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local&timeout=%ds&readTimeout=%ds&writeTimeout=%ds",
		cfg.Username, cfg.Password, cfg.Host, cfg.Port, cfg.Database,
		cfg.ConnectTimeoutSeconds, cfg.ReadTimeoutSeconds, cfg.WriteTimeoutSeconds)

	// 配置GORM日志级别
	var logLevel logger.LogLevel
	switch cfg.LogLevel {
	case 1:
		logLevel = logger.Silent
	case 2:
		logLevel = logger.Error
	case 3:
		logLevel = logger.Warn
	case 4:
		logLevel = logger.Info
	default:
		logLevel = logger.Warn
	}

	gormConfig := &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   logger.Default.LogMode(logLevel),
		PrepareStmt:                              true,
		NowFunc: func() time.Time {
			return time.Now().Local()
		},
	}

	db, err := gorm.Open(mysql.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("连接MySQL失败: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取底层 sql.DB 失败: %w", err)
	}

	// 连接池参数
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)
	sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTimeMinutes) * time.Minute)

	m := &MySQL{
		db:  db,
		cfg: cfg,
	}

	if err := m.autoMigrateSchema(); err != nil {
		if sqlDB, dbErr := db.DB(); dbErr == nil {
			sqlDB.Close()
		}
		return nil, fmt.Errorf("自动迁移数据库结构失败: %w", err)
	}

	log.Println("成功连接到MySQL并自动迁移数据库结构")
	return m, nil
}

// autoMigrateSchema 使用GORM自动迁移数据库表结构
func (m *MySQL) autoMigrateSchema() error {
	// 迁移期间关闭SQL日志打印
	silentLogger := logger.New(
		log.New(log.Writer(), "", log.LstdFlags),
		logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Silent,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	silentDB := m.db.Session(&gorm.Session{Logger: silentLogger})

	err := silentDB.AutoMigrate(
		&models.ResumeRecord{},
		&models.JobRecord{},
		&models.MatchRecord{},
	)
	if err != nil {
		return fmt.Errorf("GORM自动迁移失败: %w", err)
	}
	return nil
}

// DB 返回GORM数据库连接实例
func (m *MySQL) DB() *gorm.DB {
	return m.db
}

// Close 关闭数据库连接
func (m *MySQL) Close() error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return fmt.Errorf("获取底层 sql.DB 失败: %w", err)
	}
	return sqlDB.Close()
}

// SaveResume 保存简历记录，主键冲突时整体覆盖（重新解析同一份简历）
func (m *MySQL) SaveResume(ctx context.Context, record *models.ResumeRecord) error {
	if record == nil || record.ResumeID == "" {
		return fmt.Errorf("简历记录及其ID不能为空")
	}
	return m.db.WithContext(ctx).Clauses(
		clause.OnConflict{
			Columns:   []clause.Column{{Name: "resume_id"}},
			UpdateAll: true,
		}).Create(record).Error
}

// GetResume 按ID查询简历记录
func (m *MySQL) GetResume(ctx context.Context, resumeID string) (*models.ResumeRecord, error) {
	var record models.ResumeRecord
	err := m.db.WithContext(ctx).First(&record, "resume_id = ?", resumeID).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// FindResumeByFileMD5 按上传文件内容MD5查重，未命中时返回(nil, nil)
func (m *MySQL) FindResumeByFileMD5(ctx context.Context, md5Hex string) (*models.ResumeRecord, error) {
	var record models.ResumeRecord
	err := m.db.WithContext(ctx).First(&record, "file_md5 = ?", md5Hex).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// ListResumes 按创建时间倒序分页列出简历
func (m *MySQL) ListResumes(ctx context.Context, limit, offset int) ([]models.ResumeRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	var records []models.ResumeRecord
	err := m.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&records).Error
	return records, err
}

// DeleteResume 删除简历记录及其匹配快照
func (m *MySQL) DeleteResume(ctx context.Context, resumeID string) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("resume_id = ?", resumeID).Delete(&models.MatchRecord{}).Error; err != nil {
			return fmt.Errorf("删除匹配快照失败: %w", err)
		}
		result := tx.Where("resume_id = ?", resumeID).Delete(&models.ResumeRecord{})
		if result.Error != nil {
			return fmt.Errorf("删除简历记录失败: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// SaveJob 保存岗位记录，主键冲突时整体覆盖
func (m *MySQL) SaveJob(ctx context.Context, record *models.JobRecord) error {
	if record == nil || record.JobID == "" {
		return fmt.Errorf("岗位记录及其ID不能为空")
	}
	return m.db.WithContext(ctx).Clauses(
		clause.OnConflict{
			Columns:   []clause.Column{{Name: "job_id"}},
			UpdateAll: true,
		}).Create(record).Error
}

// GetJob 按ID查询岗位记录
func (m *MySQL) GetJob(ctx context.Context, jobID string) (*models.JobRecord, error) {
	var record models.JobRecord
	err := m.db.WithContext(ctx).First(&record, "job_id = ?", jobID).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// ListJobs 按创建时间倒序分页列出岗位
func (m *MySQL) ListJobs(ctx context.Context, limit, offset int) ([]models.JobRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	var records []models.JobRecord
	err := m.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&records).Error
	return records, err
}

// SaveMatch 保存匹配快照。同一(简历,岗位)组合重复匹配时覆盖旧快照
func (m *MySQL) SaveMatch(ctx context.Context, record *models.MatchRecord) error {
	if record == nil || record.ResumeID == "" || record.JobID == "" {
		return fmt.Errorf("匹配记录的简历ID和岗位ID不能为空")
	}
	return m.db.WithContext(ctx).Clauses(
		clause.OnConflict{
			Columns:   []clause.Column{{Name: "resume_id"}, {Name: "job_id"}},
			UpdateAll: true,
		}).Create(record).Error
}

// ListMatchesByJob 按加权分倒序列出某岗位的匹配快照
func (m *MySQL) ListMatchesByJob(ctx context.Context, jobID string, limit int) ([]models.MatchRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	var records []models.MatchRecord
	err := m.db.WithContext(ctx).
		Where("job_id = ?", jobID).
		Order("weighted_score DESC").
		Limit(limit).
		Find(&records).Error
	return records, err
}

// Counts 返回各表记录数，用于统计接口
func (m *MySQL) Counts(ctx context.Context) (resumes, jobs, matches int64, err error) {
	if err = m.db.WithContext(ctx).Model(&models.ResumeRecord{}).Count(&resumes).Error; err != nil {
		return
	}
	if err = m.db.WithContext(ctx).Model(&models.JobRecord{}).Count(&jobs).Error; err != nil {
		return
	}
	err = m.db.WithContext(ctx).Model(&models.MatchRecord{}).Count(&matches).Error
	return
}
