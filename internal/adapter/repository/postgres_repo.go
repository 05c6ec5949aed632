package repository

import (
	"context"
	"errors"
	"time"

	"github-trending-tracker/internal/common"
	"github-trending-tracker/internal/domain"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const queryLimit = 20

// PostgresStore 实现了 port.Store 接口
type PostgresStore struct {
	db      *gorm.DB
	nowFunc func() time.Time
}

// NewPostgresStore 初始化数据库连接并自动迁移表结构
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, common.WrapError(common.ErrCodeStore, "连接数据库失败", err)
	}

	// AutoMigrate 会自动建表并补唯一索引，字段变了也会同步
	if err := db.AutoMigrate(&domain.TrendingRepo{}, &domain.RepoAnalysis{}); err != nil {
		return nil, common.WrapError(common.ErrCodeStore, "数据库迁移失败", err)
	}

	return &PostgresStore{db: db, nowFunc: time.Now}, nil
}

// UpsertDay 把一天的榜单整体写入，冲突键 (repo_name, trending_date)
//
// 冲突键本身就是并发控制：同一天的 cron 触发两次，后写的整体覆盖先写的，
// 不会产生重复行。整个批次跑在一个事务里，部分失败会整体回滚并
// 报告为一个 STORE_ERROR，不逐行汇报
func (s *PostgresStore) UpsertDay(ctx context.Context, date string, repos []*domain.TrendingRepo) (int, error) {
	if len(repos) == 0 {
		return 0, nil
	}

	for _, r := range repos {
		r.TrendingDate = date
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "repo_name"}, {Name: "trending_date"}},
			UpdateAll: true,
		}).Create(&repos).Error
	})
	if err != nil {
		return 0, common.WrapError(common.ErrCodeStore, "写入当日快照失败", err)
	}

	return len(repos), nil
}

// QueryDay 查询某天的榜单，按 rank 升序取前 20 条
// date 为空默认今天 (UTC)；language 大小写不敏感匹配，查询不改数据
func (s *PostgresStore) QueryDay(ctx context.Context, date, language string) ([]*domain.TrendingRepo, error) {
	if date == "" {
		date = domain.FormatDate(s.nowFunc())
	}

	query := s.db.WithContext(ctx).
		Where("trending_date = ?", date)
	if language != "" {
		query = query.Where("LOWER(language) = LOWER(?)", language)
	}

	var repos []*domain.TrendingRepo
	err := query.Order("rank ASC").Limit(queryLimit).Find(&repos).Error
	if err != nil {
		return nil, common.WrapError(common.ErrCodeStore, "查询当日快照失败", err)
	}

	return repos, nil
}

// SaveAnalyses 按 repo_name upsert 分析结果，后来的成功分析整体替换旧的
func (s *PostgresStore) SaveAnalyses(ctx context.Context, analyses []*domain.RepoAnalysis) error {
	if len(analyses) == 0 {
		return nil
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "repo_name"}},
		UpdateAll: true,
	}).Create(&analyses).Error
	if err != nil {
		return common.WrapError(common.ErrCodeStore, "保存分析结果失败", err)
	}

	return nil
}

// AnalyzedNames 返回给定名字里已有分析结果的子集，用于跳过重复分析
func (s *PostgresStore) AnalyzedNames(ctx context.Context, names []string) (map[string]bool, error) {
	done := make(map[string]bool)
	if len(names) == 0 {
		return done, nil
	}

	var existing []string
	err := s.db.WithContext(ctx).
		Model(&domain.RepoAnalysis{}).
		Where("repo_name IN ?", names).
		Pluck("repo_name", &existing).Error
	if err != nil {
		return nil, common.WrapError(common.ErrCodeStore, "查询已有分析失败", err)
	}

	for _, name := range existing {
		done[name] = true
	}
	return done, nil
}

// ListAnalyses 按名字批量取分析结果
func (s *PostgresStore) ListAnalyses(ctx context.Context, names []string) ([]*domain.RepoAnalysis, error) {
	if len(names) == 0 {
		return nil, nil
	}

	var analyses []*domain.RepoAnalysis
	err := s.db.WithContext(ctx).
		Where("repo_name IN ?", names).
		Find(&analyses).Error
	if err != nil {
		return nil, common.WrapError(common.ErrCodeStore, "查询分析结果失败", err)
	}

	return analyses, nil
}

// GetAnalysis 取单个仓库的分析结果
// 不存在和查询失败是两种可区分的结果 (NOT_FOUND vs STORE_ERROR)
func (s *PostgresStore) GetAnalysis(ctx context.Context, repoName string) (*domain.RepoAnalysis, error) {
	var analysis domain.RepoAnalysis
	err := s.db.WithContext(ctx).
		Where("repo_name = ?", repoName).
		First(&analysis).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.NewError(common.ErrCodeNotFound, "该仓库还没有分析结果")
		}
		return nil, common.WrapError(common.ErrCodeStore, "查询分析结果失败", err)
	}

	return &analysis, nil
}
