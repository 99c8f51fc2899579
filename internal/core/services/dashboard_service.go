package services

import (
	"context"
	"fmt"

	"github.com/SscSPs/inkpress/internal/core/domain"
	portsrepo "github.com/SscSPs/inkpress/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/inkpress/internal/core/ports/services"
)

// dashboardTopN is how many items the top and recent lists hold.
const dashboardTopN = 5

type dashboardService struct {
	BaseService
	repo portsrepo.ContentStatsReader
}

func NewDashboardService(repo portsrepo.ContentStatsReader) portssvc.DashboardSvc {
	return &dashboardService{repo: repo}
}

func (s *dashboardService) GetStats(ctx context.Context, userID string) (*domain.DashboardStats, error) {
	blogs, err := s.repo.AuthorStats(ctx, domain.KindBlog, userID, dashboardTopN)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate blog stats: %w", err)
	}
	posts, err := s.repo.AuthorStats(ctx, domain.KindPost, userID, dashboardTopN)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate post stats: %w", err)
	}
	return &domain.DashboardStats{Blogs: *blogs, Posts: *posts}, nil
}
