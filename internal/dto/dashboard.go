package dto

import "github.com/SscSPs/inkpress/internal/core/domain"

// KindStatsResponse is the per-kind section of the dashboard.
type KindStatsResponse struct {
	Total      int64             `json:"total"`
	Drafts     int64             `json:"drafts"`
	Published  int64             `json:"published"`
	TotalViews int64             `json:"totalViews"`
	TopByViews []ContentResponse `json:"topByViews"`
	Recent     []ContentResponse `json:"recent"`
}

// DashboardStatsResponse is returned by GET /api/auth/dashboard/stats.
type DashboardStatsResponse struct {
	Blogs KindStatsResponse `json:"blogs"`
	Posts KindStatsResponse `json:"posts"`
}

func toKindStatsResponse(s domain.KindStats) KindStatsResponse {
	return KindStatsResponse{
		Total:      s.Total,
		Drafts:     s.Drafts,
		Published:  s.Published,
		TotalViews: s.TotalViews,
		TopByViews: ToContentSummaries(s.TopByViews),
		Recent:     ToContentSummaries(s.Recent),
	}
}

// ToDashboardStatsResponse converts the domain stats to the response DTO.
func ToDashboardStatsResponse(s *domain.DashboardStats) DashboardStatsResponse {
	return DashboardStatsResponse{
		Blogs: toKindStatsResponse(s.Blogs),
		Posts: toKindStatsResponse(s.Posts),
	}
}
