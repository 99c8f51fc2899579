package domain

// KindStats aggregates an author's items of one kind.
type KindStats struct {
	Kind       ContentKind `json:"kind"`
	Total      int64       `json:"total"`
	Drafts     int64       `json:"drafts"`
	Published  int64       `json:"published"`
	TotalViews int64       `json:"totalViews"`
	TopByViews []Content   `json:"topByViews"`
	Recent     []Content   `json:"recent"`
}

// DashboardStats is the analytics payload for the author dashboard.
type DashboardStats struct {
	Blogs KindStats `json:"blogs"`
	Posts KindStats `json:"posts"`
}
