package dto

type DashboardStats struct {
	TotalUsers        int64 `json:"total_users"`
	TotalCandidates   int64 `json:"total_candidates"`
	TotalEmployers    int64 `json:"total_employers"`
	TotalCompanies    int64 `json:"total_companies"`
	TotalJobs         int64 `json:"total_jobs"`
	OpenJobs          int64 `json:"open_jobs"`
	TotalApplications int64 `json:"total_applications"`
	TotalResumes      int64 `json:"total_resumes"`
	ActiveChatRooms   int64 `json:"active_chat_rooms"`
}

type UserFilter struct {
	PageQuery
	UserType string `form:"user_type" binding:"omitempty,oneof=candidate employer admin"`
	Search   string `form:"search"`
}
