// internal/domain/coldlist/dto.go
package coldlist

type CreateColdListRequest struct {
	Name        string `json:"name" binding:"required,max=255"`
	Description string `json:"description"`
	ProjectID   int64  `json:"project_id" binding:"required,min=1"`

	// Distribution
	ClientsPerDay    int     `json:"clients_per_day" binding:"required,min=1"`
	ClientsPerVendor int     `json:"clients_per_vendor" binding:"required,min=1"`
	SelectedVendors  []int64 `json:"selected_vendors" binding:"required,min=1"`

	// Window, inclusive. YYYY-MM-DD or RFC3339.
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date" binding:"required"`

	AssignedUserID *int64 `json:"assigned_user_id"`
}

type ImportClientRow struct {
	Name  string            `json:"name"`
	Phone string            `json:"phone"`
	Extra map[string]string `json:"extra"`
}

type ImportClientsRequest struct {
	Clients []ImportClientRow `json:"clients" binding:"required"`
}

type ContactClientRequest struct {
	ClientIndex *int  `json:"client_index" binding:"required"`
	Contacted   *bool `json:"contacted" binding:"required"`
}

type ColdListFilters struct {
	ProjectID *int64  `form:"project_id"`
	Status    *Status `form:"status"`
}

type ImportResult struct {
	TotalClients int      `json:"total_clients"`
	Preview      []Client `json:"preview"`
}

type GenerateTasksResult struct {
	TasksGenerated int      `json:"tasks_generated"`
	Vendors        int      `json:"vendors"`
	Days           int      `json:"days"`
	Overflow       int      `json:"overflow"`
	Warnings       []string `json:"warnings,omitempty"`
}

type RedistributeResult struct {
	TotalClients int `json:"total_clients"`
	Vendors      int `json:"vendors"`
	Days         int `json:"days"`
}

// ========== Reporting ==========

type ContactStats struct {
	Total      int `json:"total"`
	Contacted  int `json:"contacted"`
	Percentage int `json:"percentage"`
}

type VendorListStats struct {
	ColdListID   int64  `json:"cold_list_id"`
	ColdListName string `json:"cold_list_name"`
	ContactStats
}

type VendorStats struct {
	VendorID   int64             `json:"vendor_id"`
	VendorName string            `json:"vendor_name"`
	ColdLists  []VendorListStats `json:"cold_lists"`
	ContactStats
}

type VendorStatsSummary struct {
	TotalVendors      int `json:"total_vendors"`
	TotalClients      int `json:"total_clients"`
	TotalContacted    int `json:"total_contacted"`
	OverallPercentage int `json:"overall_percentage"`
}

type VendorStatsReport struct {
	Date    string             `json:"date,omitempty"`
	Vendors []VendorStats      `json:"vendors"`
	Summary VendorStatsSummary `json:"summary"`
}

type DailyVendorStat struct {
	VendorID   int64  `json:"vendor_id"`
	VendorName string `json:"vendor_name"`
	ContactStats
}

type DailyContactStats struct {
	ContactStats
	VendorStats []DailyVendorStat `json:"vendor_stats,omitempty"`
}

type DailyContacts struct {
	ColdListID   int64             `json:"cold_list_id"`
	ColdListName string            `json:"cold_list_name"`
	Date         string            `json:"date"`
	Clients      []Client          `json:"clients"`
	Stats        DailyContactStats `json:"stats"`
}

type AssignedListSummary struct {
	ColdListID   int64    `json:"cold_list_id"`
	ColdListName string   `json:"cold_list_name"`
	VendorID     int64    `json:"vendor_id"`
	Clients      []Client `json:"clients"`
	ContactStats
}

type AssignedDailySummary struct {
	Date      string                `json:"date"`
	ColdLists []AssignedListSummary `json:"cold_lists"`
	Stats     ContactStats          `json:"stats"`
}
