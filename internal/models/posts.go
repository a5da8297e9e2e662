package models

type FilterRequest struct {
	SymptomGroup string `json:"symptom_group"`
}

// FilterResult is the data payload of POST /filter_posts
type FilterResult struct {
	SymptomGroup string   `json:"symptom_group"`
	PostsCount   int      `json:"posts_count"`
	OutputFile   string   `json:"output_file"`
	Posts        []Record `json:"posts"`
}

type FilterResponse = APIResponse[*FilterResult]

// UsersCrawlResult is the data payload of POST /start_users_crawl
type UsersCrawlResult struct {
	TotalUsers       int      `json:"total_users"`
	SuccessfulCrawls int      `json:"successful_crawls"`
	FailedCrawls     int      `json:"failed_crawls"`
	TotalPosts       int      `json:"total_posts"`
	Usernames        []string `json:"usernames"`
	FoundUsernames   []string `json:"found_usernames,omitempty"`
	OutputFile       string   `json:"output_file"`
	Source           string   `json:"source,omitempty"`
}

type UsersCrawlResponse = APIResponse[*UsersCrawlResult]

// DataType distinguishes the two shapes /view_users_data can return
type DataType string

const (
	DataTypeThreads      DataType = "threads"
	DataTypeUsersSummary DataType = "users_summary"
)

// ViewResponse is the reply of the /view_* endpoints
type ViewResponse struct {
	Status          Status   `json:"status"`
	Message         string   `json:"message,omitempty"`
	Data            []Record `json:"data"`
	TotalCount      int      `json:"total_count,omitempty"`
	IsFiltered      bool     `json:"is_filtered,omitempty"`
	FilteredSymptom string   `json:"filtered_symptom,omitempty"`
	DataType        DataType `json:"data_type,omitempty"`
	FilePath        string   `json:"file_path,omitempty"`
}
